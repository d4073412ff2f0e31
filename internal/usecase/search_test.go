package usecase

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchService_settlesOnceAfterQuiet(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var settled []string
	done := make(chan struct{}, 4)
	svc := NewSearchService(20*time.Millisecond, func(term string) {
		mu.Lock()
		settled = append(settled, term)
		mu.Unlock()
		done <- struct{}{}
	})
	defer svc.Stop()

	svc.Set("d")
	svc.Set("du")
	svc.Set("dune")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("search term never settled")
	}
	// 後続の呼び出しがないことを確認する
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, settled, 1)
	assert.Equal(t, "dune", settled[0])
	assert.Equal(t, "dune", svc.Term())
}

func TestSearchService_Stop(t *testing.T) {
	t.Parallel()

	called := make(chan string, 1)
	svc := NewSearchService(10*time.Millisecond, func(term string) { called <- term })

	svc.Set("dune")
	svc.Stop()
	svc.Set("emma")

	select {
	case term := <-called:
		t.Fatalf("unexpected settle with %q", term)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Empty(t, svc.Term())
}

func TestNewSearchService_defaultDelay(t *testing.T) {
	t.Parallel()

	svc := NewSearchService(0, nil)
	assert.Equal(t, DefaultSearchDebounce, svc.delay)
}
