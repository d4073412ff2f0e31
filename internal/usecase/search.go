package usecase

import (
	"sync"
	"time"
)

// DefaultSearchDebounce は検索語が確定するまでの待ち時間です
const DefaultSearchDebounce = 300 * time.Millisecond

// SearchService は入力中の検索語を受け取り、一定時間入力が止まってから確定させます
// 確定するたびに onSettle を1回呼び出します
type SearchService struct {
	mu       sync.Mutex
	delay    time.Duration
	term     string
	seq      uint64
	timer    *time.Timer
	stopped  bool
	onSettle func(term string)
}

// NewSearchService は新しいSearchServiceを作成します
func NewSearchService(delay time.Duration, onSettle func(term string)) *SearchService {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &SearchService{delay: delay, onSettle: onSettle}
}

// Set は入力中の検索語を更新します。前回の入力から待ち時間をやり直します
func (s *SearchService) Set(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.settle(seq, term) })
}

// Term は確定済みの検索語を返します
func (s *SearchService) Term() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Stop は保留中の確定を取り消し、以後の入力を無視します
func (s *SearchService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *SearchService) settle(seq uint64, term string) {
	s.mu.Lock()
	// 既に新しい入力があった、または停止済みなら捨てる
	if s.stopped || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.term = term
	cb := s.onSettle
	s.mu.Unlock()

	if cb != nil {
		cb(term)
	}
}
