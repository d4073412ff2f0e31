package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"jo3qma.com/book_market/internal/domain/model"
	"jo3qma.com/book_market/internal/domain/repository"
)

func TestSellerUsecase_IncomingOrders_joinsOwnBooks(t *testing.T) {
	t.Parallel()

	books := &fakeBookRepo{mine: []*model.Book{{ID: "B1", Data: model.BookData{Name: "Dune"}}}}
	approved := order("o2", "B1", 30)
	approved.Data.Status = model.StatusApproved
	orders := &fakeOrderRepo{orders: []*model.Order{order("o1", "B1", 20), order("o9", "B9", 50), approved}}
	uc := NewSellerUsecase(books, orders, nil, nil)

	rows, err := uc.IncomingOrders(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].BookTitle != "Dune" {
		t.Errorf("title = %q", rows[0].BookTitle)
	}
	wantOpts := []model.Status{model.StatusApproved, model.StatusReceived, model.StatusRejected}
	if !reflect.DeepEqual(rows[1].StatusOptions, wantOpts) {
		t.Errorf("status options = %v, want %v", rows[1].StatusOptions, wantOpts)
	}
}

func TestSellerUsecase_IncomingOrders_noBooksSkipsOrders(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderRepo{orders: []*model.Order{order("o1", "B1", 20)}}
	uc := NewSellerUsecase(&fakeBookRepo{}, orders, nil, nil)

	rows, err := uc.IncomingOrders(context.Background(), "tok")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 || orders.calls != 0 {
		t.Errorf("rows=%d calls=%d, want 0 and 0", len(rows), orders.calls)
	}
}

func TestSellerUsecase_UpdateCounter_preservesSiblings(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderRepo{orders: []*model.Order{order("o1", "B1", 20)}}
	pub := &fakePublisher{}
	uc := NewSellerUsecase(&fakeBookRepo{}, orders, pub, nil)

	got, err := uc.UpdateCounter(context.Background(), "tok", "o1", "15")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data.Book != "B1" || got.Data.Price != 20 || got.Data.Status != model.StatusReceived {
		t.Errorf("sibling fields changed: %+v", got.Data)
	}
	if got.Data.Counter == nil || *got.Data.Counter != 15 {
		t.Errorf("counter = %v, want 15", got.Data.Counter)
	}
	if orders.updates != 1 {
		t.Errorf("updates = %d, want 1", orders.updates)
	}
	if kinds := pub.kinds(); len(kinds) != 1 || kinds[0] != model.EventOfferCountered {
		t.Errorf("events = %v", kinds)
	}
}

func TestSellerUsecase_UpdateCounter_sameValueIsNoop(t *testing.T) {
	t.Parallel()

	existing := order("o1", "B1", 20)
	existing.Data.Counter = ptr(15)
	orders := &fakeOrderRepo{orders: []*model.Order{existing}}
	pub := &fakePublisher{}
	uc := NewSellerUsecase(&fakeBookRepo{}, orders, pub, nil)

	if _, err := uc.UpdateCounter(context.Background(), "tok", "o1", "15"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orders.updates != 0 || len(pub.kinds()) != 0 {
		t.Errorf("updates=%d events=%d, want none", orders.updates, len(pub.kinds()))
	}
}

func TestSellerUsecase_UpdateStatus_sameStatusIsNoop(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderRepo{orders: []*model.Order{order("o1", "B1", 20)}}
	pub := &fakePublisher{}
	uc := NewSellerUsecase(&fakeBookRepo{}, orders, pub, nil)

	got, err := uc.UpdateStatus(context.Background(), "tok", "o1", "received")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data.Status != model.StatusReceived {
		t.Errorf("status = %q", got.Data.Status)
	}
	if orders.updates != 0 {
		t.Errorf("updates = %d, want 0", orders.updates)
	}
	if len(pub.kinds()) != 0 {
		t.Errorf("unexpected events: %v", pub.kinds())
	}
}

func TestSellerUsecase_UpdateStatus_anyTransitionAllowed(t *testing.T) {
	t.Parallel()

	rejected := order("o1", "B1", 20)
	rejected.Data.Status = model.StatusRejected
	orders := &fakeOrderRepo{orders: []*model.Order{rejected}}
	pub := &fakePublisher{}
	uc := NewSellerUsecase(&fakeBookRepo{}, orders, pub, nil)

	got, err := uc.UpdateStatus(context.Background(), "tok", "o1", "Approved")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data.Status != model.StatusApproved || got.Data.Price != 20 {
		t.Errorf("unexpected data: %+v", got.Data)
	}
	if kinds := pub.kinds(); len(kinds) != 1 || kinds[0] != model.EventStatusChanged {
		t.Errorf("events = %v", kinds)
	}
}

func TestSellerUsecase_UpdateStatus_rejectsUnknown(t *testing.T) {
	t.Parallel()

	orders := &fakeOrderRepo{orders: []*model.Order{order("o1", "B1", 20)}}
	uc := NewSellerUsecase(&fakeBookRepo{}, orders, nil, nil)

	for _, raw := range []string{"pending", "shipped", ""} {
		_, err := uc.UpdateStatus(context.Background(), "tok", "o1", raw)
		if !errors.Is(err, ErrInvalidStatus) {
			t.Errorf("status %q: got error %v, want ErrInvalidStatus", raw, err)
		}
	}
	if orders.calls != 0 {
		t.Errorf("calls = %d, want 0", orders.calls)
	}
}

func TestSellerUsecase_requiresToken(t *testing.T) {
	t.Parallel()

	uc := NewSellerUsecase(&fakeBookRepo{}, &fakeOrderRepo{}, nil, nil)
	if _, err := uc.IncomingOrders(context.Background(), ""); !errors.Is(err, repository.ErrUnauthenticated) {
		t.Errorf("IncomingOrders: got %v", err)
	}
	if _, err := uc.UpdateCounter(context.Background(), "", "o1", "5"); !errors.Is(err, repository.ErrUnauthenticated) {
		t.Errorf("UpdateCounter: got %v", err)
	}
	if _, err := uc.UpdateStatus(context.Background(), "", "o1", "approved"); !errors.Is(err, repository.ErrUnauthenticated) {
		t.Errorf("UpdateStatus: got %v", err)
	}
}
