package service

import (
	"context"
	"sync"

	"github.com/felicity-events/eventops-api/internal/repository"
)

var (
	ErrCapacityExceeded  = repository.ErrCapacityExceeded
	ErrVariantNotFound   = repository.ErrVariantNotFound
	ErrInsufficientStock = repository.ErrInsufficientStock
)

type CapacityStore interface {
	ReserveSeat(ctx context.Context, eventID uint) error
	ReleaseSeat(ctx context.Context, eventID uint) error
	ReserveVariantStock(ctx context.Context, eventID uint, size, color string, qty int) error
}

// CapacityLedger is the single writer of registration counts and variant
// stock. Reservations for the same event are serialized through a per-event
// mutex, so a check and its increment are indivisible even when the store's
// own guarantees are weaker.
type CapacityLedger struct {
	store CapacityStore

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewCapacityLedger(store CapacityStore) *CapacityLedger {
	return &CapacityLedger{
		store: store,
		locks: make(map[uint]*sync.Mutex),
	}
}

func (l *CapacityLedger) eventLock(eventID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[eventID] = lock
	}

	return lock
}

// WithEventLock runs fn while holding the event's lock. Callers must not
// touch the ledger's public methods for the same event inside fn.
func (l *CapacityLedger) WithEventLock(eventID uint, fn func() error) error {
	lock := l.eventLock(eventID)
	lock.Lock()
	defer lock.Unlock()

	return fn()
}

// Reserve takes one seat on a NORMAL event, failing with ErrCapacityExceeded
// when the event is full.
func (l *CapacityLedger) Reserve(ctx context.Context, eventID uint) error {
	return l.WithEventLock(eventID, func() error {
		return l.store.ReserveSeat(ctx, eventID)
	})
}

// Release gives a seat back after a cancellation. The count never goes below
// zero.
func (l *CapacityLedger) Release(ctx context.Context, eventID uint) error {
	return l.WithEventLock(eventID, func() error {
		return l.store.ReleaseSeat(ctx, eventID)
	})
}

// ReserveStock consumes variant stock on a MERCHANDISE event. Stock only
// moves here, at order approval time, never at submission.
func (l *CapacityLedger) ReserveStock(ctx context.Context, eventID uint, size, color string, qty int) error {
	return l.WithEventLock(eventID, func() error {
		return l.store.ReserveVariantStock(ctx, eventID, size, color, qty)
	})
}
