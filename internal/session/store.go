package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/infrastructure/kv"
)

const keyPrefix = "session:"

// Store persists buyer sessions as JSON in a kv.Store.
type Store struct {
	kv  kv.Store
	ttl time.Duration
	now func() time.Time
}

func NewStore(store kv.Store, ttl time.Duration) *Store {
	return &Store{kv: store, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Load returns the buyer's session, or a fresh one when none is stored.
func (s *Store) Load(ctx context.Context, buyerID string) (State, error) {
	data, err := s.kv.Get(ctx, keyPrefix+buyerID)
	if errors.Is(err, kv.ErrNotFound) {
		return New(buyerID), nil
	}
	if err != nil {
		return State{}, fmt.Errorf("load session %s: %w", buyerID, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("decode session %s: %w", buyerID, err)
	}
	st.BuyerID = buyerID
	return st, nil
}

func (s *Store) Save(ctx context.Context, st State) error {
	st.UpdatedAt = s.now()
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", st.BuyerID, err)
	}
	return s.kv.Set(ctx, keyPrefix+st.BuyerID, data, s.ttl)
}

// Update loads the session, applies fn and saves the result. Nothing is
// saved when fn fails.
func (s *Store) Update(ctx context.Context, buyerID string, fn func(State) (State, error)) (State, error) {
	current, err := s.Load(ctx, buyerID)
	if err != nil {
		return State{}, err
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	if err := s.Save(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}

// ClearCheckout empties the cart and drops the coupon after a paid order.
func (s *Store) ClearCheckout(ctx context.Context, buyerID string) error {
	_, err := s.Update(ctx, buyerID, func(st State) (State, error) {
		return st.CheckedOut(), nil
	})
	return err
}
