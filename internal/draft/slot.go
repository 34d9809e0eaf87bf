package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/infrastructure/kv"
)

const slotName = "latestOrder"

var ErrMissingBuyer = errors.New("buyer id is required")

// Slot holds the latest order draft of each buyer. Writes replace the
// previous draft.
type Slot struct {
	store kv.Store
	ttl   time.Duration
}

func NewSlot(store kv.Store, ttl time.Duration) *Slot {
	return &Slot{store: store, ttl: ttl}
}

// Write stores d as the buyer's latest draft. Nothing is written when the
// shipping address is incomplete.
func (s *Slot) Write(ctx context.Context, buyerID string, d order.Draft) error {
	if buyerID == "" {
		return ErrMissingBuyer
	}
	if err := d.ShippingAddress.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	return s.store.Set(ctx, key(buyerID), data, s.ttl)
}

// Read returns the latest draft, or false when the slot is empty.
func (s *Slot) Read(ctx context.Context, buyerID string) (order.Draft, bool, error) {
	data, err := s.store.Get(ctx, key(buyerID))
	if errors.Is(err, kv.ErrNotFound) {
		return order.Draft{}, false, nil
	}
	if err != nil {
		return order.Draft{}, false, err
	}
	var d order.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return order.Draft{}, false, fmt.Errorf("unmarshal draft: %w", err)
	}
	return d, true, nil
}

func (s *Slot) Clear(ctx context.Context, buyerID string) error {
	return s.store.Delete(ctx, key(buyerID))
}

func key(buyerID string) string {
	return slotName + ":" + buyerID
}
