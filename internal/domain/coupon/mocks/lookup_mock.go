package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/domain/coupon"
)

// MockLookup serves coupons from a map and records requested codes.
type MockLookup struct {
	mu      sync.Mutex
	coupons map[string]coupon.Coupon

	Calls     []string
	LookupErr error
}

func NewMockLookup(coupons ...coupon.Coupon) *MockLookup {
	m := &MockLookup{coupons: make(map[string]coupon.Coupon)}
	for _, c := range coupons {
		m.coupons[c.Code] = c
	}
	return m
}

func (m *MockLookup) Add(c coupon.Coupon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.coupons[c.Code] = c
}

func (m *MockLookup) LookupCoupon(ctx context.Context, code string) (coupon.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, code)
	if m.LookupErr != nil {
		return coupon.Coupon{}, m.LookupErr
	}
	c, ok := m.coupons[code]
	if !ok {
		return coupon.Coupon{}, coupon.ErrCouponNotFound
	}
	return c, nil
}
