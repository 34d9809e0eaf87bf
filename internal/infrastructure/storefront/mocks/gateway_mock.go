package mocks

import (
	"context"
	"sync"

	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/payment"
)

// StatusReply is one scripted answer of MobileMoneyStatus.
type StatusReply struct {
	Status payment.ProviderStatus
	Err    error
}

// MockGateway is a scripted shop backend for testing
type MockGateway struct {
	mu sync.Mutex

	Orders         []order.Submission
	CreateOrderErr error

	Initiations   []payment.MobileMoneyRequest
	InitiateReply payment.MobileMoneyInitiation
	InitiateErr   error

	// Statuses are returned in order; the last one repeats.
	Statuses    []StatusReply
	StatusCalls int
	// BeforeStatus runs before each status check when set.
	BeforeStatus func()
}

// NewMockGateway accepts every initiation with transaction id TXN-1
func NewMockGateway() *MockGateway {
	return &MockGateway{
		InitiateReply: payment.MobileMoneyInitiation{Success: true, TransactionID: "TXN-1"},
		Statuses:      []StatusReply{{Status: payment.ProviderPending}},
	}
}

func (m *MockGateway) CreateOrder(ctx context.Context, sub order.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateOrderErr != nil {
		return m.CreateOrderErr
	}
	m.Orders = append(m.Orders, sub)
	return nil
}

func (m *MockGateway) InitiateMobileMoney(ctx context.Context, req payment.MobileMoneyRequest) (payment.MobileMoneyInitiation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Initiations = append(m.Initiations, req)
	if m.InitiateErr != nil {
		return payment.MobileMoneyInitiation{}, m.InitiateErr
	}
	return m.InitiateReply, nil
}

func (m *MockGateway) MobileMoneyStatus(ctx context.Context, transactionID string) (payment.ProviderStatus, error) {
	m.mu.Lock()
	hook := m.BeforeStatus
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := min(m.StatusCalls, len(m.Statuses)-1)
	m.StatusCalls++
	if i < 0 {
		return payment.ProviderPending, nil
	}
	return m.Statuses[i].Status, m.Statuses[i].Err
}

// ScriptStatuses replaces the scripted status answers
func (m *MockGateway) ScriptStatuses(replies ...StatusReply) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statuses = replies
}

func (m *MockGateway) StatusCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StatusCalls
}

func (m *MockGateway) SubmittedOrders() []order.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]order.Submission(nil), m.Orders...)
}

func (m *MockGateway) InitiationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Initiations)
}
