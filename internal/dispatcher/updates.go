package dispatcher

import (
	"sync"

	"github.com/example/ec-storefront/internal/domain/payment"
)

const subscriberBuffer = 8

// broadcaster fans attempt snapshots out to subscribers. A slow subscriber
// loses its oldest snapshot, never the newest.
type broadcaster struct {
	mu   sync.Mutex
	subs map[string]map[chan payment.Attempt]struct{}
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[string]map[chan payment.Attempt]struct{})}
}

func (b *broadcaster) subscribe(attemptID string) (<-chan payment.Attempt, func()) {
	ch := make(chan payment.Attempt, subscriberBuffer)

	b.mu.Lock()
	if b.subs[attemptID] == nil {
		b.subs[attemptID] = make(map[chan payment.Attempt]struct{})
	}
	b.subs[attemptID][ch] = struct{}{}
	b.mu.Unlock()

	unsubscribe := sync.OnceFunc(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[attemptID], ch)
		if len(b.subs[attemptID]) == 0 {
			delete(b.subs, attemptID)
		}
		close(ch)
	})
	return ch, unsubscribe
}

func (b *broadcaster) publish(a payment.Attempt) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[a.ID] {
		select {
		case ch <- a:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- a:
		default:
		}
	}
}
