package api

import (
	"net/http"
	"time"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/query"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// StreamPayment pushes the attempt to the client each time it changes and
// closes the socket once the attempt is final.
func (h *Handlers) StreamPayment(w http.ResponseWriter, r *http.Request) {
	buyerID := middleware.GetBuyerID(r.Context())
	attemptID := chi.URLParam(r, "attemptID")

	// ownership is checked before the upgrade so failures stay plain HTTP
	if _, err := h.queryHandler.GetPayment(r.Context(), buyerID, attemptID); err != nil {
		h.respondError(w, r, err)
		return
	}

	updates, unsubscribe := h.feed.Subscribe(attemptID)
	defer unsubscribe()

	// read again after subscribing so no transition falls in between
	current, err := h.queryHandler.GetPayment(r.Context(), buyerID, attemptID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Str("attempt_id", attemptID).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if !h.writeUpdate(conn, current) || current.Terminal {
		h.closeStream(conn)
		return
	}

	ping := time.NewTicker(streamPingPeriod)
	defer ping.Stop()

	for {
		select {
		case a, ok := <-updates:
			if !ok {
				h.closeStream(conn)
				return
			}
			rm := query.NewPaymentReadModel(&a)
			if !h.writeUpdate(conn, rm) || rm.Terminal {
				h.closeStream(conn)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(streamWriteWait)); err != nil {
				return
			}
		case <-closed:
			return
		}
	}
}

func (h *Handlers) writeUpdate(conn *websocket.Conn, rm *query.PaymentReadModel) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	if err := conn.WriteJSON(rm); err != nil {
		h.logger.Debug().Err(err).Str("attempt_id", rm.ID).Msg("websocket write failed")
		return false
	}
	return true
}

func (h *Handlers) closeStream(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(streamWriteWait))
}
