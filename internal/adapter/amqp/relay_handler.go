package amqp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/logger"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

// RelayHandler stands where the push transport attaches: it receives queue
// events off the broker and hands them to whatever fans them out to
// browsers. Here it logs them, which doubles as a monitor.
type RelayHandler struct {
	logger logger.Logger
}

func NewRelayHandler(lgr logger.Logger) *RelayHandler {
	return &RelayHandler{logger: lgr}
}

func (h *RelayHandler) HandleEvent(ctx context.Context, body []byte) error {
	var event interfaces.QueueEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Error("event_malformed", "Failed to decode queue event", "", nil, err)
		return err
	}

	switch event.Event {
	case interfaces.EventOrderReady:
		h.logger.Info("order_ready", fmt.Sprintf("Ticket %d is ready", event.TicketNumber), "", map[string]interface{}{
			"order_id": event.OrderID,
			"ticket":   event.TicketNumber,
		})
	case interfaces.EventQueueChanged:
		h.logger.Info("queue_changed", "Queue changed", "", map[string]interface{}{
			"ts": event.Timestamp,
		})
	default:
		h.logger.Debug("event_ignored", "Unknown queue event", "", map[string]interface{}{
			"event": event.Event,
		})
	}

	return nil
}
