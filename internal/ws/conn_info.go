package ws

import (
	"time"

	"github.com/google/uuid"
)

type ConnInfo struct {
	ConnID      string
	UserID      int
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnID() string {
	return uuid.NewString()
}

func (i ConnInfo) payload(sessionID int, event, reason string) map[string]interface{} {
	duration := int64(0)
	if !i.ConnectedAt.IsZero() {
		duration = time.Since(i.ConnectedAt).Milliseconds()
	}
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "trade_session",
			"resource_id": sessionID,
			"event":       event,
			"conn_id":     i.ConnID,
			"duration_ms": duration,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   i.UserID,
			"device_id": i.DeviceID,
			"ip":        i.IP,
		},
	}
}
