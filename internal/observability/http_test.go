package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws/trade-sessions/1", nil)
	req.RemoteAddr = "10.0.0.9:51234"
	req.Header.Set("X-Device-Id", "ios-7")
	req.Header.Set("X-Request-ID", "req-1")

	id := IdentityFromRequest(req)
	assert.Equal(t, ClientIdentity{DeviceID: "ios-7", IP: "10.0.0.9", RequestID: "req-1"}, id)

	req.Header.Set("X-Real-IP", "192.0.2.4")
	assert.Equal(t, "192.0.2.4", IdentityFromRequest(req).IP)

	req.Header.Set("X-Forwarded-For", " 203.0.113.5 , 10.0.0.1")
	assert.Equal(t, "203.0.113.5", IdentityFromRequest(req).IP)
}
