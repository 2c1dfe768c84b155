package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	w := doRequest(handler, "10.0.0.1:1", nil)

	echoed := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, echoed)
	assert.Equal(t, echoed, seen, "context id matches the response header")

	_, err := uuid.Parse(echoed)
	assert.NoError(t, err, "generated id is a UUID")
}

func TestRequestID_KeepsForwardedID(t *testing.T) {
	handler := RequestID()(okHandler())

	w := doRequest(handler, "10.0.0.1:1", map[string]string{"X-Request-ID": "proxy-trace.0042"})
	assert.Equal(t, "proxy-trace.0042", w.Header().Get("X-Request-ID"))
}

func TestRequestID_ReplacesRejectedID(t *testing.T) {
	handler := RequestID()(okHandler())

	for _, bad := range []string{"", "has space", "semi;colon", strings.Repeat("a", 65), "new\nline"} {
		w := doRequest(handler, "10.0.0.1:1", map[string]string{"X-Request-ID": bad})
		echoed := w.Header().Get("X-Request-ID")
		assert.NotEqual(t, bad, echoed, "id %q must be replaced", bad)
		_, err := uuid.Parse(echoed)
		assert.NoError(t, err)
	}
}

func TestRequestIDFromContext_NoMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFromContext(req.Context()))
}
