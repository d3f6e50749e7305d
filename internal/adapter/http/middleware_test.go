package http

import (
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLogger_LogsRouteTemplate(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewRouter(NewHandler(nil, zap.New(core)), testToken)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/banks/021000021/capability", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, nethttp.StatusUnauthorized, rec.Code)

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/api/banks/{routing}/capability", fields["route"])
	assert.Equal(t, int64(nethttp.StatusUnauthorized), fields["status"])

	for key, value := range fields {
		if s, ok := value.(string); ok {
			assert.False(t, strings.Contains(s, "021000021"), "field %q leaks the routing number", key)
		}
	}
}
