package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/probe"
	"github.com/simaogato/transferflow-backend/internal/usecase/settlement"
	"github.com/simaogato/transferflow-backend/internal/usecase/workflow"
)

const testToken = "test-token"

type instantClock struct {
	now time.Time
}

func (c instantClock) Now() time.Time { return c.now }

func (c instantClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.now.Add(d)
	return ch
}

type fixedRandom struct {
	f float64
	n int
}

func (r fixedRandom) Float64() float64 { return r.f }
func (r fixedRandom) IntN(int) int     { return r.n }

func newTestRouter(t *testing.T, settleCfg settlement.Config) nethttp.Handler {
	t.Helper()
	return newTestRouterWithProbe(t, settleCfg, probe.DefaultConfig(), probe.DefaultBreakerConfig())
}

func newTestRouterWithProbe(t *testing.T, settleCfg settlement.Config, probeCfg probe.Config, breakerCfg probe.BreakerConfig) nethttp.Handler {
	t.Helper()
	logger := zaptest.NewLogger(t)
	clock := instantClock{now: time.Date(2025, 3, 9, 15, 30, 0, 0, time.UTC)}
	random := fixedRandom{f: 0.5, n: 31}

	session := workflow.NewSession(
		settlement.NewSimulator(clock, random, settleCfg, logger),
		probe.NewGuardedChecker(probe.NewBankProber(clock, random, probeCfg, logger), breakerCfg, logger),
		clock,
		random,
		workflow.DefaultConfig(),
		logger,
	)
	return NewRouter(NewHandler(session, logger), testToken)
}

func do(t *testing.T, h nethttp.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+testToken)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

const sarahDraft = `{"recipient":"Sarah Johnson","amount":"250.00","account":"123456784829","routing":"021000021","memo":"Dinner split"}`

func TestRouter_InstantTransferEndToEnd(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	rec, body := do(t, h, nethttp.MethodPost, "/api/transfer/submit", sarahDraft)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "Sarah Johnson", body["recipient"])
	assert.Equal(t, "•••• 4829", body["account"])
	assert.Equal(t, "instant", body["speed"])
	quote := body["quote"].(map[string]interface{})
	assert.Equal(t, "251.99", quote["total"])
	assert.Equal(t, "$251.99", quote["total_display"])

	rec, body = do(t, h, nethttp.MethodPost, "/api/transfer/confirm", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "MN-2025-000031", body["id"])
	assert.Equal(t, "250.00", body["amount"])
	timeline := body["timeline"].([]interface{})
	require.Len(t, timeline, 3)
	assert.Equal(t, "Sent via FedNow", timeline[1].(map[string]interface{})["label"])

	rec, body = do(t, h, nethttp.MethodGet, "/api/session", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, string(domain.StateSuccess), body["state"])

	rec, _ = do(t, h, nethttp.MethodPost, "/api/transfer/reset", "")
	assert.Equal(t, nethttp.StatusNoContent, rec.Code)

	_, body = do(t, h, nethttp.MethodGet, "/api/session", "")
	assert.Equal(t, string(domain.StateEditing), body["state"])
	draft := body["draft"].(map[string]interface{})
	assert.Equal(t, "", draft["recipient"])
	assert.Equal(t, "021000021", draft["routing"])
}

func TestRouter_SubmitInvalidDraft(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	rec, body := do(t, h, nethttp.MethodPost, "/api/transfer/submit",
		`{"recipient":"","amount":"10001","account":"12","routing":"12345"}`)

	require.Equal(t, nethttp.StatusUnprocessableEntity, rec.Code)
	errs := body["errors"].(map[string]interface{})
	assert.Equal(t, domain.MsgRecipientRequired, errs["recipient"])
	assert.Equal(t, domain.MsgAmountTooLarge, errs["amount"])
	assert.Equal(t, domain.MsgInvalidAccount, errs["account"])
	assert.Equal(t, domain.MsgInvalidRouting, errs["routing"])

	_, body = do(t, h, nethttp.MethodGet, "/api/session", "")
	assert.Equal(t, string(domain.StateEditing), body["state"])
}

func TestRouter_SpeedAndAmountEditing(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	rec, body := do(t, h, nethttp.MethodPost, "/api/draft/amount", `{"amount":"$1,250.567"}`)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "1250.56", body["amount"])
	assert.Equal(t, "1252.55", body["quote"].(map[string]interface{})["total"])

	rec, body = do(t, h, nethttp.MethodPut, "/api/speed", `{"speed":"standard"}`)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "0.00", body["fee"])
	assert.Equal(t, "Free", body["fee_display"])
	assert.Equal(t, "1250.56", body["total"])

	rec, _ = do(t, h, nethttp.MethodPut, "/api/speed", `{"speed":"overnight"}`)
	assert.Equal(t, nethttp.StatusBadRequest, rec.Code)
}

func TestRouter_ValidateField(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	tests := []struct {
		name    string
		body    string
		valid   bool
		message string
	}{
		{"valid routing", `{"field":"routing","value":"021000021"}`, true, ""},
		{"short routing", `{"field":"routing","value":"0210"}`, false, domain.MsgInvalidRouting},
		{"blank recipient", `{"field":"recipient","value":"   "}`, false, domain.MsgRecipientRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(t, h, nethttp.MethodPost, "/api/draft/validate", tt.body)
			require.Equal(t, nethttp.StatusOK, rec.Code)
			assert.Equal(t, tt.valid, body["valid"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestRouter_InvalidTransitionIsConflict(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	rec, _ := do(t, h, nethttp.MethodPost, "/api/transfer/confirm", "")
	assert.Equal(t, nethttp.StatusConflict, rec.Code)

	rec, _ = do(t, h, nethttp.MethodPost, "/api/transfer/cancel", "")
	assert.Equal(t, nethttp.StatusConflict, rec.Code)
}

func TestRouter_SettlementFailureIsRetryable(t *testing.T) {
	cfg := settlement.DefaultConfig()
	cfg.FailureRate = 1
	h := newTestRouter(t, cfg)

	rec, _ := do(t, h, nethttp.MethodPost, "/api/transfer/submit", sarahDraft)
	require.Equal(t, nethttp.StatusOK, rec.Code)

	rec, body := do(t, h, nethttp.MethodPost, "/api/transfer/confirm", "")
	require.Equal(t, nethttp.StatusBadGateway, rec.Code)
	assert.Equal(t, true, body["retry"])

	_, body = do(t, h, nethttp.MethodGet, "/api/session", "")
	assert.Equal(t, string(domain.StateConfirmationOpen), body["state"])
	assert.Contains(t, body, "error")
}

func TestRouter_ProbeBankCapability(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	rec, body := do(t, h, nethttp.MethodGet, "/api/banks/021000021/capability", "")
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "021000021", body["routing"])
	assert.Equal(t, true, body["supports_instant"])
}

func TestRouter_RequiresToken(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong token", "Bearer nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(nethttp.MethodGet, "/api/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, nethttp.StatusUnauthorized, rec.Code)
			assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
		})
	}
}

func TestRouter_HealthzIsPublic(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}

func TestRouter_LookupFailuresOpenBreaker(t *testing.T) {
	probeCfg := probe.DefaultConfig()
	probeCfg.LookupFailureRate = 1
	h := newTestRouterWithProbe(t, settlement.DefaultConfig(), probeCfg,
		probe.BreakerConfig{ConsecutiveFailures: 2, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		rec, body := do(t, h, nethttp.MethodGet, "/api/banks/021000021/capability", "")
		assert.Equal(t, nethttp.StatusServiceUnavailable, rec.Code)
		if i < 2 {
			assert.Equal(t, probe.ErrLookupFailed.Error(), body["error"])
		} else {
			assert.Contains(t, body["error"], probe.ErrLookupUnavailable.Error())
		}
	}
}

func TestRouter_SubmitNumericAmount(t *testing.T) {
	h := newTestRouter(t, settlement.DefaultConfig())

	rec, body := do(t, h, nethttp.MethodPost, "/api/transfer/submit",
		`{"recipient":"Sarah Johnson","amount":250,"account":"4829","routing":"021000021"}`)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "250.00", body["amount"])
	assert.Equal(t, "251.99", body["quote"].(map[string]interface{})["total"])

	rec, _ = do(t, h, nethttp.MethodPost, "/api/transfer/cancel", "")
	require.Equal(t, nethttp.StatusNoContent, rec.Code)

	rec, body = do(t, h, nethttp.MethodPut, "/api/draft", `{"amount":12.5}`)
	require.Equal(t, nethttp.StatusOK, rec.Code)
	assert.Equal(t, "12.50", body["amount"])
	assert.Equal(t, "14.49", body["total"])
}
