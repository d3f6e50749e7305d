package http

import (
	"encoding/json"
	nethttp "net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/simaogato/transferflow-backend/internal/usecase/workflow"
)

// Handler serves the transfer workflow as a JSON API for the browser UI
type Handler struct {
	Session *workflow.Session
	Logger  *zap.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(session *workflow.Session, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Session: session,
		Logger:  logger,
	}
}

// NewRouter wires every route. Everything under /api requires the bearer token.
func NewRouter(h *Handler, apiToken string) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(h.Logger))

	r.HandleFunc("/healthz", func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]interface{}{"status": "ok"})
	}).Methods(nethttp.MethodGet)

	s := r.PathPrefix("/api").Subrouter()
	s.Use(TokenAuth(apiToken))

	s.HandleFunc("/session", h.GetSession).Methods(nethttp.MethodGet)
	s.HandleFunc("/draft", h.UpdateDraft).Methods(nethttp.MethodPut)
	s.HandleFunc("/draft/amount", h.EditAmount).Methods(nethttp.MethodPost)
	s.HandleFunc("/draft/validate", h.ValidateField).Methods(nethttp.MethodPost)
	s.HandleFunc("/speed", h.SelectSpeed).Methods(nethttp.MethodPut)
	s.HandleFunc("/transfer/submit", h.SubmitDraft).Methods(nethttp.MethodPost)
	s.HandleFunc("/transfer/cancel", h.CancelConfirmation).Methods(nethttp.MethodPost)
	s.HandleFunc("/transfer/confirm", h.ConfirmAndProcess).Methods(nethttp.MethodPost)
	s.HandleFunc("/transfer/reset", h.ResetSession).Methods(nethttp.MethodPost)
	s.HandleFunc("/banks/{routing}/capability", h.ProbeBankCapability).Methods(nethttp.MethodGet)

	return r
}

func writeJSON(w nethttp.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
