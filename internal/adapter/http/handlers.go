package http

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/simaogato/transferflow-backend/internal/adapter/view"
	"github.com/simaogato/transferflow-backend/internal/domain"
	"github.com/simaogato/transferflow-backend/internal/usecase/probe"
)

// GetSession handles GET /api/session
func (h *Handler) GetSession(w nethttp.ResponseWriter, r *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, view.Snapshot(h.Session.Snapshot()))
}

// UpdateDraft handles PUT /api/draft
func (h *Handler) UpdateDraft(w nethttp.ResponseWriter, r *nethttp.Request) {
	fields, ok := h.decode(w, r)
	if !ok {
		return
	}
	quote, err := h.Session.UpdateDraft(r.Context(), view.DraftFromMap(fields))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, view.Quote(quote))
}

// EditAmount handles POST /api/draft/amount
func (h *Handler) EditAmount(w nethttp.ResponseWriter, r *nethttp.Request) {
	var body struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, nethttp.StatusBadRequest, errorBody("malformed JSON body"))
		return
	}
	normalized, quote, err := h.Session.EditAmount(r.Context(), body.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]interface{}{
		"amount": normalized,
		"quote":  view.Quote(quote),
	})
}

// ValidateField handles POST /api/draft/validate
func (h *Handler) ValidateField(w nethttp.ResponseWriter, r *nethttp.Request) {
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, nethttp.StatusBadRequest, errorBody("malformed JSON body"))
		return
	}
	msg := h.Session.ValidateField(domain.Field(body.Field), body.Value)
	writeJSON(w, nethttp.StatusOK, map[string]interface{}{
		"field":   body.Field,
		"valid":   msg == "",
		"message": msg,
	})
}

// SelectSpeed handles PUT /api/speed
func (h *Handler) SelectSpeed(w nethttp.ResponseWriter, r *nethttp.Request) {
	var body struct {
		Speed string `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, nethttp.StatusBadRequest, errorBody("malformed JSON body"))
		return
	}
	speed, err := domain.ParseDeliverySpeed(body.Speed)
	if err != nil {
		writeJSON(w, nethttp.StatusBadRequest, errorBody(err.Error()))
		return
	}
	quote, err := h.Session.SelectSpeed(r.Context(), speed)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, view.Quote(quote))
}

// SubmitDraft handles POST /api/transfer/submit
func (h *Handler) SubmitDraft(w nethttp.ResponseWriter, r *nethttp.Request) {
	fields, ok := h.decode(w, r)
	if !ok {
		return
	}
	confirmation, err := h.Session.SubmitDraft(r.Context(), view.DraftFromMap(fields))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, view.Confirmation(confirmation))
}

// CancelConfirmation handles POST /api/transfer/cancel
func (h *Handler) CancelConfirmation(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := h.Session.CancelConfirmation(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(nethttp.StatusNoContent)
}

// ConfirmAndProcess handles POST /api/transfer/confirm. It responds once
// settlement completes.
func (h *Handler) ConfirmAndProcess(w nethttp.ResponseWriter, r *nethttp.Request) {
	future, err := h.Session.ConfirmAndProcess(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	record, err := future.Await(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, view.Record(record))
}

// ResetSession handles POST /api/transfer/reset
func (h *Handler) ResetSession(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := h.Session.ResetSession(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(nethttp.StatusNoContent)
}

// ProbeBankCapability handles GET /api/banks/{routing}/capability
func (h *Handler) ProbeBankCapability(w nethttp.ResponseWriter, r *nethttp.Request) {
	routing := mux.Vars(r)["routing"]
	supported, err := h.Session.ProbeBankCapability(r.Context(), routing).Await(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]interface{}{
		"routing":          routing,
		"supports_instant": supported,
	})
}

func (h *Handler) decode(w nethttp.ResponseWriter, r *nethttp.Request) (map[string]interface{}, bool) {
	fields := map[string]interface{}{}
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeJSON(w, nethttp.StatusBadRequest, errorBody("malformed JSON body"))
		return nil, false
	}
	return fields, true
}

// writeError converts domain errors to HTTP responses
func (h *Handler) writeError(w nethttp.ResponseWriter, err error) {
	var verrs domain.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		fieldErrs := make(map[string]string, len(verrs))
		for field, msg := range verrs {
			fieldErrs[string(field)] = msg
		}
		writeJSON(w, nethttp.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"errors": fieldErrs,
		})
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, nethttp.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, domain.ErrSettlementFailed):
		body := errorBody("We're unable to process your payment right now. Please try again.")
		body["retry"] = true
		writeJSON(w, nethttp.StatusBadGateway, body)
	case errors.Is(err, probe.ErrLookupUnavailable), errors.Is(err, probe.ErrLookupFailed):
		writeJSON(w, nethttp.StatusServiceUnavailable, errorBody(err.Error()))
	case errors.Is(err, domain.ErrStaleCompletion):
		writeJSON(w, nethttp.StatusConflict, errorBody(err.Error()))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeJSON(w, nethttp.StatusGatewayTimeout, errorBody(err.Error()))
	default:
		h.Logger.Error("unexpected handler error", zap.Error(err))
		writeJSON(w, nethttp.StatusInternalServerError, errorBody("internal error"))
	}
}

func errorBody(msg string) map[string]interface{} {
	return map[string]interface{}{"error": msg}
}
