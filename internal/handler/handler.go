// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Shivanand-hulikatti/event-registration/internal/apperr"
	"github.com/Shivanand-hulikatti/event-registration/internal/model"
	"github.com/Shivanand-hulikatti/event-registration/internal/service"
	"github.com/go-chi/chi/v5"
)

// ConfirmationMessage is returned with every accepted registration.
const ConfirmationMessage = "Thank you for registering for the event."

// EventHandler holds all HTTP handlers for the registration API.
type EventHandler struct {
	events    *service.EventService
	admission *service.Admission
	reports   *service.Reporter
	log       *slog.Logger
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(
	events *service.EventService,
	admission *service.Admission,
	reports *service.Reporter,
	log *slog.Logger,
) *EventHandler {
	return &EventHandler{events: events, admission: admission, reports: reports, log: log}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code apperr.Code, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg, Code: string(code)})
}

func statusFor(code apperr.Code) int {
	switch code {
	case apperr.CodeValidation:
		return http.StatusBadRequest
	case apperr.CodeUnknownEvent:
		return http.StatusNotFound
	case apperr.CodeEventFull:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeAppError renders err as a rejection. Codes a registrant should not see
// are logged and reported as a bare internal error.
func (h *EventHandler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.CodeOf(err)
	if !code.UserVisible() {
		h.log.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, http.StatusInternalServerError, apperr.CodeInternal, "internal server error")
		return
	}

	var appErr *apperr.Error
	errors.As(err, &appErr)
	writeJSON(w, statusFor(code), model.ErrorResponse{
		Error:  appErr.Message,
		Code:   string(code),
		Fields: appErr.Fields,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation(model.FieldError{Field: "body", Reason: err.Error()})
	}
	return nil
}

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeAppError(w, r, err)
		return
	}

	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, event)
}

// ListEvents handles GET /events
// Returns the enabled events the registration form offers.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.events.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, event)
}

// Submit handles POST /registrations, the form submission carrying the
// event id in the body.
func (h *EventHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	h.register(w, r, req)
}

// Register handles POST /events/{id}/register
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeAppError(w, r, err)
		return
	}
	req.EventID = chi.URLParam(r, "id")
	h.register(w, r, req)
}

func (h *EventHandler) register(w http.ResponseWriter, r *http.Request, req model.RegisterRequest) {
	reg, err := h.admission.Register(r.Context(), req)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.RegisterResponse{
		Message:      ConfirmationMessage,
		Registration: *reg,
	})
}

// Report handles GET /events/{id}/report
func (h *EventHandler) Report(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rep)
}

// ReportAll handles GET /reports
func (h *EventHandler) ReportAll(w http.ResponseWriter, r *http.Request) {
	reps, err := h.reports.ReportAll(r.Context())
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reps)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
