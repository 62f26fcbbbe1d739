package call

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/pkg/logging"
)

// Handler exposes the mock call dialogue over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new call handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// SessionResponse is returned by every dialogue endpoint that advances the
// conversation.
type SessionResponse struct {
	SessionID   string                   `json:"session_id"`
	State       State                    `json:"state"`
	Reply       Turn                     `json:"reply"`
	Appointment appointments.Appointment `json:"appointment"`
}

// Open handles POST /appointments/{id}/call
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	appointmentID := chi.URLParam(r, "id")
	sessionID, greeting, err := h.service.Open(r.Context(), appointmentID)
	if err != nil {
		if errors.Is(err, appointments.ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to open call session", "error", err, "appointment_id", appointmentID)
		http.Error(w, "failed to open call session", http.StatusBadGateway)
		return
	}
	h.respond(w, http.StatusCreated, sessionID, greeting)
}

// MessageRequest carries one free-text user turn.
type MessageRequest struct {
	Text string `json:"text"`
}

// Message handles POST /calls/{sessionID}/messages
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}

	reply, _, err := h.service.HandleInput(r.Context(), sessionID, req.Text)
	if err != nil {
		h.sessionError(w, sessionID, err)
		return
	}
	h.respond(w, http.StatusOK, sessionID, reply)
}

// RescheduleRequest carries the follow-up date and time for a reschedule
// that arrived without them.
type RescheduleRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Reschedule handles POST /calls/{sessionID}/reschedule
func (h *Handler) Reschedule(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Date == "" || req.Time == "" {
		http.Error(w, "date and time are required", http.StatusBadRequest)
		return
	}

	reply, _, err := h.service.SubmitReschedule(r.Context(), sessionID, req.Date, req.Time)
	if err != nil {
		h.sessionError(w, sessionID, err)
		return
	}
	h.respond(w, http.StatusOK, sessionID, reply)
}

// TranscriptResponse is the full dialogue history for a session.
type TranscriptResponse struct {
	SessionID string `json:"session_id"`
	State     State  `json:"state"`
	Turns     []Turn `json:"turns"`
}

// Transcript handles GET /calls/{sessionID}/transcript
func (h *Handler) Transcript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	turns, err := h.service.Transcript(r.Context(), sessionID)
	if err != nil {
		h.sessionError(w, sessionID, err)
		return
	}
	state, err := h.service.State(sessionID)
	if err != nil {
		h.sessionError(w, sessionID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(TranscriptResponse{
		SessionID: sessionID,
		State:     state,
		Turns:     turns,
	})
}

func (h *Handler) respond(w http.ResponseWriter, status int, sessionID string, reply Turn) {
	state, err := h.service.State(sessionID)
	if err != nil {
		h.sessionError(w, sessionID, err)
		return
	}
	appt, err := h.service.Appointment(sessionID)
	if err != nil {
		h.sessionError(w, sessionID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(SessionResponse{
		SessionID:   sessionID,
		State:       state,
		Reply:       reply,
		Appointment: appt,
	})
}

func (h *Handler) sessionError(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, ErrSessionNotFound) {
		http.Error(w, "call session not found", http.StatusNotFound)
		return
	}
	h.logger.Error("call session request failed", "error", err, "session_id", sessionID)
	http.Error(w, err.Error(), http.StatusBadRequest)
}
