package session

import (
	"encoding/json"
	"net/http"

	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/pkg/logging"
)

// Handler serves the session's in-memory appointment list.
type Handler struct {
	list   *List
	logger *logging.Logger
}

// NewHandler creates a new session handler
func NewHandler(list *List, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{list: list, logger: logger}
}

// ListResponse is the session view of the appointment collection. Error is
// set when the last fetch failed; the client offers a manual retry against
// the refresh endpoint.
type ListResponse struct {
	Appointments []appointments.Appointment `json:"appointments"`
	Loaded       bool                       `json:"loaded"`
	Error        string                     `json:"error,omitempty"`
}

// Get handles GET /session/appointments
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	appts, loaded, lastErr := h.list.Snapshot()
	resp := ListResponse{Appointments: appts, Loaded: loaded}
	if lastErr != nil {
		resp.Error = lastErr.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Refresh handles POST /session/refresh, the manual retry of the fetch-all.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.list.Load(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.Get(w, r)
}
