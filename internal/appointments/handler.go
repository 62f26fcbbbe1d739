package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/apptline/internal/observability/metrics"
	"github.com/wolfman30/apptline/pkg/logging"
)

// Merger receives records the handler has successfully created, so the
// session list can reconcile without re-fetching.
type Merger interface {
	Append(appt *Appointment)
}

// Handler handles HTTP requests for appointments
type Handler struct {
	repo    Repository
	list    Merger
	metrics *metrics.AppointmentMetrics
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(repo Repository, list Merger, m *metrics.AppointmentMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		repo:    repo,
		list:    list,
		metrics: m,
		logger:  logger,
	}
}

// Create handles POST /appointments. All validation failures are reported
// together, field by field; the store is only reached on a clean request.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if verr := req.Validate(time.Now()); verr != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr})
		return
	}

	appt, err := h.repo.Insert(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create appointment", "error", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if h.list != nil {
		h.list.Append(appt)
	}
	h.metrics.ObserveCreated()

	h.logger.Info("appointment created", "id", appt.ID, "title", appt.Title, "date", appt.Date)
	writeJSON(w, http.StatusCreated, appt)
}

// List handles GET /appointments
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.repo.SelectAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to list appointments", http.StatusBadGateway)
		return
	}
	if appts == nil {
		appts = []*Appointment{}
	}
	writeJSON(w, http.StatusOK, appts)
}

// Get handles GET /appointments/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "error", err, "id", id)
		http.Error(w, "failed to load appointment", http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
