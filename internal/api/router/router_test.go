package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/internal/call"
	"github.com/wolfman30/apptline/internal/observability/metrics"
	"github.com/wolfman30/apptline/internal/session"
	"github.com/wolfman30/apptline/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.Default()
	repo := appointments.NewInMemoryRepository()
	reg := prometheus.NewRegistry()

	list := session.NewList(repo, logger)
	apptHandler := appointments.NewHandler(repo, list, metrics.NewAppointmentMetrics(reg), logger)

	callSvc := call.NewService(repo, call.NewMemoryTranscriptStore(), func(appt appointments.Appointment, action string) {
		list.ReplaceByID(appt)
	}, metrics.NewCallMetrics(reg), logger)

	return New(&Config{
		Logger:              logger,
		AppointmentsHandler: apptHandler,
		CallHandler:         call.NewHandler(callSvc, logger),
		SessionHandler:      session.NewHandler(list, logger),
		MetricsHandler:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  []string{"http://localhost:3000"},
	})
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestRouter(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestRouter(t)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
}

func TestFullAppointmentFlow(t *testing.T) {
	srv := newTestRouter(t)

	// Create.
	create := appointments.CreateAppointmentRequest{
		Title:     "Dental checkup",
		Date:      time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		StartTime: "13:00",
		EndTime:   "13:30",
		Color:     "#4F46E5",
	}
	body, err := json.Marshal(create)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body)))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created appointments.Appointment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, appointments.StatusPending, created.Status)

	// The handler appended the new record to the session list.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session/appointments", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var listResp session.ListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listResp))
	require.Len(t, listResp.Appointments, 1)

	// Open a call and confirm the appointment.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/appointments/%s/call", created.ID), nil))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var opened call.SessionResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&opened))

	msg, err := json.Marshal(call.MessageRequest{Text: "confirm"})
	require.NoError(t, err)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, fmt.Sprintf("/calls/%s/messages", opened.SessionID), bytes.NewReader(msg)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Confirmation propagated through the update callback into the list.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/session/appointments", nil))
	require.NoError(t, json.NewDecoder(w.Body).Decode(&listResp))
	require.Len(t, listResp.Appointments, 1)
	require.Equal(t, appointments.StatusConfirmed, listResp.Appointments[0].Status)

	// And the store agrees.
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/appointments/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var fetched appointments.Appointment
	require.NoError(t, json.NewDecoder(w.Body).Decode(&fetched))
	require.Equal(t, appointments.StatusConfirmed, fetched.Status)
}

func TestValidationErrorsReportedTogether(t *testing.T) {
	srv := newTestRouter(t)

	body := []byte(`{"title":"","date":"bad","start_time":"","end_time":"","phone_number":"555"}`)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(body)))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Contains(t, resp.Errors, "title")
	require.Contains(t, resp.Errors, "date")
	require.Contains(t, resp.Errors, "start_time")
	require.Contains(t, resp.Errors, "end_time")
	require.Contains(t, resp.Errors, "phone_number")
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/appointments", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	require.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
