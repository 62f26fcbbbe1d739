package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wolfman30/apptline/internal/appointments"
	"github.com/wolfman30/apptline/pkg/logging"
)

func TestGetReportsErrorState(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("store unavailable")}
	list := NewList(fetcher, logging.Default())
	_ = list.Load(context.Background())
	handler := NewHandler(list, logging.Default())

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/session/appointments", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Loaded {
		t.Error("expected loaded=false after a failed initial load")
	}
	if resp.Error != "store unavailable" {
		t.Errorf("expected error in response, got %q", resp.Error)
	}
}

func TestRefreshRetriesLoad(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("store unavailable")}
	list := NewList(fetcher, logging.Default())
	_ = list.Load(context.Background())
	handler := NewHandler(list, logging.Default())

	w := httptest.NewRecorder()
	handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/session/refresh", nil))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 while the store is down, got %d", w.Code)
	}

	fetcher.err = nil
	fetcher.rows = []*appointments.Appointment{makeAppointment("a-1", "Dental checkup")}

	w = httptest.NewRecorder()
	handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/session/refresh", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after recovery, got %d", w.Code)
	}
	var resp ListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Loaded || resp.Error != "" {
		t.Errorf("expected clean loaded state, got loaded=%v error=%q", resp.Loaded, resp.Error)
	}
	if len(resp.Appointments) != 1 {
		t.Errorf("expected 1 appointment, got %d", len(resp.Appointments))
	}
}
