package metrics

import "github.com/prometheus/client_golang/prometheus"

// AppointmentMetrics exposes counters for the appointment CRUD flows.
type AppointmentMetrics struct {
	createdTotal prometheus.Counter
	updatesTotal *prometheus.CounterVec
}

func NewAppointmentMetrics(reg prometheus.Registerer) *AppointmentMetrics {
	m := &AppointmentMetrics{
		createdTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "apptline",
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Total appointments created",
		}),
		updatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apptline",
			Subsystem: "appointments",
			Name:      "updates_total",
			Help:      "Total appointment updates by action",
		}, []string{"action"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.createdTotal, m.updatesTotal)
	return m
}

func (m *AppointmentMetrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.createdTotal.Inc()
}

func (m *AppointmentMetrics) ObserveUpdate(action string) {
	if m == nil {
		return
	}
	m.updatesTotal.WithLabelValues(action).Inc()
}

// CallMetrics exposes counters for the mock-call dialogue flow.
type CallMetrics struct {
	sessionsTotal prometheus.Counter
	turnsTotal    *prometheus.CounterVec
}

func NewCallMetrics(reg prometheus.Registerer) *CallMetrics {
	m := &CallMetrics{
		sessionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "apptline",
			Subsystem: "calls",
			Name:      "sessions_total",
			Help:      "Total mock call sessions opened",
		}),
		turnsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "apptline",
			Subsystem: "calls",
			Name:      "turns_total",
			Help:      "Total dialogue turns by resolved intent",
		}, []string{"intent"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsTotal, m.turnsTotal)
	return m
}

func (m *CallMetrics) ObserveSession() {
	if m == nil {
		return
	}
	m.sessionsTotal.Inc()
}

func (m *CallMetrics) ObserveTurn(intent string) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(intent).Inc()
}
