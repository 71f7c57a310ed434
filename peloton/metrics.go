package peloton

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Login outcomes recorded by peloton_logins_total.
const (
	loginOutcomeSuccess  = "success"
	loginOutcomeRejected = "rejected"
	loginOutcomeInvalid  = "invalid_response"
	loginOutcomeError    = "error"
)

// metrics holds the client's Prometheus collectors. A nil *metrics records nothing.
type metrics struct {
	logins   *prometheus.CounterVec
	requests *prometheus.CounterVec
	pages    prometheus.Counter
}

func newMetrics(reg prometheus.Registerer, logger zerolog.Logger) *metrics {
	return &metrics{
		logins: register(reg, logger, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peloton_logins_total",
			Help: "Total number of login attempts, by outcome.",
		}, []string{"outcome"})),
		requests: register(reg, logger, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "peloton_requests_total",
			Help: "Total number of API requests that received a response, by status code.",
		}, []string{"code"})),
		pages: register(reg, logger, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "peloton_pages_fetched_total",
			Help: "Total number of collection pages fetched.",
		})),
	}
}

// register registers c on reg, returning the collector already registered under the
// same descriptor if there is one. Any other registration failure is logged and leaves c
// counting but unexported.
func register[C prometheus.Collector](reg prometheus.Registerer, logger zerolog.Logger, c C) C {
	err := reg.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing
		}
	}
	logger.Warn().Err(err).Msg("Failed to register Peloton metric")
	return c
}

func (m *metrics) login(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

func (m *metrics) request(code int) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *metrics) page() {
	if m == nil {
		return
	}
	m.pages.Inc()
}
