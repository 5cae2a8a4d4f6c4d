package publisher

import (
	"time"
)

type HealthStatus struct {
	Healthy       bool      `json:"healthy"`
	Broker        string    `json:"broker"`
	NATSConnected bool      `json:"nats_connected"`
	LastPublished time.Time `json:"last_published"`
	Errors        []string  `json:"errors,omitempty"`
}

// Connectivity is implemented by publishers backed by a connection
type Connectivity interface {
	Connected() bool
}

// HealthChecker reports on the event pipeline
type HealthChecker struct {
	conn    Connectivity
	metrics *InMemoryMetrics
}

// NewHealthChecker builds a checker. conn is nil when events only go to the log.
func NewHealthChecker(conn Connectivity, metrics *InMemoryMetrics) *HealthChecker {
	return &HealthChecker{conn: conn, metrics: metrics}
}

func (h *HealthChecker) Check() HealthStatus {
	status := HealthStatus{
		Healthy: true,
		Broker:  "log",
	}

	if h.metrics != nil {
		status.LastPublished = h.metrics.Stats().LastPublished
	}

	if h.conn != nil {
		status.Broker = "nats"
		status.NATSConnected = h.conn.Connected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}
	return status
}
