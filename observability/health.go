package observability

import "context"

// HealthStatus is the state of a component.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes one dependency, such as the Redis connection.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// ServiceHealth aggregates component health. The worst component status wins.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// CheckAll builds a ServiceHealth from every checker.
func CheckAll(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	sh := &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
	for _, c := range checkers {
		sh.Add(c.CheckHealth(ctx))
	}
	return sh
}

// Add appends a component result and degrades the overall status.
func (sh *ServiceHealth) Add(h Health) {
	sh.Components = append(sh.Components, h)
	switch h.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}
