package monitoring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
)

const defaultProbeTimeout = 2 * time.Second

// ProbeStatus encodes the outcome of a readiness probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component  string      `json:"component"`
	Status     ProbeStatus `json:"status"`
	Details    string      `json:"details,omitempty"`
	DurationMS float64     `json:"duration_ms"`
}

// Report aggregates probe results.
type Report struct {
	Status ProbeStatus   `json:"status"`
	Checks []ProbeResult `json:"checks"`
}

// Ready reports whether every probe is up.
func (r Report) Ready() bool {
	return r.Status == StatusUp
}

// Probe returns nil when the dependency is usable.
type Probe func(ctx context.Context) error

type check struct {
	name  string
	probe Probe
}

// Readiness runs dependency probes for the readiness endpoint. Liveness stays
// on /health and never touches dependencies.
type Readiness struct {
	mu      sync.RWMutex
	checks  []check
	timeout time.Duration
}

// NewReadiness builds an empty registry. timeout bounds each probe.
func NewReadiness(timeout time.Duration) *Readiness {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &Readiness{timeout: timeout}
}

// Register appends a named probe. Blank names and nil probes are ignored.
func (r *Readiness) Register(name string, probe Probe) {
	if name == "" || probe == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checks = append(r.checks, check{name: name, probe: probe})
}

// Evaluate runs every probe in registration order.
func (r *Readiness) Evaluate(ctx context.Context) Report {
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.RLock()
	checks := append([]check(nil), r.checks...)
	r.mu.RUnlock()

	report := Report{Status: StatusUp, Checks: make([]ProbeResult, 0, len(checks))}
	for _, c := range checks {
		result := r.run(ctx, c)
		report.Checks = append(report.Checks, result)

		switch result.Status {
		case StatusDown:
			report.Status = StatusDown
		case StatusDegraded:
			if report.Status != StatusDown {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

func (r *Readiness) run(ctx context.Context, c check) (result ProbeResult) {
	probeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = resultFromError(c.name, fmt.Errorf("panic: %v", rec))
		}
		result.DurationMS = float64(time.Since(start).Microseconds()) / 1000
	}()

	return resultFromError(c.name, c.probe(probeCtx))
}

// resultFromError maps timeouts to degraded and any other failure to down.
func resultFromError(component string, err error) ProbeResult {
	if err == nil {
		return ProbeResult{Component: component, Status: StatusUp}
	}

	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}
	return ProbeResult{Component: component, Status: status, Details: err.Error()}
}

// DatabaseProbe pings the connection pool behind db.
func DatabaseProbe(db *gorm.DB) Probe {
	return func(ctx context.Context) error {
		if db == nil {
			return errors.New("database not configured")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
