package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/tailor-field/configurator/internal/domain"
)

const defaultProbeTimeout = 1500 * time.Millisecond

// DependencyProbe checks one backing service (Firestore, Pub/Sub) during readiness.
type DependencyProbe struct {
	Name    string
	Timeout time.Duration
	Probe   func(context.Context) error
}

type probeHealthRepository struct {
	probes  []DependencyProbe
	timeout time.Duration
	now     func() time.Time
}

var _ HealthRepository = (*probeHealthRepository)(nil)

// NewProbeHealthRepository validates probes and returns a HealthRepository running them concurrently.
// A nil clock uses time.Now.
func NewProbeHealthRepository(probes []DependencyProbe, clock func() time.Time) (HealthRepository, error) {
	if len(probes) == 0 {
		return nil, errors.New("health repository: at least one probe is required")
	}
	for _, probe := range probes {
		if strings.TrimSpace(probe.Name) == "" {
			return nil, errors.New("health repository: probe name is required")
		}
		if probe.Probe == nil {
			return nil, fmt.Errorf("health repository: probe %s has no check function", probe.Name)
		}
	}
	if clock == nil {
		clock = time.Now
	}
	return &probeHealthRepository{
		probes:  append([]DependencyProbe(nil), probes...),
		timeout: defaultProbeTimeout,
		now:     clock,
	}, nil
}

func (r *probeHealthRepository) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	if ctx == nil {
		return domain.SystemHealthReport{}, errors.New("health repository: context is required")
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[string]domain.DependencyHealth, len(r.probes))
	)
	for _, probe := range r.probes {
		wg.Add(1)
		go func(probe DependencyProbe) {
			defer wg.Done()
			result := r.run(ctx, probe)
			mu.Lock()
			results[probe.Name] = result
			mu.Unlock()
		}(probe)
	}
	wg.Wait()

	status := domain.HealthStatusOK
	for _, result := range results {
		switch result.Status {
		case domain.HealthStatusError:
			status = domain.HealthStatusError
		case domain.HealthStatusDegraded:
			if status == domain.HealthStatusOK {
				status = domain.HealthStatusDegraded
			}
		}
	}

	return domain.SystemHealthReport{
		Status:      status,
		Checks:      results,
		GeneratedAt: r.now(),
	}, nil
}

func (r *probeHealthRepository) run(ctx context.Context, probe DependencyProbe) domain.DependencyHealth {
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = r.timeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := r.now()
	err := probe.Probe(probeCtx)
	end := r.now()

	result := domain.DependencyHealth{
		Status:    domain.HealthStatusOK,
		Detail:    "ok",
		Latency:   end.Sub(start),
		CheckedAt: end,
	}
	switch {
	case err == nil && probeCtx.Err() != nil:
		result.Status = domain.HealthStatusError
		result.Detail = probeCtx.Err().Error()
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result.Status = domain.HealthStatusError
		result.Detail = "timeout"
	default:
		result.Status = domain.HealthStatusDegraded
		result.Detail = err.Error()
	}
	return result
}
