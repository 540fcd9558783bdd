package usecase

import (
	"context"
	"time"
)

// HealthProbe reports whether a dependency is reachable.
type HealthProbe func(ctx context.Context) error

type HealthUsecase interface {
	// Check runs every probe and reports "ok" or "unavailable" per dependency.
	// healthy is false when any probe marked required failed.
	Check(ctx context.Context) (status map[string]string, healthy bool)
}

type healthUsecase struct {
	required map[string]HealthProbe
	optional map[string]HealthProbe
}

// NewHealthUsecase builds a checker. Optional probes (e.g. the rate limiter's
// Redis) are reported but do not fail the check.
func NewHealthUsecase(required, optional map[string]HealthProbe) HealthUsecase {
	return &healthUsecase{required: required, optional: optional}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	healthy := true
	for name, probe := range u.required {
		if err := probe(ctx); err != nil {
			status[name] = "unavailable"
			healthy = false
			continue
		}
		status[name] = "ok"
	}
	for name, probe := range u.optional {
		if err := probe(ctx); err != nil {
			status[name] = "unavailable"
			continue
		}
		status[name] = "ok"
	}
	if !healthy {
		status["status"] = "degraded"
	}
	return status, healthy
}
