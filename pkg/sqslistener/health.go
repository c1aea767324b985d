package sqslistener

import "context"

// HealthStatus is the aggregate health of every container in a
// registry, in the same "overall status plus per-check detail" shape
// the teacher's HTTP-facing services use for their own health
// endpoints.
type HealthStatus struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// CheckResult is one container's health: healthy containers are
// StateRunning, anything else (including not-yet-started) counts as
// unhealthy.
type CheckResult struct {
	Status string `json:"status"`
	State  string `json:"state"`
}

// Health reports the aggregate health of every registered container.
// It never makes a network call; a container counts as healthy solely
// based on its lifecycle state, so Health is safe to call from a
// Kubernetes liveness/readiness probe at arbitrary frequency.
func (r *ContainerRegistry) Health(ctx context.Context) HealthStatus {
	checks := make(map[string]CheckResult)
	status := "healthy"

	for _, c := range r.snapshot() {
		state := c.State()
		result := CheckResult{Status: "pass", State: state.String()}
		if state != StateRunning {
			result.Status = "fail"
			status = "unhealthy"
		}
		checks[c.name] = result
	}

	return HealthStatus{Status: status, Checks: checks}
}
