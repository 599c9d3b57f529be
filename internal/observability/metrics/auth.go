package metrics

import (
	"time"

	domainauth "github.com/zephir/path-explorer/internal/domain/auth"
	apperrors "github.com/zephir/path-explorer/internal/errors"
	"github.com/zephir/path-explorer/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Metric names.
const (
	GuardDecision    = "guard.decision"
	LoginAttempt     = "auth.login"
	LoginDuration    = "auth.login.duration"
	Logout           = "auth.logout"
	DashboardSection = "dashboard.section.degraded"
)

// EmitGuardDecision counts one access guard decision.
func EmitGuardDecision(sink statsd.Sink, zone domainauth.Zone, status domainauth.SessionStatus, action domainauth.Action) {
	if sink == nil {
		return
	}
	sink.Count(GuardDecision, 1, map[string]string{
		"zone":    string(zone),
		"session": string(status),
		"action":  action.Name(),
	})
}

// LoginMetric captures the outcome of one login attempt.
type LoginMetric struct {
	Role     domainauth.Role
	Duration time.Duration
	Err      error
}

// EmitLogin counts a login attempt and records its latency.
func EmitLogin(sink statsd.Sink, in LoginMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": ResultSuccess}
	if in.Err != nil {
		tags["result"] = ResultError
		code := string(apperrors.GetCode(in.Err))
		if code == "" {
			code = string(apperrors.ErrCodeInternal)
		}
		tags["error_code"] = code
	} else if in.Role != "" {
		tags["role"] = string(in.Role)
	}

	sink.Count(LoginAttempt, 1, tags)
	if in.Duration > 0 {
		sink.Timing(LoginDuration, in.Duration, CloneTags(tags))
	}
}

// EmitLogout counts a logout.
func EmitLogout(sink statsd.Sink, authenticated bool) {
	if sink == nil {
		return
	}
	sink.Count(Logout, 1, map[string]string{"authenticated": boolTag(authenticated)})
}

// EmitDegradedSections counts dashboard sections that fell back to empty data.
func EmitDegradedSections(sink statsd.Sink, sections []string) {
	if sink == nil {
		return
	}
	for _, s := range sections {
		sink.Count(DashboardSection, 1, map[string]string{"section": s})
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

func boolTag(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
