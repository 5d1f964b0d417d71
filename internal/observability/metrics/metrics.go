// Package metrics emits the engine's standard counters through a statsd.Sink.
package metrics

import (
	"maps"
	"strconv"
	"time"

	apperrors "github.com/placementhub/placement-engine/internal/errors"
	obserrors "github.com/placementhub/placement-engine/internal/observability/errors"
	"github.com/placementhub/placement-engine/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultRefused = "refused"
)

// Machine names used in the "machine" tag.
const (
	MachineVerification = "verification"
	MachineJobPosting   = "job_posting"
	MachineApplication  = "application"
)

// TransitionMetric describes one attempted state-machine transition.
type TransitionMetric struct {
	Machine  string
	To       string
	Duration time.Duration
	Err      error
}

// EmitTransition counts a transition attempt. Domain refusals (AppErrors
// other than internal or dependency failures) are tagged as refused.
func EmitTransition(sink statsd.Sink, in TransitionMetric) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"machine": in.Machine,
		"to":      in.To,
		"result":  resultFor(in.Err),
	}
	if in.Err != nil {
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Count("transition", 1, tags)
	if in.Duration > 0 {
		sink.Timing("transition.duration", in.Duration, CloneTags(tags))
	}
}

// EmitNotification counts a notification enqueue attempt.
func EmitNotification(sink statsd.Sink, kind string, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"kind": kind, "result": ResultSuccess}
	if err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(err)
	}
	sink.Count("notification.enqueue", 1, tags)
}

// EmitResolve counts an identity resolution.
func EmitResolve(sink statsd.Sink, cached bool, err error) {
	if sink == nil {
		return
	}
	tags := map[string]string{"result": ResultSuccess, "cache": "miss"}
	if cached {
		tags["cache"] = "hit"
	}
	if err != nil {
		tags["result"] = resultFor(err)
		tags["error_class"] = obserrors.Classify(err)
	}
	sink.Count("identity.resolve", 1, tags)
}

// HTTPRequestMetric describes one served request. Route is the mux pattern, not the raw path.
type HTTPRequestMetric struct {
	Method   string
	Route    string
	Status   int
	Duration time.Duration
}

// EmitHTTPRequest counts a served request and records its latency.
func EmitHTTPRequest(sink statsd.Sink, in HTTPRequestMetric) {
	if sink == nil {
		return
	}
	route := in.Route
	if route == "" {
		route = "unmatched"
	}
	sink.Count("http.request", 1, map[string]string{
		"method": in.Method,
		"route":  route,
		"status": strconv.Itoa(in.Status),
	})
	sink.Timing("http.request.duration", in.Duration, map[string]string{"method": in.Method, "route": route})
}

func resultFor(err error) string {
	switch obserrors.Classify(err) {
	case "":
		return ResultSuccess
	case "internal", "dependency_unavailable", "timeout", "canceled":
		return ResultError
	}
	if apperrors.IsAppError(err) {
		return ResultRefused
	}
	return ResultError
}

// CloneTags creates a shallow copy of a tag map, filtering out empty keys.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		if k != "" {
			out[k] = v
		}
	}
	return out
}

// Multi fans every metric out to several sinks.
type Multi []statsd.Sink

var _ statsd.Sink = Multi(nil)

// Count implements statsd.Sink.
func (m Multi) Count(name string, value int64, tags map[string]string) {
	for _, s := range m {
		if s != nil {
			s.Count(name, value, maps.Clone(tags))
		}
	}
}

// Gauge implements statsd.Sink.
func (m Multi) Gauge(name string, value float64, tags map[string]string) {
	for _, s := range m {
		if s != nil {
			s.Gauge(name, value, maps.Clone(tags))
		}
	}
}

// Timing implements statsd.Sink.
func (m Multi) Timing(name string, value time.Duration, tags map[string]string) {
	for _, s := range m {
		if s != nil {
			s.Timing(name, value, maps.Clone(tags))
		}
	}
}
