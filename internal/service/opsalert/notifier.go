// Package opsalert fans operational failures out to on-call sinks.
package opsalert

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/placementhub/placement-engine/internal/observability/notify"
)

// DefaultQuietPeriod suppresses repeats of one dedup key.
const DefaultQuietPeriod = time.Minute

const sendTimeout = 15 * time.Second

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the ops alert notifier.
type Options struct {
	Logger      *slog.Logger
	Sinks       []SinkRegistration
	QuietPeriod time.Duration
}

// Service dispatches alerts to all registered sinks in the background.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
	quiet  time.Duration
	now    func() time.Time

	mu       sync.Mutex
	lastSent map[string]time.Time
	wg       sync.WaitGroup
}

// NewService constructs an ops alert notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	quiet := opts.QuietPeriod
	if quiet == 0 {
		quiet = DefaultQuietPeriod
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		if entry.Name == "" {
			entry.Name = "sink"
		}
		sinks = append(sinks, entry)
	}

	return &Service{
		logger:   logger.With("component", "opsalert"),
		sinks:    sinks,
		quiet:    quiet,
		now:      time.Now,
		lastSent: make(map[string]time.Time),
	}
}

// Alert fans the alert out to every sink without blocking the caller.
// Repeats of the same dedup key inside the quiet period are dropped.
func (s *Service) Alert(ctx context.Context, alert notify.Alert) {
	if len(s.sinks) == 0 {
		return
	}
	if alert.Severity == "" {
		alert.Severity = notify.SeverityCritical
	}
	if alert.OccurredAt.IsZero() {
		alert.OccurredAt = s.now()
	}
	if s.suppressed(alert.DedupKey(), alert.OccurredAt) {
		s.logger.DebugContext(ctx, "ops alert suppressed", "dedup_key", alert.DedupKey())
		return
	}

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	var batch sync.WaitGroup
	for _, entry := range s.sinks {
		batch.Add(1)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer batch.Done()
			if err := entry.Sink.SendAlert(sendCtx, alert); err != nil {
				s.logger.Error("ops alert delivery error",
					"sink", entry.Name,
					"component", alert.Component,
					"operation", alert.Operation,
					"error", err,
				)
			}
		}()
	}
	go func() {
		batch.Wait()
		cancel()
	}()
}

// Wait blocks until in-flight deliveries finish.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return len(s.sinks) > 0
}

func (s *Service) suppressed(key string, at time.Time) bool {
	if s.quiet < 0 {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastSent[key]; ok && at.Sub(last) < s.quiet {
		return true
	}
	s.lastSent[key] = at
	return false
}
