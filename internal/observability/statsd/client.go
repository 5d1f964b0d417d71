// Package statsd emits DogStatsD-style metrics over UDP.
package statsd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Sink describes the minimal interface required to emit StatsD-style metrics.
type Sink interface {
	Count(name string, value int64, tags map[string]string)
	Gauge(name string, value float64, tags map[string]string)
	Timing(name string, value time.Duration, tags map[string]string)
}

const (
	// maxPacketSize keeps datagrams under a typical 1500 byte MTU.
	maxPacketSize        = 1432
	defaultFlushInterval = 500 * time.Millisecond
	defaultBufferSize    = 1024
)

// Config describes how to connect to a StatsD-compatible sink.
type Config struct {
	Enabled    bool
	Address    string
	Prefix     string
	Logger     *slog.Logger
	GlobalTags map[string]string
	// FlushInterval bounds how long a line waits in a partial packet.
	FlushInterval time.Duration
	// BufferSize is the number of lines queued before new ones are dropped.
	BufferSize int
}

// Client batches metric lines into UDP packets from a background goroutine.
// Emitting never blocks; lines are dropped when the queue is full.
type Client struct {
	prefix     string
	globalTags map[string]string

	logger   *slog.Logger
	conn     net.Conn
	lines    chan string
	interval time.Duration
	dropped  atomic.Int64

	closeOnce sync.Once
	closed    atomic.Bool
	done      chan struct{}
}

var _ Sink = (*Client)(nil)

// NewClient dials the configured StatsD endpoint. A disabled config yields a
// client that discards everything.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client := &Client{
		prefix:     sanitizePrefix(cfg.Prefix),
		globalTags: maps.Clone(cfg.GlobalTags),
		logger:     logger.With("component", "statsd"),
		interval:   cfg.FlushInterval,
		done:       make(chan struct{}),
	}
	if client.interval <= 0 {
		client.interval = defaultFlushInterval
	}

	address := strings.TrimSpace(cfg.Address)
	if !cfg.Enabled || address == "" {
		client.closed.Store(true)
		close(client.done)
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, err := (&net.Dialer{}).DialContext(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("statsd dial %s: %w", address, err)
	}
	client.conn = conn

	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	client.lines = make(chan string, size)
	go client.loop()
	return client, nil
}

// Enabled reports whether the client actively emits metrics.
func (c *Client) Enabled() bool {
	return c != nil && !c.closed.Load()
}

// Dropped returns how many lines were discarded because the queue was full.
func (c *Client) Dropped() int64 {
	if c == nil {
		return 0
	}
	return c.dropped.Load()
}

// Count increments a counter metric.
func (c *Client) Count(name string, value int64, tags map[string]string) {
	c.emit(name, strconv.FormatInt(value, 10)+"|c", tags)
}

// Gauge records the current value for a gauge metric.
func (c *Client) Gauge(name string, value float64, tags map[string]string) {
	c.emit(name, formatFloat(value)+"|g", tags)
}

// Timing records a timing metric in milliseconds.
func (c *Client) Timing(name string, value time.Duration, tags map[string]string) {
	c.emit(name, formatFloat(float64(value)/float64(time.Millisecond))+"|ms", tags)
}

// Close flushes queued lines and releases the UDP connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.lines)
		<-c.done
		err = c.conn.Close()
	})
	return err
}

func (c *Client) emit(name, payload string, tags map[string]string) {
	if !c.Enabled() {
		return
	}
	metric := c.metricName(name)
	if metric == "" {
		return
	}
	line := metric + ":" + payload + formatTags(c.globalTags, tags)

	defer func() {
		// Close may race an in-flight emit; a send on the closed queue is a drop.
		if recover() != nil {
			c.dropped.Add(1)
		}
	}()
	select {
	case c.lines <- line:
	default:
		c.dropped.Add(1)
	}
}

func (c *Client) loop() {
	defer close(c.done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	var packet strings.Builder
	flush := func() {
		if packet.Len() == 0 {
			return
		}
		if _, err := c.conn.Write([]byte(packet.String())); err != nil {
			c.logger.Debug("statsd write failed", "error", err)
		}
		packet.Reset()
	}

	for {
		select {
		case line, ok := <-c.lines:
			if !ok {
				flush()
				return
			}
			if packet.Len() > 0 && packet.Len()+1+len(line) > maxPacketSize {
				flush()
			}
			if packet.Len() > 0 {
				packet.WriteByte('\n')
			}
			packet.WriteString(line)
		case <-ticker.C:
			flush()
		}
	}
}

func (c *Client) metricName(name string) string {
	normalized := normalizeMetricName(name)
	switch {
	case normalized == "":
		return ""
	case c.prefix == "":
		return normalized
	default:
		return c.prefix + "." + normalized
	}
}

func sanitizePrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), ".")
}

var metricNameReplacer = strings.NewReplacer(" ", "_", "/", "_", ":", "_", "|", "_", "@", "_")

func normalizeMetricName(name string) string {
	n := metricNameReplacer.Replace(strings.TrimSpace(name))
	for strings.Contains(n, "..") {
		n = strings.ReplaceAll(n, "..", ".")
	}
	return strings.Trim(n, ".")
}

var tagValueReplacer = strings.NewReplacer(",", "_", "|", "_", "#", "_", "\n", "_")

// formatTags renders tags as a sorted "|#k:v,..." suffix. Entries in local
// override base entries with the same key.
func formatTags(base, local map[string]string) string {
	merged := make(map[string]string, len(base)+len(local))
	for _, src := range []map[string]string{base, local} {
		for k, v := range src {
			key := tagValueReplacer.Replace(strings.TrimSpace(k))
			if key == "" {
				continue
			}
			merged[key] = tagValueReplacer.Replace(strings.TrimSpace(v))
		}
	}
	if len(merged) == 0 {
		return ""
	}

	keys := slices.Sorted(maps.Keys(merged))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ":" + merged[k]
	}
	return "|#" + strings.Join(parts, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
