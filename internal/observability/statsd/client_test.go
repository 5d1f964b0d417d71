package statsd

import (
	"net"
	"strings"
	"testing"
	"time"
)

func TestSanitizePrefix(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"  placement.api  ": "placement.api",
		"..foo..":           "foo",
		".":                 "",
		"":                  "",
	}

	for input, want := range tests {
		if got := sanitizePrefix(input); got != want {
			t.Fatalf("sanitizePrefix(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeMetricName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		" transition/attempt ": "transition_attempt",
		"foo..bar":             "foo.bar",
		"multi  space":         "multi__space",
		"bad:name|c":           "bad_name_c",
		"...":                  "",
	}

	for input, want := range tests {
		if got := normalizeMetricName(input); got != want {
			t.Fatalf("normalizeMetricName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFormatTags(t *testing.T) {
	t.Parallel()

	global := map[string]string{
		"env": "prod",
		//nolint:gocritic // whitespace is part of the test case
		" service ": " placement ",
	}
	local := map[string]string{
		"result":  " refused ",
		"":        "ignored",
		"env":     "stage",
		"machine": "job,posting|x",
	}

	got := formatTags(global, local)
	want := "|#env:stage,machine:job_posting_x,result:refused,service:placement"
	if got != want {
		t.Fatalf("formatTags mismatch\n got: %q\nwant: %q", got, want)
	}
	if got := formatTags(nil, nil); got != "" {
		t.Fatalf("formatTags(nil, nil) = %q, want empty string", got)
	}
}

func TestClientBatchesLinesIntoPackets(t *testing.T) {
	t.Parallel()

	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	client, err := NewClient(Config{
		Enabled:       true,
		Address:       listener.LocalAddr().String(),
		Prefix:        "placement.",
		GlobalTags:    map[string]string{"env": "test"},
		FlushInterval: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if !client.Enabled() {
		t.Fatal("expected client to be enabled")
	}

	client.Count("transitions", 2, map[string]string{"machine": "application"})
	client.Gauge("ws.subscribers", 1.5, nil)
	client.Timing("http.request", 1500*time.Microsecond, nil)

	// Close flushes the partial packet even though the ticker never fired.
	if err := client.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if client.Enabled() {
		t.Fatal("expected client to be disabled after Close")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}

	buf := make([]byte, maxPacketSize)
	if err := listener.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("set deadline: %v", err)
	}
	n, _, err := listener.ReadFrom(buf)
	if err != nil {
		t.Fatalf("read packet: %v", err)
	}

	got := strings.Split(string(buf[:n]), "\n")
	want := []string{
		"placement.transitions:2|c|#env:test,machine:application",
		"placement.ws.subscribers:1.5|g|#env:test",
		"placement.http.request:1.5|ms|#env:test",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("packet mismatch\n got: %q\nwant: %q", got, want)
	}

	// Emitting after Close is a silent no-op.
	client.Count("late", 1, nil)
}

func TestClientDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	listener, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer listener.Close()

	client, err := NewClient(Config{
		Enabled:    true,
		Address:    listener.LocalAddr().String(),
		BufferSize: 1,
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	defer client.Close()

	for range 10_000 {
		client.Count("burst", 1, nil)
	}
	if client.Dropped() == 0 {
		t.Fatal("expected some lines to be dropped with a single-slot queue")
	}
}

func TestNewClientDisabled(t *testing.T) {
	t.Parallel()

	for _, cfg := range []Config{
		{Enabled: true, Address: "   "},
		{Enabled: false, Address: "127.0.0.1:8125"},
	} {
		client, err := NewClient(cfg)
		if err != nil {
			t.Fatalf("NewClient error: %v", err)
		}
		if client.Enabled() {
			t.Fatalf("expected disabled client for %+v", cfg)
		}
		client.Count("ignored", 1, nil)
		if err := client.Close(); err != nil {
			t.Fatalf("Close error: %v", err)
		}
	}

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatal("nil client should report disabled")
	}
	if err := nilClient.Close(); err != nil {
		t.Fatalf("nil client Close error: %v", err)
	}
}

func TestNewClientDialError(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{
		Enabled: true,
		Address: "bad address",
	})
	if err == nil {
		t.Fatal("expected NewClient to error for invalid address")
	}
	if !strings.Contains(err.Error(), "statsd dial") {
		t.Fatalf("unexpected error: %v", err)
	}
}
