package ports_test

import (
	"testing"

	mocks "github.com/placementhub/placement-engine/internal/mocks/auth"
	"github.com/placementhub/placement-engine/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.CredentialVerifier = (*mocks.StaticVerifier)(nil)
	var _ ports.TokenRevocations = (*mocks.MemoryRevocations)(nil)
	var _ ports.ActorCache = (*mocks.MemoryActorCache)(nil)
	var _ ports.RoleMapper = (*mocks.StaticRoleMapper)(nil)
	var _ ports.NotificationPublisher = (*mocks.RecordingPublisher)(nil)
}
