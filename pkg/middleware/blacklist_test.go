package middleware

import (
	"testing"
	"time"
)

func TestMemoryBlacklist(t *testing.T) {
	bl := NewMemoryBlacklist(BlacklistConfig{CleanupInterval: time.Hour})
	defer bl.Close()

	t.Run("unknown jti is not revoked", func(t *testing.T) {
		if bl.IsRevoked("unknown") {
			t.Error("expected unknown jti to not be revoked")
		}
	})

	t.Run("revoked jti is rejected until expiry", func(t *testing.T) {
		bl.Revoke("jti-a", time.Now().Add(time.Hour))
		if !bl.IsRevoked("jti-a") {
			t.Error("expected jti-a to be revoked")
		}
	})

	t.Run("expired entries are treated as valid again", func(t *testing.T) {
		bl.Revoke("jti-b", time.Now().Add(-time.Second))
		if bl.IsRevoked("jti-b") {
			t.Error("expected expired revocation to no longer apply")
		}
	})

	t.Run("empty jti is ignored", func(t *testing.T) {
		bl.Revoke("", time.Now().Add(time.Hour))
		if bl.IsRevoked("") {
			t.Error("expected empty jti to never be revoked")
		}
	})
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		RequestsPerSecond: 1,
		BurstSize:         2,
		CleanupInterval:   time.Hour,
		EntryTTL:          time.Hour,
	})
	defer rl.Close()

	if !rl.Allow("1.2.3.4") {
		t.Error("expected first request to be allowed")
	}
	if !rl.Allow("1.2.3.4") {
		t.Error("expected second request within burst to be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("expected request over burst to be rejected")
	}

	// Other clients have their own bucket
	if !rl.Allow("5.6.7.8") {
		t.Error("expected different client to be allowed")
	}

	allowed, rejected := rl.Stats()
	if allowed != 3 || rejected != 1 {
		t.Errorf("expected stats (3,1), got (%d,%d)", allowed, rejected)
	}
}
