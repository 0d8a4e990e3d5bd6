package services_test

import (
	"fmt"
	"testing"
	"time"

	"taskflow/backend/services"

	"github.com/stretchr/testify/assert"
)

func TestBlacklistHonorsExpiry(t *testing.T) {
	b := services.NewTokenBlacklist()

	b.Add("live-token", time.Now().Add(time.Hour))
	b.Add("stale-token", time.Now().Add(-time.Minute))

	assert.True(t, b.IsBlacklisted("live-token"))
	assert.False(t, b.IsBlacklisted("stale-token"), "an entry past its token expiry must not count as revoked")
	assert.False(t, b.IsBlacklisted("never-seen"))
}

func TestBlacklistPrunesExpiredEntries(t *testing.T) {
	b := services.NewTokenBlacklist()

	for i := 0; i < 100; i++ {
		b.Add(fmt.Sprintf("old-%d", i), time.Now().Add(-time.Second))
	}
	// Every stale entry is swept by the next Add, so long-running processes
	// hold at most one token lifetime's worth of revocations.
	b.Add("fresh", time.Now().Add(time.Hour))

	for i := 0; i < 100; i++ {
		assert.False(t, b.IsBlacklisted(fmt.Sprintf("old-%d", i)))
	}
	assert.True(t, b.IsBlacklisted("fresh"))
}
