package memory

import (
	"testing"
	"time"

	"rich-text-bridge/pkg/policy"

	"github.com/stretchr/testify/assert"
)

func TestPolicyCache(t *testing.T) {
	c := NewPolicyCache(time.Minute)
	cfg := policy.MockFieldConfig(nil, nil)
	key := cfg.Fingerprint()

	_, found := c.Get(key)
	assert.False(t, found)

	c.Save(key, policy.Parse(cfg))
	got, found := c.Get(key)
	assert.True(t, found)
	assert.Equal(t, policy.Parse(cfg), got)
	assert.Equal(t, 1, c.Len())

	c.Delete(key)
	_, found = c.Get(key)
	assert.False(t, found)
}

func TestPolicyCache_Expiry(t *testing.T) {
	c := NewPolicyCache(20 * time.Millisecond)
	c.Save("k", policy.Default())

	time.Sleep(40 * time.Millisecond)
	_, found := c.Get("k")
	assert.False(t, found)
}
