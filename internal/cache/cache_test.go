package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestGetRespectsTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := New[string](30*time.Second, WithClock(clock.Now), WithRetention(0))
	defer c.Close()

	c.Set("feed", "bytes")

	v, ok := c.Get("feed")
	assert.True(t, ok)
	assert.Equal(t, "bytes", v)

	clock.Advance(29 * time.Second)
	_, ok = c.Get("feed")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("feed")
	assert.False(t, ok, "entry at exactly the TTL is expired")
}

func TestGetStaleReturnsExpired(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := New[int](time.Minute, WithClock(clock.Now), WithRetention(0))
	defer c.Close()

	_, _, ok := c.GetStale("missing")
	assert.False(t, ok)

	c.Set("alerts", 8)
	clock.Advance(5 * time.Minute)

	_, ok = c.Get("alerts")
	assert.False(t, ok)

	v, age, ok := c.GetStale("alerts")
	assert.True(t, ok)
	assert.Equal(t, 8, v)
	assert.Equal(t, 5*time.Minute, age)
}

func TestRemoveRetired(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	c := New[int](time.Second, WithClock(clock.Now), WithRetention(0))
	c.retention = 10 * time.Second
	defer c.Close()

	c.Set("old", 1)
	clock.Advance(5 * time.Second)
	c.Set("new", 2)
	clock.Advance(6 * time.Second)

	c.removeRetired()

	assert.Equal(t, 1, c.Size())
	_, _, ok := c.GetStale("old")
	assert.False(t, ok)
	_, _, ok = c.GetStale("new")
	assert.True(t, ok)
}

func TestZeroRetentionKeepsEntries(t *testing.T) {
	c := New[int](10*time.Millisecond, WithRetention(0))
	defer c.Close()

	c.Set("feed", 1)
	time.Sleep(150 * time.Millisecond)

	_, ok := c.Get("feed")
	assert.False(t, ok)
	v, _, ok := c.GetStale("feed")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, c.Size())
}

func TestDefaultRetentionSweeps(t *testing.T) {
	c := New[int](10 * time.Millisecond)
	defer c.Close()

	c.Set("feed", 1)
	assert.Eventually(t, func() bool { return c.Size() == 0 },
		time.Second, 20*time.Millisecond)
}
