package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualClock_StartsAtEpoch(t *testing.T) {
	c := NewManualClock(time.Time{})
	assert.Equal(t, Epoch, c.Now())
}

func TestManualClock_Advance(t *testing.T) {
	c := NewManualClock(time.Time{})

	got := c.Advance(90 * time.Second)

	assert.Equal(t, Epoch.Add(90*time.Second), got)
	assert.Equal(t, got, c.Now())
}

func TestManualClock_SetNormalizesToUTC(t *testing.T) {
	c := NewManualClock(time.Time{})
	tokyo := time.FixedZone("JST", 9*60*60)

	c.Set(time.Date(2024, 5, 1, 18, 0, 0, 0, tokyo))

	assert.Equal(t, time.UTC, c.Now().Location())
	assert.Equal(t, 9, c.Now().Hour())
}

func TestManualClock_ThreadSafe(t *testing.T) {
	c := NewManualClock(time.Time{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Advance(time.Second)
				_ = c.Now()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, Epoch.Add(1000*time.Second), c.Now())
}
