package history

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingEvictsOldest(t *testing.T) {
	r := NewRing(3)
	for i := 1; i <= 5; i++ {
		r.Append(Record{NodeCount: i})
	}
	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []int{3, 4, 5}, []int{snap[0].NodeCount, snap[1].NodeCount, snap[2].NodeCount})
	assert.Equal(t, 3, r.Len())
	assert.Equal(t, 3, r.Cap())
}

func TestRingDefaultCapacityAndReset(t *testing.T) {
	r := NewRing(0)
	assert.Equal(t, DefaultCapacity, r.Cap())
	for i := 0; i < DefaultCapacity+20; i++ {
		r.Append(Record{NodeCount: i})
	}
	assert.Equal(t, DefaultCapacity, r.Len())
	assert.Equal(t, 20, r.Snapshot()[0].NodeCount)

	r.Reset()
	assert.Equal(t, 0, r.Len())
	assert.Empty(t, r.Snapshot())
	assert.Equal(t, 0, r.Stats().TotalRuns)
}

func TestRingConcurrentReaders(t *testing.T) {
	r := NewRing(10)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			r.Append(Record{NodeCount: i})
		}
	}()
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_ = r.Stats()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, r.Len())
}

func TestCompute(t *testing.T) {
	records := []Record{
		{Engine: "constraint", ExecutionTime: 10 * time.Millisecond, QualityScore: 0.9, Success: true},
		{Engine: "constraint", ExecutionTime: 30 * time.Millisecond, QualityScore: 0.7, Success: true},
		{Engine: "grid-fallback", ExecutionTime: 20 * time.Millisecond, QualityScore: 0.5, Success: false},
	}
	s := Compute(records)

	assert.Equal(t, 3, s.TotalRuns)
	assert.Equal(t, []string{"constraint", "grid-fallback"}, s.Engines())

	c := s.PerEngine["constraint"]
	assert.Equal(t, 2, c.Count)
	assert.Equal(t, 20*time.Millisecond, c.AvgTime)
	assert.Equal(t, 10*time.Millisecond, c.MinTime)
	assert.Equal(t, 30*time.Millisecond, c.MaxTime)
	assert.InDelta(t, 0.8, c.AvgQuality, 1e-9)
	assert.Equal(t, 1.0, c.SuccessRate)

	f := s.PerEngine["grid-fallback"]
	assert.Equal(t, 0.0, f.SuccessRate, "degraded runs never count as successful")

	assert.Equal(t, 20*time.Millisecond, s.Overall.AvgTime)
	assert.InDelta(t, 0.7, s.Overall.AvgQuality, 1e-9)
	assert.InDelta(t, 2.0/3, s.Overall.SuccessRate, 1e-9)
	assert.InDelta(t, 1.0/3, s.Overall.FallbackRate, 1e-9)
}

func TestNewRunIDUnique(t *testing.T) {
	assert.NotEqual(t, NewRunID(), NewRunID())
	assert.Len(t, NewRunID(), 36)
}
