package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heapcore/pkg/primitives"
)

func TestIntHistogramEqAndNotEqSumToOne(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for v := int32(1); v <= 100; v++ {
		h.AddValue(v)
	}

	for _, v := range []int32{1, 37, 50, 100} {
		eq := h.EstimateSelectivity(primitives.Equals, v)
		neq := h.EstimateSelectivity(primitives.NotEquals, v)
		assert.InDelta(t, 1.0, eq+neq, 1e-9, "EQ+NEQ must sum to 1 for v=%d", v)
	}
}

func TestIntHistogramLtEqGtSumToApproxOne(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for v := int32(1); v <= 100; v++ {
		h.AddValue(v)
	}

	for _, v := range []int32{1, 37, 50, 100} {
		lt := h.EstimateSelectivity(primitives.LessThan, v)
		eq := h.EstimateSelectivity(primitives.Equals, v)
		gt := h.EstimateSelectivity(primitives.GreaterThan, v)
		assert.InDelta(t, 1.0, lt+eq+gt, 1e-9, "LT+EQ+GT must sum to ~1 for v=%d", v)
	}
}

func TestIntHistogramLtIsMonotonic(t *testing.T) {
	h := NewIntHistogram(10, 1, 100)
	for v := int32(1); v <= 100; v++ {
		h.AddValue(v)
	}

	prev := h.EstimateSelectivity(primitives.LessThan, 1)
	for v := int32(2); v <= 101; v++ {
		cur := h.EstimateSelectivity(primitives.LessThan, v)
		assert.GreaterOrEqual(t, cur, prev, "LT selectivity must not decrease as v increases")
		prev = cur
	}
}

func TestIntHistogramBoundaryCase(t *testing.T) {
	h := NewIntHistogram(10, 1, 10)
	for v := int32(1); v <= 10; v++ {
		h.AddValue(v)
	}

	assert.InDelta(t, 0.1, h.EstimateSelectivity(primitives.Equals, 5), 1e-9)
	assert.InDelta(t, 0.4, h.EstimateSelectivity(primitives.LessThan, 5), 1e-9)
	assert.InDelta(t, 0.0, h.EstimateSelectivity(primitives.GreaterThan, 10), 1e-9)
	assert.InDelta(t, 1.0, h.EstimateSelectivity(primitives.LessThan, 11), 1e-9)
	assert.InDelta(t, 0.0, h.EstimateSelectivity(primitives.LessThan, 1), 1e-9)
}

func TestIntHistogramOutOfRange(t *testing.T) {
	h := NewIntHistogram(5, 10, 20)
	for v := int32(10); v <= 20; v++ {
		h.AddValue(v)
	}

	assert.Equal(t, 0.0, h.EstimateSelectivity(primitives.Equals, 5))
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.LessThan, 100))
	assert.Equal(t, 1.0, h.EstimateSelectivity(primitives.GreaterThan, 0))
}

func TestStringHistogramLikeDelegatesToEquals(t *testing.T) {
	h := NewStringHistogram(20)
	values := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	for _, v := range values {
		h.AddValue(v)
	}

	require.Equal(t,
		h.EstimateSelectivity(primitives.Equals, "bravo"),
		h.EstimateSelectivity(primitives.Like, "bravo"))
}

func TestStringHistogramDeterministicHash(t *testing.T) {
	assert.Equal(t, hashString("repeatable"), hashString("repeatable"))
}
