// Package stats implements the per-field equi-width histograms and
// per-table statistics a cost-based planner uses for selectivity and
// cardinality estimates (§4.5).
package stats

import (
	"fmt"

	"heapcore/pkg/primitives"
)

// IntHistogram is an equi-width histogram over int32 values in
// [min, max]. Every bucket but the last has exactly `width` values;
// the last absorbs the remainder.
type IntHistogram struct {
	buckets []int
	min     int32
	max     int32
	width   int32
	n       int
}

func NewIntHistogram(numBuckets int, min, max int32) *IntHistogram {
	width := (max - min + 1) / int32(numBuckets)
	if width < 1 {
		width = 1
	}
	return &IntHistogram{
		buckets: make([]int, numBuckets),
		min:     min,
		max:     max,
		width:   width,
	}
}

func (h *IntHistogram) idx(v int32) int {
	i := int((v - h.min) / h.width)
	if i >= len(h.buckets) {
		i = len(h.buckets) - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

func (h *IntHistogram) bucketWidth(i int) int32 {
	if i < len(h.buckets)-1 {
		return h.width
	}
	return (h.max - h.min + 1) - h.width*int32(len(h.buckets)-1)
}

// left and right are the first and last values bucket i covers.
func (h *IntHistogram) left(i int) int32 {
	return h.min + int32(i)*h.width
}

func (h *IntHistogram) right(i int) int32 {
	return h.left(i) + h.bucketWidth(i) - 1
}

// AddValue increments the bucket v falls into.
func (h *IntHistogram) AddValue(v int32) {
	h.buckets[h.idx(v)]++
	h.n++
}

// EstimateSelectivity returns the estimated fraction of rows satisfying
// `field op v` (§4.5).
func (h *IntHistogram) EstimateSelectivity(op primitives.Predicate, v int32) float64 {
	if h.n == 0 {
		return 0
	}
	switch op {
	case primitives.Equals:
		return h.estimateEQ(v)
	case primitives.NotEquals:
		return 1 - h.estimateEQ(v)
	case primitives.GreaterThan:
		return h.estimateGT(v)
	case primitives.GreaterThanOrEqual:
		return h.estimateGT(v - 1)
	case primitives.LessThan:
		return h.estimateLT(v)
	case primitives.LessThanOrEqual:
		return h.estimateLT(v + 1)
	default:
		return 0
	}
}

func (h *IntHistogram) estimateEQ(v int32) float64 {
	if v < h.min || v > h.max {
		return 0
	}
	idx := h.idx(v)
	return float64(h.buckets[idx]) / float64(h.bucketWidth(idx)) / float64(h.n)
}

func (h *IntHistogram) estimateGT(v int32) float64 {
	if v < h.min {
		return 1
	}
	if v >= h.max {
		return 0
	}
	idx := h.idx(v)
	sum := 0
	for i := idx + 1; i < len(h.buckets); i++ {
		sum += h.buckets[i]
	}
	partial := float64(h.buckets[idx]) * float64(h.right(idx)-v) / float64(h.bucketWidth(idx))
	return (float64(sum) + partial) / float64(h.n)
}

func (h *IntHistogram) estimateLT(v int32) float64 {
	if v > h.max {
		return 1
	}
	if v <= h.min {
		return 0
	}
	idx := h.idx(v)
	sum := 0
	for i := 0; i < idx; i++ {
		sum += h.buckets[i]
	}
	partial := float64(h.buckets[idx]) * float64(v-h.left(idx)) / float64(h.bucketWidth(idx))
	return (float64(sum) + partial) / float64(h.n)
}

func (h *IntHistogram) String() string {
	return fmt.Sprintf("IntHistogram(buckets=%d,min=%d,max=%d,n=%d)", len(h.buckets), h.min, h.max, h.n)
}

// StringHistogram maps a string to a bounded integer hash of its
// leading code points and delegates entirely to an IntHistogram over
// that domain (§3 Histograms).
type StringHistogram struct {
	inner *IntHistogram
}

// stringHashMin and stringHashMax bound the range strings hash into; wide
// enough that real-world string distributions don't collapse into one
// bucket, matching the "default domain" the spec allows for STRING
// fields without a two-pass min/max scan.
const (
	stringHashMin int32 = 0
	stringHashMax int32 = 1 << 20
)

func NewStringHistogram(numBuckets int) *StringHistogram {
	return &StringHistogram{inner: NewIntHistogram(numBuckets, stringHashMin, stringHashMax)}
}

// hashString folds the first few code points of s into the histogram's
// integer domain.
func hashString(s string) int32 {
	var h int32
	for i, r := range s {
		if i >= 8 {
			break
		}
		h = h*31 + int32(r)
	}
	if h < 0 {
		h = -h
	}
	return h % (stringHashMax - stringHashMin)
}

func (h *StringHistogram) AddValue(s string) {
	h.inner.AddValue(hashString(s))
}

// EstimateSelectivity dispatches to the inner IntHistogram. LIKE has no
// defined histogram semantics in the source this was distilled from; it
// is treated as EQ unless a consumer refines it (§9 Open question).
func (h *StringHistogram) EstimateSelectivity(op primitives.Predicate, s string) float64 {
	if op == primitives.Like {
		op = primitives.Equals
	}
	return h.inner.EstimateSelectivity(op, hashString(s))
}

func (h *StringHistogram) String() string {
	return fmt.Sprintf("StringHistogram(%s)", h.inner)
}
