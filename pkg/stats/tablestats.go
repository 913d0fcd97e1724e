package stats

import (
	"fmt"
	"math"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"heapcore/pkg/concurrency/transaction"
	"heapcore/pkg/primitives"
	"heapcore/pkg/storage/heap"
	"heapcore/pkg/storage/page"
	"heapcore/pkg/tuple"
	"heapcore/pkg/types"
)

// pageGetter is the slice of BufferPool's contract TableStats needs to
// scan a file: acquire a page under a lock, on behalf of a transient
// transaction (mirrors heap.pageGetter, duplicated here to avoid an
// import cycle into memory).
type pageGetter interface {
	GetPage(tid transaction.TxID, pid primitives.PageID, perm primitives.Permission) (page.Page, error)
}

const defaultNumBuckets = 100

// TableStats holds the per-field histograms and scan-cost inputs a
// cost-based planner consults for one table (§4.5).
type TableStats struct {
	tableID       primitives.TableID
	desc          *tuple.TupleDescription
	ioCostPerPage float64
	numTuples     int
	numPages      int

	intHistograms    map[int]*IntHistogram
	stringHistograms map[int]*StringHistogram
}

// NewTableStats builds a TableStats for file by scanning it twice under a
// transient transaction: one pass to find each int field's [min, max] and
// the tuple count, a second to populate every field's histogram. The
// second pass's per-field histograms are built concurrently via an
// errgroup, since each field's values are independent of the others
// (§4.5 TableStats construction).
func NewTableStats(file *heap.File, bp pageGetter, ioCostPerPage float64) (*TableStats, error) {
	return newTableStatsWithBuckets(file, bp, ioCostPerPage, defaultNumBuckets)
}

func newTableStatsWithBuckets(file *heap.File, bp pageGetter, ioCostPerPage float64, numBuckets int) (*TableStats, error) {
	desc := file.TupleDesc()
	numPages, err := file.NumPages()
	if err != nil {
		return nil, err
	}

	mins := make(map[int]int32)
	maxs := make(map[int]int32)
	numTuples := 0

	if err := scanFile(file, bp, func(t *tuple.Tuple) error {
		numTuples++
		for i := 0; i < desc.NumFields(); i++ {
			ft, err := desc.TypeAt(i)
			if err != nil {
				return err
			}
			if ft.Kind != types.KindInt {
				continue
			}
			f, err := t.GetField(i)
			if err != nil {
				return err
			}
			v := f.(*types.IntField).Value
			if cur, ok := mins[i]; !ok || v < cur {
				mins[i] = v
			}
			if cur, ok := maxs[i]; !ok || v > cur {
				maxs[i] = v
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	intValues := make(map[int][]int32)
	stringValues := make(map[int][]string)
	for i := 0; i < desc.NumFields(); i++ {
		ft, err := desc.TypeAt(i)
		if err != nil {
			return nil, err
		}
		if ft.Kind == types.KindInt {
			intValues[i] = make([]int32, 0, numTuples)
		} else {
			stringValues[i] = make([]string, 0, numTuples)
		}
	}

	if err := scanFile(file, bp, func(t *tuple.Tuple) error {
		for i := 0; i < desc.NumFields(); i++ {
			f, err := t.GetField(i)
			if err != nil {
				return err
			}
			switch field := f.(type) {
			case *types.IntField:
				intValues[i] = append(intValues[i], field.Value)
			case *types.StringField:
				stringValues[i] = append(stringValues[i], field.Value)
			}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	ts := &TableStats{
		tableID:          file.TableID(),
		desc:             desc,
		ioCostPerPage:    ioCostPerPage,
		numTuples:        numTuples,
		numPages:         numPages,
		intHistograms:    make(map[int]*IntHistogram),
		stringHistograms: make(map[int]*StringHistogram),
	}

	var mu sync.Mutex
	var g errgroup.Group
	for i, values := range intValues {
		i, values := i, values
		g.Go(func() error {
			h := NewIntHistogram(numBuckets, mins[i], maxs[i])
			for _, v := range values {
				h.AddValue(v)
			}
			mu.Lock()
			ts.intHistograms[i] = h
			mu.Unlock()
			return nil
		})
	}
	for i, values := range stringValues {
		i, values := i, values
		g.Go(func() error {
			h := NewStringHistogram(numBuckets)
			for _, v := range values {
				h.AddValue(v)
			}
			mu.Lock()
			ts.stringHistograms[i] = h
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return ts, nil
}

func scanFile(file *heap.File, bp pageGetter, visit func(*tuple.Tuple) error) error {
	tid := transaction.New()
	it := heap.NewFileIterator(file, tid, bp)
	if err := it.Open(); err != nil {
		return err
	}
	defer it.Close()

	for {
		hasNext, err := it.HasNext()
		if err != nil {
			return err
		}
		if !hasNext {
			return nil
		}
		t, err := it.Next()
		if err != nil {
			return err
		}
		if err := visit(t); err != nil {
			return err
		}
	}
}

// EstimateScanCost is numPages * ioCostPerPage: the cost of a full
// sequential scan (§4.5).
func (ts *TableStats) EstimateScanCost() float64 {
	return float64(ts.numPages) * ts.ioCostPerPage
}

// EstimateTableCardinality is ceil(numTuples * selectivity) (§4.5).
func (ts *TableStats) EstimateTableCardinality(selectivity float64) int {
	return int(math.Ceil(float64(ts.numTuples) * selectivity))
}

// EstimateSelectivity dispatches to field's histogram, by kind, for
// `field op constant` (§4.5).
func (ts *TableStats) EstimateSelectivity(field int, op primitives.Predicate, constant types.Field) (float64, error) {
	switch c := constant.(type) {
	case *types.IntField:
		h, ok := ts.intHistograms[field]
		if !ok {
			return 0, fmt.Errorf("field %d has no int histogram", field)
		}
		return h.EstimateSelectivity(op, c.Value), nil
	case *types.StringField:
		h, ok := ts.stringHistograms[field]
		if !ok {
			return 0, fmt.Errorf("field %d has no string histogram", field)
		}
		return h.EstimateSelectivity(op, c.Value), nil
	default:
		return 0, fmt.Errorf("unsupported constant type %T", constant)
	}
}

func (ts *TableStats) NumTuples() int { return ts.numTuples }
func (ts *TableStats) NumPages() int  { return ts.numPages }

func (ts *TableStats) String() string {
	return fmt.Sprintf("TableStats(table=%s, tuples=%s, pages=%d, size=%s, scanCost=%.2f)",
		ts.tableID,
		humanize.Comma(int64(ts.numTuples)),
		ts.numPages,
		humanize.Bytes(uint64(ts.numPages*primitives.PageSize)), // #nosec G115
		ts.EstimateScanCost(),
	)
}
