package engine

import (
	"cmp"
	"context"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/pinelocal/distance"
	"github.com/hupe1980/pinelocal/internal/locks"
	"github.com/hupe1980/pinelocal/internal/store"
	"github.com/hupe1980/pinelocal/model"
)

// Options configures an Engine.
type Options struct {
	// Workers bounds the goroutines used to score one query.
	// If <= 0, runtime.GOMAXPROCS(0) is used.
	Workers int

	// ParallelThreshold is the vector count from which scoring is split across
	// workers. Smaller sets are scored on the calling goroutine.
	ParallelThreshold int
}

// DefaultOptions contains the default engine configuration.
var DefaultOptions = Options{
	Workers:           0,
	ParallelThreshold: 4096,
}

// Engine executes upserts and queries against the vector sets of a store.
type Engine struct {
	store *store.Store
	locks *locks.Keyed
	opts  Options
}

// New creates an Engine. l must be the same lock set the registry uses so that
// index deletion and upserts exclude each other.
func New(s *store.Store, l *locks.Keyed, optFns ...func(o *Options)) *Engine {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultOptions.ParallelThreshold
	}
	if l == nil {
		l = locks.New()
	}
	return &Engine{store: s, locks: l, opts: opts}
}

// Validator checks a batch against the index definition that Upsert read
// under the exclusive index lock.
type Validator func(def model.IndexDefinition, vectors []model.Vector) error

// Upsert merges vectors into the vector set of name and returns len(vectors).
//
// Vectors are keyed by id: an existing id keeps its position and its record is
// replaced entirely (metadata omitted in the new record is dropped); unseen ids
// are appended in batch order. Value lengths are not checked here; use
// UpsertValidated for that.
func (e *Engine) Upsert(ctx context.Context, name string, vectors []model.Vector) (int, error) {
	return e.UpsertValidated(ctx, name, vectors, nil)
}

// UpsertValidated is Upsert with validate run against the stored definition
// before anything is merged. A validation error leaves the vector set untouched.
func (e *Engine) UpsertValidated(ctx context.Context, name string, vectors []model.Vector, validate Validator) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	unlock := e.locks.Lock(name)
	defer unlock()

	def, found, err := e.store.ReadConfig(name)
	if err != nil {
		return 0, err
	} else if !found {
		return 0, ErrIndexNotFound
	}
	if validate != nil {
		if err := validate(def, vectors); err != nil {
			return 0, err
		}
	}

	set, err := e.store.ReadVectors(name)
	if err != nil {
		return 0, err
	}

	merged := Merge(set.Vectors, vectors)

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := e.store.WriteVectors(name, model.VectorSet{Vectors: merged}); err != nil {
		return 0, err
	}
	return len(vectors), nil
}

// Merge applies batch to existing with last-write-wins per id.
// existing is modified in place and may be returned.
func Merge(existing, batch []model.Vector) []model.Vector {
	pos := make(map[string]int, len(existing)+len(batch))
	for i, v := range existing {
		pos[v.ID] = i
	}
	for _, v := range batch {
		rec := model.Vector{ID: v.ID, Values: v.Values, Metadata: v.Metadata}
		if i, ok := pos[v.ID]; ok {
			existing[i] = rec
			continue
		}
		pos[v.ID] = len(existing)
		existing = append(existing, rec)
	}
	return existing
}

// Query scores req.Vector against every vector stored in name with metric and
// returns the req.TopK best matches, highest score first.
//
// An index without vectors yields an empty match list. Ties keep their stored
// order. The namespace is echoed back and never used for filtering.
func (e *Engine) Query(ctx context.Context, name string, req model.QueryRequest, metric distance.Metric) (model.QueryResponse, error) {
	resp := model.QueryResponse{Matches: []model.Match{}, Namespace: req.Namespace}

	fn, err := distance.Provider(metric)
	if err != nil {
		return resp, err
	}
	if err := ctx.Err(); err != nil {
		return resp, err
	}

	unlock := e.locks.RLock(name)
	set, err := e.store.ReadVectors(name)
	unlock()
	if err != nil {
		return resp, err
	}
	if set.Len() == 0 {
		return resp, nil
	}

	scores, err := e.score(ctx, fn, req.Vector, set.Vectors)
	if err != nil {
		return resp, err
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		// Descending; cmp.Compare orders NaN first, so reversing puts it last.
		return cmp.Compare(scores[b], scores[a])
	})

	k := req.TopK
	if k <= 0 || k > len(order) {
		k = len(order)
	}

	resp.Matches = make([]model.Match, k)
	for n, i := range order[:k] {
		v := set.Vectors[i]
		m := model.Match{ID: v.ID, Score: scores[i]}
		if req.IncludeValues {
			m.Values = v.Values
		}
		if req.IncludeMetadata {
			m.Metadata = v.Metadata
		}
		resp.Matches[n] = m
	}
	return resp, nil
}

// Vectors returns a copy of the vector set of name, decoded under the index's
// shared lock. An index without a vectors document yields an empty set.
func (e *Engine) Vectors(ctx context.Context, name string) (model.VectorSet, error) {
	if err := ctx.Err(); err != nil {
		return model.VectorSet{}, err
	}

	unlock := e.locks.RLock(name)
	defer unlock()

	if _, found, err := e.store.ReadConfig(name); err != nil {
		return model.VectorSet{}, err
	} else if !found {
		return model.VectorSet{}, ErrIndexNotFound
	}
	return e.store.ReadVectors(name)
}

func (e *Engine) score(ctx context.Context, fn distance.Func, query []float64, vectors []model.Vector) ([]float64, error) {
	scores := make([]float64, len(vectors))

	if len(vectors) < e.opts.ParallelThreshold || e.opts.Workers == 1 {
		for i := range vectors {
			scores[i] = fn(query, vectors[i].Values)
		}
		return scores, nil
	}

	chunk := (len(vectors) + e.opts.Workers - 1) / e.opts.Workers
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for start := 0; start < len(vectors); start += chunk {
		end := min(start+chunk, len(vectors))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				scores[i] = fn(query, vectors[i].Values)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
