// package solver answers problems, remembering what it has already solved.
package solver

import (
	"context"
	"errors"
	"sync"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.brendoncarroll.net/exp/singleflight"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"tis100.dev/superopt"
	"tis100.dev/superopt/problem"
	"tis100.dev/superopt/search"
	"tis100.dev/superopt/solvedb"
)

const DefaultCacheSize = 256

// Solver runs searches for problems.
// Results are cached in memory, and in a database if one is provided.
// Concurrent requests for the same problem and bounds share one search.
type Solver struct {
	db      *solvedb.DB
	workers int

	mu      sync.Mutex
	cache   *simplelru.LRU[solvedb.Key, solvedb.Solution]
	flights map[solvedb.Key]*flight
	sf      singleflight.Group[solvedb.Key, solvedb.Solution]
}

// flight is a search shared by every caller waiting on its key.
// Its context is cancelled when the last of them leaves.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// New creates a Solver.
// db may be nil. workers is passed to search.OptimizeParallel.
func New(db *solvedb.DB, cacheSize, workers int) *Solver {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	cache, err := simplelru.NewLRU[solvedb.Key, solvedb.Solution](cacheSize, nil)
	if err != nil {
		panic(err)
	}
	return &Solver{
		db:      db,
		workers: workers,
		cache:   cache,
		flights: make(map[solvedb.Key]*flight),
	}
}

// Solve returns the outcome of searching for p under cfg.
// A search which finds nothing is not an error; the Solution has Found = false.
//
// Callers asking for the same problem and bounds at the same time share one search.
// Solve returns ctx.Err() as soon as ctx is done, and the shared search is only
// cancelled once every caller waiting on it has gone.
// cfg.Progress is only called if this call starts the search.
func (s *Solver) Solve(ctx context.Context, p problem.Problem, cfg search.Config) (solvedb.Solution, error) {
	if err := cfg.Validate(); err != nil {
		return solvedb.Solution{}, err
	}
	k := solvedb.Key{
		ProblemID: p.ID(),
		MaxCycles: cfg.MaxCycles,
		MaxLength: cfg.MaxProgramLength,
	}
	for {
		if sol, ok := s.cached(k); ok {
			logctx.Debug(ctx, "solution from cache", zap.Stringer("key", k))
			return sol, nil
		}
		sol, err := s.wait(ctx, k, p, cfg)
		if err != nil && isCancelled(err) {
			if ctx.Err() != nil {
				return solvedb.Solution{}, ctx.Err()
			}
			// joined a search whose callers had all left before this one arrived.
			continue
		}
		return sol, err
	}
}

type result struct {
	sol solvedb.Solution
	err error
}

// wait joins the flight for k, starting the search if there is none, and
// returns when the search is done or ctx is.
func (s *Solver) wait(ctx context.Context, k solvedb.Key, p problem.Problem, cfg search.Config) (solvedb.Solution, error) {
	fctx := s.join(ctx, k)
	var once sync.Once
	leave := func() { once.Do(func() { s.leave(k) }) }
	stop := context.AfterFunc(ctx, leave)
	defer func() {
		stop()
		leave()
	}()

	ch := make(chan result, 1)
	go func() {
		sol, err, _ := s.sf.Do(k, func() (solvedb.Solution, error) {
			return s.lookupOrSolve(fctx, k, p, cfg)
		})
		ch <- result{sol: sol, err: err}
	}()
	select {
	case r := <-ch:
		return r.sol, r.err
	case <-ctx.Done():
		return solvedb.Solution{}, ctx.Err()
	}
}

func (s *Solver) lookupOrSolve(ctx context.Context, k solvedb.Key, p problem.Problem, cfg search.Config) (solvedb.Solution, error) {
	if sol, ok := s.cached(k); ok {
		return sol, nil
	}
	if s.db != nil {
		sol, err := s.db.Get(ctx, k)
		if err == nil {
			logctx.Debug(ctx, "solution from db", zap.Stringer("key", k))
			s.add(*sol)
			return *sol, nil
		} else if !solvedb.IsNotFound(err) {
			return solvedb.Solution{}, err
		}
	}
	sol, err := s.solve(ctx, k, p, cfg)
	if err != nil {
		return solvedb.Solution{}, err
	}
	if s.db != nil {
		if err := s.db.Put(ctx, sol); err != nil {
			return solvedb.Solution{}, err
		}
	}
	s.add(sol)
	return sol, nil
}

// join registers a caller waiting on k and returns the context the search for k runs under.
// The context keeps the values of the first caller's ctx, but not its cancellation.
func (s *Solver) join(ctx context.Context, k solvedb.Key) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.flights[k]
	if !ok {
		fctx, cf := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cf}
		s.flights[k] = f
	}
	f.waiters++
	return f.ctx
}

func (s *Solver) leave(k solvedb.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flights[k]
	f.waiters--
	if f.waiters == 0 {
		f.cancel()
		delete(s.flights, k)
	}
}

// waiting returns the number of callers waiting on k.
func (s *Solver) waiting(k solvedb.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.flights[k]; ok {
		return f.waiters
	}
	return 0
}

func isCancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (s *Solver) solve(ctx context.Context, k solvedb.Key, p problem.Problem, cfg search.Config) (solvedb.Solution, error) {
	logctx.Info(ctx, "searching", zap.Stringer("problem", p), zap.Uint64("max_cycles", cfg.MaxCycles), zap.Int("max_length", cfg.MaxProgramLength))
	res, found := search.OptimizeParallel(ctx, p.Node(), p.Output, cfg, s.workers)
	if !found {
		// a cancelled search says nothing about the problem.
		if err := ctx.Err(); err != nil {
			return solvedb.Solution{}, err
		}
	}
	logctx.Info(ctx, "search done", zap.Bool("found", found), zap.Uint64("tried", res.Tried))
	return solvedb.Solution{
		Key:    k,
		Name:   p.Name,
		Input:  p.Input,
		Output: p.Output,

		Found:   found,
		Program: res.Program,
		Index:   res.Index,
		Tried:   res.Tried,

		SolvedAt: solvedb.Now(),
	}, nil
}

func (s *Solver) cached(k solvedb.Key) (solvedb.Solution, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(k)
}

func (s *Solver) add(sol solvedb.Solution) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(sol.Key, sol)
}

// Forget removes everything known about a problem, from memory and the database.
func (s *Solver) Forget(ctx context.Context, id superopt.ID) error {
	s.mu.Lock()
	for _, k := range s.cache.Keys() {
		if k.ProblemID == id {
			s.cache.Remove(k)
		}
	}
	s.mu.Unlock()
	if s.db != nil {
		if _, err := s.db.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}
