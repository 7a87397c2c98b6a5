// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     poll
// Description: Periodic snapshot fetcher for the dashboard panels. One
//              scheduler owns many named queries; each query re-fetches
//              on its own fixed interval with at most one request in
//              flight at a time.
// License:     MIT
// ============================================================================

package poll

import (
	"context"
	"sync"
	"time"

	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

// FetchFunc performs one snapshot fetch
type FetchFunc func(ctx context.Context) (interface{}, error)

// Result is the latest outcome for one query key. On error, Value keeps
// the previous successful snapshot so panels can render stale data.
type Result struct {
	Value     interface{}
	Err       error
	FetchedAt time.Time
}

// query is one registered periodic fetch. The inFlight flag is owned
// exclusively by this entry.
type query struct {
	key      string
	fetch    FetchFunc
	interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
	fetches  sync.WaitGroup

	mu       sync.Mutex
	inFlight bool
	result   Result
}

// Scheduler owns a set of independent periodic queries
type Scheduler struct {
	mu      sync.Mutex
	queries map[string]*query
	subs    []chan string
	stopped bool
	logger  *logging.Logger
}

// New creates an empty scheduler
func New(logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.New("poll")
	}
	return &Scheduler{
		queries: make(map[string]*query),
		logger:  logger,
	}
}

// Schedule registers a periodic fetch under a stable key. The first
// fetch fires immediately, then on every interval tick. A tick that
// fires while the previous fetch is still outstanding is skipped; a
// fetch error never cancels future ticks. Re-scheduling an existing key
// replaces it.
func (s *Scheduler) Schedule(key string, fetch FetchFunc, interval time.Duration) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if existing, ok := s.queries[key]; ok {
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	q := &query{
		key:      key,
		fetch:    fetch,
		interval: interval,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	s.queries[key] = q
	s.mu.Unlock()

	go s.run(ctx, q)
}

// Unregister stops the query for key. No further fetches occur for it.
func (s *Scheduler) Unregister(key string) {
	s.mu.Lock()
	q, ok := s.queries[key]
	if ok {
		delete(s.queries, key)
	}
	s.mu.Unlock()

	if ok {
		q.cancel()
		<-q.done
		q.fetches.Wait()
	}
}

// Stop cancels every query. The scheduler cannot be reused afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	queries := make([]*query, 0, len(s.queries))
	for _, q := range s.queries {
		queries = append(queries, q)
	}
	s.queries = make(map[string]*query)
	s.mu.Unlock()

	for _, q := range queries {
		q.cancel()
		<-q.done
		q.fetches.Wait()
	}
}

// Latest returns the most recent result for key
func (s *Scheduler) Latest(key string) (Result, bool) {
	s.mu.Lock()
	q, ok := s.queries[key]
	s.mu.Unlock()
	if !ok {
		return Result{}, false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.result.FetchedAt.IsZero() {
		return Result{}, false
	}
	return q.result, true
}

// Subscribe returns a channel receiving the key of every completed
// fetch. Sends are non-blocking; consumers re-read Latest on signal.
func (s *Scheduler) Subscribe() <-chan string {
	ch := make(chan string, 16)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// run drives one query: immediate fetch, then the tick loop. The ticker
// keeps firing regardless of fetch outcome; overlap is prevented by the
// in-flight flag, never by pausing the ticker.
func (s *Scheduler) run(ctx context.Context, q *query) {
	defer close(q.done)

	s.dispatch(ctx, q)

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatch(ctx, q)
		}
	}
}

// dispatch starts one fetch unless the previous one is still running
func (s *Scheduler) dispatch(ctx context.Context, q *query) {
	q.mu.Lock()
	if q.inFlight {
		q.mu.Unlock()
		s.logger.Debug("tick skipped, fetch in flight", logging.Fields{"key": q.key})
		return
	}
	q.inFlight = true
	q.mu.Unlock()

	q.fetches.Add(1)
	go func() {
		defer q.fetches.Done()
		value, err := q.fetch(ctx)

		q.mu.Lock()
		q.inFlight = false
		if err != nil {
			// Keep the stale value so the panel degrades instead of blanking
			q.result.Err = err
			q.result.FetchedAt = time.Now()
		} else {
			q.result = Result{Value: value, FetchedAt: time.Now()}
		}
		q.mu.Unlock()

		if err != nil {
			s.logger.WarnWithErr("fetch failed, schedule continues", err, logging.Fields{"key": q.key})
		}
		if ctx.Err() == nil {
			s.notify(q.key)
		}
	}()
}

func (s *Scheduler) notify(key string) {
	s.mu.Lock()
	subs := s.subs
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- key:
		default:
		}
	}
}
