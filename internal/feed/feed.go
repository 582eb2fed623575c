// Package feed polls a listing endpoint and streams newly created items.
package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"reddit-client/internal/client"
	"reddit-client/internal/metrics"
	"reddit-client/internal/search"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultBuffer       = 10
	DefaultMaxRetries   = 3
)

// Feedable items carry the fullname the before cursor refers to.
type Feedable interface {
	FeedID() string
}

type settings struct {
	interval   time.Duration
	buffer     int
	maxRetries int
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

type Option func(*settings)

func WithPollInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.interval = d
		}
	}
}

func WithBuffer(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.buffer = n
		}
	}
}

// WithMaxRetries sets how many consecutive failed fetches are retried before
// the feed stops. Zero stops on the first failure.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *settings) { s.metrics = m }
}

// Feed emits every item that appears at an endpoint after it was started,
// oldest first.
type Feed[R any, T Feedable] struct {
	src     search.Source
	convert func(R) T
	query   search.Query
	cfg     settings
	started atomic.Bool

	mu       sync.Mutex
	interval time.Duration
	lastSeen string
	err      error
}

func New[R any, T Feedable](src search.Source, convert func(R) T, ep client.Endpoint, opts ...Option) *Feed[R, T] {
	cfg := settings{
		interval:   DefaultPollInterval,
		buffer:     DefaultBuffer,
		maxRetries: DefaultMaxRetries,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Feed[R, T]{
		src:      src,
		convert:  convert,
		query:    search.Query{Endpoint: ep, Sort: client.New},
		cfg:      cfg,
		interval: cfg.interval,
	}
}

// SetPollInterval takes effect from the next sleep. Non-positive values are ignored.
func (f *Feed[R, T]) SetPollInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	f.mu.Lock()
	f.interval = d
	f.mu.Unlock()
}

func (f *Feed[R, T]) PollInterval() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.interval
}

// LastSeen is the fullname of the newest item reported so far.
func (f *Feed[R, T]) LastSeen() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSeen
}

// Err is the error that stopped the feed. It is nil while polling and after a
// cancelled context, and only meaningful once the channel is closed.
func (f *Feed[R, T]) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Start launches the polling loop. The channel closes when ctx is cancelled or
// fetches keep failing. A feed runs once; further calls get a closed channel.
func (f *Feed[R, T]) Start(ctx context.Context) <-chan T {
	out := make(chan T, f.cfg.buffer)
	if !f.started.CompareAndSwap(false, true) {
		close(out)
		return out
	}

	go f.run(ctx, out)
	return out
}

func (f *Feed[R, T]) run(ctx context.Context, out chan<- T) {
	defer close(out)

	log := f.cfg.logger.With().Str("endpoint", string(f.query.Endpoint)).Logger()

	baseline, err := f.fetch(ctx, log)
	if err != nil {
		f.stop(ctx, log, err)
		return
	}
	if len(baseline) > 0 {
		f.setLastSeen(baseline[0].FeedID())
	}
	log.Debug().Str("last_seen", f.LastSeen()).Msg("feed baseline established")

	for {
		if !sleep(ctx, f.PollInterval()) {
			f.stop(ctx, log, nil)
			return
		}

		items, err := f.fetch(ctx, log)
		if err != nil {
			f.stop(ctx, log, err)
			return
		}
		if len(items) == 0 {
			continue
		}

		f.setLastSeen(items[0].FeedID())
		f.cfg.metrics.AddFeedItems(string(f.query.Endpoint), len(items))

		for i := len(items) - 1; i >= 0; i-- {
			select {
			case out <- items[i]:
			case <-ctx.Done():
				f.stop(ctx, log, nil)
				return
			}
		}
	}
}

// fetch asks for everything newer than the last seen item, retrying failures
// with exponential backoff.
func (f *Feed[R, T]) fetch(ctx context.Context, log zerolog.Logger) ([]T, error) {
	before := f.LastSeen()

	for attempt := 0; ; attempt++ {
		items, _, err := search.Fetch(ctx, f.src, f.convert, f.query, before, "")
		if err == nil {
			return items, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		f.cfg.metrics.FeedError(string(f.query.Endpoint))
		if attempt >= f.cfg.maxRetries {
			return nil, err
		}

		backoff := f.PollInterval() << attempt
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("feed poll failed")
		if !sleep(ctx, backoff) {
			return nil, ctx.Err()
		}
	}
}

func (f *Feed[R, T]) setLastSeen(id string) {
	f.mu.Lock()
	f.lastSeen = id
	f.mu.Unlock()
}

// stop records why the loop ended. Cancellation is a normal shutdown.
func (f *Feed[R, T]) stop(ctx context.Context, log zerolog.Logger, err error) {
	if err != nil && ctx.Err() != nil {
		err = nil
	}

	f.mu.Lock()
	f.err = err
	f.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("feed stopped")
		return
	}
	log.Info().Msg("feed stopped")
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
