package server

import (
	"log/slog"
	"time"

	"github.com/example/go-wordrnn/internal/tokenizer"
)

// Sampler draws an index from a probability vector.
type Sampler interface {
	Sample(preds []float64, temperature float64) (int, error)
}

type options struct {
	maxTextBytes   int64
	workers        int
	requestTimeout time.Duration
	cacheSize      int
	seed           uint64
	numSeeds       int
	maxSeedLength  int
	encoder        tokenizer.Encoder
	sampler        Sampler
	logger         *slog.Logger
}

func defaultOptions() options {
	return options{
		maxTextBytes:   1 << 20,
		workers:        4,
		requestTimeout: 30 * time.Second,
		cacheSize:      1024,
		numSeeds:       50,
		maxSeedLength:  50,
		logger:         slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxTextBytes caps the size of every request body.
func WithMaxTextBytes(n int64) Option {
	return func(o *options) { o.maxTextBytes = n }
}

// WithWorkers sets the maximum number of requests processed at once.
// Zero or less disables throttling.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithRequestTimeout sets how long a request may wait for a free worker.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithCacheSize sets the number of cached tokenize results. Zero disables the cache.
func WithCacheSize(n int) Option {
	return func(o *options) { o.cacheSize = n }
}

// WithSeed seeds the sampler and seed extraction. Zero picks a random seed.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithSeedDefaults sets the seed count and length used when a request omits them.
func WithSeedDefaults(numSeeds, maxSeedLength int) Option {
	return func(o *options) {
		o.numSeeds = numSeeds
		o.maxSeedLength = maxSeedLength
	}
}

// WithEncoder enables the subword token mode.
func WithEncoder(enc tokenizer.Encoder) Option {
	return func(o *options) { o.encoder = enc }
}

// WithSampler replaces the default temperature sampler. The sampler must be
// safe for concurrent use.
func WithSampler(s Sampler) Option {
	return func(o *options) { o.sampler = s }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
