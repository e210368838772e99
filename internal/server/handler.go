package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/example/go-wordrnn/internal/batch"
	"github.com/example/go-wordrnn/internal/sample"
	"github.com/example/go-wordrnn/internal/seeds"
	"github.com/example/go-wordrnn/internal/text"
)

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	opts    options
	sem     chan struct{} // semaphore for worker pool
	cache   *tokenCache
	sampler Sampler
	log     *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewHandler returns an http.Handler that serves /health and the /v1 API.
func NewHandler(optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	seed := opts.seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	h := &handler{
		opts:  opts,
		cache: newTokenCache(opts.cacheSize),
		log:   opts.logger,
		rng:   rand.New(rand.NewPCG(seed, ^seed)),
	}
	if opts.workers > 0 {
		h.sem = make(chan struct{}, opts.workers)
	}
	h.sampler = opts.sampler
	if h.sampler == nil {
		h.sampler = &lockedSampler{s: sample.New(seed)}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/v1/tokenize", h.post(h.handleTokenize))
	mux.HandleFunc("/v1/detokenize", h.post(h.handleDetokenize))
	mux.HandleFunc("/v1/reshape", h.post(h.handleReshape))
	mux.HandleFunc("/v1/sample", h.post(h.handleSample))
	mux.HandleFunc("/v1/seeds", h.post(h.handleSeeds))
	return h.withRequestLog(mux)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Health{Status: "ok", Version: buildVersion()})
}

// post wraps an API endpoint: it enforces POST, caps the body size and holds
// a worker slot while fn runs.
func (h *handler) post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if r.Body == nil || r.Body == http.NoBody {
			writeError(w, http.StatusBadRequest, "request body is required")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.opts.maxTextBytes)

		release, err := h.acquire(r.Context())
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		defer release()

		fn(w, r)
	}
}

// acquire takes a worker slot, giving up after the request timeout or when
// the request is cancelled.
func (h *handler) acquire(ctx context.Context) (func(), error) {
	if h.sem == nil {
		return func() {}, nil
	}

	if h.opts.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.requestTimeout)
		defer cancel()
	}

	select {
	case h.sem <- struct{}{}:
		return func() { <-h.sem }, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.New("timed out waiting for a worker")
		}
		return nil, errors.New("request cancelled while waiting for worker")
	}
}

// decode reads the JSON body into v and writes the error response itself when
// it fails.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

// ---------------------------------------------------------------------------
// POST /v1/tokenize, /v1/detokenize
// ---------------------------------------------------------------------------

type tokenizeRequest struct {
	Text     string `json:"text"`
	Mode     string `json:"mode"`
	Pristine bool   `json:"pristine"`
}

type tokenizeResponse struct {
	Tokens []string `json:"tokens,omitempty"`
	IDs    []int32  `json:"ids,omitempty"`
}

func (h *handler) handleTokenize(w http.ResponseWriter, r *http.Request) {
	var req tokenizeRequest
	if !decode(w, r, &req) {
		return
	}

	mode, err := text.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if mode == text.ModeSubword {
		if h.opts.encoder == nil {
			writeError(w, http.StatusBadRequest, "subword mode needs a sentencepiece model")
			return
		}
		ids, err := h.opts.encoder.Encode(req.Text)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, tokenizeResponse{IDs: ids})
		return
	}

	key := cacheKey(mode, req.Pristine, req.Text)
	tokens, hit := h.cache.get(key)
	if !hit {
		tokens = text.Split(req.Text, mode, req.Pristine)
		h.cache.add(key, tokens)
	}
	annotate(w, slog.Bool("cache_hit", hit), slog.Int("tokens", len(tokens)))

	if tokens == nil {
		tokens = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"tokens": tokens})
}

type detokenizeRequest struct {
	Tokens   []string `json:"tokens"`
	Mode     string   `json:"mode"`
	Pristine bool     `json:"pristine"`
}

func (h *handler) handleDetokenize(w http.ResponseWriter, r *http.Request) {
	var req detokenizeRequest
	if !decode(w, r, &req) {
		return
	}

	mode, err := text.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if mode == text.ModeSubword {
		writeError(w, http.StatusBadRequest, "subword mode cannot be detokenized")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"text": text.Join(req.Tokens, mode, req.Pristine)})
}

// ---------------------------------------------------------------------------
// POST /v1/reshape
// ---------------------------------------------------------------------------

type reshapeRequest struct {
	Sequence  []int32 `json:"sequence"`
	BatchSize int     `json:"batch_size"`
	SeqLength int     `json:"seq_length"`
	SeqStep   int     `json:"seq_step"`
}

type reshapeResponse struct {
	NumBatches int       `json:"num_batches"`
	BatchSize  int       `json:"batch_size"`
	SeqLength  int       `json:"seq_length"`
	Rows       [][]int32 `json:"rows"`
}

func (h *handler) handleReshape(w http.ResponseWriter, r *http.Request) {
	var req reshapeRequest
	if !decode(w, r, &req) {
		return
	}

	start := time.Now()
	t, err := batch.Reshape(req.Sequence, req.BatchSize, req.SeqLength, req.SeqStep)
	switch {
	case errors.Is(err, batch.ErrInsufficientData):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	annotate(w,
		slog.Int("ids", len(req.Sequence)),
		slog.Int("num_batches", t.NumBatches()),
		slog.Int64("reshape_us", time.Since(start).Microseconds()),
	)

	writeJSON(w, http.StatusOK, reshapeResponse{
		NumBatches: t.NumBatches(),
		BatchSize:  t.BatchSize,
		SeqLength:  t.SeqLength,
		Rows:       t.ToRows(),
	})
}

// ---------------------------------------------------------------------------
// POST /v1/sample, /v1/seeds
// ---------------------------------------------------------------------------

type sampleRequest struct {
	Probabilities []float64 `json:"probabilities"`
	Temperature   *float64  `json:"temperature"`
}

func (h *handler) handleSample(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if !decode(w, r, &req) {
		return
	}

	temperature := 1.0
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	idx, err := h.sampler.Sample(req.Probabilities, temperature)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"index": idx})
}

type seedsRequest struct {
	Text          string `json:"text"`
	NumSeeds      *int   `json:"num_seeds"`
	MaxSeedLength *int   `json:"max_seed_length"`
}

func (h *handler) handleSeeds(w http.ResponseWriter, r *http.Request) {
	var req seedsRequest
	if !decode(w, r, &req) {
		return
	}

	numSeeds, maxLen := h.opts.numSeeds, h.opts.maxSeedLength
	if req.NumSeeds != nil {
		numSeeds = *req.NumSeeds
	}
	if req.MaxSeedLength != nil {
		maxLen = *req.MaxSeedLength
	}

	h.rngMu.Lock()
	found, err := seeds.Find(text.NormalizeLineEndings(req.Text), numSeeds, maxLen, h.rng)
	h.rngMu.Unlock()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string][]string{"seeds": found})
}

// lockedSampler serializes access to a sample.Sampler.
type lockedSampler struct {
	mu sync.Mutex
	s  *sample.Sampler
}

func (l *lockedSampler) Sample(preds []float64, temperature float64) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.s.Sample(preds, temperature)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	annotate(w, slog.String("error", msg))
	writeJSON(w, status, map[string]string{"error": msg})
}
