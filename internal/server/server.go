package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/go-wordrnn/internal/config"
	"github.com/example/go-wordrnn/internal/tokenizer"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// ---------------------------------------------------------------------------
// Server: wires the handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	encoder         tokenizer.Encoder
	shutdownTimeout time.Duration
}

// New returns a Server for cfg. A non-nil encoder enables subword tokenization;
// when nil, one is loaded from cfg.Paths.SentencePieceModel if that is set.
func New(cfg config.Config, encoder tokenizer.Encoder) *Server {
	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Server{
		cfg:             cfg,
		encoder:         encoder,
		shutdownTimeout: timeout,
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

// handlerOptions maps the configuration onto handler options.
func (s *Server) handlerOptions() ([]Option, error) {
	opts := []Option{
		WithWorkers(s.cfg.Server.Workers),
		WithMaxTextBytes(s.cfg.Server.MaxTextBytes),
		WithRequestTimeout(s.cfg.Server.RequestTimeout),
		WithCacheSize(s.cfg.Server.CacheSize),
		WithSeed(s.cfg.Sample.Seed),
		WithSeedDefaults(s.cfg.Sample.NumSeeds, s.cfg.Sample.MaxSeedLength),
	}

	enc := s.encoder
	if enc == nil && s.cfg.Paths.SentencePieceModel != "" {
		sp, err := tokenizer.NewSentencePiece(s.cfg.Paths.SentencePieceModel, s.cfg.Tokens.Lowercase)
		if err != nil {
			return nil, err
		}
		enc = sp
	}
	if enc != nil {
		opts = append(opts, WithEncoder(enc))
	}

	return opts, nil
}

func (s *Server) Start(ctx context.Context) error {
	opts, err := s.handlerOptions()
	if err != nil {
		return err
	}

	h := NewHandler(opts...)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	slog.Info("http server listening", slog.String("addr", s.cfg.Server.ListenAddr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

// Health is the body served by GET /health.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// ProbeHTTP fetches /health from addr. An address without a host, such as
// ":8080", is probed on the loopback interface.
func ProbeHTTP(ctx context.Context, addr string) (Health, error) {
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/health", nil)
	if err != nil {
		return Health{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Health{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("unexpected health status: %s", resp.Status)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return Health{}, fmt.Errorf("decode health response: %w", err)
	}
	return h, nil
}
