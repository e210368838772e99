package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/example/go-wordrnn/internal/batch"
	"github.com/example/go-wordrnn/internal/text"
)

type Config struct {
	Paths    PathsConfig  `mapstructure:"paths"`
	Tokens   TokensConfig `mapstructure:"tokens"`
	Batch    BatchConfig  `mapstructure:"batch"`
	Sample   SampleConfig `mapstructure:"sample"`
	Server   ServerConfig `mapstructure:"server"`
	LogLevel string       `mapstructure:"log_level"`
}

type PathsConfig struct {
	CorpusPath         string `mapstructure:"corpus_path"`
	VocabPath          string `mapstructure:"vocab_path"`
	BatchesPath        string `mapstructure:"batches_path"`
	SentencePieceModel string `mapstructure:"sentencepiece_model"`
}

type TokensConfig struct {
	Mode             string `mapstructure:"mode"`
	PristineInput    bool   `mapstructure:"pristine_input"`
	PristineOutput   bool   `mapstructure:"pristine_output"`
	Lowercase        bool   `mapstructure:"lowercase"`
	NormalizeUnicode bool   `mapstructure:"normalize_unicode"`
}

type BatchConfig struct {
	BatchSize int `mapstructure:"batch_size"`
	SeqLength int `mapstructure:"seq_length"`
	SeqStep   int `mapstructure:"seq_step"`
}

type SampleConfig struct {
	Temperature   float64 `mapstructure:"temperature"`
	Seed          uint64  `mapstructure:"seed"`
	NumSeeds      int     `mapstructure:"num_seeds"`
	MaxSeedLength int     `mapstructure:"max_seed_length"`
}

type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr"`
	MaxTextBytes    int64         `mapstructure:"max_text_bytes"`
	Workers         int           `mapstructure:"workers"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CacheSize       int           `mapstructure:"cache_size"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			CorpusPath:         "data/input.txt",
			VocabPath:          "data/vocab.json",
			BatchesPath:        "data/batches.safetensors",
			SentencePieceModel: "",
		},
		Tokens: TokensConfig{
			Mode: string(text.ModeWord),
		},
		Batch: BatchConfig{
			BatchSize: 32,
			SeqLength: 50,
			SeqStep:   25,
		},
		Sample: SampleConfig{
			Temperature:   1.0,
			Seed:          0,
			NumSeeds:      50,
			MaxSeedLength: 50,
		},
		Server: ServerConfig{
			ListenAddr:      ":8080",
			MaxTextBytes:    1 << 20,
			Workers:         4,
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CacheSize:       1024,
		},
		LogLevel: "info",
	}
}

// flagKeys maps every config key to the flag that overrides it.
var flagKeys = []struct{ key, flag string }{
	{"paths.corpus_path", "corpus"},
	{"paths.vocab_path", "vocab"},
	{"paths.batches_path", "batches"},
	{"paths.sentencepiece_model", "sentencepiece-model"},
	{"tokens.mode", "mode"},
	{"tokens.pristine_input", "pristine-input"},
	{"tokens.pristine_output", "pristine-output"},
	{"tokens.lowercase", "lowercase"},
	{"tokens.normalize_unicode", "normalize-unicode"},
	{"batch.batch_size", "batch-size"},
	{"batch.seq_length", "seq-length"},
	{"batch.seq_step", "seq-step"},
	{"sample.temperature", "temperature"},
	{"sample.seed", "seed"},
	{"sample.num_seeds", "num-seeds"},
	{"sample.max_seed_length", "max-seed-length"},
	{"server.listen_addr", "listen-addr"},
	{"server.max_text_bytes", "max-text-bytes"},
	{"server.workers", "workers"},
	{"server.request_timeout", "request-timeout"},
	{"server.shutdown_timeout", "shutdown-timeout"},
	{"server.cache_size", "cache-size"},
	{"log_level", "log-level"},
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("corpus", defaults.Paths.CorpusPath, "Path to the training corpus")
	fs.String("vocab", defaults.Paths.VocabPath, "Path to the vocabulary JSON file")
	fs.String("batches", defaults.Paths.BatchesPath, "Path to the prepared batches .safetensors file")
	fs.String("sentencepiece-model", defaults.Paths.SentencePieceModel, "SentencePiece model for subword mode")
	fs.String("mode", defaults.Tokens.Mode, "Token mode (word|char|subword)")
	fs.Bool("pristine-input", defaults.Tokens.PristineInput, "Treat input as already tokenized")
	fs.Bool("pristine-output", defaults.Tokens.PristineOutput, "Join output tokens with spaces instead of detokenizing")
	fs.Bool("lowercase", defaults.Tokens.Lowercase, "Lowercase the corpus before tokenizing")
	fs.Bool("normalize-unicode", defaults.Tokens.NormalizeUnicode, "Compose the corpus to NFC")
	fs.Int("batch-size", defaults.Batch.BatchSize, "Sequences per batch")
	fs.Int("seq-length", defaults.Batch.SeqLength, "Tokens per sequence")
	fs.Int("seq-step", defaults.Batch.SeqStep, "Offset between windowing passes")
	fs.Float64("temperature", defaults.Sample.Temperature, "Sampling temperature")
	fs.Uint64("seed", defaults.Sample.Seed, "Random seed (0 picks one)")
	fs.Int("num-seeds", defaults.Sample.NumSeeds, "Number of seed strings to extract")
	fs.Int("max-seed-length", defaults.Sample.MaxSeedLength, "Maximum seed length in characters")
	fs.String("listen-addr", defaults.Server.ListenAddr, "HTTP listen address")
	fs.Int64("max-text-bytes", defaults.Server.MaxTextBytes, "Maximum request body size in bytes")
	fs.Int("workers", defaults.Server.Workers, "Concurrent request workers")
	fs.Duration("request-timeout", defaults.Server.RequestTimeout, "Maximum wait for a free worker")
	fs.Duration("shutdown-timeout", defaults.Server.ShutdownTimeout, "Graceful shutdown deadline")
	fs.Int("cache-size", defaults.Server.CacheSize, "Tokenize cache entries (0 disables)")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix("WORDRNN")
	replacer := strings.NewReplacer("-", "_", ".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("wordrnn")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

// bindFlags binds each known flag present in fs to its dotted key. Only
// flags the user set take precedence over the environment and config file.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for _, fk := range flagKeys {
		f := fs.Lookup(fk.flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(fk.key, f); err != nil {
			return fmt.Errorf("bind flag --%s: %w", fk.flag, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.corpus_path", c.Paths.CorpusPath)
	v.SetDefault("paths.vocab_path", c.Paths.VocabPath)
	v.SetDefault("paths.batches_path", c.Paths.BatchesPath)
	v.SetDefault("paths.sentencepiece_model", c.Paths.SentencePieceModel)
	v.SetDefault("tokens.mode", c.Tokens.Mode)
	v.SetDefault("tokens.pristine_input", c.Tokens.PristineInput)
	v.SetDefault("tokens.pristine_output", c.Tokens.PristineOutput)
	v.SetDefault("tokens.lowercase", c.Tokens.Lowercase)
	v.SetDefault("tokens.normalize_unicode", c.Tokens.NormalizeUnicode)
	v.SetDefault("batch.batch_size", c.Batch.BatchSize)
	v.SetDefault("batch.seq_length", c.Batch.SeqLength)
	v.SetDefault("batch.seq_step", c.Batch.SeqStep)
	v.SetDefault("sample.temperature", c.Sample.Temperature)
	v.SetDefault("sample.seed", c.Sample.Seed)
	v.SetDefault("sample.num_seeds", c.Sample.NumSeeds)
	v.SetDefault("sample.max_seed_length", c.Sample.MaxSeedLength)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("server.max_text_bytes", c.Server.MaxTextBytes)
	v.SetDefault("server.workers", c.Server.Workers)
	v.SetDefault("server.request_timeout", c.Server.RequestTimeout)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)
	v.SetDefault("server.cache_size", c.Server.CacheSize)
	v.SetDefault("log_level", c.LogLevel)
}

// Geometry returns the batch layout settings.
func (c Config) Geometry() batch.Geometry {
	return batch.Geometry{
		BatchSize: c.Batch.BatchSize,
		SeqLength: c.Batch.SeqLength,
		SeqStep:   c.Batch.SeqStep,
	}
}

// Mode parses the configured token mode.
func (c Config) Mode() (text.Mode, error) {
	return text.ParseMode(c.Tokens.Mode)
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	if _, err := c.Mode(); err != nil {
		return err
	}
	if err := c.Geometry().Validate(); err != nil {
		return err
	}
	if c.Server.Workers <= 0 {
		return fmt.Errorf("server.workers must be positive, got %d", c.Server.Workers)
	}
	if c.Server.MaxTextBytes <= 0 {
		return fmt.Errorf("server.max_text_bytes must be positive, got %d", c.Server.MaxTextBytes)
	}
	if c.Server.CacheSize < 0 {
		return fmt.Errorf("server.cache_size must not be negative, got %d", c.Server.CacheSize)
	}
	return nil
}
