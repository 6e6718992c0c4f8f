package condense

import (
	"log/slog"

	"github.com/lambdacasserole/condense/codec"
	"github.com/lambdacasserole/condense/compress"
	"github.com/lambdacasserole/condense/crypt"
	"github.com/lambdacasserole/condense/relation"
)

type options struct {
	codec            codec.Codec
	compressor       compress.Compressor
	cipher           crypt.Cipher
	key              string
	inMode           relation.EqualityMode
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures Table constructor behavior.
//
// Everything here is bound at construction and immutable afterwards: the
// pipeline that wrote a blob must be the pipeline that reads it back.
type Option func(*options)

// WithCodec configures the codec used to encode and decode the table blob.
//
// If nil is passed, codec.Default is used. Blobs are not self-describing;
// reopening a table with a different codec surfaces as ErrCorruptData.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompressor configures transparent blob compression, applied after
// encoding and before sealing. Pass nil to disable (the default).
//
// Example:
//
//	tbl, _ := condense.Open(ctx, "events", "./data",
//	    condense.WithCompressor(compress.Zstd{}))
func WithCompressor(c compress.Compressor) Option {
	return func(o *options) {
		o.compressor = c
	}
}

// WithKey configures authenticated encryption of the table blob using the
// default cipher (ChaCha20-Poly1305) keyed by the given passphrase. An empty
// key disables encryption.
//
// The key is configuration, not blob content: Encrypted reports whether a key
// is set, and reopening an encrypted table without its key surfaces as
// ErrCorruptData or ErrDecryption depending on how the bytes fail.
func WithKey(key string) Option {
	return func(o *options) {
		o.key = key
	}
}

// WithCipher configures an explicit cipher, overriding WithKey. Use this to
// select AES-GCM or a custom AEAD construction:
//
//	cipher, _ := crypt.NewAESGCM("secret")
//	tbl, _ := condense.Open(ctx, "events", "./data",
//	    condense.WithCipher(cipher))
func WithCipher(c crypt.Cipher) Option {
	return func(o *options) {
		o.cipher = c
	}
}

// WithInMode configures the equality mode used by In's membership test.
// The default is relation.Strict, matching Where; relation.Loose compares
// ints and floats across kinds.
func WithInMode(mode relation.EqualityMode) Option {
	return func(o *options) {
		o.inMode = mode
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
//
// Example with BasicMetricsCollector:
//
//	metrics := &condense.BasicMetricsCollector{}
//	tbl, _ := condense.Open(ctx, "events", "./data", condense.WithMetricsCollector(metrics))
//	// ... use tbl ...
//	stats := metrics.GetStats()
//	fmt.Printf("Queries: %d, Avg latency: %dns\n", stats.QueryCount, stats.QueryAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := condense.NewJSONLogger(slog.LevelInfo)
//	tbl, _ := condense.Open(ctx, "events", "./data", condense.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		inMode:           relation.Strict,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
