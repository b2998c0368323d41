package llm

import (
	"context"
)

// Option allows overriding the default decoding parameters per call.
type Option func(*Options)

// Options carries the decoding parameters sent to the model. The defaults
// mirror the generation settings the chatbot was tuned with: a bounded
// completion, beam search mixed with nucleus/top-k sampling, short n-gram
// repetition suppression and early stop at the end-of-sequence token.
type Options struct {
	Model             string // Override default model
	MaxNewTokens      int
	NumBeams          int
	NoRepeatNgramSize int
	TopK              int
	TopP              float64
	DoSample          bool
	EarlyStopping     bool
}

// DefaultOptions returns the fixed decoding parameters used for every turn.
func DefaultOptions() *Options {
	return &Options{
		MaxNewTokens:      100,
		NumBeams:          5,
		NoRepeatNgramSize: 2,
		TopK:              50,
		TopP:              0.9,
		DoSample:          true,
		EarlyStopping:     true,
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxNewTokens(n int) Option {
	return func(o *Options) {
		o.MaxNewTokens = n
	}
}

func WithNumBeams(n int) Option {
	return func(o *Options) {
		o.NumBeams = n
	}
}

func WithTopP(p float64) Option {
	return func(o *Options) {
		o.TopP = p
	}
}

// Provider defines the contract for any text-generation backend. The service
// layer treats it as an opaque prompt-in/completion-out dependency.
type Provider interface {
	// Generate sends a single prompt to the model and returns the completion.
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}
