package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Common errors
var (
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrContextCanceled    = errors.New("context canceled during retry")
)

// Config contains retry configuration
type Config struct {
	// MaxRetries is the maximum number of retry attempts (0 = no retries, just initial attempt)
	MaxRetries int
	// InitialInterval is the initial backoff interval (default: 1s)
	InitialInterval time.Duration
	// MaxInterval is the maximum backoff interval (default: 30s)
	MaxInterval time.Duration
	// Multiplier is the factor to multiply the interval by after each retry (default: 2.0)
	Multiplier float64
	// JitterFactor is the random jitter factor (0-1) to add/subtract from interval (default: 0.1)
	JitterFactor float64
}

// DefaultConfig returns default retry configuration
// Uses exponential backoff: 1s, 2s, 4s, 8s, 16s, 30s (capped)
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      5,
		InitialInterval: 1 * time.Second,
		MaxInterval:     30 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError wraps an error indicating it should NOT be retried
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string {
	return e.Err.Error()
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// Permanent marks an error as permanent (not retryable)
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Result contains the result of a retry operation
type Result struct {
	// Err is the final error (nil if successful)
	Err error
	// Attempts is the total number of attempts made (including initial)
	Attempts int
	// TotalDuration is the total time spent including waits
	TotalDuration time.Duration
	// LastError is the error from the last attempt
	LastError error
}

// Retrier handles retry logic with exponential backoff
type Retrier struct {
	config *Config
}

// New creates a new Retrier with the given configuration
func New(config *Config) *Retrier {
	if config == nil {
		config = DefaultConfig()
	}

	if config.InitialInterval <= 0 {
		config.InitialInterval = 1 * time.Second
	}
	if config.MaxInterval <= 0 {
		config.MaxInterval = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}
	if config.JitterFactor < 0 {
		config.JitterFactor = 0
	}
	if config.JitterFactor > 1 {
		config.JitterFactor = 1
	}

	return &Retrier{
		config: config,
	}
}

// Do executes the operation with retry logic
func (r *Retrier) Do(ctx context.Context, op Operation) *Result {
	return r.DoWithCallback(ctx, op, nil)
}

// RetryCallback is called before each retry attempt
type RetryCallback func(attempt int, err error, nextInterval time.Duration)

// DoWithCallback executes the operation with retry logic and a callback
func (r *Retrier) DoWithCallback(ctx context.Context, op Operation, callback RetryCallback) *Result {
	startTime := time.Now()
	result := &Result{}
	var lastErr error

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		if ctx.Err() != nil {
			result.Err = ErrContextCanceled
			result.LastError = lastErr
			result.TotalDuration = time.Since(startTime)
			return result
		}

		err := op(ctx)
		if err == nil {
			result.TotalDuration = time.Since(startTime)
			return result
		}

		lastErr = err

		var permErr *PermanentError
		if errors.As(err, &permErr) {
			result.Err = permErr.Err
			result.LastError = permErr.Err
			result.TotalDuration = time.Since(startTime)
			return result
		}

		if attempt == r.config.MaxRetries {
			break
		}

		interval := r.calculateInterval(attempt)

		if callback != nil {
			callback(attempt+1, err, interval)
		}

		select {
		case <-ctx.Done():
			result.Err = ErrContextCanceled
			result.LastError = lastErr
			result.TotalDuration = time.Since(startTime)
			return result
		case <-time.After(interval):
		}
	}

	result.Err = ErrMaxRetriesExceeded
	result.LastError = lastErr
	result.TotalDuration = time.Since(startTime)
	return result
}

// calculateInterval calculates the backoff interval for a given attempt
func (r *Retrier) calculateInterval(attempt int) time.Duration {
	interval := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt))

	// Jitter prevents thundering herd on simultaneous reconnects
	if r.config.JitterFactor > 0 {
		jitter := interval * r.config.JitterFactor
		interval = interval + (rand.Float64()*2-1)*jitter
	}

	if interval > float64(r.config.MaxInterval) {
		interval = float64(r.config.MaxInterval)
	}
	if interval < 0 {
		interval = 0
	}

	return time.Duration(interval)
}
