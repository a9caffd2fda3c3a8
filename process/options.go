package process

import "time"

// Default runner settings.
const (
	DefaultTimeout   = 10 * time.Second
	DefaultWaitDelay = 2 * time.Second
	DefaultMaxOutput = 1 << 20
)

type options struct {
	timeout   time.Duration
	waitDelay time.Duration
	maxOutput int
}

func defaultOptions() options {
	return options{
		timeout:   DefaultTimeout,
		waitDelay: DefaultWaitDelay,
		maxOutput: DefaultMaxOutput,
	}
}

// Option is a functional option for configuring an Exec runner.
type Option func(*options)

// WithDefaultTimeout sets the timeout used when a Request leaves Timeout zero.
func WithDefaultTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithWaitDelay bounds how long Run waits for output pipes to close after
// the process has exited or been killed.
func WithWaitDelay(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.waitDelay = d
		}
	}
}

// WithMaxOutput caps each captured stream at n bytes. Zero or negative
// disables the cap.
func WithMaxOutput(n int) Option {
	return func(o *options) {
		o.maxOutput = n
	}
}
