package dataflow

// Option configures the behavior of pipeline stages.
type Option func(*config)

type config struct {
	workers    int
	bufferSize int
}

// defaultConfig returns the default configuration.
func defaultConfig() *config {
	return &config{
		workers:    1,
		bufferSize: 0,
	}
}

func applyOptions(opts []Option) *config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithWorkers sets the number of concurrent workers for a stage.
// Default is 1 (sequential).
func WithWorkers(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithBufferSize sets the buffer size for the output channel of a stage.
// For Map it also bounds how far the workers may run ahead of the consumer.
func WithBufferSize(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.bufferSize = n
		}
	}
}
