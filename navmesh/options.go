package navmesh

import "log/slog"

// DefaultMinClearance is the smallest clearance the solver keeps from
// obstacles, even for agents of radius zero. It stops paths from slipping
// through the shared corner of two walls.
const DefaultMinClearance = 0.5

// Options defines parameters for meshes and solvers.
type Options struct {
	Strategy     Strategy
	MinClearance float64
	Logger       *slog.Logger
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithStrategy selects the graph search used by the solver.
func WithStrategy(strategy Strategy) Option {
	return func(options *Options) { options.Strategy = strategy }
}

// WithMinClearance overrides DefaultMinClearance.
func WithMinClearance(clearance float64) Option {
	return func(options *Options) { options.MinClearance = clearance }
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(options *Options) { options.Logger = logger }
}

func newOptions(options []Option) Options {
	opts := Options{
		Strategy:     AStar{},
		MinClearance: DefaultMinClearance,
		Logger:       slog.Default(),
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.Strategy == nil {
		opts.Strategy = AStar{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MinClearance < 0 {
		opts.MinClearance = 0
	}
	return opts
}
