package replicaset

import (
	"github.com/arloliu/ha-table/internal/logging"
	"github.com/arloliu/ha-table/internal/metrics"
	"github.com/arloliu/ha-table/types"
)

// Type aliases for convenience - re-export from types package.
type (
	ReplicaIndex     = types.ReplicaIndex
	ReplicaNames     = types.ReplicaNames
	Cell             = types.Cell
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
	ReplicaError     = types.ReplicaError
)

// Re-export sentinel errors for convenience.
var (
	ErrAllReplicasFailed = types.ErrAllReplicasFailed
	ErrNotImplemented    = types.ErrNotImplemented
	ErrNoReplicas        = types.ErrNoReplicas
	ErrInFlight          = types.ErrInFlight
	ErrTableNotFound     = types.ErrTableNotFound
)

// Config holds the options that govern replica-set fan-out behaviour,
// set explicitly by the caller at construction time rather than read
// from process-global flags.
type Config struct {
	// DDLFailFast aborts a DDL fan-out at the first replica failure when
	// true. When false, DDL fans out best-effort across all replicas,
	// succeeding iff at least one replica succeeded.
	DDLFailFast bool

	// TimestampDiffMicros is the Δ window, in microseconds, below which
	// two cells from distinct replicas are treated as the same logical
	// write during LGet's merge.
	TimestampDiffMicros int64

	// GetRandomMode shuffles the replica order before each Get/GetBatch
	// call when true, to spread read load across replicas.
	GetRandomMode bool

	// ReplicaNames holds display names used in log messages and metrics
	// labels in place of the numeric replica index.
	ReplicaNames ReplicaNames

	// Logger receives warnings for per-replica fan-out failures and
	// errors for fail-fast DDL aborts. Defaults to a no-op logger.
	Logger Logger

	// Metrics receives operational counters and histograms for fan-out
	// operations. Defaults to a no-op collector.
	Metrics MetricsCollector
}

// DefaultConfig returns a Config with sensible defaults: best-effort DDL,
// a 1ms (1000µs) LGet merge window, deterministic replica order, and
// no-op logging/metrics.
func DefaultConfig() *Config {
	return &Config{
		DDLFailFast:         false,
		TimestampDiffMicros: 1000,
		GetRandomMode:       false,
		Logger:              logging.NewNopLogger(),
		Metrics:             metrics.NewNopMetrics(),
	}
}

// Option configures a Config.
type Option func(*Config)

// WithDDLFailFast sets the DDL fan-out fail-fast policy.
//
// When enabled, the first replica failure aborts a DDL fan-out and
// remaining replicas are not invoked. When disabled (the default), DDL
// fans out best-effort, succeeding iff at least one replica succeeded.
func WithDDLFailFast(enabled bool) Option {
	return func(c *Config) {
		c.DDLFailFast = enabled
	}
}

// WithTimestampDiff sets the Δ window, in microseconds, used by LGet's
// merge to collapse near-simultaneous writes observed on distinct
// replicas.
func WithTimestampDiff(micros int64) Option {
	return func(c *Config) {
		c.TimestampDiffMicros = micros
	}
}

// WithGetRandomMode enables Fisher-Yates-shuffling the replica order
// before each Get/GetBatch call, to spread read load across replicas.
func WithGetRandomMode(enabled bool) Option {
	return func(c *Config) {
		c.GetRandomMode = enabled
	}
}

// WithReplicaNames sets custom display names for replicas, used in log
// messages and metrics labels instead of the numeric index.
func WithReplicaNames(names ReplicaNames) Option {
	return func(c *Config) {
		c.ReplicaNames = names
	}
}

// WithLogger sets the structured logger used for fan-out warnings and
// fail-fast DDL errors. If not set, a no-op logger is used.
//
// The interface is intentionally shaped to be satisfied by
// zap.SugaredLogger without an adapter.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector used for per-replica counters
// and durations. If not set, a no-op collector is used.
//
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
func WithMetrics(collector MetricsCollector) Option {
	return func(c *Config) {
		c.Metrics = collector
	}
}

func newConfig(opts ...Option) *Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// propagateReplicaNames sets replica display names on components that
// implement types.ReplicaNamer.
func propagateReplicaNames(c *Config) {
	if c.ReplicaNames == nil {
		return
	}

	if namer, ok := c.Metrics.(types.ReplicaNamer); ok {
		namer.SetReplicaNames(c.ReplicaNames)
	}
}

func (c *Config) name(i ReplicaIndex) string {
	return c.ReplicaNames.Name(i)
}
