package engine

import "go.uber.org/zap"

// ============================================================================
// ENGINE OPTIONS — Functional options for aggregation and Execute()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	NormalizeEmpty bool              // count absent values as "Tidak Terdefinisi"
	Bins           []int             // cross-tab bucketing for quantitative values
	Categories     []string          // fixed cross-tab category order
	GroupOrder     []string          // canonical group order
	DropZeros      bool              // drop zero-valued slices
	Colors         map[string]string // label → color overrides
	Logger         *zap.Logger
}

// WithNormalizeEmpty counts absent values under "Tidak Terdefinisi" instead
// of skipping them.
func WithNormalizeEmpty(on bool) Option {
	return func(c *config) { c.NormalizeEmpty = on }
}

// WithBins buckets quantitative values in a cross-tab using histogram bins.
func WithBins(bins []int) Option {
	return func(c *config) { c.Bins = bins }
}

// WithCategories fixes the cross-tab category list and order.
func WithCategories(categories []string) Option {
	return func(c *config) { c.Categories = categories }
}

// WithGroupOrder replaces the canonical kecamatan order.
func WithGroupOrder(order []string) Option {
	return func(c *config) { c.GroupOrder = order }
}

// WithDropZeros removes zero-valued slices from donut output.
func WithDropZeros(on bool) Option {
	return func(c *config) { c.DropZeros = on }
}

// WithColors sets label → color overrides for chart output.
func WithColors(colors map[string]string) Option {
	return func(c *config) { c.Colors = colors }
}

// WithLogger attaches a logger for Execute diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		GroupOrder: CanonicalKecamatan,
		Logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
