package pack

import (
	"github.com/matzehuels/cratestack/pkg/errors"
	"github.com/matzehuels/cratestack/pkg/geom"
)

// Defaults for optional engine parameters.
const (
	DefaultEpsilon          = 1e-6
	DefaultSupportThreshold = 1.0
)

// OrderPolicy selects the order in which the engine attempts items.
type OrderPolicy string

const (
	// OrderVolumeDesc tries larger items first. Ties keep catalog order.
	OrderVolumeDesc OrderPolicy = "volume-desc"

	// OrderCatalog tries items exactly as listed.
	OrderCatalog OrderPolicy = "catalog"
)

// ParseOrderPolicy parses an ordering policy name.
func ParseOrderPolicy(s string) (OrderPolicy, error) {
	switch OrderPolicy(s) {
	case OrderVolumeDesc, OrderCatalog:
		return OrderPolicy(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidConfig, "unknown order policy %q", s)
}

// Config holds the engine parameters for a run.
type Config struct {
	// Container is the inner extents of the container, anchored at the
	// origin.
	Container geom.Vec3

	// SupportThreshold is the minimum supported footprint fraction in
	// (0, 1]. Zero means the default of 1.0 (full support).
	SupportThreshold float64

	// Epsilon is the geometric tolerance. Zero means the default.
	Epsilon float64

	// Order is the item ordering policy. Empty means volume-desc.
	Order OrderPolicy

	// MaxAttempts caps candidate evaluations per item. Zero means
	// unbounded.
	MaxAttempts int
}

// DefaultConfig returns a config with a unit-cube container of 100
// per side and all defaults applied.
func DefaultConfig() Config {
	return Config{
		Container:        geom.Vec3{X: 100, Y: 100, Z: 100},
		SupportThreshold: DefaultSupportThreshold,
		Epsilon:          DefaultEpsilon,
		Order:            OrderVolumeDesc,
	}
}

// ValidateAndSetDefaults checks the configuration and fills zero
// values with their defaults. It is idempotent.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Container.X <= 0 || c.Container.Y <= 0 || c.Container.Z <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"container extents must be positive, got [%g, %g, %g]",
			c.Container.X, c.Container.Y, c.Container.Z)
	}

	if c.SupportThreshold == 0 {
		c.SupportThreshold = DefaultSupportThreshold
	}
	if c.SupportThreshold < 0 || c.SupportThreshold > 1 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"support threshold must be in (0, 1], got %g", c.SupportThreshold)
	}

	if c.Epsilon == 0 {
		c.Epsilon = DefaultEpsilon
	}
	if c.Epsilon < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "epsilon must be positive, got %g", c.Epsilon)
	}

	if c.Order == "" {
		c.Order = OrderVolumeDesc
	}
	if _, err := ParseOrderPolicy(string(c.Order)); err != nil {
		return err
	}

	if c.MaxAttempts < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max attempts must be >= 0, got %d", c.MaxAttempts)
	}

	return nil
}
