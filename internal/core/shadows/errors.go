package shadows

import (
	"errors"
	"fmt"
)

var (
	// ErrNotImplemented is returned by entry points that exist for interface
	// symmetry but have no implementation.
	ErrNotImplemented = errors.New("shadows: not implemented")

	// ErrInvalidArgument is returned when a cast is requested with arguments
	// outside the supported range.
	ErrInvalidArgument = errors.New("shadows: invalid argument")
)

// validateRadius checks radius and resolution against the angle table bound
func validateRadius(radius, resolution int) error {
	if resolution < 1 {
		return fmt.Errorf("resolution %d must be at least 1: %w", resolution, ErrInvalidArgument)
	}
	if radius < 0 {
		return fmt.Errorf("radius %d must not be negative: %w", radius, ErrInvalidArgument)
	}
	if radius*resolution > MaxRadius {
		return fmt.Errorf("radius %d at resolution %d exceeds the maximum of %d: %w",
			radius, resolution, MaxRadius, ErrInvalidArgument)
	}
	return nil
}
