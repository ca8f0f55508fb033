package dataprocessing

import (
	"fmt"
	"math"
)

// WithCurrentDensity appends a current_density column computed from the
// named current column divided by the sample area in m². The area is an
// external physical parameter of the device under test, never derived
// from the file.
func WithCurrentDensity(t *Table, currentCol string, sampleArea float64) error {
	if sampleArea <= 0 {
		return fmt.Errorf("sample area must be positive, got %g", sampleArea)
	}

	current, err := t.Column(currentCol)
	if err != nil {
		return fmt.Errorf("current channel: %w", err)
	}

	density := make([]float64, len(current))
	for i, v := range current {
		density[i] = v / sampleArea
	}

	return t.AppendColumn(ColCurrentDensity, density)
}

// TemperatureKey maps a raw temperature reading to its group key, the
// nearest integer Kelvin.
func TemperatureKey(t float64) float64 {
	return math.Round(t)
}
