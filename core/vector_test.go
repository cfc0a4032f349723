package core

import (
	"math"
	"testing"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{
			name:     "unit vector remains unchanged",
			input:    []float32{1.0, 0.0, 0.0},
			expected: []float32{1.0, 0.0, 0.0},
		},
		{
			name:     "scale non-unit vector",
			input:    []float32{3.0, 4.0},
			expected: []float32{0.6, 0.8},
		},
		{
			name:     "negative values",
			input:    []float32{-1.0, 1.0},
			expected: []float32{-1.0 / float32(math.Sqrt(2)), 1.0 / float32(math.Sqrt(2))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)
			if len(result) != len(tt.expected) {
				t.Fatalf("length = %d, want %d", len(result), len(tt.expected))
			}

			for i := range result {
				if diff := math.Abs(float64(tt.expected[i] - result[i])); diff > 1e-6 {
					t.Errorf("element %d = %v, want %v", i, result[i], tt.expected[i])
				}
			}

			var magnitude float32
			for _, v := range result {
				magnitude += v * v
			}
			magnitude = float32(math.Sqrt(float64(magnitude)))
			if diff := math.Abs(float64(magnitude - 1.0)); diff > 1e-6 {
				t.Errorf("magnitude = %v, want 1.0", magnitude)
			}
		})
	}
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	result := NormalizeVector([]float32{0.0, 0.0, 0.0})

	for i, v := range result {
		if v != 0.0 {
			t.Errorf("element %d = %v, want 0", i, v)
		}
	}
}

func TestNormalizeVector_EmptyVector(t *testing.T) {
	if result := NormalizeVector([]float32{}); len(result) != 0 {
		t.Errorf("expected empty result, got %v", result)
	}
}
