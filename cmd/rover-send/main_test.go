package main

import (
	"math"
	"testing"
)

func TestBuildMotion(t *testing.T) {
	nan := math.NaN()
	tests := []struct {
		name       string
		yaw, pitch float64
		fields     int
		wantErr    bool
	}{
		{"drive only", nan, nan, 2, false},
		{"yaw", 10, nan, 3, false},
		{"yaw and pitch", 10, -5, 4, false},
		{"pitch without yaw", nan, 5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := buildMotion(0.5, 1, tt.yaw, tt.pitch)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if err == nil && cmd.FieldCount() != tt.fields {
				t.Errorf("Expected %d fields, got %d", tt.fields, cmd.FieldCount())
			}
		})
	}
}
