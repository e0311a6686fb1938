package protocol

import (
	"encoding/json"
	"testing"
)

func TestTelemetryReadingSchema(t *testing.T) {
	data, err := json.Marshal(NewUnavailableReading())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if decoded["ultrasonic_distance"] != Unavailable {
		t.Errorf("Expected sentinel distance, got %v", decoded["ultrasonic_distance"])
	}

	uwb, ok := decoded["uwb_location"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected uwb_location object, got %T", decoded["uwb_location"])
	}
	for _, k := range []string{"x", "y", "z"} {
		if uwb[k] != Unavailable {
			t.Errorf("uwb_location.%s: got %v, want sentinel", k, uwb[k])
		}
	}

	imu, ok := decoded["imu"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected imu object, got %T", decoded["imu"])
	}
	for _, k := range []string{"gyro", "accel", "mag"} {
		vec, ok := imu[k].([]interface{})
		if !ok || len(vec) != 3 {
			t.Errorf("imu.%s: expected 3-element array, got %v", k, imu[k])
		}
	}
}
