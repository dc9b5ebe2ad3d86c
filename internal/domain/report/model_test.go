package report

import (
	"encoding/json"
	"testing"
)

func TestMeasurementUnmarshal_Number(t *testing.T) {
	var m Measurement
	if err := json.Unmarshal([]byte(`10.2`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	f, err := m.Float()
	if err != nil {
		t.Fatalf("Float: %v", err)
	}
	if f != 10.2 {
		t.Errorf("Float = %v, want 10.2", f)
	}
}

func TestMeasurementUnmarshal_String(t *testing.T) {
	var m Measurement
	if err := json.Unmarshal([]byte(`"11200"`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	f, err := m.Float()
	if err != nil {
		t.Fatalf("Float: %v", err)
	}
	if f != 11200 {
		t.Errorf("Float = %v, want 11200", f)
	}
}

func TestMeasurementUnmarshal_NonNumericString(t *testing.T) {
	var m Measurement
	if err := json.Unmarshal([]byte(`"positive"`), &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, err := m.Float(); err == nil {
		t.Error("Float on non-numeric value should error")
	}
	if m.String() != "positive" {
		t.Errorf("String = %q, want %q", m.String(), "positive")
	}
}

func TestMeasurementUnmarshal_Invalid(t *testing.T) {
	var m Measurement
	if err := json.Unmarshal([]byte(`[1]`), &m); err == nil {
		t.Error("expected error for non-scalar value")
	}
}

func TestMeasurementMarshal(t *testing.T) {
	tests := []struct {
		name string
		m    Measurement
		want string
	}{
		{"numeric emits number", NewMeasurement(10.2), `10.2`},
		{"numeric string emits number", MeasurementFromString("11200"), `11200`},
		{"non-numeric emits string", MeasurementFromString("trace"), `"trace"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.m)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if string(b) != tt.want {
				t.Errorf("marshal = %s, want %s", b, tt.want)
			}
		})
	}
}

func TestMeasurementFloat_Empty(t *testing.T) {
	if _, err := MeasurementFromString("").Float(); err == nil {
		t.Error("empty measurement should not parse")
	}
}

func TestTestRecordAnnotated(t *testing.T) {
	prev := 10.0
	tests := []struct {
		name string
		rec  TestRecord
		want bool
	}{
		{"bare record", TestRecord{Name: "X"}, false},
		{"previous only", TestRecord{Name: "X", PreviousValue: &prev}, false},
		{"trend only", TestRecord{Name: "X", Trend: TrendStable}, false},
		{"both", TestRecord{Name: "X", PreviousValue: &prev, Trend: TrendStable}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Annotated(); got != tt.want {
				t.Errorf("Annotated = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTestRecordJSON_OmitsUnsetAnnotations(t *testing.T) {
	b, err := json.Marshal(TestRecord{Name: "Hemoglobin", Value: NewMeasurement(10.2), Unit: "g/dL"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"previous_value", "trend", "status"} {
		if _, ok := raw[key]; ok {
			t.Errorf("field %q should be omitted when unset", key)
		}
	}
}
