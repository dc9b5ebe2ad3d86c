package llm

import (
	"strings"
	"testing"

	"github.com/medlens/medlens/internal/domain/report"
)

func TestBuildExtractionPrompt_WithText(t *testing.T) {
	p := buildExtractionPrompt("Hemoglobin 10.2 g/dL (Low)")

	if !strings.Contains(p, "Hemoglobin 10.2 g/dL (Low)") {
		t.Error("report text missing from prompt")
	}
	if !strings.Contains(p, `"tests_raw"`) {
		t.Error("expected output schema missing from prompt")
	}
	if strings.Contains(p, "attached as an image") {
		t.Error("image note should not appear when text is present")
	}
}

func TestBuildExtractionPrompt_ImageOnly(t *testing.T) {
	p := buildExtractionPrompt("   ")
	if !strings.Contains(p, "attached as an image") {
		t.Error("blank text should fall back to the image note")
	}
}

func TestBuildSummaryPrompt(t *testing.T) {
	prev := 10.2
	tests := []report.TestRecord{{
		Name:          "Hemoglobin",
		Value:         report.NewMeasurement(11.0),
		Unit:          "g/dL",
		PreviousValue: &prev,
		Trend:         report.TrendIncreasing,
	}}
	age := 55
	patient := &report.PatientDetails{Age: &age, Sex: "F", Conditions: []string{"anemia"}}

	p, err := buildSummaryPrompt(tests, patient)
	if err != nil {
		t.Fatalf("buildSummaryPrompt: %v", err)
	}
	for _, want := range []string{"Hemoglobin", `"trend": "increasing"`, `"previous_value": 10.2`, `"age": 55`, "anemia"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(p, "DO NOT provide a diagnosis") {
		t.Error("no-diagnosis guard missing")
	}
}

func TestBuildSummaryPrompt_NilPatient(t *testing.T) {
	p, err := buildSummaryPrompt([]report.TestRecord{{Name: "X", Value: report.NewMeasurement(1)}}, nil)
	if err != nil {
		t.Fatalf("buildSummaryPrompt: %v", err)
	}
	if !strings.Contains(p, "{}") {
		t.Error("nil patient should render as an empty JSON object")
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"plain fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}\n", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
