package report

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Trend describes the direction of change between a test result and the
// matching result from the user's previous report.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Measurement holds a lab value exactly as it arrived from extraction.
// Upstream models emit values as either JSON numbers or strings ("10.2" vs
// 10.2), so the raw token is kept and parsed only when a comparison needs it.
type Measurement struct {
	raw string
}

// NewMeasurement builds a Measurement from a numeric value.
func NewMeasurement(v float64) Measurement {
	return Measurement{raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// MeasurementFromString builds a Measurement from its raw text form.
func MeasurementFromString(s string) Measurement {
	return Measurement{raw: s}
}

func (m Measurement) String() string { return m.raw }

// Float parses the measurement as a floating-point number.
func (m Measurement) Float() (float64, error) {
	s := strings.TrimSpace(m.raw)
	if s == "" {
		return 0, fmt.Errorf("empty measurement value")
	}
	return strconv.ParseFloat(s, 64)
}

func (m *Measurement) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("measurement must be a string or number: %w", err)
	}
	m.raw = n.String()
	return nil
}

func (m Measurement) MarshalJSON() ([]byte, error) {
	if f, err := m.Float(); err == nil {
		return json.Marshal(f)
	}
	return json.Marshal(m.raw)
}

// TestRecord is one lab measurement. PreviousValue and Trend are set together
// by trend analysis when the previous report contains a matching test, and
// are absent otherwise.
type TestRecord struct {
	Name          string      `json:"name"`
	Value         Measurement `json:"value"`
	Unit          string      `json:"unit,omitempty"`
	Status        string      `json:"status,omitempty"`
	PreviousValue *float64    `json:"previous_value,omitempty"`
	Trend         Trend       `json:"trend,omitempty"`
}

// Annotated reports whether trend analysis matched this record against the
// previous report.
func (t TestRecord) Annotated() bool {
	return t.PreviousValue != nil && t.Trend != ""
}

// Summary is the patient-facing narrative produced by the summarization
// collaborator.
type Summary struct {
	Summary      string   `json:"summary"`
	Explanations []string `json:"explanations,omitempty"`
}

// UnavailableSummary is the marker stored in place of a narrative when
// summarization fails. Structured test data is worth more than the narrative,
// so the report is persisted anyway.
func UnavailableSummary() Summary {
	return Summary{Summary: "Summary generation failed. Your structured test results are listed below."}
}

// PatientDetails carries optional patient context forwarded to the
// summarization collaborator.
type PatientDetails struct {
	Age        *int     `json:"age,omitempty"`
	Sex        string   `json:"sex,omitempty"`
	Conditions []string `json:"conditions,omitempty"`
}

// Report is one immutable snapshot of a user's analyzed tests. Reports are
// only ever appended; "latest" is decided purely by CreatedAt ordering.
type Report struct {
	ID                 uuid.UUID    `json:"id"`
	UserID             string       `json:"user_id"`
	Tests              []TestRecord `json:"tests"`
	Summary            Summary      `json:"summary_data"`
	SummaryUnavailable bool         `json:"summary_unavailable,omitempty"`
	Confidence         float64      `json:"confidence"`
	CreatedAt          time.Time    `json:"created_at"`
}
