package report

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a request carries neither report
	// text nor image bytes, or an uploaded image is empty.
	ErrInvalidInput = errors.New("no report text or image supplied")

	// ErrNoReports is returned when a user has no stored reports.
	ErrNoReports = errors.New("no reports found for user")
)

// ExtractionError indicates the extraction collaborator failed or recognized
// no tests in the input. The request is aborted and nothing is persisted.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return fmt.Sprintf("extraction failed: %v", e.Err) }
func (e *ExtractionError) Unwrap() error { return e.Err }

// SummarizationError indicates the summarization collaborator failed. The
// orchestrator persists the report anyway with a marker summary, so this
// error never aborts a request; it is kept distinguishable for logging.
type SummarizationError struct {
	Err error
}

func (e *SummarizationError) Error() string { return fmt.Sprintf("summarization failed: %v", e.Err) }
func (e *SummarizationError) Unwrap() error { return e.Err }
