package report

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Input carries the raw material for one report request: extracted text,
// an uploaded image, or both, plus optional patient context.
type Input struct {
	Text      string
	Image     []byte
	ImageMIME string
	Patient   *PatientDetails
}

func (in Input) validate() error {
	if strings.TrimSpace(in.Text) == "" && len(in.Image) == 0 {
		return ErrInvalidInput
	}
	return nil
}

// Extraction is the structured result of one extraction collaborator call.
type Extraction struct {
	Tests      []TestRecord `json:"tests_raw"`
	Confidence float64      `json:"confidence"`
}

// Extractor converts raw report input into structured test records.
type Extractor interface {
	Extract(ctx context.Context, in Input) (*Extraction, error)
}

// Summarizer produces a patient-facing narrative from annotated tests.
type Summarizer interface {
	Summarize(ctx context.Context, tests []TestRecord, patient *PatientDetails) (*Summary, error)
}

// Service orchestrates the report pipeline: fetch the previous report,
// extract, merge trends, summarize, persist. Each request is one unit of
// work with no retries and no rollback.
type Service struct {
	repo       ReportRepository
	extractor  Extractor
	summarizer Summarizer
	logger     zerolog.Logger
}

// NewService creates the report service. Collaborators are constructed once
// at startup and injected here so tests can substitute doubles.
func NewService(repo ReportRepository, ex Extractor, sum Summarizer, logger zerolog.Logger) *Service {
	return &Service{repo: repo, extractor: ex, summarizer: sum, logger: logger}
}

// ProduceReport runs the full pipeline for one request and returns the
// persisted report. Error kinds: ErrInvalidInput for missing input,
// *ExtractionError when extraction fails or yields no tests, wrapped store
// errors for read/write failures. Summarization failure does not abort the
// request; the report is persisted with a marker summary instead.
func (s *Service) ProduceReport(ctx context.Context, userID string, in Input) (*Report, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	// No previous report is a valid state; anything else from the store
	// is a real failure and propagates.
	var previous []TestRecord
	prev, err := s.repo.Latest(ctx, userID)
	switch {
	case errors.Is(err, ErrNoReports):
	case err != nil:
		return nil, fmt.Errorf("fetch previous report: %w", err)
	default:
		previous = prev.Tests
	}

	ex, err := s.extractor.Extract(ctx, in)
	if err != nil {
		return nil, &ExtractionError{Err: err}
	}
	if len(ex.Tests) == 0 {
		return nil, &ExtractionError{Err: errors.New("no tests recognized in input")}
	}

	tests := AnalyzeTrends(ex.Tests, previous)

	r := &Report{
		UserID:     userID,
		Tests:      tests,
		Confidence: ex.Confidence,
	}
	summary, err := s.summarizer.Summarize(ctx, tests, in.Patient)
	if err != nil {
		sumErr := &SummarizationError{Err: err}
		s.logger.Warn().Err(sumErr).Str("user_id", userID).
			Msg("persisting report with unavailable summary")
		r.Summary = UnavailableSummary()
		r.SummaryUnavailable = true
	} else {
		r.Summary = *summary
	}

	if err := s.repo.Append(ctx, r); err != nil {
		return nil, fmt.Errorf("persist report: %w", err)
	}
	return r, nil
}

// Latest returns the most recent report for a user, or ErrNoReports.
func (s *Service) Latest(ctx context.Context, userID string) (*Report, error) {
	return s.repo.Latest(ctx, userID)
}

// History returns a user's reports newest-first. ErrNoReports when the user
// has none at all.
func (s *Service) History(ctx context.Context, userID string, limit, offset int) ([]*Report, int, error) {
	items, total, err := s.repo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return nil, 0, ErrNoReports
	}
	return items, total, nil
}
