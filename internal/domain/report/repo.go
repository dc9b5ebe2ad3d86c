package report

import "context"

// ReportRepository is the append-only store for assembled reports. Reports
// are never updated or deleted after insert.
type ReportRepository interface {
	// Append persists a new report, assigning ID and CreatedAt when unset.
	Append(ctx context.Context, r *Report) error
	// Latest returns the most recent report for a user, or ErrNoReports.
	Latest(ctx context.Context, userID string) (*Report, error)
	// ListByUser returns a user's reports newest-first with the total count.
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Report, int, error)
}
