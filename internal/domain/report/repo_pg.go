package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medlens/medlens/internal/platform/metrics"
)

type reportRepoPG struct{ pool *pgxpool.Pool }

// NewReportRepoPG creates a PostgreSQL-backed report repository.
func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository {
	return &reportRepoPG{pool: pool}
}

// reportPayload is the serialized body stored in the payload column. The
// identity columns (id, user_id, created_at) live beside it so "latest for
// user" stays a plain indexed query.
type reportPayload struct {
	Tests              []TestRecord `json:"tests"`
	Summary            Summary      `json:"summary_data"`
	SummaryUnavailable bool         `json:"summary_unavailable,omitempty"`
	Confidence         float64      `json:"confidence"`
}

func (r *reportRepoPG) Append(ctx context.Context, rep *Report) error {
	if rep.ID == uuid.Nil {
		rep.ID = uuid.New()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(reportPayload{
		Tests:              rep.Tests,
		Summary:            rep.Summary,
		SummaryUnavailable: rep.SummaryUnavailable,
		Confidence:         rep.Confidence,
	})
	if err != nil {
		return fmt.Errorf("encode report payload: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO reports (id, user_id, payload, created_at)
		VALUES ($1,$2,$3,$4)`,
		rep.ID, rep.UserID, payload, rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	metrics.ReportsPersisted.Inc()
	return nil
}

func (r *reportRepoPG) Latest(ctx context.Context, userID string) (*Report, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, payload, created_at FROM reports
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)
	rep, err := scanReport(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoReports
	}
	if err != nil {
		return nil, fmt.Errorf("query latest report: %w", err)
	}
	return rep, nil
}

func (r *reportRepoPG) ListByUser(ctx context.Context, userID string, limit, offset int) ([]*Report, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, payload, created_at FROM reports
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()
	var items []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate reports: %w", err)
	}
	return items, total, nil
}

func scanReport(row pgx.Row) (*Report, error) {
	var (
		rep Report
		raw []byte
	)
	if err := row.Scan(&rep.ID, &rep.UserID, &raw, &rep.CreatedAt); err != nil {
		return nil, err
	}
	var p reportPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode report payload: %w", err)
	}
	rep.Tests = p.Tests
	rep.Summary = p.Summary
	rep.SummaryUnavailable = p.SummaryUnavailable
	rep.Confidence = p.Confidence
	return &rep, nil
}
