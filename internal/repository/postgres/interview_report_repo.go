package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"interview-coach-backend/internal/domain"
)

type interviewReportRepo struct {
	db *pgxpool.Pool
}

func NewInterviewReportRepository(db *pgxpool.Pool) domain.InterviewReportRepository {
	return &interviewReportRepo{db: db}
}

const interviewReportColumns = `id, session_id, user_id, personality, employability_score, average_score, report, scores, completed_at`

func (r *interviewReportRepo) Create(ctx context.Context, record *domain.InterviewReportRecord) error {
	report, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	scores, err := json.Marshal(record.Scores)
	if err != nil {
		return fmt.Errorf("marshal scores: %w", err)
	}

	query := `INSERT INTO interview_reports (` + interviewReportColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
              ON CONFLICT (session_id) DO UPDATE
              SET report = EXCLUDED.report, scores = EXCLUDED.scores,
                  employability_score = EXCLUDED.employability_score,
                  average_score = EXCLUDED.average_score, completed_at = EXCLUDED.completed_at`
	_, err = r.db.Exec(ctx, query,
		record.ID, record.SessionID, record.UserID, string(record.Personality),
		record.Report.EmployabilityScore, record.Report.AverageScore,
		string(report), string(scores), record.CompletedAt,
	)
	return err
}

func (r *interviewReportRepo) GetBySessionID(ctx context.Context, sessionID string) (*domain.InterviewReportRecord, error) {
	query := `SELECT ` + interviewReportColumns + ` FROM interview_reports WHERE session_id = $1`
	record, err := scanInterviewReport(r.db.QueryRow(ctx, query, sessionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *interviewReportRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.InterviewReportRecord, error) {
	query := `SELECT ` + interviewReportColumns + ` FROM interview_reports
              WHERE user_id = $1 ORDER BY completed_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.InterviewReportRecord{}
	for rows.Next() {
		record, err := scanInterviewReport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func scanInterviewReport(row pgx.Row) (*domain.InterviewReportRecord, error) {
	var (
		record             domain.InterviewReportRecord
		personality        string
		employability      int
		average            float64
		reportJSON, scores []byte
	)
	err := row.Scan(
		&record.ID, &record.SessionID, &record.UserID, &personality,
		&employability, &average, &reportJSON, &scores, &record.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Personality = domain.PersonalityMode(personality)
	if err := json.Unmarshal(reportJSON, &record.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	if err := json.Unmarshal(scores, &record.Scores); err != nil {
		return nil, fmt.Errorf("unmarshal scores: %w", err)
	}
	return &record, nil
}
