package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"interview-coach-backend/internal/domain"
)

type cvAnalysisRepo struct {
	db *pgxpool.Pool
}

func NewCVAnalysisRepository(db *pgxpool.Pool) domain.CVAnalysisRepository {
	return &cvAnalysisRepo{db: db}
}

func (r *cvAnalysisRepo) Create(ctx context.Context, record *domain.CVAnalysisRecord) error {
	a := record.Analysis
	query := `INSERT INTO cv_analyses (id, user_id, overall_strength, alignment, strengths, weaknesses,
                  feedback, personality, required_technologies, matched_technologies, missing_technologies, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		record.ID, record.UserID, a.OverallStrength, a.Alignment,
		pq.Array(a.Strengths), pq.Array(a.Weaknesses), a.Feedback, string(a.Personality),
		pq.Array(a.RequiredTechnologies), pq.Array(a.MatchedTechnologies), pq.Array(a.MissingTechnologies),
		record.CreatedAt,
	)
	return err
}

func (r *cvAnalysisRepo) ListByUser(ctx context.Context, userID string, limit int) ([]domain.CVAnalysisRecord, error) {
	query := `SELECT id, user_id, overall_strength, alignment, strengths, weaknesses, feedback, personality,
                     required_technologies, matched_technologies, missing_technologies, created_at
              FROM cv_analyses WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []domain.CVAnalysisRecord{}
	for rows.Next() {
		var rec domain.CVAnalysisRecord
		var personality string
		a := &rec.Analysis
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &a.OverallStrength, &a.Alignment,
			pq.Array(&a.Strengths), pq.Array(&a.Weaknesses), &a.Feedback, &personality,
			pq.Array(&a.RequiredTechnologies), pq.Array(&a.MatchedTechnologies), pq.Array(&a.MissingTechnologies),
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		a.Personality = domain.PersonalityMode(personality)
		records = append(records, rec)
	}
	return records, rows.Err()
}
