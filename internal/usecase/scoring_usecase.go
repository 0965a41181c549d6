package usecase

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"interview-coach-backend/internal/domain"
	"interview-coach-backend/internal/scoring"
	"interview-coach-backend/pkg/apperror"
	"interview-coach-backend/pkg/logger"
)

// HeuristicProvider names the fallback scorer in embedding results.
const HeuristicProvider = "heuristic"

const cvHistoryLimit = 20

type scoringUsecase struct {
	embedder scoring.Embedder
	cvRepo   domain.CVAnalysisRepository
	now      func() time.Time
}

// NewScoringUsecase wires the stateless scorers. embedder and cvRepo may be nil.
func NewScoringUsecase(embedder scoring.Embedder, cvRepo domain.CVAnalysisRepository) domain.ScoringUsecase {
	return &scoringUsecase{
		embedder: embedder,
		cvRepo:   cvRepo,
		now:      time.Now,
	}
}

func (u *scoringUsecase) ScoreAnswer(ctx context.Context, req *domain.ScoreAnswerRequest) (*domain.AnswerScore, error) {
	mode, err := domain.ParsePersonality(req.Personality)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	result := scoring.ScoreAnswer(req.Question, req.Answer, req.JobSpec, mode)
	return &result, nil
}

func (u *scoringUsecase) AnalyzeCV(ctx context.Context, req *domain.AnalyzeCVRequest) (*domain.CVAnalysis, error) {
	mode, err := domain.ParsePersonality(req.Personality)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}
	analysis := scoring.AnalyzeCV(req.CV, req.JobSpec, mode)

	userID := domain.UserIDFromContext(ctx)
	if userID != "" && u.cvRepo != nil {
		record := &domain.CVAnalysisRecord{
			ID:        uuid.NewString(),
			UserID:    userID,
			Analysis:  analysis,
			CreatedAt: u.now(),
		}
		// archiving is best effort; the analysis itself is derived data
		if err := u.cvRepo.Create(ctx, record); err != nil {
			logger.Log.Error("failed to archive CV analysis", "user_id", userID, "error", err)
		}
	}
	return &analysis, nil
}

func (u *scoringUsecase) ScoreWithEmbeddings(ctx context.Context, req *domain.EmbeddingScoreRequest) (*domain.EmbeddingScoreResult, error) {
	if u.embedder == nil {
		result := heuristicScores(req)
		return &result, nil
	}

	result, err := scoring.ScoreAnswersWithEmbeddings(ctx, u.embedder, req.JobSpec, req.Answers)
	if err == nil {
		return &result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, apperror.New(http.StatusRequestTimeout, "Request cancelled", ctxErr)
	}

	var providerErr *scoring.EmbeddingProviderError
	if errors.As(err, &providerErr) {
		logger.Log.Warn("embedding provider failed, using heuristic scores",
			"provider", providerErr.Provider, "error", providerErr.Err)
		fallback := heuristicScores(req)
		return &fallback, nil
	}
	return nil, apperror.Internal(err)
}

func (u *scoringUsecase) ListCVAnalyses(ctx context.Context) ([]domain.CVAnalysisRecord, error) {
	userID := domain.UserIDFromContext(ctx)
	if userID == "" {
		return nil, apperror.Unauthorized("User not authenticated")
	}
	if u.cvRepo == nil {
		return []domain.CVAnalysisRecord{}, nil
	}
	records, err := u.cvRepo.ListByUser(ctx, userID, cvHistoryLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return records, nil
}

// heuristicScores maps each 0-10 answer score onto the 0-100 embedding scale.
func heuristicScores(req *domain.EmbeddingScoreRequest) domain.EmbeddingScoreResult {
	result := domain.EmbeddingScoreResult{
		PerQuestion: make([]domain.EmbeddingQuestionScore, 0, len(req.Answers)),
		Provider:    HeuristicProvider,
		Fallback:    true,
	}
	total := 0
	for _, a := range req.Answers {
		s := scoring.ScoreAnswer(a.Question, a.Answer, req.JobSpec, domain.PersonalitySupportive)
		score := int(math.Round(s.Score * 10))
		total += score
		result.PerQuestion = append(result.PerQuestion, domain.EmbeddingQuestionScore{
			QuestionID: a.QuestionID,
			Score:      score,
		})
	}
	if len(req.Answers) > 0 {
		result.Overall = int(math.Round(float64(total) / float64(len(req.Answers))))
	}
	return result
}
