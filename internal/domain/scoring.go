package domain

import (
	"context"
	"time"
)

// AnswerBreakdown holds the five heuristic components of an answer score.
type AnswerBreakdown struct {
	Length      float64 `json:"length"`
	Specificity float64 `json:"specificity"`
	Alignment   float64 `json:"alignment"`
	Relevance   float64 `json:"relevance"`
	Depth       float64 `json:"depth"`
}

// AnswerScore is derived from (question, answer, job spec, personality) and is never authoritative state.
type AnswerScore struct {
	QuestionIndex int             `json:"question_index"`
	Question      string          `json:"question"`
	Category      string          `json:"category,omitempty"`
	Score         float64         `json:"score"` // 0-10, one decimal
	Feedback      string          `json:"feedback"`
	Personality   PersonalityMode `json:"personality"`
	WordCount     int             `json:"word_count"`
	Breakdown     AnswerBreakdown `json:"breakdown"`
}

type CVAnalysis struct {
	OverallStrength      int             `json:"overall_strength"` // 0-10
	Alignment            int             `json:"alignment"`        // 0-100
	Strengths            []string        `json:"strengths"`
	Weaknesses           []string        `json:"weaknesses"`
	Feedback             string          `json:"feedback"`
	Personality          PersonalityMode `json:"personality"`
	RequiredTechnologies []string        `json:"required_technologies"`
	MatchedTechnologies  []string        `json:"matched_technologies"`
	MissingTechnologies  []string        `json:"missing_technologies"`
}

// CVAnalysisRecord is an archived analysis requested by a signed-in user.
type CVAnalysisRecord struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Analysis  CVAnalysis `json:"analysis"`
	CreatedAt time.Time  `json:"created_at"`
}

type EmbeddingAnswerInput struct {
	QuestionID string `json:"question_id" binding:"required,max=200"`
	Question   string `json:"question,omitempty" binding:"max=2000"` // used by the heuristic fallback
	Answer     string `json:"answer" binding:"max=20000"`
}

type EmbeddingQuestionScore struct {
	QuestionID string  `json:"question_id"`
	Score      int     `json:"score"` // 0-100
	Similarity float64 `json:"similarity"`
}

type EmbeddingScoreResult struct {
	PerQuestion []EmbeddingQuestionScore `json:"per_question"`
	Overall     int                      `json:"overall"`
	Provider    string                   `json:"provider"`
	Fallback    bool                     `json:"fallback"`
}

type ScoreAnswerRequest struct {
	Question    string `json:"question" binding:"required,max=2000"`
	Answer      string `json:"answer" binding:"max=20000"`
	JobSpec     string `json:"job_spec" binding:"max=20000"`
	Personality string `json:"personality" binding:"omitempty,personality"`
}

type AnalyzeCVRequest struct {
	CV          string `json:"cv" binding:"max=100000"`
	JobSpec     string `json:"job_spec" binding:"max=20000"`
	Personality string `json:"personality" binding:"omitempty,personality"`
}

type EmbeddingScoreRequest struct {
	JobSpec string                 `json:"job_spec" binding:"required,max=20000"`
	Answers []EmbeddingAnswerInput `json:"answers" binding:"required,min=1,max=20,dive"`
}

type CVAnalysisRepository interface {
	Create(ctx context.Context, record *CVAnalysisRecord) error
	ListByUser(ctx context.Context, userID string, limit int) ([]CVAnalysisRecord, error)
}

type ScoringUsecase interface {
	ScoreAnswer(ctx context.Context, req *ScoreAnswerRequest) (*AnswerScore, error)
	AnalyzeCV(ctx context.Context, req *AnalyzeCVRequest) (*CVAnalysis, error)
	ScoreWithEmbeddings(ctx context.Context, req *EmbeddingScoreRequest) (*EmbeddingScoreResult, error)
	ListCVAnalyses(ctx context.Context) ([]CVAnalysisRecord, error)
}
