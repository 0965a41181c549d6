package domain

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("interview session not found")

type QuestionCategory string

const (
	CategoryTechnical  QuestionCategory = "Technical"
	CategoryBehavioral QuestionCategory = "Behavioral"
	CategoryGrowth     QuestionCategory = "Growth"
)

type Question struct {
	Index    int              `json:"index" yaml:"-"`
	Prompt   string           `json:"prompt" yaml:"prompt"`
	Category QuestionCategory `json:"category" yaml:"category"`
}

type Answer struct {
	QuestionIndex int       `json:"question_index"`
	Text          string    `json:"text"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

// SessionState is the orchestrator state: not_started -> in_progress -> complete.
type SessionState string

const (
	StateNotStarted SessionState = "not_started"
	StateInProgress SessionState = "in_progress"
	StateComplete   SessionState = "complete"
)

type CategoryBreakdown struct {
	Category     QuestionCategory `json:"category"`
	Answered     int              `json:"answered"`
	AverageScore float64          `json:"average_score"`
}

type InterviewReport struct {
	EmployabilityScore int                 `json:"employability_score"` // 0-100
	AverageScore       float64             `json:"average_score"`       // 0-10
	Answered           int                 `json:"answered"`
	TotalQuestions     int                 `json:"total_questions"`
	ResponseQuality    string              `json:"response_quality"`
	JobAlignment       string              `json:"job_alignment"`
	Categories         []CategoryBreakdown `json:"categories"`
	Feedback           string              `json:"feedback"`
}

// InterviewSession exclusively owns its answers and the scores derived from them.
type InterviewSession struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Personality  PersonalityMode  `json:"personality"`
	JobSpec      string           `json:"job_spec,omitempty"`
	CV           string           `json:"cv,omitempty"`
	Questions    []Question       `json:"questions"`
	State        SessionState     `json:"state"`
	CurrentIndex int              `json:"current_index"`
	Answers      []Answer         `json:"answers"`
	Scores       []AnswerScore    `json:"scores"`
	Introduction *CVAnalysis      `json:"introduction,omitempty"`
	Report       *InterviewReport `json:"report,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	CompletedAt  *time.Time       `json:"completed_at,omitempty"`
}

// InterviewReportRecord is the archived outcome of a completed session.
type InterviewReportRecord struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	UserID      string          `json:"user_id"`
	Personality PersonalityMode `json:"personality"`
	Report      InterviewReport `json:"report"`
	Scores      []AnswerScore   `json:"scores"`
	CompletedAt time.Time       `json:"completed_at"`
}

type StartInterviewRequest struct {
	CV          string   `json:"cv" binding:"max=100000"`
	JobSpec     string   `json:"job_spec" binding:"max=20000"`
	Personality string   `json:"personality" binding:"omitempty,personality"`
	Categories  []string `json:"categories" binding:"omitempty,dive,oneof=Technical Behavioral Growth"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" binding:"required,max=20000"`
}

type SubmitAnswerResult struct {
	Score        AnswerScore      `json:"score"`
	State        SessionState     `json:"state"`
	NextQuestion *Question        `json:"next_question,omitempty"`
	Report       *InterviewReport `json:"report,omitempty"`
}

// SessionStore keeps live sessions as ephemeral keyed state with expiry.
type SessionStore interface {
	Get(ctx context.Context, id string) (*InterviewSession, error)
	Save(ctx context.Context, session *InterviewSession) error
	Delete(ctx context.Context, id string) error
}

type InterviewReportRepository interface {
	Create(ctx context.Context, record *InterviewReportRecord) error
	GetBySessionID(ctx context.Context, sessionID string) (*InterviewReportRecord, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]InterviewReportRecord, error)
}

type InterviewUsecase interface {
	Start(ctx context.Context, req *StartInterviewRequest) (*InterviewSession, error)
	SubmitAnswer(ctx context.Context, sessionID string, req *SubmitAnswerRequest) (*SubmitAnswerResult, error)
	Restart(ctx context.Context, sessionID string) (*InterviewSession, error)
	Get(ctx context.Context, sessionID string) (*InterviewSession, error)
	History(ctx context.Context) ([]InterviewReportRecord, error)
	ExportReport(ctx context.Context, sessionID string, format string) ([]byte, string, error)
}
