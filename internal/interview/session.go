// Package interview defines the mock interview state machine.
//
// Valid state graph:
//
//	not_started ──► in_progress(0) ──► in_progress(i+1) ──► complete
//	                      ▲                                     │
//	                      └─────────────── restart ◄────────────┘
//
// Restart is accepted from every state and always lands on in_progress(0).
package interview

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"interview-coach-backend/internal/domain"
	"interview-coach-backend/internal/scoring"
)

var (
	ErrInvalidTransition = errors.New("invalid interview state transition")
	ErrEmptyAnswer       = errors.New("answer must not be empty")
	ErrNoQuestions       = errors.New("interview has no questions")
)

// validTransitions lists every allowed (from → to) pair outside of restart.
var validTransitions = map[domain.SessionState][]domain.SessionState{
	domain.StateNotStarted: {domain.StateInProgress},
	domain.StateInProgress: {domain.StateInProgress, domain.StateComplete},
	// complete only leaves through restart
}

// ParseState converts a raw string to a SessionState.
func ParseState(s string) (domain.SessionState, error) {
	st := domain.SessionState(s)
	switch st {
	case domain.StateNotStarted, domain.StateInProgress, domain.StateComplete:
		return st, nil
	}
	return "", fmt.Errorf("unknown interview state %q", s)
}

// IsTransitionAllowed returns true when moving from → to is permitted.
func IsTransitionAllowed(from, to domain.SessionState) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// NewSession builds a not-started session over a copy of questions.
func NewSession(id, userID string, questions []domain.Question, jobSpec, cv string, mode domain.PersonalityMode, now time.Time) *domain.InterviewSession {
	qs := make([]domain.Question, len(questions))
	copy(qs, questions)
	for i := range qs {
		qs[i].Index = i
	}
	return &domain.InterviewSession{
		ID:          id,
		UserID:      userID,
		Personality: mode,
		JobSpec:     jobSpec,
		CV:          cv,
		Questions:   qs,
		State:       domain.StateNotStarted,
		Answers:     []domain.Answer{},
		Scores:      []domain.AnswerScore{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Start moves a new session to the first question. A CV, when present, is
// analyzed against the job spec and kept as the session introduction.
func Start(s *domain.InterviewSession, now time.Time) error {
	if s.State != domain.StateNotStarted {
		return fmt.Errorf("%w: cannot start a session that is %s", ErrInvalidTransition, s.State)
	}
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	s.State = domain.StateInProgress
	s.CurrentIndex = 0
	s.Introduction = introduction(s)
	s.UpdatedAt = now
	return nil
}

func introduction(s *domain.InterviewSession) *domain.CVAnalysis {
	if strings.TrimSpace(s.CV) == "" {
		return nil
	}
	analysis := scoring.AnalyzeCV(s.CV, s.JobSpec, s.Personality)
	return &analysis
}

// CurrentQuestion returns the question awaiting an answer, nil outside in_progress.
func CurrentQuestion(s *domain.InterviewSession) *domain.Question {
	if s.State != domain.StateInProgress || s.CurrentIndex >= len(s.Questions) {
		return nil
	}
	q := s.Questions[s.CurrentIndex]
	return &q
}

// SubmitAnswer records and scores the answer to the current question, then
// advances. The answer to the last question completes the session and builds
// its report.
func SubmitAnswer(s *domain.InterviewSession, text string, at time.Time) (*domain.AnswerScore, error) {
	next := domain.StateInProgress
	if s.CurrentIndex >= len(s.Questions)-1 {
		next = domain.StateComplete
	}
	if s.State != domain.StateInProgress || !IsTransitionAllowed(s.State, next) {
		return nil, fmt.Errorf("%w: cannot answer a session that is %s", ErrInvalidTransition, s.State)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyAnswer
	}

	q := s.Questions[s.CurrentIndex]
	s.Answers = append(s.Answers, domain.Answer{
		QuestionIndex: q.Index,
		Text:          text,
		SubmittedAt:   at,
	})

	score := scoring.ScoreAnswer(q.Prompt, text, s.JobSpec, s.Personality)
	score.QuestionIndex = q.Index
	score.Category = string(q.Category)
	s.Scores = append(s.Scores, score)

	if next == domain.StateComplete {
		s.State = domain.StateComplete
		s.Report = BuildReport(s)
		completed := at
		s.CompletedAt = &completed
	} else {
		s.CurrentIndex++
	}
	s.UpdatedAt = at
	return &score, nil
}

// Restart discards every answer, score and report and returns to the first question.
func Restart(s *domain.InterviewSession, now time.Time) error {
	if len(s.Questions) == 0 {
		return ErrNoQuestions
	}
	if s.Introduction == nil {
		s.Introduction = introduction(s)
	}
	s.State = domain.StateInProgress
	s.CurrentIndex = 0
	s.Answers = []domain.Answer{}
	s.Scores = []domain.AnswerScore{}
	s.Report = nil
	s.CompletedAt = nil
	s.UpdatedAt = now
	return nil
}

// BuildReport summarizes the answers recorded so far.
func BuildReport(s *domain.InterviewSession) *domain.InterviewReport {
	texts := make([]string, len(s.Answers))
	for i, a := range s.Answers {
		texts[i] = a.Text
	}
	employability := scoring.EmployabilityScore(texts, s.JobSpec)

	jobAlignment := "No job spec provided"
	if s.JobSpec != "" {
		jobAlignment = "Analyzed"
	}

	return &domain.InterviewReport{
		EmployabilityScore: employability,
		AverageScore:       averageScore(s.Scores),
		Answered:           len(s.Answers),
		TotalQuestions:     len(s.Questions),
		ResponseQuality:    scoring.ResponseQuality(texts),
		JobAlignment:       jobAlignment,
		Categories:         categoryBreakdown(s.Scores),
		Feedback:           scoring.InterviewFeedback(employability, s.Personality),
	}
}

func roundOne(v float64) float64 {
	return math.Round(v*10) / 10
}

func averageScore(scores []domain.AnswerScore) float64 {
	if len(scores) == 0 {
		return 0
	}
	total := 0.0
	for _, sc := range scores {
		total += sc.Score
	}
	return roundOne(total / float64(len(scores)))
}

// categoryBreakdown groups scores by category in first-seen order.
func categoryBreakdown(scores []domain.AnswerScore) []domain.CategoryBreakdown {
	out := make([]domain.CategoryBreakdown, 0)
	totals := make(map[domain.QuestionCategory]float64)
	index := make(map[domain.QuestionCategory]int)
	for _, sc := range scores {
		cat := domain.QuestionCategory(sc.Category)
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, domain.CategoryBreakdown{Category: cat})
		}
		out[i].Answered++
		totals[cat] += sc.Score
	}
	for i := range out {
		out[i].AverageScore = roundOne(totals[out[i].Category] / float64(out[i].Answered))
	}
	return out
}
