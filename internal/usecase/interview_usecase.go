package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"interview-coach-backend/internal/domain"
	"interview-coach-backend/internal/interview"
	"interview-coach-backend/pkg/apperror"
	"interview-coach-backend/pkg/logger"
)

const (
	ExportFormatXLSX = "xlsx"
	ExportFormatCSV  = "csv"

	reportHistoryLimit = 50
	sessionLockStripes = 64
)

type interviewUsecase struct {
	store     domain.SessionStore
	reports   domain.InterviewReportRepository
	questions []domain.Question
	now       func() time.Time
	newID     func() string
	locks     [sessionLockStripes]sync.Mutex
}

// NewInterviewUsecase wires the orchestrator to its stores. reports may be nil when no database is configured.
func NewInterviewUsecase(store domain.SessionStore, reports domain.InterviewReportRepository, questions []domain.Question) domain.InterviewUsecase {
	if len(questions) == 0 {
		questions = interview.DefaultQuestions()
	}
	return &interviewUsecase{
		store:     store,
		reports:   reports,
		questions: questions,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// lock serializes mutations of one session within this process.
func (u *interviewUsecase) lock(sessionID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	m := &u.locks[h.Sum32()%sessionLockStripes]
	m.Lock()
	return m.Unlock
}

func requireUser(ctx context.Context) (string, error) {
	userID := domain.UserIDFromContext(ctx)
	if userID == "" {
		return "", apperror.Unauthorized("User not authenticated")
	}
	return userID, nil
}

func (u *interviewUsecase) Start(ctx context.Context, req *domain.StartInterviewRequest) (*domain.InterviewSession, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	mode, err := domain.ParsePersonality(req.Personality)
	if err != nil {
		return nil, apperror.BadRequest(err.Error())
	}

	categories := make([]domain.QuestionCategory, 0, len(req.Categories))
	for _, c := range req.Categories {
		cat, err := interview.ParseCategory(c)
		if err != nil {
			return nil, apperror.BadRequest(err.Error())
		}
		categories = append(categories, cat)
	}
	questions := interview.FilterByCategory(u.questions, categories)
	if len(questions) == 0 {
		return nil, apperror.BadRequest("No questions match the selected categories")
	}

	now := u.now()
	session := interview.NewSession(u.newID(), userID, questions, req.JobSpec, req.CV, mode, now)
	if err := interview.Start(session, now); err != nil {
		return nil, mapSessionError(err)
	}
	if err := u.store.Save(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	logger.Log.Info("interview started", "session_id", session.ID, "user_id", userID, "questions", len(questions))
	return session, nil
}

func (u *interviewUsecase) SubmitAnswer(ctx context.Context, sessionID string, req *domain.SubmitAnswerRequest) (*domain.SubmitAnswerResult, error) {
	unlock := u.lock(sessionID)
	defer unlock()

	session, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	score, err := interview.SubmitAnswer(session, req.Answer, u.now())
	if err != nil {
		return nil, mapSessionError(err)
	}
	if err := u.store.Save(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}

	result := &domain.SubmitAnswerResult{
		Score:        *score,
		State:        session.State,
		NextQuestion: interview.CurrentQuestion(session),
		Report:       session.Report,
	}
	if session.State == domain.StateComplete {
		u.archive(ctx, session)
	}
	return result, nil
}

func (u *interviewUsecase) Restart(ctx context.Context, sessionID string) (*domain.InterviewSession, error) {
	unlock := u.lock(sessionID)
	defer unlock()

	session, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := interview.Restart(session, u.now()); err != nil {
		return nil, mapSessionError(err)
	}
	if err := u.store.Save(ctx, session); err != nil {
		return nil, apperror.Internal(err)
	}
	return session, nil
}

func (u *interviewUsecase) Get(ctx context.Context, sessionID string) (*domain.InterviewSession, error) {
	return u.load(ctx, sessionID)
}

func (u *interviewUsecase) History(ctx context.Context) ([]domain.InterviewReportRecord, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.reports == nil {
		return []domain.InterviewReportRecord{}, nil
	}
	records, err := u.reports.ListByUser(ctx, userID, reportHistoryLimit)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return records, nil
}

func (u *interviewUsecase) ExportReport(ctx context.Context, sessionID string, format string) ([]byte, string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatXLSX
	}
	if format != ExportFormatXLSX && format != ExportFormatCSV {
		return nil, "", apperror.BadRequest("Unsupported export format. Use xlsx or csv")
	}

	record, err := u.completedRecord(ctx, sessionID)
	if err != nil {
		return nil, "", err
	}

	if format == ExportFormatCSV {
		return exportReportCSV(record)
	}
	return exportReportXLSX(record)
}

// completedRecord returns the report of a finished session, falling back to
// the archive once the live session has expired.
func (u *interviewUsecase) completedRecord(ctx context.Context, sessionID string) (*domain.InterviewReportRecord, error) {
	session, err := u.load(ctx, sessionID)
	if err == nil {
		if session.State != domain.StateComplete || session.Report == nil {
			return nil, apperror.Conflict("Interview is not complete yet")
		}
		return reportRecord(session), nil
	}

	var appErr *apperror.AppError
	if u.reports == nil || !errors.As(err, &appErr) || appErr.Code != http.StatusNotFound {
		return nil, err
	}

	record, repoErr := u.reports.GetBySessionID(ctx, sessionID)
	if repoErr != nil {
		if errors.Is(repoErr, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, apperror.Internal(repoErr)
	}
	if record.UserID != domain.UserIDFromContext(ctx) {
		return nil, err
	}
	return record, nil
}

// load fetches a session owned by the caller. Sessions of other users look missing.
func (u *interviewUsecase) load(ctx context.Context, sessionID string) (*domain.InterviewSession, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	session, err := u.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, apperror.NotFound("Interview session not found")
		}
		return nil, apperror.Internal(err)
	}
	if session.UserID != userID {
		return nil, apperror.NotFound("Interview session not found")
	}
	return session, nil
}

func (u *interviewUsecase) archive(ctx context.Context, session *domain.InterviewSession) {
	if u.reports == nil {
		return
	}
	record := reportRecord(session)
	record.ID = u.newID()
	if err := u.reports.Create(ctx, record); err != nil {
		logger.Log.Error("failed to archive interview report", "session_id", session.ID, "error", err)
	}
}

func reportRecord(s *domain.InterviewSession) *domain.InterviewReportRecord {
	record := &domain.InterviewReportRecord{
		SessionID:   s.ID,
		UserID:      s.UserID,
		Personality: s.Personality,
		Scores:      s.Scores,
		CompletedAt: s.UpdatedAt,
	}
	if s.Report != nil {
		record.Report = *s.Report
	}
	if s.CompletedAt != nil {
		record.CompletedAt = *s.CompletedAt
	}
	return record
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, interview.ErrEmptyAnswer):
		return apperror.BadRequest("Answer must not be empty")
	case errors.Is(err, interview.ErrInvalidTransition):
		return apperror.Conflict("Interview session is not in a state that allows this action")
	case errors.Is(err, interview.ErrNoQuestions):
		return apperror.BadRequest("Interview has no questions")
	default:
		return apperror.Internal(err)
	}
}

var reportColumns = []string{"#", "Category", "Question", "Score", "Words", "Feedback"}

func scoreRow(s domain.AnswerScore) []string {
	return []string{
		strconv.Itoa(s.QuestionIndex + 1),
		s.Category,
		s.Question,
		strconv.FormatFloat(s.Score, 'f', 1, 64),
		strconv.Itoa(s.WordCount),
		s.Feedback,
	}
}

func summaryRows(r *domain.InterviewReportRecord) [][]string {
	return [][]string{
		{"Employability score", strconv.Itoa(r.Report.EmployabilityScore)},
		{"Average answer score", strconv.FormatFloat(r.Report.AverageScore, 'f', 1, 64)},
		{"Answered", fmt.Sprintf("%d/%d", r.Report.Answered, r.Report.TotalQuestions)},
		{"Response quality", r.Report.ResponseQuality},
		{"Job alignment", r.Report.JobAlignment},
		{"Feedback", r.Report.Feedback},
	}
}

func exportFilename(r *domain.InterviewReportRecord, ext string) string {
	return fmt.Sprintf("interview_report_%s_%s.%s", r.CompletedAt.Format("20060102_150405"), shortID(r.SessionID), ext)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// exportReportXLSX writes a scores sheet and a summary sheet
func exportReportXLSX(r *domain.InterviewReportRecord) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Scores"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, "", fmt.Errorf("failed to rename sheet: %w", err)
	}

	for i, col := range reportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(reportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, s := range r.Scores {
		values := []interface{}{s.QuestionIndex + 1, s.Category, s.Question, s.Score, s.WordCount, s.Feedback}
		for colIdx, v := range values {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, v)
		}
	}
	f.SetColWidth(sheetName, "C", "C", 60)
	f.SetColWidth(sheetName, "F", "F", 80)

	summary := "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, "", fmt.Errorf("failed to create summary sheet: %w", err)
	}
	for rowIdx, row := range summaryRows(r) {
		for colIdx, v := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
			f.SetCellValue(summary, cell, v)
		}
	}
	f.SetColWidth(summary, "A", "A", 24)
	f.SetColWidth(summary, "B", "B", 80)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), exportFilename(r, ExportFormatXLSX), nil
}

// exportReportCSV writes the per-answer rows followed by the summary block
func exportReportCSV(r *domain.InterviewReportRecord) ([]byte, string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := [][]string{reportColumns}
	for _, s := range r.Scores {
		records = append(records, scoreRow(s))
	}
	records = append(records, []string{})
	records = append(records, summaryRows(r)...)

	if err := w.WriteAll(records); err != nil {
		return nil, "", fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), exportFilename(r, ExportFormatCSV), nil
}
