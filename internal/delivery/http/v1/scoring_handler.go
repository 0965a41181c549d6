package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"interview-coach-backend/internal/delivery/http/middleware"
	"interview-coach-backend/internal/delivery/http/response"
	"interview-coach-backend/internal/domain"
	"interview-coach-backend/pkg/apperror"
	"interview-coach-backend/pkg/logger"
	"interview-coach-backend/pkg/security"
	"interview-coach-backend/pkg/security/antivirus"
)

// multipartOverhead leaves room for the other form fields around the CV file.
const multipartOverhead = 64 << 10

const maxJobSpecLength = 20000

// UploadPolicy bounds CV uploads. Limiter and Scanner are optional.
type UploadPolicy struct {
	Limiter  *security.UploadLimiter
	Scanner  antivirus.Scanner
	MaxBytes int64
}

type ScoringHandler struct {
	scoringUC      domain.ScoringUsecase
	uploadLimiter  *security.UploadLimiter
	scanner        antivirus.Scanner
	maxUploadBytes int64
}

func NewScoringHandler(public *gin.RouterGroup, protected *gin.RouterGroup, scoringUC domain.ScoringUsecase, uploads UploadPolicy, guards ...gin.HandlerFunc) {
	handler := &ScoringHandler{
		scoringUC:      scoringUC,
		uploadLimiter:  uploads.Limiter,
		scanner:        uploads.Scanner,
		maxUploadBytes: uploads.MaxBytes,
	}

	scoring := public.Group("/scoring", guards...)
	{
		scoring.POST("/answer", handler.ScoreAnswer)
		scoring.POST("/cv", handler.AnalyzeCV)
		scoring.POST("/cv/upload", handler.UploadCV)
		scoring.POST("/embeddings", handler.ScoreWithEmbeddings)
	}

	protected.GET("/scoring/cv/history", handler.CVHistory)
}

// ScoreAnswer godoc
// @Summary      Score one interview answer
// @Description  Heuristic 0-10 score with component breakdown and tone-specific feedback.
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Param        request  body      domain.ScoreAnswerRequest  true  "Question, answer and optional job spec"
// @Success      200      {object}  response.Response{data=domain.AnswerScore}
// @Failure      400      {object}  response.Response
// @Router       /scoring/answer [post]
func (h *ScoringHandler) ScoreAnswer(c *gin.Context) {
	var req domain.ScoreAnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.scoringUC.ScoreAnswer(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Answer scored", res)
}

// AnalyzeCV godoc
// @Summary      Analyze CV strength
// @Description  Scores a CV against an optional job spec. Signed-in users get the analysis archived.
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Param        request  body      domain.AnalyzeCVRequest  true  "CV text and job spec"
// @Success      200      {object}  response.Response{data=domain.CVAnalysis}
// @Failure      400      {object}  response.Response
// @Router       /scoring/cv [post]
func (h *ScoringHandler) AnalyzeCV(c *gin.Context) {
	var req domain.AnalyzeCVRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.scoringUC.AnalyzeCV(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV analyzed", res)
}

// UploadCV godoc
// @Summary      Analyze an uploaded CV
// @Description  Accepts a .txt or .md CV as multipart field "cv".
// @Tags         scoring
// @Accept       multipart/form-data
// @Produce      json
// @Param        cv           formData  file    true   "CV file (.txt, .md)"
// @Param        jobSpec      formData  string  false  "Job description"
// @Param        personality  formData  string  false  "supportive or direct"
// @Success      200          {object}  response.Response{data=domain.CVAnalysis}
// @Failure      400          {object}  response.Response
// @Failure      413          {object}  response.Response
// @Failure      429          {object}  response.Response
// @Failure      503          {object}  response.Response
// @Router       /scoring/cv/upload [post]
func (h *ScoringHandler) UploadCV(c *gin.Context) {
	ctx := c.Request.Context()
	userID := domain.UserIDFromContext(ctx)

	allowed, retryAfter, err := h.uploadLimiter.AllowUpload(ctx, c.ClientIP(), userID)
	if err != nil {
		logger.Log.Warn("upload limiter unavailable", "error", err)
	}
	if !allowed {
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		_ = c.Error(apperror.TooManyRequests("Too many CV uploads. Please try again later."))
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	fileHeader, err := c.FormFile("cv")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			_ = c.Error(apperror.New(http.StatusRequestEntityTooLarge, "CV file is too large", nil))
			return
		}
		_ = c.Error(apperror.BadRequest("Multipart field \"cv\" is required"))
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		_ = c.Error(apperror.New(http.StatusRequestEntityTooLarge, "CV file is too large", nil))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperror.BadRequest("Unable to read uploaded file"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		_ = c.Error(apperror.BadRequest("Unable to read uploaded file"))
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		_ = c.Error(apperror.New(http.StatusRequestEntityTooLarge, "CV file is too large", nil))
		return
	}
	data = security.StripBOM(data)

	result := security.ValidateFile(fileHeader.Filename, data, http.DetectContentType(data))
	if !result.Valid {
		h.logRejected(c, map[string]interface{}{"reason": result.Error, "extension": result.Extension})
		_ = c.Error(apperror.BadRequest("Unsupported CV file: " + result.Error))
		return
	}

	if h.scanner != nil {
		verdict := h.scanner.Scan(ctx, data)
		if verdict.Infected {
			details := map[string]interface{}{"reason": "malware scan", "scanner": verdict.Scanner, "threat": verdict.Threat}
			if verdict.Err != nil {
				details["error"] = verdict.Err.Error()
			}
			h.logRejected(c, details)
			if verdict.Err != nil {
				_ = c.Error(apperror.ServiceUnavailable("File scanning is unavailable. Please try again later.", verdict.Err))
				return
			}
			_ = c.Error(apperror.BadRequest("CV file was rejected by the malware scanner"))
			return
		}
	}

	jobSpec := c.PostForm("jobSpec")
	if jobSpec == "" {
		jobSpec = c.PostForm("job_spec")
	}
	if len(jobSpec) > maxJobSpecLength {
		_ = c.Error(apperror.BadRequest("Job description is too long"))
		return
	}

	req := domain.AnalyzeCVRequest{
		CV:          string(data),
		JobSpec:     jobSpec,
		Personality: c.PostForm("personality"),
	}
	if !domain.IsValidPersonality(req.Personality) {
		_ = c.Error(apperror.BadRequest("Feedback mode must be supportive or direct"))
		return
	}

	res, err := h.scoringUC.AnalyzeCV(ctx, &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV analyzed", res)
}

func (h *ScoringHandler) logRejected(c *gin.Context, details map[string]interface{}) {
	if sl := security.DefaultLogger(); sl != nil {
		sl.Log(c.Request.Context(), security.SecurityEvent{
			Event:     security.EventUploadRejected,
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			RequestID: c.GetString(middleware.RequestIDKey),
			Details:   details,
		})
	}
}

// ScoreWithEmbeddings godoc
// @Summary      Score answers by semantic similarity
// @Description  Uses the configured embedding provider; falls back to heuristic scores (fallback=true) when unavailable.
// @Tags         scoring
// @Accept       json
// @Produce      json
// @Param        request  body      domain.EmbeddingScoreRequest  true  "Job spec and answers"
// @Success      200      {object}  response.Response{data=domain.EmbeddingScoreResult}
// @Failure      400      {object}  response.Response
// @Router       /scoring/embeddings [post]
func (h *ScoringHandler) ScoreWithEmbeddings(c *gin.Context) {
	var req domain.EmbeddingScoreRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.scoringUC.ScoreWithEmbeddings(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Answers scored", res)
}

// CVHistory godoc
// @Summary      Archived CV analyses
// @Tags         scoring
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.CVAnalysisRecord}
// @Failure      401  {object}  response.Response
// @Router       /scoring/cv/history [get]
func (h *ScoringHandler) CVHistory(c *gin.Context) {
	records, err := h.scoringUC.ListCVAnalyses(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "CV analyses retrieved", records)
}
