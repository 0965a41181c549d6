package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-coach-backend/internal/delivery/http/response"
	"interview-coach-backend/internal/domain"
	"interview-coach-backend/internal/usecase"
)

type InterviewHandler struct {
	interviewUC domain.InterviewUsecase
}

func NewInterviewHandler(protected *gin.RouterGroup, interviewUC domain.InterviewUsecase) {
	handler := &InterviewHandler{interviewUC: interviewUC}

	interviews := protected.Group("/interviews")
	{
		interviews.POST("", handler.Start)
		interviews.GET("", handler.History)
		interviews.GET("/:id", handler.Get)
		interviews.POST("/:id/answers", handler.SubmitAnswer)
		interviews.POST("/:id/restart", handler.Restart)
		interviews.GET("/:id/report", handler.ExportReport)
	}
}

// Start godoc
// @Summary      Start an interview
// @Description  Creates a session on the first question. A CV, when given, is analyzed as the introduction.
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      domain.StartInterviewRequest  true  "Interview options"
// @Success      201      {object}  response.Response{data=domain.InterviewSession}
// @Failure      400      {object}  response.Response
// @Router       /interviews [post]
func (h *InterviewHandler) Start(c *gin.Context) {
	var req domain.StartInterviewRequest
	if !bindJSON(c, &req) {
		return
	}
	session, err := h.interviewUC.Start(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusCreated, "Interview started", session)
}

// SubmitAnswer godoc
// @Summary      Answer the current question
// @Tags         interviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Session ID"
// @Param        request  body      domain.SubmitAnswerRequest  true  "Answer"
// @Success      200      {object}  response.Response{data=domain.SubmitAnswerResult}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /interviews/{id}/answers [post]
func (h *InterviewHandler) SubmitAnswer(c *gin.Context) {
	var req domain.SubmitAnswerRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.interviewUC.SubmitAnswer(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	msg := "Answer recorded"
	if res.State == domain.StateComplete {
		msg = "Interview complete"
	}
	response.Success(c, http.StatusOK, msg, res)
}

// Restart godoc
// @Summary      Restart an interview
// @Tags         interviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.InterviewSession}
// @Failure      404  {object}  response.Response
// @Router       /interviews/{id}/restart [post]
func (h *InterviewHandler) Restart(c *gin.Context) {
	session, err := h.interviewUC.Restart(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview restarted", session)
}

// Get godoc
// @Summary      Get an interview session
// @Tags         interviews
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  response.Response{data=domain.InterviewSession}
// @Failure      404  {object}  response.Response
// @Router       /interviews/{id} [get]
func (h *InterviewHandler) Get(c *gin.Context) {
	session, err := h.interviewUC.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview retrieved", session)
}

// History godoc
// @Summary      Completed interview reports
// @Tags         interviews
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]domain.InterviewReportRecord}
// @Router       /interviews [get]
func (h *InterviewHandler) History(c *gin.Context) {
	records, err := h.interviewUC.History(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Interview history retrieved", records)
}

// ExportReport godoc
// @Summary      Download an interview report
// @Tags         interviews
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Security     BearerAuth
// @Param        id      path   string  true   "Session ID"
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200     {file}  binary
// @Failure      404     {object}  response.Response
// @Failure      409     {object}  response.Response
// @Router       /interviews/{id}/report [get]
func (h *InterviewHandler) ExportReport(c *gin.Context) {
	format := c.DefaultQuery("format", usecase.ExportFormatXLSX)
	data, filename, err := h.interviewUC.ExportReport(c.Request.Context(), c.Param("id"), format)
	if err != nil {
		_ = c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == usecase.ExportFormatCSV {
		contentType = "text/csv; charset=utf-8"
	}
	response.Attachment(c, filename, contentType, data)
}
