package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-coach-backend/internal/delivery/http/response"
	"interview-coach-backend/internal/domain"
)

type HealthHandler struct {
	healthUC domain.HealthUsecase
}

func NewHealthHandler(public *gin.RouterGroup, healthUC domain.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}
	public.GET("/health", handler.Health)
}

// Health godoc
// @Summary      Service health
// @Description  Reports database, session store and embedding provider status.
// @Tags         health
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.HealthStatus}
// @Failure      503  {object}  response.Response{data=domain.HealthStatus}
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.healthUC.Check(c.Request.Context())
	if status.Status != domain.StatusUp {
		response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
		return
	}
	response.Success(c, http.StatusOK, "System operational", status)
}
