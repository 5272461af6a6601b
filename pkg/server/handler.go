package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/mcp", h.MCPHandler)
	api := r.Group("/api")
	{
		api.POST("/research", h.createJob)
		api.GET("/research", h.listJobs)
		api.GET("/research/:id", h.getJob)
		api.POST("/research/:id/cancel", h.cancelJob)
		api.GET("/research/:id/logs", h.getJobLogs)
		api.GET("/research/:id/sources", h.getJobSources)
	}
}

func (h *Handler) createJob(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := h.Service.CreateJob(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, job)
}

func (h *Handler) listJobs(c *gin.Context) {
	jobs, err := h.Service.ListJobs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Return empty list instead of null
	if jobs == nil {
		jobs = []Job{}
	}
	c.JSON(http.StatusOK, jobs)
}

func (h *Handler) getJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	job, err := h.Service.GetJob(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, job)
}

func (h *Handler) cancelJob(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	if !h.Service.CancelJob(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no running job with that id"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "cancelling"})
}

func (h *Handler) getJobLogs(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	logs, err := h.Service.GetJobLogs(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if logs == nil {
		logs = []LogEntry{}
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) getJobSources(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid uuid"})
		return
	}

	sources, err := h.Service.GetJobSources(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if sources == nil {
		sources = []SourceRow{}
	}
	c.JSON(http.StatusOK, sources)
}
