package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/projectsmartedu/SmartEducation/application/ports/inbound"
	"github.com/projectsmartedu/SmartEducation/application/ports/outbound"
	"github.com/projectsmartedu/SmartEducation/domain"
	"github.com/projectsmartedu/SmartEducation/infrastructure/gin_interface/dto"
	"github.com/projectsmartedu/SmartEducation/middleware"
)

const defaultPollInterval = time.Second

type ExplainerController interface {
	CreateExplainer(c *gin.Context)
	GetExplainer(c *gin.Context)
	StreamExplainer(c *gin.Context)
	Health(c *gin.Context)
	RegisterRoutes(g *gin.Engine)
}

type explainerController struct {
	logger       outbound.LoggerPort
	pipeline     inbound.ExplainerPipelinePort
	tracker      inbound.JobTrackerPort
	pollInterval time.Duration
}

func NewExplainerController(
	logger outbound.LoggerPort,
	pipeline inbound.ExplainerPipelinePort,
	tracker inbound.JobTrackerPort,
) ExplainerController {
	return &explainerController{
		logger:       logger,
		pipeline:     pipeline,
		tracker:      tracker,
		pollInterval: defaultPollInterval,
	}
}

// CreateExplainer runs the job inside the request. A client that disconnects
// cancels the job.
func (s *explainerController) CreateExplainer(c *gin.Context) {
	var request dto.CreateExplainerRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		s.logger.WarnWithFields("Invalid explainer request", map[string]interface{}{"error": err.Error()})
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.ExplainerErrorResponse{
			Status:  dto.StatusError,
			Stage:   string(domain.StageCreated),
			Message: domain.ShortDiagnostic(err.Error()),
		})
		return
	}

	if requester := c.GetString(middleware.ContextUserIDKey); requester != "" {
		s.logger.InfoWithFields("Explainer requested", map[string]interface{}{
			"job_id":       request.JobID,
			"requested_by": requester,
		})
	}

	result := s.pipeline.Run(c.Request.Context(), request.ToJobRequest())

	c.JSON(statusForResult(result), dto.NewExplainerResponse(result))
}

func (s *explainerController) GetExplainer(c *gin.Context) {
	snapshot, ok := s.tracker.Get(c.Param("jobId"))
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, dto.NewJobSnapshotResponse(snapshot))
}

// StreamExplainer pushes a server-sent event on every stage change until the
// job reaches a terminal stage or the client goes away.
func (s *explainerController) StreamExplainer(c *gin.Context) {
	jobID := c.Param("jobId")
	if _, ok := s.tracker.Get(jobID); !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var last domain.Stage
	for {
		snapshot, ok := s.tracker.Get(jobID)
		if !ok {
			return
		}
		if snapshot.Stage != last {
			c.SSEvent("stage", dto.NewJobSnapshotResponse(snapshot))
			c.Writer.Flush()
			last = snapshot.Stage
		}
		if snapshot.Stage.IsTerminal() {
			return
		}
		select {
		case <-ticker.C:
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (s *explainerController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *explainerController) RegisterRoutes(g *gin.Engine) {
	g.GET("/health", s.Health)
	g.POST("/explainers", s.CreateExplainer)
	g.GET("/explainers/:jobId", s.GetExplainer)
	g.GET("/explainers/:jobId/events", middleware.SSEMiddleware(), s.StreamExplainer)
}

func statusForResult(result domain.PipelineResult) int {
	if result.IsSuccess() {
		return http.StatusOK
	}
	if result.Failure == nil {
		return http.StatusInternalServerError
	}
	switch result.Failure.Kind {
	case "InvalidRequest":
		return http.StatusBadRequest
	case "ExtractionFailed":
		return http.StatusUnprocessableEntity
	case "StorageUnavailable":
		return http.StatusServiceUnavailable
	case "Cancelled":
		return http.StatusRequestTimeout
	case "RenderFailed", "SynthesisFailed", "MergeFailed":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
