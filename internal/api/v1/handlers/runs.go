package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "vocal-assistant/internal/api/errors"
	"vocal-assistant/internal/api/middleware"
	"vocal-assistant/internal/api/v1/dto"
	"vocal-assistant/internal/app/model"
	"vocal-assistant/internal/app/pipeline"
	"vocal-assistant/internal/app/repository"
)

// Runner is the part of the orchestrator the API drives.
type Runner interface {
	ConvertAudio(ctx context.Context, subfolder string) (*pipeline.RunReport, error)
	SpeechToText(ctx context.Context, docType, fileName, providerName string) (*pipeline.RunReport, error)
	RunFull(ctx context.Context, docType, fileName, providerName string) (*pipeline.RunReport, error)
	ExtractText(ctx context.Context, docType, textFile string, render bool) (*pipeline.RunReport, error)
	RenderRecord(ctx context.Context, docType, recordFile string) (*pipeline.RunReport, error)
}

// RunHandler executes pipeline operations and lists past runs.
type RunHandler struct {
	runner  Runner
	history repository.RunDAO
}

func NewRunHandler(runner Runner, history repository.RunDAO) *RunHandler {
	if history == nil {
		history = repository.NopDAO{}
	}
	return &RunHandler{runner: runner, history: history}
}

// Create handles POST /api/v1/runs. The run executes synchronously; the
// response carries the run report with the status of its outcome.
func (h *RunHandler) Create(c *gin.Context) {
	var req dto.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleError(c, apierrors.NewBadRequestError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	var (
		rep *pipeline.RunReport
		err error
	)
	switch pipeline.Operation(req.Operation) {
	case pipeline.OpConvertAudio:
		rep, err = h.runner.ConvertAudio(ctx, req.Subfolder)
	case pipeline.OpSpeechToText:
		rep, err = h.runner.SpeechToText(ctx, req.DocumentType, req.Input, req.Provider)
	case pipeline.OpTextExtraction:
		rep, err = h.runner.ExtractText(ctx, req.DocumentType, req.Input, !req.SkipRender)
	case pipeline.OpPDFGeneration:
		rep, err = h.runner.RenderRecord(ctx, req.DocumentType, req.Input)
	case pipeline.OpFullProcessing:
		rep, err = h.runner.RunFull(ctx, req.DocumentType, req.Input, req.Provider)
	}

	if rep == nil {
		middleware.HandleError(c, err)
		return
	}
	if err != nil {
		apiErr := apierrors.FromError(err)
		apiErr.RequestID = c.GetString(middleware.RequestIDKey)
		_ = c.Error(err)
		c.JSON(apiErr.HTTPStatus(), dto.NewRunResponse(rep, apiErr))
		return
	}
	c.JSON(http.StatusOK, dto.NewRunResponse(rep, nil))
}

// List handles GET /api/v1/runs?limit=N.
func (h *RunHandler) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		middleware.HandleError(c, apierrors.NewBadRequestError("limit must be a non-negative integer"))
		return
	}

	runs, err := h.history.ListRuns(c.Request.Context(), limit)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	if runs == nil {
		runs = []model.RunEntry{}
	}
	c.JSON(http.StatusOK, dto.RunsResponse{Runs: runs})
}
