package api

import (
	"errors"
	"net/http"
	"time"

	models "NQFlow/internal/domain/models"
	"NQFlow/internal/service/ratelimit"
	"NQFlow/internal/usecase"
	xhttp "NQFlow/pkg/http"
	xlogger "NQFlow/pkg/logger"
	"NQFlow/pkg/queue"

	"github.com/labstack/echo/v4"
)

const (
	runBurst     = 2.0
	runPerSecond = 0.1 // one queued run per ~10s per client
)

// PipelineEchoHandler exposes the analytics pipeline over HTTP.
type PipelineEchoHandler struct {
	logger     *xlogger.Logger
	signals    *usecase.SignalsUseCase
	summaries  *usecase.SummaryUseCase
	continuous *usecase.ContinuousUseCase
	publisher  queue.QueueService
	limiter    *ratelimit.Limiter
}

func NewPipelineEchoHandler(
	logger *xlogger.Logger,
	signals *usecase.SignalsUseCase,
	summaries *usecase.SummaryUseCase,
	continuous *usecase.ContinuousUseCase,
	publisher queue.QueueService,
) *PipelineEchoHandler {
	return &PipelineEchoHandler{
		logger:     logger,
		signals:    signals,
		summaries:  summaries,
		continuous: continuous,
		publisher:  publisher,
		limiter:    ratelimit.New(),
	}
}

func (h *PipelineEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/signals", h.Signals)
	g.GET("/summary", h.Summary)
	g.GET("/continuous", h.Continuous)
	g.POST("/pipeline/run", h.Run)
}

func (h *PipelineEchoHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *PipelineEchoHandler) Signals(c echo.Context) error {
	req := &models.SignalsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.signals.GetSignals(c.Request().Context(), usecase.GetSignalsParams{
		Symbol: req.Symbol,
		From:   req.From,
		To:     req.To,
		Limit:  req.Limit,
	})
	if err != nil {
		h.logger.Error("signals usecase error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineEchoHandler) Summary(c echo.Context) error {
	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.summaries.GetSummary(c.Request().Context(), usecase.GetSummaryParams{
		Symbol: req.Symbol,
		From:   req.From,
		To:     req.To,
	})
	if err != nil {
		h.logger.Error("summary usecase error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PipelineEchoHandler) Continuous(c echo.Context) error {
	req := &models.ContinuousRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.continuous.GetContinuous(c.Request().Context(), usecase.GetContinuousParams{
		From:       req.From,
		To:         req.To,
		Indicators: req.Indicators,
		Limit:      req.Limit,
	})
	if err != nil {
		h.logger.Error("continuous usecase error", xlogger.Error(err))
		return h.pipelineError(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

// Run enqueues a pipeline recomputation for the requested date range. The
// run itself happens on the queue workers; the response only acknowledges
// acceptance.
func (h *PipelineEchoHandler) Run(c echo.Context) error {
	if h.publisher == nil {
		// no Redis, no queue workers: recomputation cannot be scheduled
		return xhttp.DataResponse(c, http.StatusServiceUnavailable, "pipeline run queue disabled")
	}
	if !h.limiter.Allow(c.RealIP(), runBurst, runPerSecond) {
		return xhttp.DataResponse(c, http.StatusTooManyRequests, "rate limit exceeded")
	}

	req := &models.RunRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	payload := usecase.PipelineJobPayload{From: req.From, To: req.To, Symbols: req.Symbols}
	if err := h.publisher.PublishMessage(c.Request().Context(), usecase.PipelineJobType, payload); err != nil {
		h.logger.Error("enqueue pipeline run failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("failed to enqueue pipeline run"))
	}

	h.logger.Info("pipeline run enqueued",
		xlogger.String("from", req.From),
		xlogger.String("to", req.To),
	)
	return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{
		"status": "queued",
		"from":   req.From,
		"to":     req.To,
	})
}

// pipelineError maps domain errors onto HTTP statuses.
func (h *PipelineEchoHandler) pipelineError(c echo.Context, err error) error {
	var gap *models.DataGapError
	if errors.As(err, &gap) {
		return xhttp.NotFoundResponse(c, gap.Error())
	}
	return xhttp.AppErrorResponse(c, err)
}
