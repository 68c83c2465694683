// Package api exposes the advisor over HTTP.
package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cxd309/ecospeed/internal/engine"
	"github.com/cxd309/ecospeed/internal/store"
	"github.com/cxd309/ecospeed/internal/vehicle"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// History is the run persistence the handlers need.
type History interface {
	SaveReport(ctx context.Context, r engine.Report) error
	RecentRuns(ctx context.Context, limit int) ([]store.RunRecord, error)
}

// Handler contains all HTTP handlers
type Handler struct {
	history History // nil disables history
	logger  *zap.SugaredLogger
}

// NewHandler creates a new handler. history may be nil.
func NewHandler(history History, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handler{history: history, logger: logger}
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "ecospeed",
		"history": h.history != nil,
	})
}

// Vehicles lists the vehicle catalog.
func (h *Handler) Vehicles(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    vehicle.Catalog(),
	})
}

// Advise runs the advisor on the posted Input and returns the Report.
func (h *Handler) Advise(c *fiber.Ctx) error {
	in, err := engine.DecodeInput(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	advisor, err := engine.NewAdvisor(in, engine.WithLogger(h.logger))
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}

	report, err := advisor.Run(c.UserContext())
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}

	if h.history != nil {
		if err := h.history.SaveReport(c.UserContext(), report); err != nil {
			h.logger.Warnw("failed to record run", "run_id", report.RunID, "error", err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    report,
	})
}

// Runs returns the most recent stored runs; ?limit=N bounds the count.
func (h *Handler) Runs(c *fiber.Ctx) error {
	if h.history == nil {
		return fiber.NewError(fiber.StatusNotFound, "Run history is not enabled")
	}

	limit := defaultRunsLimit
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "limit must be a positive integer")
		}
		limit = min(n, maxRunsLimit)
	}

	runs, err := h.history.RecentRuns(c.UserContext(), limit)
	if err != nil {
		h.logger.Errorw("failed to fetch runs", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch runs")
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    runs,
	})
}

// statusFor maps advisor errors onto HTTP status codes. Anything not listed
// stems from the request itself.
func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrNoValidResult):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout
	}
	return fiber.StatusBadRequest
}
