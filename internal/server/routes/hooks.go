package routes

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	appservices "github.com/dispatchhq/dispatchd/internal/app/services"
	"github.com/dispatchhq/dispatchd/internal/observability"
)

// maxHookBody caps inbound webhook payloads at 5 MiB.
const maxHookBody = 5 << 20

// HookRoutes registers inbound event endpoints.
type HookRoutes struct {
	dispatch *appservices.DispatchService
	log      *slog.Logger
}

// NewHookRoutes constructs hook routes.
func NewHookRoutes(dispatch *appservices.DispatchService, log *slog.Logger) *HookRoutes {
	if log == nil {
		log = slog.Default()
	}
	return &HookRoutes{dispatch: dispatch, log: log}
}

// RegisterRoutes registers inbound event endpoints.
func (h *HookRoutes) RegisterRoutes(s *echo.Echo) {
	s.POST("/hooks/:project_id", h.handleProjectHook)
}

// handleProjectHook fans one inbound event out over the project's
// integrations. The response reports how many dispatches were enqueued;
// delivery outcomes are async and observable only through logs.
func (h *HookRoutes) handleProjectHook(c echo.Context) error {
	projectID, err := strconv.ParseInt(c.Param("project_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxHookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "failed to read body"})
	}
	if len(body) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "empty payload"})
	}

	ctx := observability.WithDelivery(c.Request().Context(), c.Request().Header.Get("X-Gitlab-Event-UUID"))
	enqueued, err := h.dispatch.DispatchForProject(ctx, projectID, body)
	if err != nil {
		h.log.ErrorContext(ctx, "hook dispatch failed", "project_id", projectID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "dispatch failed"})
	}

	return c.JSON(http.StatusAccepted, map[string]int{"enqueued": enqueued})
}
