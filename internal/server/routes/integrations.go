package routes

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	appservices "github.com/dispatchhq/dispatchd/internal/app/services"
	"github.com/dispatchhq/dispatchd/internal/event"
	"github.com/dispatchhq/dispatchd/internal/integration"
	"github.com/dispatchhq/dispatchd/internal/observability"
	"github.com/dispatchhq/dispatchd/internal/statuscache"
)

// IntegrationRoutes registers integration management endpoints.
type IntegrationRoutes struct {
	repo     *appservices.IntegrationRepository
	settings *appservices.SettingsService
	fields   *appservices.FieldsService
	dispatch *appservices.DispatchService
	cache    *statuscache.Cache
	log      *slog.Logger
}

// NewIntegrationRoutes constructs integration routes.
func NewIntegrationRoutes(
	repo *appservices.IntegrationRepository,
	settings *appservices.SettingsService,
	fields *appservices.FieldsService,
	dispatch *appservices.DispatchService,
	cache *statuscache.Cache,
	log *slog.Logger,
) *IntegrationRoutes {
	if log == nil {
		log = slog.Default()
	}
	return &IntegrationRoutes{
		repo:     repo,
		settings: settings,
		fields:   fields,
		dispatch: dispatch,
		cache:    cache,
		log:      log,
	}
}

// RegisterRoutes registers integration management endpoints.
func (r *IntegrationRoutes) RegisterRoutes(s *echo.Echo) {
	api := s.Group("/api/v1")

	api.GET("/integrations", r.handleListKinds)
	api.GET("/integrations/:kind/fields", r.handleKindFields)

	api.GET("/projects/:project_id/integrations", r.handleListForProject)
	api.PUT("/projects/:project_id/integrations/:kind", r.handleUpsert)
	api.DELETE("/projects/:project_id/integrations/:kind", r.handleDelete)
	api.POST("/projects/:project_id/integrations/:kind/test", r.handleTest)
	api.GET("/projects/:project_id/integrations/:kind/fields", r.handleInstanceFields)
	api.GET("/projects/:project_id/integrations/:kind/commit_status", r.handleCommitStatus)
}

type integrationSummary struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	Active    bool   `json:"active"`
	Inherited bool   `json:"inherited"`
}

type upsertIntegrationRequest struct {
	Active               *bool             `json:"active"`
	Properties           map[string]string `json:"properties"`
	DataFields           map[string]string `json:"data_fields"`
	EventToggles         map[string]bool   `json:"event_toggles"`
	UseInheritedSettings bool              `json:"use_inherited_settings"`
	// AncestorGroupIDs is ordered closest-first; used only when the
	// request opts into inherited settings.
	AncestorGroupIDs []int64 `json:"ancestor_group_ids"`
}

func (r *IntegrationRoutes) handleListKinds(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"kinds": r.fields.Kinds()})
}

func (r *IntegrationRoutes) handleKindFields(c echo.Context) error {
	fields, err := r.fields.ForKind(c.Request().Context(), c.Param("kind"), 0)
	if err != nil {
		return settingsErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"fields": fields})
}

func (r *IntegrationRoutes) handleListForProject(c echo.Context) error {
	projectID, ok := parseProjectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	}

	instances, err := r.repo.ListForProject(c.Request().Context(), projectID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list integrations"})
	}

	summaries := make([]integrationSummary, 0, len(instances))
	for _, instance := range instances {
		summaries = append(summaries, summarize(instance))
	}
	return c.JSON(http.StatusOK, map[string]any{"integrations": summaries})
}

func (r *IntegrationRoutes) handleUpsert(c echo.Context) error {
	projectID, ok := parseProjectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	}
	kind := c.Param("kind")

	var req upsertIntegrationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	ctx := c.Request().Context()
	existing, err := r.findForProject(c, projectID, kind)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load integrations"})
	}

	var instance *integration.Instance
	if req.UseInheritedSettings {
		candidates, err := r.repo.ListInheritable(ctx, kind)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve inheritable configuration"})
		}
		source := integration.DefaultFor(candidates, req.AncestorGroupIDs)
		if source == nil {
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": "no inheritable configuration exists for this kind"})
		}
		instance = integration.BuildFrom(source, &projectID, nil)
		if existing != nil {
			instance.ID = existing.ID
		}
	} else {
		instance = existing
		if instance == nil {
			instance = integration.New(kind)
			instance.ProjectID = &projectID
		}
		// Custom settings break the inheritance link.
		instance.InheritFromID = nil
		for name, value := range req.Properties {
			instance.SetProp(name, value)
		}
		if len(req.DataFields) > 0 {
			if instance.DataFields == nil {
				instance.DataFields = make(map[string]string, len(req.DataFields))
			}
			for name, value := range req.DataFields {
				instance.DataFields[name] = value
			}
		}
		for name, enabled := range req.EventToggles {
			instance.EventToggles[event.Normalize(event.Kind(name))] = enabled
		}
	}
	if req.Active != nil {
		instance.Active = *req.Active
	}

	if err := r.settings.Save(ctx, instance); err != nil {
		return settingsErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, summarize(instance))
}

func (r *IntegrationRoutes) handleDelete(c echo.Context) error {
	projectID, ok := parseProjectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	}
	instance, err := r.findForProject(c, projectID, c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load integrations"})
	}
	if instance == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "integration not configured"})
	}
	if err := r.repo.Delete(c.Request().Context(), instance.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete integration"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (r *IntegrationRoutes) handleTest(c echo.Context) error {
	projectID, ok := parseProjectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	}
	instance, err := r.findForProject(c, projectID, c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load integrations"})
	}
	if instance == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "integration not configured"})
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxHookBody))
	if err != nil || len(body) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "a sample event payload is required"})
	}

	ctx := observability.WithIntegration(c.Request().Context(), instance.ID)
	result := r.dispatch.Test(ctx, instance, body)
	if !result.Success {
		return c.JSON(http.StatusUnprocessableEntity, result)
	}
	return c.JSON(http.StatusOK, result)
}

func (r *IntegrationRoutes) handleInstanceFields(c echo.Context) error {
	projectID, ok := parseProjectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	}
	kind := c.Param("kind")

	instance, err := r.findForProject(c, projectID, kind)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load integrations"})
	}
	var instanceID int64
	if instance != nil {
		instanceID = instance.ID
	}

	fields, err := r.fields.ForKind(c.Request().Context(), kind, instanceID)
	if err != nil {
		return settingsErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"fields": fields})
}

func (r *IntegrationRoutes) handleCommitStatus(c echo.Context) error {
	projectID, ok := parseProjectID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid project id"})
	}
	sha := c.QueryParam("sha")
	ref := c.QueryParam("ref")
	if sha == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "sha is required"})
	}

	instance, err := r.findForProject(c, projectID, c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load integrations"})
	}
	if instance == nil || !instance.Active {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "integration not configured"})
	}

	result, err := r.cache.Fetch(c.Request().Context(), statuscache.Key{
		IntegrationID: instance.ID,
		SHA:           sha,
		Ref:           ref,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch status"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"status":  string(result.Value),
		"pending": result.Pending,
		"stale":   result.Stale,
	})
}

func (r *IntegrationRoutes) findForProject(c echo.Context, projectID int64, kind string) (*integration.Instance, error) {
	instances, err := r.repo.ListForProject(c.Request().Context(), projectID)
	if err != nil {
		return nil, err
	}
	for _, instance := range instances {
		if instance.Kind == kind {
			return instance, nil
		}
	}
	return nil, nil
}

func parseProjectID(c echo.Context) (int64, bool) {
	projectID, err := strconv.ParseInt(c.Param("project_id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return projectID, true
}

func summarize(instance *integration.Instance) integrationSummary {
	return integrationSummary{
		ID:        instance.ID,
		Kind:      instance.Kind,
		Active:    instance.Active,
		Inherited: instance.UsesDefaultSettings(),
	}
}

func settingsErrorResponse(c echo.Context, err error) error {
	status := http.StatusUnprocessableEntity
	switch appservices.ClassifySettingsError(err) {
	case appservices.SettingsErrorUnknownKind:
		status = http.StatusNotFound
	case appservices.SettingsErrorUnknown:
		status = http.StatusInternalServerError
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}
