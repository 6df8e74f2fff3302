package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/hdts/flowkit/pkg/models"
	"github.com/hdts/flowkit/pkg/persistence"
	"github.com/hdts/flowkit/pkg/services"
	"github.com/hdts/flowkit/pkg/template"
)

type APIHandlers struct {
	workflowService *services.Workflow
	validator       *validator.Validate
}

func NewAPIHandlers(workflowService *services.Workflow, validator *validator.Validate) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		validator:       validator,
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	req, err := h.parseListRequest(c)
	if err != nil {
		return badRequest(c, "Invalid query parameters: "+err.Error())
	}

	result, err := h.workflowService.List(c.Context(), *req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows":     result.Workflows,
		"total_count":   result.TotalCount,
		"has_next_page": result.HasNextPage,
		"pagination": fiber.Map{
			"limit":  req.Limit,
			"offset": req.Offset,
		},
		"sorting": fiber.Map{
			"sort_by":    req.SortBy,
			"sort_order": req.SortOrder,
		},
	})
}

// parseListRequest parses and validates query parameters for listing workflows.
func (h *APIHandlers) parseListRequest(c fiber.Ctx) (*services.ListRequest, error) {
	req := &services.ListRequest{}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return nil, err
		}

		req.Limit = limit
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return nil, err
		}

		req.Offset = offset
	}

	req.Owner = c.Query("owner")

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.WorkflowStatus(statusStr)
		req.Status = &status
	}

	req.SortBy = c.Query("sort_by")
	req.SortOrder = c.Query("sort_order")

	return req, nil
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	workflow, problems := req.Workflow()
	if len(problems) > 0 {
		return badRequest(c, strings.Join(problems, "; "))
	}

	created, err := h.workflowService.Create(c.Context(), workflow)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	existing, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	if problems := req.Apply(existing); len(problems) > 0 {
		return badRequest(c, strings.Join(problems, "; "))
	}

	updated, err := h.workflowService.Update(c.Context(), id, existing)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	err := h.workflowService.Delete(c.Context(), id)
	if err != nil {
		if persistence.IsWorkflowNotFound(err) {
			return notFound(c, "Workflow not found")
		}

		return internalError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	problems, err := h.workflowService.Validate(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if problems == nil {
		problems = []string{}
	}

	return c.JSON(ValidateResponse{
		Valid:  len(problems) == 0,
		Errors: problems,
	})
}

func (h *APIHandlers) PublishWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	published, err := h.workflowService.Publish(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(published)
}

func (h *APIHandlers) ExportWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	payload, err := h.workflowService.Export(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(payload)
}

func (h *APIHandlers) ArrangeWorkflow(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	arranged, err := h.workflowService.Arrange(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(arranged)
}

func (h *APIHandlers) ApplyTemplate(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	name := c.Params("name")
	if name == "" {
		return badRequest(c, "Template name is required")
	}

	applied, err := h.workflowService.ApplyTemplate(c.Context(), id, name)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(applied)
}

func (h *APIHandlers) GetProjections(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	list, nodes, edges, err := h.workflowService.Projections(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(ProjectionsResponse{
		List:  list,
		Nodes: nodes,
		Edges: edges,
	})
}

func (h *APIHandlers) CreateStep(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req CreateStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.AddStep(c.Context(), id, req.Step())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateStep(c fiber.Ctx) error {
	id := c.Params("id")
	stepID := c.Params("stepId")

	if id == "" || stepID == "" {
		return badRequest(c, "Workflow ID and step ID are required")
	}

	var req UpdateStepRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.UpdateStep(c.Context(), id, stepID, req.Patch())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteStep(c fiber.Ctx) error {
	id := c.Params("id")
	stepID := c.Params("stepId")

	if id == "" || stepID == "" {
		return badRequest(c, "Workflow ID and step ID are required")
	}

	if _, err := h.workflowService.RemoveStep(c.Context(), id, stepID); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateTransition(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req CreateTransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.AddTransition(c.Context(), id, req.Transition())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateTransition(c fiber.Ctx) error {
	id := c.Params("id")
	transitionID := c.Params("transitionId")

	if id == "" || transitionID == "" {
		return badRequest(c, "Workflow ID and transition ID are required")
	}

	var req UpdateTransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.UpdateTransition(c.Context(), id, transitionID, req.Patch())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteTransition(c fiber.Ctx) error {
	id := c.Params("id")
	transitionID := c.Params("transitionId")

	if id == "" || transitionID == "" {
		return badRequest(c, "Workflow ID and transition ID are required")
	}

	if _, err := h.workflowService.RemoveTransition(c.Context(), id, transitionID); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) Connect(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Workflow ID is required")
	}

	var req ConnectRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Connect(c.Context(), id, req.Source, req.Target, req.SourceHandle, req.TargetHandle)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"templates": template.All(),
	})
}

func (h *APIHandlers) GetRoles(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"roles": h.workflowService.Roles(),
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Flowkit API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "Flowkit API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
