package web

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/fieldline/fieldline/pkg/models"
	"github.com/fieldline/fieldline/pkg/registry"
	"github.com/fieldline/fieldline/pkg/services"
)

type APIHandlers struct {
	provisioningService *services.Provisioning
	statusService       *services.Statuses
	triggerService      *services.Triggers
	workOrderService    *services.WorkOrders
	validator           *validator.Validate
	registry            *registry.Registry
}

func NewAPIHandlers(
	provisioningService *services.Provisioning,
	statusService *services.Statuses,
	triggerService *services.Triggers,
	workOrderService *services.WorkOrders,
	validator *validator.Validate,
	registry *registry.Registry,
) *APIHandlers {
	return &APIHandlers{
		provisioningService: provisioningService,
		statusService:       statusService,
		triggerService:      triggerService,
		workOrderService:    workOrderService,
		validator:           validator,
		registry:            registry,
	}
}

func (h *APIHandlers) ProvisionTenant(c fiber.Ctx) error {
	tenantID := c.Params("tenantId")
	if tenantID == "" {
		return badRequest(c, "Tenant ID is required")
	}

	statuses, err := h.provisioningService.Provision(c.Context(), tenantID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"statuses": statuses})
}

func (h *APIHandlers) GetStatuses(c fiber.Ctx) error {
	statuses, err := h.statusService.List(c.Context(), c.Params("tenantId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"statuses": statuses})
}

func (h *APIHandlers) CreateStatus(c fiber.Ctx) error {
	var req CreateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.statusService.Create(c.Context(), services.CreateStatusRequest{
		TenantID:    c.Params("tenantId"),
		Name:        req.Name,
		Color:       req.Color,
		Group:       models.StatusGroup(req.Group),
		IsFinalStep: req.IsFinalStep,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateStatus(c fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return badRequest(c, "Status name is required")
	}

	var req UpdateStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	patch := services.UpdateStatusRequest{
		Color:       req.Color,
		IsFinalStep: req.IsFinalStep,
		SortOrder:   req.SortOrder,
	}

	if req.Group != nil {
		group := models.StatusGroup(*req.Group)
		patch.Group = &group
	}

	updated, err := h.statusService.Update(c.Context(), c.Params("tenantId"), name, patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteStatus(c fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return badRequest(c, "Status name is required")
	}

	err := h.statusService.Delete(c.Context(), c.Params("tenantId"), name)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) GetTriggers(c fiber.Ctx) error {
	triggers, err := h.triggerService.List(c.Context(), c.Params("tenantId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"triggers": triggers})
}

func (h *APIHandlers) GetTrigger(c fiber.Ctx) error {
	trigger, err := h.triggerService.Get(c.Context(), c.Params("tenantId"), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(trigger)
}

func (h *APIHandlers) CreateTrigger(c fiber.Ctx) error {
	var req CreateTriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	timeoutAfter, err := parseTimeout(req.TimeoutAfter)
	if err != nil {
		return badRequest(c, "Invalid timeout_after duration: "+err.Error())
	}

	created, err := h.triggerService.Create(c.Context(), services.CreateTriggerRequest{
		TenantID:     c.Params("tenantId"),
		Name:         req.Name,
		StatusName:   req.StatusName,
		Event:        models.TriggerEvent(req.Event),
		TimeoutAfter: timeoutAfter,
		Conditions:   req.Conditions,
		Action:       req.Action,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateTrigger(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Trigger ID is required")
	}

	var req UpdateTriggerRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	patch := services.UpdateTriggerRequest{
		Name:       req.Name,
		StatusName: req.StatusName,
		Conditions: req.Conditions,
		Action:     req.Action,
	}

	if req.Event != nil {
		event := models.TriggerEvent(*req.Event)
		patch.Event = &event
	}

	if req.TimeoutAfter != nil {
		timeoutAfter, err := parseTimeout(*req.TimeoutAfter)
		if err != nil {
			return badRequest(c, "Invalid timeout_after duration: "+err.Error())
		}

		patch.TimeoutAfter = &timeoutAfter
	}

	updated, err := h.triggerService.Update(c.Context(), c.Params("tenantId"), id, patch)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteTrigger(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Trigger ID is required")
	}

	err := h.triggerService.Delete(c.Context(), c.Params("tenantId"), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// parseTimeout parses the wire duration. Empty means no timeout; whether
// that is allowed depends on the trigger event and is decided by the service.
func parseTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}

	return time.ParseDuration(raw)
}

func (h *APIHandlers) GetWorkOrders(c fiber.Ctx) error {
	orders, err := h.workOrderService.List(c.Context(), c.Params("tenantId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"work_orders": orders})
}

func (h *APIHandlers) GetWorkOrder(c fiber.Ctx) error {
	order, err := h.workOrderService.Get(c.Context(), c.Params("tenantId"), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(order)
}

func (h *APIHandlers) CreateWorkOrder(c fiber.Ctx) error {
	var req CreateWorkOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workOrderService.Create(c.Context(), services.CreateWorkOrderRequest{
		TenantID:      c.Params("tenantId"),
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		AssigneeID:    req.AssigneeID,
		HourlyRate:    req.HourlyRate,
		CustomFields:  req.CustomFields,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// ChangeWorkOrderStatus is the transition write path: it persists the status
// change and publishes the transition event the automation worker consumes.
func (h *APIHandlers) ChangeWorkOrderStatus(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Work order ID is required")
	}

	var req ChangeStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workOrderService.ChangeStatus(c.Context(), c.Params("tenantId"), id, req.Status)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) LogTime(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Work order ID is required")
	}

	var req LogTimeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	entry, err := h.workOrderService.LogTime(c.Context(), c.Params("tenantId"), id, services.LogTimeRequest{
		UserID:    req.UserID,
		Minutes:   req.Minutes,
		Notes:     req.Notes,
		StartedAt: req.StartedAt,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

func (h *APIHandlers) GetTimeEntries(c fiber.Ctx) error {
	entries, err := h.workOrderService.TimeEntries(c.Context(), c.Params("tenantId"), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"time_entries": entries})
}

func (h *APIHandlers) GetInvoices(c fiber.Ctx) error {
	invoices, err := h.workOrderService.Invoices(c.Context(), c.Params("tenantId"), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"invoices": invoices})
}

func (h *APIHandlers) GetNotifications(c fiber.Ctx) error {
	notifications, err := h.workOrderService.Notifications(c.Context(), c.Params("tenantId"), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *APIHandlers) GetAutomationRuns(c fiber.Ctx) error {
	runs, err := h.workOrderService.AutomationRuns(c.Context(), c.Params("tenantId"), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"automation_runs": runs})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.workOrderService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Fieldline API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Fieldline API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}
