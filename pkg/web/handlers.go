// Package web provides the REST API handlers for workflow and notification
// operations.
package web

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/contractpulse/pulse/pkg/eventbus"
	"github.com/contractpulse/pulse/pkg/events"
	"github.com/contractpulse/pulse/pkg/notification"
	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/workflow"
)

type APIHandlers struct {
	persistence persistence.Persistence
	dispatcher  *notification.Dispatcher
	runner      *workflow.Runner
	eventBus    eventbus.EventBus
	validator   *validator.Validate
	logger      *slog.Logger
}

func NewAPIHandlers(
	store persistence.Persistence,
	dispatcher *notification.Dispatcher,
	runner *workflow.Runner,
	eventBus eventbus.EventBus,
	validate *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		persistence: store,
		dispatcher:  dispatcher,
		runner:      runner,
		eventBus:    eventBus,
		validator:   validate,
		logger:      logger.With("module", "api_handlers"),
	}
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.persistence.WorkflowRepository().Workflows(c.Context())
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{"workflows": workflows})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	wf, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	steps, err := h.persistence.WorkflowRepository().StepsByWorkflowID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(WorkflowResponse{Workflow: wf, Steps: steps})
}

// RunWorkflow executes the workflow synchronously and returns the run result.
func (h *APIHandlers) RunWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	var req RunWorkflowRequest

	err := c.Bind().Body(&req)
	if err != nil && len(c.Body()) > 0 {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if req.TriggeredBy == "" {
		req.TriggeredBy = "api"
	}

	_, err = h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	result := h.runner.Run(c.Context(), id, req.TriggerData, req.TriggeredBy)

	status := fiber.StatusOK
	if !result.Success {
		status = fiber.StatusUnprocessableEntity
	}

	return c.Status(status).JSON(result)
}

// TriggerWorkflow publishes a trigger event for asynchronous execution by a
// worker.
func (h *APIHandlers) TriggerWorkflow(c fiber.Ctx) error {
	id := c.Params("id")

	var req RunWorkflowRequest

	err := c.Bind().Body(&req)
	if err != nil && len(c.Body()) > 0 {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	if req.TriggeredBy == "" {
		req.TriggeredBy = "api"
	}

	_, err = h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	event := events.WorkflowTriggered{
		BaseEvent: events.BaseEvent{
			ID:         h.eventBus.GenerateID(),
			Type:       events.WorkflowTriggeredEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: id,
		},
		TriggeredBy: req.TriggeredBy,
		TriggerData: req.TriggerData,
	}

	err = h.eventBus.Publish(c.Context(), id, event)
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"event_id": event.ID})
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id := c.Params("id")

	_, err := h.persistence.WorkflowRepository().WorkflowByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	executions, err := h.persistence.ExecutionRepository().ExecutionsByWorkflowID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{"executions": executions})
}

func (h *APIHandlers) GetExecution(c fiber.Ctx) error {
	id := c.Params("id")

	execution, err := h.persistence.ExecutionRepository().ExecutionByID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	steps, err := h.persistence.ExecutionRepository().StepExecutionsByExecutionID(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(ExecutionResponse{Execution: execution, Steps: steps})
}

// SendNotification dispatches a notification to the requested channels.
func (h *APIHandlers) SendNotification(c fiber.Ctx) error {
	var req SendNotificationRequest

	err := c.Bind().Body(&req)
	if err != nil {
		return badRequest(c, "Invalid request body: "+err.Error())
	}

	err = h.validator.Struct(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	result := h.dispatcher.Dispatch(c.Context(), req.Recipients, req.Content, req.Channels)

	if h.eventBus != nil {
		event := events.NotificationDispatched{
			BaseEvent: events.BaseEvent{
				ID:        h.eventBus.GenerateID(),
				Type:      events.NotificationDispatchedEvent,
				Timestamp: time.Now().UTC(),
			},
			Recipients: len(req.Recipients),
			Sent:       result.Sent.Total(),
			Failed:     result.Failed.Total(),
			Errors:     result.Errors,
		}

		err = h.eventBus.Publish(c.Context(), event.ID, event)
		if err != nil {
			h.logger.Warn("Failed to publish notification event", "error", err)
		}
	}

	return c.JSON(result)
}

func (h *APIHandlers) GetUserNotifications(c fiber.Ctx) error {
	userID := c.Params("userId")

	unreadOnly := false

	if unreadStr := c.Query("unread"); unreadStr != "" {
		parsed, err := strconv.ParseBool(unreadStr)
		if err != nil {
			return badRequest(c, "Invalid unread parameter: "+err.Error())
		}

		unreadOnly = parsed
	}

	notifications, err := h.persistence.NotificationRepository().NotificationsByUserID(c.Context(), userID, unreadOnly)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

func (h *APIHandlers) MarkNotificationRead(c fiber.Ctx) error {
	id := c.Params("id")

	err := h.persistence.NotificationRepository().MarkNotificationRead(c.Context(), id)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) MarkAllNotificationsRead(c fiber.Ctx) error {
	userID := c.Params("userId")

	err := h.persistence.NotificationRepository().MarkAllNotificationsRead(c.Context(), userID)
	if err != nil {
		return handleStoreError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	err := h.persistence.HealthCheck(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{"status": "healthy"})
}
