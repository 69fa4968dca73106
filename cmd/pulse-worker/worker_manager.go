package main

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/contractpulse/pulse/pkg/eventbus"
	"github.com/contractpulse/pulse/pkg/events"
	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
	"github.com/contractpulse/pulse/pkg/triggers"
	"github.com/contractpulse/pulse/pkg/triggers/queue"
	"github.com/contractpulse/pulse/pkg/triggers/schedule"
	"github.com/contractpulse/pulse/pkg/workflow"
)

// WorkerManager consumes workflow trigger events, runs the workflows and
// hosts the schedule and queue triggers of active workflows.
type WorkerManager struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	runner      *workflow.Runner

	triggerMutex    sync.Mutex
	runningTriggers map[string]triggers.Trigger
}

func NewWorkerManager(
	id string,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	runner *workflow.Runner,
	logger *slog.Logger,
) *WorkerManager {
	return &WorkerManager{
		id:              id,
		logger:          logger.With("module", "pulse-worker", "worker_id", id),
		persistence:     persistence,
		eventBus:        eventBus,
		runner:          runner,
		runningTriggers: make(map[string]triggers.Trigger),
	}
}

func (w *WorkerManager) Start(ctx context.Context) error {
	wCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w.logger.InfoContext(wCtx, "Starting worker manager")

	err := w.eventBus.Handle(events.WorkflowTriggeredEvent, w.handleWorkflowTriggered)
	if err != nil {
		return err
	}

	err = w.eventBus.Subscribe(wCtx)
	if err != nil {
		w.logger.ErrorContext(wCtx, "Failed to subscribe to event bus", "error", err)

		return err
	}

	w.startTriggers(wCtx)

	w.logger.InfoContext(wCtx, "Worker started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	w.logger.InfoContext(wCtx, "Shutting down worker...")
	w.stopTriggers(wCtx)
	cancel()

	return nil
}

func (w *WorkerManager) handleWorkflowTriggered(ctx context.Context, event any) error {
	triggeredEvent, ok := event.(*events.WorkflowTriggered)
	if !ok {
		w.logger.ErrorContext(ctx, "Invalid event type for WorkflowTriggered")

		return nil
	}

	logger := w.logger.With(
		"workflow_id", triggeredEvent.WorkflowID,
		"triggered_by", triggeredEvent.TriggeredBy,
		"event_id", triggeredEvent.ID,
	)
	logger.InfoContext(ctx, "Processing workflow triggered event")

	triggerData := make(map[string]any)
	if triggeredEvent.TriggerData != nil {
		triggerData = triggeredEvent.TriggerData
	}

	startedAt := time.Now()
	result := w.runner.Run(ctx, triggeredEvent.WorkflowID, triggerData, triggeredEvent.TriggeredBy)
	duration := time.Since(startedAt)

	if !result.Success {
		logger.ErrorContext(ctx, "Workflow execution failed", "error", result.Error)

		failedEvent := events.WorkflowExecutionFailed{
			BaseEvent: events.BaseEvent{
				ID:         w.eventBus.GenerateID(),
				Type:       events.WorkflowExecutionFailedEvent,
				Timestamp:  time.Now().UTC(),
				WorkflowID: triggeredEvent.WorkflowID,
			},
			ExecutionID: result.ExecutionID,
			Duration:    duration,
			Error:       result.Error,
		}

		publishErr := w.eventBus.Publish(ctx, triggeredEvent.WorkflowID, failedEvent)
		if publishErr != nil {
			logger.ErrorContext(ctx, "Failed to publish workflow failed event", "error", publishErr)
		}

		return errors.New(result.Error)
	}

	completedEvent := events.WorkflowExecutionCompleted{
		BaseEvent: events.BaseEvent{
			ID:         w.eventBus.GenerateID(),
			Type:       events.WorkflowExecutionCompletedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: triggeredEvent.WorkflowID,
		},
		ExecutionID: result.ExecutionID,
		Duration:    duration,
	}

	err := w.eventBus.Publish(ctx, triggeredEvent.WorkflowID, completedEvent)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to publish workflow completed event", "error", err)
	}

	logger.InfoContext(ctx, "Workflow execution completed",
		"execution_id", result.ExecutionID,
		"duration", duration,
	)

	return nil
}

// startTriggers spins up a schedule or queue trigger for every active
// workflow declaring one. Failures are logged per workflow, never fatal.
func (w *WorkerManager) startTriggers(ctx context.Context) {
	workflows, err := w.persistence.WorkflowRepository().Workflows(ctx)
	if err != nil {
		w.logger.ErrorContext(ctx, "Failed to fetch workflows for trigger startup", "error", err)

		return
	}

	for _, wf := range workflows {
		if !wf.Active {
			continue
		}

		logger := w.logger.With("workflow_id", wf.ID, "workflow_name", wf.Name)

		config := make(map[string]any)
		maps.Copy(config, wf.TriggerConfig)
		config["workflow_id"] = wf.ID

		var trigger triggers.Trigger

		switch wf.TriggerType {
		case models.TriggerTypeSchedule:
			trigger, err = schedule.NewTrigger(config, logger)
		case models.TriggerTypeEvent:
			trigger, err = queue.NewTrigger(config, logger)
		default:
			continue
		}

		if err != nil {
			logger.ErrorContext(ctx, "Failed to create trigger", "error", err)

			continue
		}

		if err := trigger.Start(ctx, w.createTriggerCallback(wf.ID, wf.TriggerType)); err != nil {
			logger.ErrorContext(ctx, "Failed to start trigger", "error", err)

			continue
		}

		w.triggerMutex.Lock()
		w.runningTriggers[wf.ID] = trigger
		w.triggerMutex.Unlock()

		logger.InfoContext(ctx, "Started trigger", "trigger_type", wf.TriggerType)
	}
}

func (w *WorkerManager) createTriggerCallback(workflowID string, triggerType models.TriggerType) triggers.Callback {
	return func(ctx context.Context, data map[string]any) error {
		logger := w.logger.With("workflow_id", workflowID, "trigger_type", triggerType)
		logger.InfoContext(ctx, "Trigger fired, publishing event")

		event := events.WorkflowTriggered{
			BaseEvent: events.BaseEvent{
				ID:         w.eventBus.GenerateID(),
				Type:       events.WorkflowTriggeredEvent,
				Timestamp:  time.Now().UTC(),
				WorkflowID: workflowID,
			},
			TriggeredBy: string(triggerType),
			TriggerData: data,
		}

		err := w.eventBus.Publish(ctx, workflowID, event)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to publish trigger event", "error", err)

			return err
		}

		return nil
	}
}

func (w *WorkerManager) stopTriggers(ctx context.Context) {
	w.triggerMutex.Lock()
	defer w.triggerMutex.Unlock()

	for workflowID, trigger := range w.runningTriggers {
		if err := trigger.Stop(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to stop trigger", "workflow_id", workflowID, "error", err)
		}

		delete(w.runningTriggers, workflowID)
	}
}
