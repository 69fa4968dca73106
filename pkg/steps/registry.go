package steps

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/contractpulse/pulse/pkg/models"
)

// Registry maps step types to their executors. New step types plug in via
// Register without touching the runner's control flow.
type Registry struct {
	logger    *slog.Logger
	executors map[models.StepType]Executor
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:    logger.With("module", "step_registry"),
		executors: make(map[models.StepType]Executor),
	}
}

func (r *Registry) Register(executor Executor) {
	r.executors[executor.Type()] = executor

	r.logger.Debug("Registered step executor", "type", executor.Type())
}

func (r *Registry) Executor(stepType models.StepType) (Executor, error) {
	executor, ok := r.executors[stepType]
	if !ok {
		return nil, fmt.Errorf("step type '%s' not registered", stepType)
	}

	return executor, nil
}

// Types returns the registered step types.
func (r *Registry) Types() []models.StepType {
	types := make([]models.StepType, 0, len(r.executors))
	for stepType := range r.executors {
		types = append(types, stepType)
	}

	return types
}

// ValidateConfig checks a step configuration against the executor's declared
// schema.
func (r *Registry) ValidateConfig(stepType models.StepType, config map[string]any) error {
	executor, err := r.Executor(stepType)
	if err != nil {
		return err
	}

	schema := executor.Schema()
	if schema == nil {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schema)
	configLoader := gojsonschema.NewGoLoader(config)

	result, err := gojsonschema.Validate(schemaLoader, configLoader)
	if err != nil {
		return fmt.Errorf("failed to validate step configuration: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("invalid %s step configuration: %s", stepType, strings.Join(details, "; "))
	}

	return nil
}
