package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractpulse/pulse/pkg/models"
	"github.com/contractpulse/pulse/pkg/persistence"
)

type fakeDispatcher struct {
	result     models.DispatchResult
	recipients []models.Recipient
	content    models.Content
	channels   []models.Channel
}

func (f *fakeDispatcher) Dispatch(_ context.Context, recipients []models.Recipient, content models.Content, requestedChannels []models.Channel) models.DispatchResult {
	f.recipients = recipients
	f.content = content
	f.channels = requestedChannels

	return f.result
}

type fakeDirectory struct {
	profiles map[string]*models.Profile
}

func (f *fakeDirectory) ProfileByID(_ context.Context, id string) (*models.Profile, error) {
	profile, ok := f.profiles[id]
	if !ok {
		return nil, persistence.ErrProfileNotFound
	}

	return profile, nil
}

func (f *fakeDirectory) SaveProfile(_ context.Context, _ *models.Profile) error {
	return nil
}

func (f *fakeDirectory) CreateOnboardingTasks(_ context.Context, _ []*models.OnboardingTask) error {
	return nil
}

func (f *fakeDirectory) OverdueTasks(_ context.Context, _ time.Time) ([]*models.OnboardingTask, error) {
	return nil, nil
}

func (f *fakeDirectory) DocumentByID(_ context.Context, _ string) (*models.Document, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDirectory) SaveDocument(_ context.Context, _ *models.Document) error {
	return nil
}

func (f *fakeDirectory) UpdateDocumentStatus(_ context.Context, _, _ string) error {
	return nil
}

func TestExecute(t *testing.T) {
	dispatcher := &fakeDispatcher{result: models.DispatchResult{
		Success: true,
		Sent:    models.ChannelCounts{Email: 1, InApp: 1},
	}}
	directory := &fakeDirectory{profiles: map[string]*models.Profile{
		"emp-1": {ID: "emp-1", Role: models.RoleEmployee, FullName: "Maria Silva", Email: "maria@example.com"},
	}}
	executor := NewExecutor(dispatcher, directory, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{
			"title":   "Contract {{.contract_id}} ready",
			"message": "Please review and sign",
		},
	}, "exec-1", map[string]any{
		"employee_id": "emp-1",
		"contract_id": "C-42",
	})

	require.True(t, result.Success, result.Error)
	require.Len(t, dispatcher.recipients, 1)
	assert.Equal(t, "emp-1", dispatcher.recipients[0].UserID)
	assert.Equal(t, "Contract C-42 ready", dispatcher.content.Title)
	assert.Equal(t, models.PriorityMedium, dispatcher.content.Priority)
	assert.Equal(t, DefaultChannels, dispatcher.channels)
	assert.Equal(t, 2, result.Data["notification_sent"])
}

func TestExecuteBothRolesResolved(t *testing.T) {
	dispatcher := &fakeDispatcher{result: models.DispatchResult{Success: true}}
	directory := &fakeDirectory{profiles: map[string]*models.Profile{
		"emp-1": {ID: "emp-1", Role: models.RoleEmployee},
		"org-1": {ID: "org-1", Role: models.RoleEmployer},
	}}
	executor := NewExecutor(dispatcher, directory, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"title": "Hello", "message": "World"},
	}, "exec-1", map[string]any{
		"employee_id": "emp-1",
		"employer_id": "org-1",
	})

	require.True(t, result.Success)
	assert.Len(t, dispatcher.recipients, 2)
}

func TestExecuteNoRecipients(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	executor := NewExecutor(dispatcher, &fakeDirectory{}, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"title": "Hello", "message": "World"},
	}, "exec-1", map[string]any{"employee_id": "missing"})

	assert.False(t, result.Success)
	assert.Equal(t, "no recipients found", result.Error)
	assert.Empty(t, dispatcher.recipients)
}

func TestExecuteConfiguredChannelsAndRoles(t *testing.T) {
	dispatcher := &fakeDispatcher{result: models.DispatchResult{Success: true}}
	directory := &fakeDirectory{profiles: map[string]*models.Profile{
		"org-1": {ID: "org-1", Role: models.RoleEmployer},
	}}
	executor := NewExecutor(dispatcher, directory, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{
			"title":      "Hello",
			"message":    "World",
			"recipients": []any{"employer"},
			"channels":   []any{"sms", "in_app"},
			"priority":   "urgent",
		},
	}, "exec-1", map[string]any{
		"employee_id": "emp-1",
		"employer_id": "org-1",
	})

	require.True(t, result.Success)
	require.Len(t, dispatcher.recipients, 1)
	assert.Equal(t, "org-1", dispatcher.recipients[0].UserID)
	assert.Equal(t, []models.Channel{models.ChannelSMS, models.ChannelInApp}, dispatcher.channels)
	assert.Equal(t, models.PriorityUrgent, dispatcher.content.Priority)
}

func TestExecuteDispatchFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{result: models.DispatchResult{
		Success: false,
		Failed:  models.ChannelCounts{Email: 1},
		Errors:  []string{"email: mailbox unavailable"},
	}}
	directory := &fakeDirectory{profiles: map[string]*models.Profile{
		"emp-1": {ID: "emp-1"},
	}}
	executor := NewExecutor(dispatcher, directory, slog.Default())

	result := executor.Execute(context.Background(), &models.WorkflowStep{
		Configuration: map[string]any{"title": "Hello", "message": "World"},
	}, "exec-1", map[string]any{"employee_id": "emp-1"})

	assert.False(t, result.Success)
	assert.Equal(t, "email: mailbox unavailable", result.Error)
}
