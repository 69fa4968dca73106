package postgresql

// migrations returns the schema migrations keyed by version.
func migrations() map[int]string {
	return map[int]string{
		1: schemaV1,
	}
}

const schemaV1 = `
	CREATE TABLE IF NOT EXISTS workflows (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1,
		trigger_type VARCHAR(32) NOT NULL,
		trigger_config JSONB NOT NULL DEFAULT '{}',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS workflow_steps (
		id UUID PRIMARY KEY,
		workflow_id UUID NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		step_order INTEGER NOT NULL DEFAULT 0,
		step_type VARCHAR(32) NOT NULL,
		configuration JSONB NOT NULL DEFAULT '{}',
		conditions JSONB NOT NULL DEFAULT '[]',
		on_success VARCHAR(255) NOT NULL DEFAULT '',
		on_failure VARCHAR(255) NOT NULL DEFAULT '',
		retry_count INTEGER NOT NULL DEFAULT 0,
		retry_delay_seconds INTEGER NOT NULL DEFAULT 0,
		timeout_seconds INTEGER NOT NULL DEFAULT 0,
		inserted_at BIGSERIAL
	);

	CREATE INDEX IF NOT EXISTS idx_workflow_steps_workflow_id
		ON workflow_steps(workflow_id, step_order, inserted_at);

	CREATE TABLE IF NOT EXISTS workflow_executions (
		id UUID PRIMARY KEY,
		workflow_id UUID NOT NULL REFERENCES workflows(id),
		triggered_by VARCHAR(255) NOT NULL DEFAULT '',
		trigger_data JSONB NOT NULL DEFAULT '{}',
		status VARCHAR(32) NOT NULL,
		started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMP WITH TIME ZONE,
		error_message TEXT NOT NULL DEFAULT '',
		execution_data JSONB NOT NULL DEFAULT '{}'
	);

	CREATE INDEX IF NOT EXISTS idx_workflow_executions_workflow_id
		ON workflow_executions(workflow_id, started_at DESC);

	CREATE TABLE IF NOT EXISTS workflow_step_executions (
		id UUID PRIMARY KEY,
		execution_id UUID NOT NULL REFERENCES workflow_executions(id) ON DELETE CASCADE,
		step_id UUID NOT NULL,
		step_order INTEGER NOT NULL DEFAULT 0,
		status VARCHAR(32) NOT NULL,
		started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMP WITH TIME ZONE,
		result JSONB NOT NULL DEFAULT '{}',
		error_message TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_workflow_step_executions_execution_id
		ON workflow_step_executions(execution_id, started_at);

	CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL,
		title VARCHAR(255) NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		priority VARCHAR(16) NOT NULL DEFAULT 'medium',
		category VARCHAR(64) NOT NULL DEFAULT '',
		action_url TEXT NOT NULL DEFAULT '',
		metadata JSONB NOT NULL DEFAULT '{}',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
		read_at TIMESTAMP WITH TIME ZONE
	);

	CREATE INDEX IF NOT EXISTS idx_notifications_user_id
		ON notifications(user_id, read, created_at DESC);

	CREATE TABLE IF NOT EXISTS profiles (
		id VARCHAR(255) PRIMARY KEY,
		role VARCHAR(32) NOT NULL DEFAULT '',
		full_name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(64) NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS onboarding_tasks (
		id UUID PRIMARY KEY,
		employee_id VARCHAR(255) NOT NULL,
		title VARCHAR(255) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'pending',
		due_date TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_onboarding_tasks_due
		ON onboarding_tasks(status, due_date);

	CREATE TABLE IF NOT EXISTS documents (
		id VARCHAR(255) PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL DEFAULT 'draft',
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);
`
