package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Per-tenant workflow status vocabulary
			CREATE TABLE workflow_statuses (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				color VARCHAR(32),
				status_group VARCHAR(50) NOT NULL CHECK (status_group IN ('start', 'active', 'final', 'cancelled')),
				is_final_step BOOLEAN NOT NULL DEFAULT FALSE,
				sort_order INT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				UNIQUE (tenant_id, name)
			);

			CREATE INDEX idx_workflow_statuses_tenant ON workflow_statuses(tenant_id);

			-- Automation trigger definitions
			CREATE TABLE workflow_triggers (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				name VARCHAR(255) NOT NULL,
				status_name VARCHAR(255) NOT NULL,
				event VARCHAR(50) NOT NULL CHECK (event IN ('on_enter', 'on_exit', 'on_timeout')),
				timeout_after_ms BIGINT NOT NULL DEFAULT 0,
				conditions JSONB NOT NULL DEFAULT '[]',
				action_type VARCHAR(255) NOT NULL,
				action_params JSONB NOT NULL DEFAULT '{}',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				created_by VARCHAR(255)
			);

			-- Hot path: transition processor looks triggers up by status and event
			CREATE INDEX idx_workflow_triggers_lookup ON workflow_triggers(tenant_id, status_name, event);

			-- Work orders
			CREATE TABLE work_orders (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				number VARCHAR(64),
				title VARCHAR(512) NOT NULL,
				description TEXT,
				status VARCHAR(255) NOT NULL,
				priority VARCHAR(50),
				customer_id VARCHAR(255),
				customer_name VARCHAR(255),
				customer_email VARCHAR(255),
				assignee_id VARCHAR(255),
				hourly_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
				custom_fields JSONB NOT NULL DEFAULT '{}',
				status_since TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_work_orders_tenant ON work_orders(tenant_id);
			CREATE INDEX idx_work_orders_status ON work_orders(tenant_id, status);

			-- Labor logged against work orders
			CREATE TABLE time_entries (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				work_order_id VARCHAR(255) NOT NULL,
				user_id VARCHAR(255),
				minutes INT NOT NULL,
				notes TEXT,
				started_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_time_entries_work_order ON time_entries(tenant_id, work_order_id);

			-- Invoices created by automation; the unique index is the
			-- authoritative idempotency guard
			CREATE TABLE invoices (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				work_order_id VARCHAR(255) NOT NULL,
				number VARCHAR(64) NOT NULL,
				status VARCHAR(50) NOT NULL,
				customer_id VARCHAR(255),
				customer_name VARCHAR(255),
				lines JSONB NOT NULL DEFAULT '[]',
				subtotal DOUBLE PRECISION NOT NULL DEFAULT 0,
				tax_total DOUBLE PRECISION NOT NULL DEFAULT 0,
				discount_total DOUBLE PRECISION NOT NULL DEFAULT 0,
				total DOUBLE PRECISION NOT NULL DEFAULT 0,
				amount_paid DOUBLE PRECISION NOT NULL DEFAULT 0,
				amount_due DOUBLE PRECISION NOT NULL DEFAULT 0,
				idempotency_key VARCHAR(512) NOT NULL,
				issued_at TIMESTAMP WITH TIME ZONE,
				due_at TIMESTAMP WITH TIME ZONE,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE UNIQUE INDEX idx_invoices_idempotency ON invoices(tenant_id, idempotency_key);
			CREATE INDEX idx_invoices_work_order ON invoices(tenant_id, work_order_id);
			CREATE INDEX idx_invoices_tenant_created ON invoices(tenant_id, created_at);

			-- Queued customer notifications, same idempotency guard
			CREATE TABLE notifications (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				work_order_id VARCHAR(255) NOT NULL,
				customer_id VARCHAR(255),
				channel VARCHAR(50) NOT NULL,
				recipient VARCHAR(255) NOT NULL,
				subject VARCHAR(512),
				body TEXT NOT NULL,
				status VARCHAR(50) NOT NULL,
				is_read BOOLEAN NOT NULL DEFAULT FALSE,
				idempotency_key VARCHAR(512) NOT NULL,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE UNIQUE INDEX idx_notifications_idempotency ON notifications(tenant_id, idempotency_key);
			CREATE INDEX idx_notifications_work_order ON notifications(tenant_id, work_order_id);

			-- Armed dwell timers for on_timeout triggers
			CREATE TABLE status_watches (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				work_order_id VARCHAR(255) NOT NULL,
				status_name VARCHAR(255) NOT NULL,
				trigger_id VARCHAR(255) NOT NULL,
				entered_at TIMESTAMP WITH TIME ZONE NOT NULL,
				due_at TIMESTAMP WITH TIME ZONE NOT NULL,
				fired BOOLEAN NOT NULL DEFAULT FALSE
			);

			CREATE INDEX idx_status_watches_due ON status_watches(fired, due_at);
			CREATE INDEX idx_status_watches_work_order ON status_watches(tenant_id, work_order_id);

			-- Audit trail of trigger executions
			CREATE TABLE automation_runs (
				id VARCHAR(255) PRIMARY KEY,
				tenant_id VARCHAR(255) NOT NULL,
				work_order_id VARCHAR(255) NOT NULL,
				trigger_id VARCHAR(255),
				trigger_name VARCHAR(255),
				event VARCHAR(50) NOT NULL,
				action_type VARCHAR(255),
				status VARCHAR(50) NOT NULL,
				detail TEXT,
				idempotency_key VARCHAR(512),
				duration_ms BIGINT NOT NULL DEFAULT 0,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL,
				finished_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_automation_runs_work_order ON automation_runs(tenant_id, work_order_id);
			CREATE INDEX idx_automation_runs_finished ON automation_runs(finished_at);
		`,
	}
}
