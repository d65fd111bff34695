package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS tenants (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		domain TEXT UNIQUE,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS roles (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		permissions JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		display_name TEXT NOT NULL,
		role_id UUID REFERENCES roles(id),
		super_admin BOOLEAN NOT NULL DEFAULT false,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS site_memberships (
		tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role_id UUID NOT NULL REFERENCES roles(id),
		created_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (tenant_id, user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		permissions JSONB,
		tenant_id UUID REFERENCES tenants(id) ON DELETE CASCADE,
		key_hash TEXT NOT NULL UNIQUE,
		prefix TEXT NOT NULL,
		last_used_at TIMESTAMPTZ,
		expires_at TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS activity_log (
		id UUID PRIMARY KEY,
		tenant_id UUID,
		actor_id UUID NOT NULL,
		impersonator_id UUID,
		action TEXT NOT NULL,
		object_type TEXT NOT NULL,
		object_id TEXT,
		object_label TEXT,
		changes_before JSONB,
		changes_after JSONB,
		ip_address TEXT,
		user_agent TEXT,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_activity_log_tenant ON activity_log (tenant_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS ix_activity_log_actor ON activity_log (actor_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS ix_site_memberships_user ON site_memberships (user_id)`,
}

// EnsureSchema creates the global tables if they do not exist. Idempotent,
// run once at startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}
