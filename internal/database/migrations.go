package database

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		avatar_url VARCHAR(500),
		password_hash VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS events (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		team_capacity INTEGER CHECK (team_capacity > 0),
		starts_at TIMESTAMP WITH TIME ZONE,
		ends_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		leader_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		bio TEXT NOT NULL DEFAULT '',
		roles_required TEXT[] NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// UNIQUE(event_id, user_id) makes the database reject any second
	// membership for a user within one event, regardless of which code
	// path races it there.
	`CREATE TABLE IF NOT EXISTS team_members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role VARCHAR(100) NOT NULL DEFAULT 'member',
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(team_id, user_id),
		UNIQUE(event_id, user_id)
	)`,

	// team_id intentionally carries no foreign key: deleting a team declines
	// its pending requests but keeps the rows as history for the requester.
	`CREATE TABLE IF NOT EXISTS join_requests (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		team_id UUID NOT NULL,
		event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		requester_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		preferred_role VARCHAR(100),
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		resolved_by UUID REFERENCES users(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// One pending request per user per event, enforced by the database so the
	// losing side of a concurrent create sees a unique violation.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_join_requests_one_pending
		ON join_requests(event_id, requester_id) WHERE status = 'pending'`,

	`CREATE INDEX IF NOT EXISTS idx_teams_event_id ON teams(event_id)`,
	`CREATE INDEX IF NOT EXISTS idx_teams_leader_id ON teams(leader_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_team_id ON team_members(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_members_user_id ON team_members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_join_requests_team_id ON join_requests(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_join_requests_requester_id ON join_requests(requester_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
