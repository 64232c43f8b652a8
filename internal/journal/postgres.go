package journal

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib" // postgres driver
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres is a Journal backed by a PostgreSQL table.
type Postgres struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open connects to the database at url, applies the journal schema
// migrations and returns a ready journal. A migration or connection
// failure is a bootstrap failure for callers that require durability.
func Open(ctx context.Context, url string, logger *slog.Logger) (*Postgres, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach journal database: %w", err)
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply journal migrations: %w", err)
	}

	return &Postgres{
		db:     db,
		logger: logger.With("component", "journal"),
	}, nil
}

// Record inserts one event row.
func (p *Postgres) Record(ctx context.Context, event Event) error {
	query := `
		INSERT INTO recovery_events (id, run_id, kind, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := p.db.ExecContext(ctx, query,
		event.ID,
		event.RunID,
		string(event.Kind),
		event.Detail,
		event.CreatedAt,
	)
	if err != nil {
		p.logger.Error("failed to record recovery event",
			"event_id", event.ID,
			"kind", event.Kind,
			"error", err)
		return fmt.Errorf("failed to record recovery event: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (p *Postgres) Close() error {
	return p.db.Close()
}
