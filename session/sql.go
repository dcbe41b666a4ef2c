package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type sessionValue struct {
	bun.BaseModel `bun:"table:session_values"`

	Name      string    `bun:"name,pk"`
	Value     string    `bun:"value,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQLStore keeps values in a session_values table.
type SQLStore struct {
	db     *bun.DB
	logger zerolog.Logger
}

// OpenSQL connects to sqlite or postgres and prepares the table.
func OpenSQL(ctx context.Context, backend, dsn string, logger zerolog.Logger) (*SQLStore, error) {
	var db *bun.DB
	switch backend {
	case BackendSQLite:
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("session: open sqlite: %w", err)
		}
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	case BackendPostgres:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("session: open postgres: %w", err)
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	default:
		return nil, fmt.Errorf("session: %q is not a SQL backend", backend)
	}

	s, err := NewSQLStore(ctx, db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore uses an existing connection, creating the table if needed.
func NewSQLStore(ctx context.Context, db *bun.DB, logger zerolog.Logger) (*SQLStore, error) {
	if _, err := db.NewCreateTable().Model((*sessionValue)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("session: create table: %w", err)
	}
	logger.Debug().Str("dialect", db.Dialect().Name().String()).Msg("session table ready")
	return &SQLStore{db: db, logger: logger}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var v sessionValue
	err := s.db.NewSelect().Model(&v).Where("name = ?", key).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("session: get %s: %w", key, err)
	}
	return v.Value, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	v := &sessionValue{Name: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(v).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("session: set %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.NewDelete().Model((*sessionValue)(nil)).Where("name = ?", key).Exec(ctx); err != nil {
		return fmt.Errorf("session: delete %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
