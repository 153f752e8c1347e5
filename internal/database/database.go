// Package database implements the note store on top of sqlx. Postgres is
// the primary backend; when no DSN is configured or the server cannot be
// reached within the connect timeout, an embedded SQLite file is used
// instead so the service stays usable locally.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"dailynote.app/notes-api/internal/config"
	"dailynote.app/notes-api/internal/logging"
	"dailynote.app/notes-api/internal/models"
)

// ErrNoteNotFound is returned when the referenced note id does not exist.
var ErrNoteNotFound = errors.New("note not found")

// SQLite accepts $N placeholders as well, so one builder serves both backends.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const connectTimeout = 2 * time.Second

const noteColumns = "id, title, content, created_at, updated_at, tags, event_date, event_time, position"

// Schema migration is a startup step, never part of the request path.
const ddlPostgres = `
CREATE TABLE IF NOT EXISTS notes (
    id          BIGSERIAL PRIMARY KEY,
    title       TEXT NOT NULL,
    content     TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    tags        TEXT NOT NULL DEFAULT '[]',
    event_date  TEXT,
    event_time  TEXT,
    position    BIGINT DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notes_position   ON notes(position);
CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at);
`

const ddlSQLite = `
CREATE TABLE IF NOT EXISTS notes (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    title       TEXT NOT NULL,
    content     TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL,
    tags        TEXT NOT NULL DEFAULT '[]',
    event_date  TEXT,
    event_time  TEXT,
    position    INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_notes_position   ON notes(position);
CREATE INDEX IF NOT EXISTS idx_notes_updated_at ON notes(updated_at);
`

type Database struct {
	Db     *sqlx.DB
	driver string
}

// NewWithDB wraps an existing connection, used by tests with sqlmock.
func NewWithDB(db *sqlx.DB, driver string) *Database {
	return &Database{Db: db, driver: driver}
}

// Open connects to the configured backend. A Postgres DSN that fails to
// ping within the connect timeout falls back to SQLite rather than aborting
// startup.
func Open(cfg config.Config) (*Database, error) {
	log := logging.ForService("database")

	if cfg.DatabaseURL != "" {
		db, err := sqlx.Open("postgres", cfg.DatabaseURL)
		if err == nil {
			ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
			err = db.PingContext(ctx)
			cancel()
			if err == nil {
				log.Info("connected to postgres")
				return &Database{Db: db, driver: "postgres"}, nil
			}
			db.Close()
		}
		log.Warn("postgres unreachable, falling back to sqlite", "error", err, "path", cfg.SQLitePath)
	}

	db, err := sqlx.Open("sqlite3", cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", cfg.SQLitePath, err)
	}
	log.Info("using embedded sqlite store", "path", cfg.SQLitePath)
	return &Database{Db: db, driver: "sqlite3"}, nil
}

// Migrate applies the schema. Run once at startup.
func (d *Database) Migrate(ctx context.Context) error {
	ddl := ddlSQLite
	if d.driver == "postgres" {
		ddl = ddlPostgres
	}
	if _, err := d.Db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	if d.Db != nil {
		return d.Db.Close()
	}
	return nil
}

func (d *Database) CreateNote(ctx context.Context, in models.CreateNoteInput) (*models.Note, error) {
	tx, err := d.Db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create: %w", err)
	}
	defer func() {
		tx.Rollback()
	}()

	now := time.Now().UTC()
	pos := int64(0)
	q := psql.Insert("notes").
		Columns("title", "content", "created_at", "updated_at", "tags", "event_date", "event_time", "position").
		Values(in.Title, in.Content, now, now, models.TagList(in.Tags), in.EventDate, in.EventTime, pos).
		Suffix("RETURNING " + noteColumns)
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notes insert: %w", err)
	}

	var n models.Note
	if err := tx.GetContext(ctx, &n, query, args...); err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create: %w", err)
	}
	return &n, nil
}

func (d *Database) GetNote(ctx context.Context, id int64) (*models.Note, error) {
	q := psql.Select(noteColumns).From("notes").Where(sq.Eq{"id": id})
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build note select: %w", err)
	}

	var n models.Note
	if err := d.Db.GetContext(ctx, &n, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("select note: %w", err)
	}
	return &n, nil
}

// ListNotes returns every note, manually positioned notes first, then most
// recently updated.
func (d *Database) ListNotes(ctx context.Context) ([]models.Note, error) {
	q := psql.Select(noteColumns).From("notes").
		OrderBy("position ASC NULLS LAST", "updated_at DESC")
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notes list: %w", err)
	}

	notes := make([]models.Note, 0)
	if err := d.Db.SelectContext(ctx, &notes, query, args...); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (d *Database) UpdateNote(ctx context.Context, in models.UpdateNoteInput) (*models.Note, error) {
	tx, err := d.Db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		tx.Rollback()
	}()

	uq := psql.Update("notes")
	if in.Title != nil {
		uq = uq.Set("title", *in.Title)
	}
	if in.Content != nil {
		uq = uq.Set("content", *in.Content)
	}
	if in.Tags != nil {
		uq = uq.Set("tags", models.TagList(*in.Tags))
	}
	if in.EventDateSet {
		uq = uq.Set("event_date", in.EventDate)
	}
	if in.EventTimeSet {
		uq = uq.Set("event_time", in.EventTime)
	}
	uq = uq.Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": in.NoteID}).
		Suffix("RETURNING " + noteColumns)

	query, args, err := uq.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notes update: %w", err)
	}

	var n models.Note
	if err := tx.GetContext(ctx, &n, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, fmt.Errorf("update note: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return &n, nil
}

func (d *Database) DeleteNote(ctx context.Context, id int64) error {
	tx, err := d.Db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() {
		tx.Rollback()
	}()

	query, args, err := psql.Delete("notes").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build notes delete: %w", err)
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected (notes delete): %w", err)
	}
	if ra == 0 {
		return ErrNoteNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// SearchNotes does a plain infix match on title or content. An empty query
// is a no-op, not match-all.
func (d *Database) SearchNotes(ctx context.Context, query string) ([]models.Note, error) {
	if query == "" {
		return []models.Note{}, nil
	}

	pattern := "%" + query + "%"
	q := psql.Select(noteColumns).From("notes").
		Where(sq.Or{sq.Like{"title": pattern}, sq.Like{"content": pattern}}).
		OrderBy("updated_at DESC")
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build notes search: %w", err)
	}

	notes := make([]models.Note, 0)
	if err := d.Db.SelectContext(ctx, &notes, sqlStr, args...); err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return notes, nil
}

// ReorderNotes sets each listed note's position to its index in the list.
// Unknown ids are skipped. Notes omitted from the list keep their previous
// position; positions are intentionally not renormalized afterwards.
func (d *Database) ReorderNotes(ctx context.Context, orderedIDs []int64) error {
	tx, err := d.Db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin reorder: %w", err)
	}
	defer func() {
		tx.Rollback()
	}()

	for idx, id := range orderedIDs {
		query, args, err := psql.Update("notes").
			Set("position", int64(idx)).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build reorder update: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("reorder note %d: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reorder: %w", err)
	}
	return nil
}
