// Package db is the auxiliary SQLite store behind the note, calendar and
// clipboard commands. It never touches the markdown files the editor owns.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS notes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS calendar_events (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT,
	start_time  TEXT NOT NULL,
	end_time    TEXT,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calendar_events_start ON calendar_events(start_time);

CREATE TABLE IF NOT EXISTS clipboard_history (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	content    TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

var ErrEmpty = errors.New("value must not be empty")

type Note struct {
	ID        int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Event struct {
	ID          int64
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	CreatedAt   time.Time
}

type Clip struct {
	ID        int64
	Content   string
	CreatedAt time.Time
}

type DB struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.Exec(p); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("pragma %q: %w", p, err)
		}
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &DB{db: sqlDB, now: time.Now}, nil
}

func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) AddNote(ctx context.Context, title, content string) (Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Note{}, fmt.Errorf("note title: %w", ErrEmpty)
	}

	now := d.stamp()
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO notes (title, content, created_at, updated_at) VALUES (?, ?, ?, ?)",
		title, content, formatTime(now), formatTime(now),
	)
	if err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Note{}, fmt.Errorf("insert note: %w", err)
	}

	return Note{ID: id, Title: title, Content: content, CreatedAt: now, UpdatedAt: now}, nil
}

// ListNotes returns notes most recently updated first.
func (d *DB) ListNotes(ctx context.Context) ([]Note, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, title, content, created_at, updated_at FROM notes ORDER BY updated_at DESC, id DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		var (
			n                  Note
			created, updated string
		)
		if err := rows.Scan(&n.ID, &n.Title, &n.Content, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		if n.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if n.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// AddEvent stores a calendar event. A zero end time is stored as NULL.
func (d *DB) AddEvent(ctx context.Context, ev Event) (Event, error) {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return Event{}, fmt.Errorf("event title: %w", ErrEmpty)
	}
	if ev.Start.IsZero() {
		return Event{}, fmt.Errorf("event start: %w", ErrEmpty)
	}
	if !ev.End.IsZero() && ev.End.Before(ev.Start) {
		return Event{}, fmt.Errorf("event ends before it starts")
	}

	var end sql.NullString
	if !ev.End.IsZero() {
		end = sql.NullString{String: formatTime(ev.End), Valid: true}
	}
	var desc sql.NullString
	if ev.Description != "" {
		desc = sql.NullString{String: ev.Description, Valid: true}
	}

	ev.CreatedAt = d.stamp()
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO calendar_events (title, description, start_time, end_time, created_at) VALUES (?, ?, ?, ?, ?)",
		ev.Title, desc, formatTime(ev.Start), end, formatTime(ev.CreatedAt),
	)
	if err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	if ev.ID, err = res.LastInsertId(); err != nil {
		return Event{}, fmt.Errorf("insert event: %w", err)
	}
	return ev, nil
}

// EventsBetween returns events starting in [from, to), earliest first.
func (d *DB) EventsBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, title, description, start_time, end_time, created_at
		 FROM calendar_events
		 WHERE start_time >= ? AND start_time < ?
		 ORDER BY start_time, id`,
		formatTime(from), formatTime(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev             Event
			desc, end      sql.NullString
			start, created string
		)
		if err := rows.Scan(&ev.ID, &ev.Title, &desc, &start, &end, &created); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		ev.Description = desc.String
		if ev.Start, err = parseTime(start); err != nil {
			return nil, err
		}
		if end.Valid {
			if ev.End, err = parseTime(end.String); err != nil {
				return nil, err
			}
		}
		if ev.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// AddClip records clipboard content. Repeating the most recent entry is a
// no-op that returns the existing row.
func (d *DB) AddClip(ctx context.Context, content string) (Clip, error) {
	if strings.TrimSpace(content) == "" {
		return Clip{}, fmt.Errorf("clip content: %w", ErrEmpty)
	}

	latest, err := d.RecentClips(ctx, 1)
	if err != nil {
		return Clip{}, err
	}
	if len(latest) == 1 && latest[0].Content == content {
		return latest[0], nil
	}

	now := d.stamp()
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO clipboard_history (content, created_at) VALUES (?, ?)",
		content, formatTime(now),
	)
	if err != nil {
		return Clip{}, fmt.Errorf("insert clip: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Clip{}, fmt.Errorf("insert clip: %w", err)
	}
	return Clip{ID: id, Content: content, CreatedAt: now}, nil
}

// RecentClips returns up to limit entries, newest first.
func (d *DB) RecentClips(ctx context.Context, limit int) ([]Clip, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := d.db.QueryContext(ctx,
		"SELECT id, content, created_at FROM clipboard_history ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list clips: %w", err)
	}
	defer rows.Close()

	var clips []Clip
	for rows.Next() {
		var (
			c       Clip
			created string
		)
		if err := rows.Scan(&c.ID, &c.Content, &created); err != nil {
			return nil, fmt.Errorf("scan clip: %w", err)
		}
		if c.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, rows.Err()
}

func (d *DB) stamp() time.Time {
	return d.now().UTC().Truncate(time.Millisecond)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
