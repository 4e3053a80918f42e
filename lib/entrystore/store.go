package entrystore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"giftbot/lib/entrystore/db"

	_ "modernc.org/sqlite"
)

// Store keeps a local record of every giveaway entered successfully, so
// later runs can skip listings the remote site no longer marks for us.
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens (creating if needed) an entry history database at `path`.
// `:memory:` works for tests.
func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = database.Exec(db.Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		return Store{}, err
	}
	return NewStore(database), nil
}

func (s Store) Close() error {
	return s.db.Close()
}

type Entry struct {
	Code  string
	Name  string
	Cost  int
	Score float64
	Time  time.Time
}

func (s Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert or replace into entries (code, name, cost, score, entered_at)
		 values (?, ?, ?, ?, ?)`,
		e.Code, e.Name, e.Cost, e.Score, e.Time.Unix(),
	)
	return err
}

func (s Store) Contains(ctx context.Context, code string) (bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`select count(*) from entries where code = ?`,
		code,
	)
	var count int
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`select code, name, cost, score, entered_at from entries
		 order by entered_at desc limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var enteredAt int64
		err := rows.Scan(&e.Code, &e.Name, &e.Cost, &e.Score, &enteredAt)
		if err != nil {
			return nil, err
		}
		e.Time = time.Unix(enteredAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
