// Package history keeps an audit log of question events in a local sqlite
// database. The log is write-mostly and best effort: the bot works fine
// without it, and nothing in it is read back at startup (the pending
// question is deliberately not persisted across restarts).
package history

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Entry is one recorded question event.
type Entry struct {
	ID       string
	Event    string
	Question string
	UserID   string
	At       time.Time
}

// Store persists question events to sqlite.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed bootstraps) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening history database")
	}

	const schema = `
	create table
		if not exists
		entries (
			id       text not null primary key,
			event    text not null,
			question text not null,
			user_id  text not null,
			at       timestamp not null
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating history schema")
	}

	return &Store{db: db}, nil
}

// Record appends an event to the log. userID may be empty for events not
// tied to a user (the daily post).
func (s *Store) Record(event, userID, question string) error {
	_, err := s.db.Exec(
		"insert into entries (id, event, question, user_id, at) values (?, ?, ?, ?, ?)",
		uuid.NewString(), event, question, userID, time.Now().UTC(),
	)
	return errors.Wrap(err, "recording history entry")
}

// Recent returns up to n entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(
		"select id, event, question, user_id, at from entries order by at desc, id limit ?", n,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Event, &e.Question, &e.UserID, &e.At); err != nil {
			return nil, errors.Wrap(err, "scanning history entry")
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "reading history rows")
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
