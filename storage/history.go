package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

const (
	ActionBooked    = "booked"
	ActionCancelled = "cancelled"
)

// HistoryEntry is one booking or cancellation performed from this machine.
type HistoryEntry struct {
	ID            int64  `json:"id"`
	ReservationID string `json:"reservation_id"`
	UserID        string `json:"user_id"`
	SpotNumber    string `json:"spot_number"`
	Floor         int    `json:"floor"`
	Email         string `json:"email"`
	Action        string `json:"action"`
	At            string `json:"at"`
}

type HistoryFilter struct {
	Action string
	UserID string
	Limit  int
}

func OpenHistoryDB() (*sql.DB, error) {
	if _, err := ensureConfigDir(); err != nil {
		return nil, err
	}
	path, err := HistoryPath()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := ensureHistorySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ensureHistorySchema(db *sql.DB) error {
	createTable := `
CREATE TABLE IF NOT EXISTS history (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  reservation_id TEXT,
  user_id TEXT,
  spot_number TEXT,
  floor INTEGER,
  email TEXT,
  action TEXT,
  at TEXT
);`

	if _, err := db.Exec(createTable); err != nil {
		return fmt.Errorf("create history table: %w", err)
	}

	if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_history_user ON history(user_id);"); err != nil {
		return fmt.Errorf("create history index: %w", err)
	}
	return nil
}

func AddHistoryEntry(db *sql.DB, entry HistoryEntry) (int64, error) {
	query := `
INSERT INTO history (
  reservation_id, user_id, spot_number, floor, email, action, at
) VALUES (?, ?, ?, ?, ?, ?, ?);`

	res, err := db.Exec(
		query,
		entry.ReservationID,
		entry.UserID,
		entry.SpotNumber,
		entry.Floor,
		entry.Email,
		entry.Action,
		entry.At,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListHistory returns entries newest first.
func ListHistory(db *sql.DB, filter HistoryFilter) ([]HistoryEntry, error) {
	base := `
SELECT id, reservation_id, user_id, spot_number, floor, email, action, at
FROM history`

	conds := []string{}
	args := []any{}

	if filter.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}

	query := base
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var entry HistoryEntry
		var email sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.ReservationID,
			&entry.UserID,
			&entry.SpotNumber,
			&entry.Floor,
			&email,
			&entry.Action,
			&entry.At,
		); err != nil {
			return nil, err
		}
		if email.Valid {
			entry.Email = email.String
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// History records workflow outcomes into an open history database.
type History struct {
	DB *sql.DB
}

func (h History) Record(entry HistoryEntry) error {
	_, err := AddHistoryEntry(h.DB, entry)
	return err
}
