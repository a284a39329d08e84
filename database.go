package main

import (
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// AccountRow represents a registered account
type AccountRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow represents per-account career stats
type StatsRow struct {
	AccountID    int64
	Games        int
	CrewWins     int
	ImpostorWins int
	TasksDone    int
}

// MatchRow represents a completed session
type MatchRow struct {
	ID         int64
	WinnerTeam string
	Duration   float64 // seconds
	CreatedAt  time.Time
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		account_id INTEGER PRIMARY KEY REFERENCES accounts(id),
		games INTEGER NOT NULL DEFAULT 0,
		crew_wins INTEGER NOT NULL DEFAULT 0,
		impostor_wins INTEGER NOT NULL DEFAULT 0,
		tasks_done INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS matches (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		winner_team TEXT NOT NULL,
		duration REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS match_players (
		match_id INTEGER NOT NULL REFERENCES matches(id),
		name TEXT NOT NULL,
		color TEXT NOT NULL,
		impostor INTEGER NOT NULL DEFAULT 0,
		dead INTEGER NOT NULL DEFAULT 0,
		tasks_done INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (match_id, color)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// GetSetting reads a settings value, or "" if unset
func (db *DB) GetSetting(key string) string {
	var value string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		return ""
	}
	return value
}

// SetSetting writes a settings value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

// CreateAccount inserts a new account and its empty stats row
func (db *DB) CreateAccount(username, passHash string) (int64, error) {
	res, err := db.conn.Exec(
		"INSERT INTO accounts (username, pass_hash) VALUES (?, ?)", username, passHash)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := db.conn.Exec("INSERT INTO stats (account_id) VALUES (?)", id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetAccountByUsername returns an account, or nil if not found
func (db *DB) GetAccountByUsername(username string) (*AccountRow, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM accounts WHERE username = ?", username)
	var acc AccountRow
	err := row.Scan(&acc.ID, &acc.Username, &acc.PassHash, &acc.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// UsernameExists checks for a taken username
func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow(
		"SELECT COUNT(*) FROM accounts WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetStats returns career stats for an account
func (db *DB) GetStats(accountID int64) (*StatsRow, error) {
	row := db.conn.QueryRow(
		"SELECT account_id, games, crew_wins, impostor_wins, tasks_done FROM stats WHERE account_id = ?",
		accountID)
	var s StatsRow
	err := row.Scan(&s.AccountID, &s.Games, &s.CrewWins, &s.ImpostorWins, &s.TasksDone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// RecordMatch persists a finished session: the match row, every roster
// member, and career stats for any of them with a matching account.
func (db *DB) RecordMatch(winner Team, duration time.Duration, players map[UUID]*Player) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		"INSERT INTO matches (winner_team, duration) VALUES (?, ?)",
		winner.String(), duration.Seconds())
	if err != nil {
		return err
	}
	matchID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, p := range players {
		tasksDone := 0
		for _, t := range p.Tasks {
			if t.Finished {
				tasksDone++
			}
		}
		_, err := tx.Exec(
			`INSERT INTO match_players (match_id, name, color, impostor, dead, tasks_done)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			matchID, p.Name, p.Color.String(), p.Impostor, p.Dead, tasksDone)
		if err != nil {
			return err
		}

		won := (winner == TeamImpostors) == p.Impostor
		_, err = tx.Exec(
			`UPDATE stats SET
				games = games + 1,
				crew_wins = crew_wins + ?,
				impostor_wins = impostor_wins + ?,
				tasks_done = tasks_done + ?
			 WHERE account_id IN (SELECT id FROM accounts WHERE username = ?)`,
			boolToInt(won && !p.Impostor), boolToInt(won && p.Impostor), tasksDone, p.Name)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentMatches returns the latest finished matches, newest first
func (db *DB) RecentMatches(limit int) ([]MatchRow, error) {
	rows, err := db.conn.Query(
		"SELECT id, winner_team, duration, created_at FROM matches ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []MatchRow
	for rows.Next() {
		var m MatchRow
		if err := rows.Scan(&m.ID, &m.WinnerTeam, &m.Duration, &m.CreatedAt); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
