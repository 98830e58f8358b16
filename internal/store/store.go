package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/studyai/studyai/internal/model"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Store persists finished sessions so they can be listed and re-exported
// after a restart. Live session state stays with the session manager; this is
// history only.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if err := s.SetMetadata("schema_version", schemaVersion); err != nil {
		return nil, fmt.Errorf("record schema version: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		topic TEXT NOT NULL,
		subtopic TEXT NOT NULL DEFAULT '',
		difficulty TEXT NOT NULL DEFAULT 'Easy',
		explanation TEXT NOT NULL DEFAULT '',
		quiz TEXT NOT NULL DEFAULT '[]',
		answers TEXT NOT NULL DEFAULT '{}',
		score_raw INTEGER NOT NULL DEFAULT 0,
		score_weighted INTEGER NOT NULL DEFAULT 0,
		revealed INTEGER NOT NULL DEFAULT 0,
		generated_at DATETIME,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveSession upserts a session snapshot. Quiz and answers are stored as
// JSON columns.
func (s *Store) SaveSession(sess model.Session) error {
	quizJSON, err := json.Marshal(sess.Quiz)
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}
	answersJSON, err := json.Marshal(sess.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	var generatedAt any
	if !sess.GeneratedAt.IsZero() {
		generatedAt = sess.GeneratedAt
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions (id, topic, subtopic, difficulty, explanation, quiz, answers,
		                       score_raw, score_weighted, revealed, generated_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   topic = excluded.topic,
		   subtopic = excluded.subtopic,
		   difficulty = excluded.difficulty,
		   explanation = excluded.explanation,
		   quiz = excluded.quiz,
		   answers = excluded.answers,
		   score_raw = excluded.score_raw,
		   score_weighted = excluded.score_weighted,
		   revealed = excluded.revealed,
		   generated_at = excluded.generated_at,
		   updated_at = excluded.updated_at`,
		sess.ID, sess.Topic, sess.Subtopic, sess.Difficulty, sess.Explanation,
		string(quizJSON), string(answersJSON),
		sess.ScoreRaw, sess.ScoreWeighted, sess.Revealed, generatedAt, time.Now(),
	)
	return err
}

// GetSession returns a stored session by id, or nil if not found.
func (s *Store) GetSession(id string) (*model.Session, error) {
	row := s.db.QueryRow(
		`SELECT id, topic, subtopic, difficulty, explanation, quiz, answers,
		        score_raw, score_weighted, revealed, generated_at
		 FROM sessions WHERE id = ?`, id,
	)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// ListSessions returns all stored sessions, most recently updated first.
func (s *Store) ListSessions() ([]model.Session, error) {
	rows, err := s.db.Query(
		`SELECT id, topic, subtopic, difficulty, explanation, quiz, answers,
		        score_raw, score_weighted, revealed, generated_at
		 FROM sessions ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// SessionCount returns the number of stored sessions.
func (s *Store) SessionCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions`).Scan(&count)
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*model.Session, error) {
	var (
		sess        model.Session
		quizJSON    string
		answersJSON string
		generatedAt sql.NullTime
	)
	err := row.Scan(
		&sess.ID, &sess.Topic, &sess.Subtopic, &sess.Difficulty, &sess.Explanation,
		&quizJSON, &answersJSON, &sess.ScoreRaw, &sess.ScoreWeighted, &sess.Revealed,
		&generatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(quizJSON), &sess.Quiz); err != nil {
		return nil, fmt.Errorf("unmarshal quiz for %s: %w", sess.ID, err)
	}
	if err := json.Unmarshal([]byte(answersJSON), &sess.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers for %s: %w", sess.ID, err)
	}
	if generatedAt.Valid {
		sess.GeneratedAt = generatedAt.Time
	}
	return &sess, nil
}
