package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/soniq/soniq/internal/api"
	_ "modernc.org/sqlite"
)

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyUser         = "user"
)

// Store persists the session (access token, refresh token, user) to SQLite so
// it survives restarts. The session manager is its only writer.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the session store at the given path. If dbPath
// is empty, the default location in the user state directory is used.
func OpenStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		var err error
		dbPath, err = defaultSessionDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve session db path: %w", err)
		}
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	store := &Store{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func defaultSessionDBPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(dir, "Soniq", "state")
	default:
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(dir, "soniq", "state")
	}
	return filepath.Join(base, "session.db"), nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	schema := `CREATE TABLE IF NOT EXISTS session (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate session schema: %w", err)
	}
	return nil
}

// StoredSession is the persisted state: both tokens absent means
// unauthenticated.
type StoredSession struct {
	Access  string
	Refresh string
	User    *api.User
}

// SaveTokens writes the token pair.
func (s *Store) SaveTokens(ctx context.Context, access, refresh string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for key, value := range map[string]string{keyAccessToken: access, keyRefreshToken: refresh} {
		if err := upsert(ctx, tx, key, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// SaveUser writes the user record as JSON.
func (s *Store) SaveUser(ctx context.Context, u api.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := upsert(ctx, tx, keyUser, string(raw)); err != nil {
		return err
	}
	return tx.Commit()
}

func upsert(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO session (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}

// Load reads the persisted session. Missing entries are returned as zero
// values, not errors.
func (s *Store) Load(ctx context.Context) (StoredSession, error) {
	var out StoredSession
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM session`)
	if err != nil {
		return out, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return out, fmt.Errorf("scan session row: %w", err)
		}
		switch key {
		case keyAccessToken:
			out.Access = value
		case keyRefreshToken:
			out.Refresh = value
		case keyUser:
			var u api.User
			if err := json.Unmarshal([]byte(value), &u); err != nil {
				// Corrupted user record: tokens still count.
				continue
			}
			out.User = &u
		}
	}
	if err := rows.Err(); err != nil {
		return out, fmt.Errorf("iterate session rows: %w", err)
	}
	return out, nil
}

// Clear removes all persisted session state.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
