// internal/store/sqlitestore/sqlitestore.go
//
// SQLite implementation of store.Store for single-node and development use.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout).
//   - Applying the embedded migrations/*.sql (idempotent, recorded in _migrations).
//   - Storing each document as a BSON blob next to the columns it is looked up by.
//
// Select it with DATABASE_URI=sqlite://./data/app.db (or sqlite://:memory:).

package sqlitestore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/robalobadob/connect2pros/internal/model"
	"github.com/robalobadob/connect2pros/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a store.Store backed by one SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (and creates if missing) the SQLite database at path and
// applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

/**
 * openDB opens a SQLite database file.
 *
 * - Ensures parent directory exists for relative paths (e.g. ./data/app.db).
 * - Configures busy timeout and WAL journaling for file databases.
 * - ":memory:" is pinned to a single connection so every query sees the same DB.
 */
func openDB(path string) (*sql.DB, error) {
	inMemory := path == ":memory:"
	if !inMemory {
		dir := filepath.Dir(path)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	dsn := path + "?_busy_timeout=5000"
	if !inMemory {
		dsn += "&_journal_mode=WAL"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	if inMemory {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return db, nil
}

/**
 * migrate applies the embedded SQL migrations.
 *
 * - Uses a _migrations table to track applied files.
 * - Executes each *.sql file in lexical order inside its own transaction.
 * - Skips files already recorded.
 */
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	var files []string
	if err := fs.WalkDir(migrations, "migrations", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".sql") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return fmt.Errorf("walk migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

func (s *Store) Users() store.Users       { return users{s.db} }
func (s *Store) Profiles() store.Profiles { return profiles{s.db} }
func (s *Store) Posts() store.Posts       { return posts{s.db} }

// Close closes the underlying database handle.
func (s *Store) Close(ctx context.Context) error { return s.db.Close() }

// translate maps driver errors onto the store sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return err
}

// updateVersioned rewrites the row with id and version; zero rows affected
// means the row is gone or someone else wrote first.
func updateVersioned(ctx context.Context, db *sql.DB, table, id string, version int64, doc []byte) error {
	res, err := db.ExecContext(ctx,
		`UPDATE `+table+` SET version=?, doc=? WHERE id=? AND version=?`,
		version+1, doc, id, version)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var exists int
	err = db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id=?`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return store.ErrConflict
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDoc(row rowScanner, v any) error {
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		return translate(err)
	}
	return bson.Unmarshal(doc, v)
}

// ------------------------------- users -------------------------------------

type users struct{ db *sql.DB }

func (r users) Create(ctx context.Context, u *model.User) error {
	doc, err := bson.Marshal(u)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO users (id, email, doc) VALUES (?,?,?)`, u.ID.Hex(), u.Email, doc)
	return translate(err)
}

func (r users) ByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	if err := scanDoc(r.db.QueryRowContext(ctx, `SELECT doc FROM users WHERE id=?`, id.Hex()), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r users) ByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	if err := scanDoc(r.db.QueryRowContext(ctx, `SELECT doc FROM users WHERE email=?`, email), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r users) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id.Hex())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// ------------------------------ profiles -----------------------------------

type profiles struct{ db *sql.DB }

func (r profiles) Create(ctx context.Context, p *model.Profile) error {
	doc, err := bson.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO profiles (id, user_id, version, created_at, doc) VALUES (?,?,?,?,?)`,
		p.ID.Hex(), p.User.Hex(), p.Version, p.Date.UnixNano(), doc)
	return translate(err)
}

func (r profiles) ByUser(ctx context.Context, user primitive.ObjectID) (*model.Profile, error) {
	var p model.Profile
	if err := scanDoc(r.db.QueryRowContext(ctx, `SELECT doc FROM profiles WHERE user_id=?`, user.Hex()), &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

func (r profiles) List(ctx context.Context) ([]*model.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM profiles ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Profile{}
	for rows.Next() {
		var p model.Profile
		if err := scanDoc(rows, &p); err != nil {
			return nil, err
		}
		p.Normalize()
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r profiles) Update(ctx context.Context, p *model.Profile) error {
	next := p.Clone()
	next.Version++
	doc, err := bson.Marshal(next)
	if err != nil {
		return err
	}
	if err := updateVersioned(ctx, r.db, "profiles", p.ID.Hex(), p.Version, doc); err != nil {
		return err
	}
	p.Version = next.Version
	return nil
}

func (r profiles) DeleteByUser(ctx context.Context, user primitive.ObjectID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE user_id=?`, user.Hex())
	return err
}

// -------------------------------- posts ------------------------------------

type posts struct{ db *sql.DB }

func (r posts) Create(ctx context.Context, p *model.Post) error {
	doc, err := bson.Marshal(p)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO posts (id, user_id, version, created_at, doc) VALUES (?,?,?,?,?)`,
		p.ID.Hex(), p.User.Hex(), p.Version, p.Date.UnixNano(), doc)
	return translate(err)
}

func (r posts) ByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var p model.Post
	if err := scanDoc(r.db.QueryRowContext(ctx, `SELECT doc FROM posts WHERE id=?`, id.Hex()), &p); err != nil {
		return nil, err
	}
	p.Normalize()
	return &p, nil
}

func (r posts) List(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT doc FROM posts ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Post{}
	for rows.Next() {
		var p model.Post
		if err := scanDoc(rows, &p); err != nil {
			return nil, err
		}
		p.Normalize()
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r posts) Update(ctx context.Context, p *model.Post) error {
	next := p.Clone()
	next.Version++
	doc, err := bson.Marshal(next)
	if err != nil {
		return err
	}
	if err := updateVersioned(ctx, r.db, "posts", p.ID.Hex(), p.Version, doc); err != nil {
		return err
	}
	p.Version = next.Version
	return nil
}

func (r posts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id.Hex())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r posts) DeleteByUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE user_id=?`, user.Hex())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
