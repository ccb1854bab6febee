package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/parenthub/authcore/internal/idp/domain"
	"github.com/parenthub/authcore/internal/idp/keystore/migrations"
)

// SQLite implements Keystore on a local sqlite database.
type SQLite struct {
	db *sql.DB
}

var _ Keystore = (*SQLite)(nil)

// OpenSQLite opens (or creates) the keystore database and applies any
// pending migrations.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("keystore: open %q: %w", dsn, err)
	}

	s := &SQLite{db: db}
	if err := s.applyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("keystore: migrate: %w", err)
	}
	return s, nil
}

// applyMigrations applies the embedded schema migrations.
func (s *SQLite) applyMigrations() error {
	driver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		return err
	}

	instance, err := migrate.NewWithInstance("iofs", src, "", driver)
	if err != nil {
		return err
	}

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func (s *SQLite) InsertKeypair(ctx context.Context, key domain.SigningKeypair) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO signing_keypairs (id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key.ID, key.Kid, key.Algorithm, key.PrivateKeyEncrypted,
		key.CreatedAt.UTC(), nullableTime(key.RetiredAt), key.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("keystore: insert keypair %s: %w", key.Kid, err)
	}
	return nil
}

func (s *SQLite) SelectActiveKeypairs(ctx context.Context) ([]domain.SigningKeypair, error) {
	return s.selectKeypairs(ctx, `
		SELECT id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at
		FROM signing_keypairs
		WHERE retired_at IS NULL AND expires_at > ?
		ORDER BY created_at DESC`, time.Now().UTC())
}

func (s *SQLite) SelectAllKeypairs(ctx context.Context) ([]domain.SigningKeypair, error) {
	return s.selectKeypairs(ctx, `
		SELECT id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at
		FROM signing_keypairs
		ORDER BY created_at DESC`)
}

func (s *SQLite) selectKeypairs(ctx context.Context, query string, args ...any) ([]domain.SigningKeypair, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("keystore: select keypairs: %w", err)
	}
	defer rows.Close()

	var keys []domain.SigningKeypair
	for rows.Next() {
		key, err := scanKeypair(rows)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func (s *SQLite) GetKeypairByKid(ctx context.Context, kid string) (domain.SigningKeypair, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kid, algorithm, private_key_encrypted, created_at, retired_at, expires_at
		FROM signing_keypairs
		WHERE kid = ?`, kid)

	key, err := scanKeypair(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SigningKeypair{}, ErrNotFound
	}
	if err != nil {
		return domain.SigningKeypair{}, fmt.Errorf("keystore: get keypair %s: %w", kid, err)
	}
	return key, nil
}

func (s *SQLite) RetireKeypair(ctx context.Context, kid string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE signing_keypairs SET retired_at = ?
		WHERE kid = ? AND retired_at IS NULL`,
		time.Now().UTC(), kid,
	)
	if err != nil {
		return fmt.Errorf("keystore: retire keypair %s: %w", kid, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM signing_keypairs WHERE expires_at <= ?`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("keystore: delete expired: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanKeypair(row rowScanner) (domain.SigningKeypair, error) {
	var key domain.SigningKeypair
	var retiredAt sql.NullTime
	err := row.Scan(
		&key.ID, &key.Kid, &key.Algorithm, &key.PrivateKeyEncrypted,
		&key.CreatedAt, &retiredAt, &key.ExpiresAt,
	)
	if err != nil {
		return domain.SigningKeypair{}, err
	}
	if retiredAt.Valid {
		t := retiredAt.Time
		key.RetiredAt = &t
	}
	return key, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
