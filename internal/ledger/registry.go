package ledger

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mattn/go-sqlite3"

	"cryptocomm/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Registry holds identity registry state for every registry contract hosted
// by the node. Usernames are compared exactly (case-sensitive) after NFC
// normalization.
type Registry struct {
	db    *sql.DB
	clock Clock
}

// OpenRegistry creates or opens the SQLite database at path.
//
// The database is configured with WAL mode, a 5-second busy timeout and a
// single connection, since SQLite only supports one writer at a time.
func OpenRegistry(path string, clock Clock) (*Registry, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to registry database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Registry{db: db, clock: clock}, nil
}

// Close closes the database connection.
func (r *Registry) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Register binds username to caller. It fails with ErrAlreadyRegistered if
// caller already has an identity and ErrUsernameTaken if the name is in use.
func (r *Registry) Register(
	ctx context.Context,
	registry, caller domain.Address,
	username string,
) (domain.Identity, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Identity{}, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Identity{}, err
	}
	defer tx.Rollback()

	ok, err := rowExists(ctx, tx,
		`SELECT 1 FROM identities WHERE registry = ? AND address = ?`,
		registry.Hex(), caller.Hex())
	if err != nil {
		return domain.Identity{}, err
	}
	if ok {
		return domain.Identity{}, domain.ErrAlreadyRegistered
	}
	ok, err = rowExists(ctx, tx,
		`SELECT 1 FROM identities WHERE registry = ? AND username = ?`,
		registry.Hex(), string(name))
	if err != nil {
		return domain.Identity{}, err
	}
	if ok {
		return domain.Identity{}, fmt.Errorf("%w: %q", domain.ErrUsernameTaken, name)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO identities (registry, address, username, registered_at)
		VALUES (?, ?, ?, ?)
	`, registry.Hex(), caller.Hex(), string(name), r.clock.Now().Unix())
	if err != nil {
		return domain.Identity{}, constraintError(err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Identity{}, constraintError(err)
	}
	return domain.Identity{Address: caller, Username: name, Friends: []domain.Address{}}, nil
}

// Exists reports whether addr has an identity in registry.
func (r *Registry) Exists(ctx context.Context, registry, addr domain.Address) (bool, error) {
	return rowExists(ctx, r.db,
		`SELECT 1 FROM identities WHERE registry = ? AND address = ?`,
		registry.Hex(), addr.Hex())
}

// Lookup returns the identity of addr, or ErrNotRegistered.
func (r *Registry) Lookup(ctx context.Context, registry, addr domain.Address) (domain.Identity, error) {
	var username string
	err := r.db.QueryRowContext(ctx,
		`SELECT username FROM identities WHERE registry = ? AND address = ?`,
		registry.Hex(), addr.Hex(),
	).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Identity{}, fmt.Errorf("%w: %s", domain.ErrNotRegistered, addr.Hex())
	}
	if err != nil {
		return domain.Identity{}, err
	}

	friends, err := r.friends(ctx, registry, addr)
	if err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{Address: addr, Username: domain.Username(username), Friends: friends}, nil
}

// ResolveUsername returns the address holding username. The bool is false
// when no identity has that name; that is not an error.
func (r *Registry) ResolveUsername(
	ctx context.Context,
	registry domain.Address,
	username string,
) (domain.Address, bool, error) {
	name, err := domain.NormalizeUsername(username)
	if err != nil {
		return domain.Address{}, false, nil
	}
	var hex string
	err = r.db.QueryRowContext(ctx,
		`SELECT address FROM identities WHERE registry = ? AND username = ?`,
		registry.Hex(), string(name),
	).Scan(&hex)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Address{}, false, nil
	}
	if err != nil {
		return domain.Address{}, false, err
	}
	return common.HexToAddress(hex), true, nil
}

// AddFriend appends target to caller's friend set. The relation is
// one-directional.
func (r *Registry) AddFriend(ctx context.Context, registry, caller, target domain.Address) error {
	if caller == target {
		return fmt.Errorf("%w: cannot befriend yourself", domain.ErrInvalidAddress)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `SELECT 1 FROM identities WHERE registry = ? AND address = ?`
	ok, err := rowExists(ctx, tx, q, registry.Hex(), caller.Hex())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrSelfNotRegistered
	}
	ok, err = rowExists(ctx, tx, q, registry.Hex(), target.Hex())
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTargetNotRegistered
	}
	ok, err = rowExists(ctx, tx,
		`SELECT 1 FROM friends WHERE registry = ? AND owner = ? AND friend = ?`,
		registry.Hex(), caller.Hex(), target.Hex())
	if err != nil {
		return err
	}
	if ok {
		return domain.ErrAlreadyFriends
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO friends (registry, owner, friend, added_at)
		VALUES (?, ?, ?, ?)
	`, registry.Hex(), caller.Hex(), target.Hex(), r.clock.Now().Unix())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return domain.ErrAlreadyFriends
		}
		return err
	}
	return tx.Commit()
}

func (r *Registry) friends(ctx context.Context, registry, owner domain.Address) ([]domain.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT friend FROM friends WHERE registry = ? AND owner = ? ORDER BY rowid`,
		registry.Hex(), owner.Hex())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Address{}
	for rows.Next() {
		var hex string
		if err := rows.Scan(&hex); err != nil {
			return nil, err
		}
		out = append(out, common.HexToAddress(hex))
	}
	return out, rows.Err()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func rowExists(ctx context.Context, q querier, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// constraintError maps SQLite constraint violations that slip past the
// explicit checks onto the registry's rejections.
func constraintError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code != sqlite3.ErrConstraint {
		return err
	}
	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintPrimaryKey:
		return fmt.Errorf("%w: %v", domain.ErrAlreadyRegistered, err)
	case sqlite3.ErrConstraintUnique:
		return fmt.Errorf("%w: %v", domain.ErrUsernameTaken, err)
	}
	return err
}
