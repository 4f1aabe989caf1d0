// pkg/accounts/postgres.go
package accounts

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgStore implements Store backed by PostgreSQL.
type pgStore struct {
	dbPool *pgxpool.Pool
	log    *zap.SugaredLogger
}

// NewPostgresStore constructs a PostgreSQL-backed account store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS accounts (
  id uuid PRIMARY KEY,
  identity_id text UNIQUE,
  active_shop_id text NOT NULL DEFAULT '',
  disabled boolean NOT NULL DEFAULT false,
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS account_groups (
  account_id uuid REFERENCES accounts(id) ON DELETE CASCADE,
  group_id uuid NOT NULL,
  added_at timestamptz NOT NULL DEFAULT NOW(),
  PRIMARY KEY (account_id, group_id)
);
`)
	return err
}

func (p *pgStore) findBy(ctx context.Context, where, arg string) (Account, error) {
	row := p.dbPool.QueryRow(ctx,
		`SELECT id, COALESCE(identity_id,''), active_shop_id, disabled FROM accounts WHERE `+where, arg)
	var a Account
	if err := row.Scan(&a.ID, &a.IdentityID, &a.ActiveShopID, &a.Disabled); err != nil {
		return Account{}, ErrNotFound
	}
	rows, err := p.dbPool.Query(ctx,
		`SELECT group_id FROM account_groups WHERE account_id=$1 ORDER BY added_at`, a.ID)
	if err != nil {
		return Account{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var gid string
		if err := rows.Scan(&gid); err != nil {
			return Account{}, err
		}
		a.GroupIDs = append(a.GroupIDs, gid)
	}
	return a, rows.Err()
}

func (p *pgStore) FindByID(ctx context.Context, id string) (Account, error) {
	return p.findBy(ctx, `id=$1`, id)
}

func (p *pgStore) FindByIdentity(ctx context.Context, identityID string) (Account, error) {
	return p.findBy(ctx, `identity_id=$1`, identityID)
}

func (p *pgStore) SetActiveShop(ctx context.Context, accountID, shopID string) error {
	tag, err := p.dbPool.Exec(ctx,
		`UPDATE accounts SET active_shop_id=$1, updated_at=NOW() WHERE id=$2`, shopID, accountID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *pgStore) AddToGroup(ctx context.Context, accountID, groupID string) error {
	_, err := p.dbPool.Exec(ctx,
		`INSERT INTO account_groups(account_id,group_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		accountID, groupID)
	return err
}

func (p *pgStore) RemoveFromGroup(ctx context.Context, accountID, groupID string) error {
	_, err := p.dbPool.Exec(ctx,
		`DELETE FROM account_groups WHERE account_id=$1 AND group_id=$2`, accountID, groupID)
	return err
}

func (p *pgStore) Upsert(ctx context.Context, a Account) error {
	_, err := p.dbPool.Exec(ctx, `INSERT INTO accounts(id,identity_id,active_shop_id,disabled)
	  VALUES ($1,NULLIF($2,''),$3,$4)
	  ON CONFLICT (id) DO UPDATE SET identity_id=EXCLUDED.identity_id,active_shop_id=EXCLUDED.active_shop_id,disabled=EXCLUDED.disabled,updated_at=NOW()`,
		a.ID, a.IdentityID, a.ActiveShopID, a.Disabled)
	if err != nil {
		return err
	}
	for _, gid := range a.GroupIDs {
		if err := p.AddToGroup(ctx, a.ID, gid); err != nil {
			return err
		}
	}
	return nil
}
