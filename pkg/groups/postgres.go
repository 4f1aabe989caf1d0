// pkg/groups/postgres.go
package groups

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

// NewPostgresStore constructs a PostgreSQL-backed group store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
//
// shop_id is text, not a foreign key: it may hold the reserved global
// scope key in addition to shop uuids.
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS groups (
  id uuid PRIMARY KEY,
  shop_id text NOT NULL,
  slug text NOT NULL,
  name text NOT NULL DEFAULT '',
  permissions text[] NOT NULL DEFAULT '{}',
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW(),
  UNIQUE (shop_id, slug)
);
CREATE INDEX IF NOT EXISTS groups_shop_idx ON groups(shop_id);
`)
	return err
}

func (p *pgStore) FindByIDs(ctx context.Context, ids []string) ([]Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := p.dbPool.Query(ctx,
		`SELECT id,shop_id,slug,name,permissions FROM groups WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.ShopID, &g.Slug, &g.Name, &g.Permissions); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *pgStore) ListByShop(ctx context.Context, shopID string) ([]Group, error) {
	rows, err := p.dbPool.Query(ctx,
		`SELECT id,shop_id,slug,name,permissions FROM groups WHERE shop_id=$1 ORDER BY slug`, shopID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.ShopID, &g.Slug, &g.Name, &g.Permissions); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *pgStore) Upsert(ctx context.Context, g Group) error {
	_, err := p.dbPool.Exec(ctx, `INSERT INTO groups(id,shop_id,slug,name,permissions)
	  VALUES ($1,$2,$3,$4,$5)
	  ON CONFLICT (id) DO UPDATE SET shop_id=EXCLUDED.shop_id,slug=EXCLUDED.slug,name=EXCLUDED.name,permissions=EXCLUDED.permissions,updated_at=NOW()`,
		g.ID, g.ShopID, g.Slug, g.Name, g.Permissions)
	return err
}
