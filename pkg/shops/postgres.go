// pkg/shops/postgres.go
package shops

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

// NewPostgresStore constructs a PostgreSQL-backed shop store.
func NewPostgresStore(dbPool *pgxpool.Pool, log *zap.SugaredLogger) Store {
	return &pgStore{dbPool: dbPool, log: log}
}

// EnsureSchema creates required tables if they do not already exist.
// Safe to call repeatedly (idempotent).
func EnsureSchema(ctx context.Context, dbPool *pgxpool.Pool) error {
	_, err := dbPool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS shops (
  id uuid PRIMARY KEY,
  slug text UNIQUE,
  name text NOT NULL DEFAULT '',
  is_primary boolean NOT NULL DEFAULT false,
  domains text[] NOT NULL DEFAULT '{}',
  created_at timestamptz NOT NULL DEFAULT NOW(),
  updated_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS shops_primary_idx ON shops(is_primary) WHERE is_primary;
CREATE INDEX IF NOT EXISTS shops_domains_idx ON shops USING GIN (domains);
`)
	return err
}

const shopCols = `id,slug,name,is_primary,domains`

func (p *pgStore) scanOne(row interface{ Scan(...any) error }) (Shop, error) {
	var s Shop
	if err := row.Scan(&s.ID, &s.Slug, &s.Name, &s.Primary, &s.Domains); err != nil {
		return Shop{}, ErrNotFound
	}
	return s, nil
}

func (p *pgStore) FindByID(ctx context.Context, id string) (Shop, error) {
	return p.scanOne(p.dbPool.QueryRow(ctx, `SELECT `+shopCols+` FROM shops WHERE id=$1`, id))
}

func (p *pgStore) FindByDomain(ctx context.Context, host string) (Shop, error) {
	return p.scanOne(p.dbPool.QueryRow(ctx,
		`SELECT `+shopCols+` FROM shops WHERE $1 = ANY(domains) ORDER BY is_primary DESC, id LIMIT 1`, host))
}

func (p *pgStore) FindPrimary(ctx context.Context) (Shop, error) {
	return p.scanOne(p.dbPool.QueryRow(ctx, `SELECT `+shopCols+` FROM shops WHERE is_primary LIMIT 1`))
}

func (p *pgStore) List(ctx context.Context) ([]Shop, error) {
	rows, err := p.dbPool.Query(ctx, `SELECT `+shopCols+` FROM shops ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Shop
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.Slug, &s.Name, &s.Primary, &s.Domains); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (p *pgStore) Upsert(ctx context.Context, s Shop) error {
	_, err := p.dbPool.Exec(ctx, `INSERT INTO shops(id,slug,name,is_primary,domains)
	  VALUES ($1,$2,$3,$4,$5)
	  ON CONFLICT (id) DO UPDATE SET slug=EXCLUDED.slug,name=EXCLUDED.name,is_primary=EXCLUDED.is_primary,domains=EXCLUDED.domains,updated_at=NOW()`,
		s.ID, s.Slug, s.Name, s.Primary, s.Domains)
	return err
}
