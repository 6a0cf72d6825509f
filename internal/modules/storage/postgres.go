package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"
)

type postgresStore struct {
	db        *sql.DB
	namespace string
}

// NewPostgresStore keeps values in the kv_store table, scoped to namespace.
func NewPostgresStore(db *sql.DB, namespace string) Store {
	return &postgresStore{db: db, namespace: namespace}
}

func (r *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `
		SELECT item_value FROM kv_store
		WHERE namespace = $1 AND item_key = $2`,
		r.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", key)
	}
	return []byte(value), nil
}

func (r *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv_store (namespace, item_key, item_value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, item_key)
		DO UPDATE SET item_value = EXCLUDED.item_value, updated_at = NOW()`,
		r.namespace, key, string(value))
	return errors.Wrapf(err, "upsert %s", key)
}

func (r *postgresStore) Remove(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kv_store WHERE namespace = $1 AND item_key = $2`, r.namespace, key)
	return errors.Wrapf(err, "delete %s", key)
}

func (r *postgresStore) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE namespace = $1`, r.namespace)
	return errors.Wrap(err, "clear namespace")
}
