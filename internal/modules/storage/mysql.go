package storage

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type kvRow struct {
	Namespace string `db:"namespace"`
	Key       string `db:"item_key"`
	Value     string `db:"item_value"`
}

type mysqlStore struct {
	db        *sqlx.DB
	namespace string
}

// NewMySQLStore keeps values in the kv_store table, scoped to namespace.
func NewMySQLStore(db *sqlx.DB, namespace string) Store {
	return &mysqlStore{db: db, namespace: namespace}
}

func (r *mysqlStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := r.db.GetContext(ctx, &value,
		`SELECT item_value FROM kv_store WHERE namespace = ? AND item_key = ?`, r.namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "select %s", key)
	}
	return []byte(value), nil
}

func (r *mysqlStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO kv_store (namespace, item_key, item_value)
		VALUES (:namespace, :item_key, :item_value)
		ON DUPLICATE KEY UPDATE item_value = VALUES(item_value), updated_at = CURRENT_TIMESTAMP`,
		kvRow{Namespace: r.namespace, Key: key, Value: string(value)})
	return errors.Wrapf(err, "upsert %s", key)
}

func (r *mysqlStore) Remove(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM kv_store WHERE namespace = ? AND item_key = ?`, r.namespace, key)
	return errors.Wrapf(err, "delete %s", key)
}

func (r *mysqlStore) Clear(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv_store WHERE namespace = ?`, r.namespace)
	return errors.Wrap(err, "clear namespace")
}
