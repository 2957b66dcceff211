// Package mysql implements the storage ports over MySQL with sqlx. Each
// WithinTx call maps to one database transaction; the guarded stock update
// and the FOR UPDATE product read give the workflows their isolation.
package mysql

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/storelane/fulfillment/internal/storage"
)

type Store struct {
	db *sqlx.DB
}

func Open(dsn string) (*Store, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mysql")
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) error {
	dbtx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if err := fn(ctx, &tx{tx: dbtx}); err != nil {
		if rbErr := dbtx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}
		return err
	}
	return errors.Wrap(dbtx.Commit(), "commit transaction")
}
