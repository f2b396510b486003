package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// Querier is satisfied by both *sqlx.DB and *sqlx.Tx, so a repository can run
// inside or outside a transaction.
type Querier interface {
	sqlx.ExtContext
}

// expectRow converts a zero RowsAffected into notFound.
func expectRow(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return notFound
	}

	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
