// Package sqlxrepos implements the repositories on database/sql through sqlx.
// Queries use `?` placeholders and are rebound for the driver, so they run on Postgres and SQLite.
package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"
)

// trapNoRowsErr replaces sql.ErrNoRows with the repository's not found error.
func trapNoRowsErr(err, notFound error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return err
}

func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + strings.ToLower(r.Replace(s)) + "%"
}
