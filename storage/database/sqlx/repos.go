// Package sqlxrepos implements the core Repository interfaces on PostgreSQL
// using sqlx for scanning and squirrel for query building.
package sqlxrepos

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/dereva/core"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func newID() string { return uuid.New().String() }

func columnList(columns []string) string { return strings.Join(columns, ", ") }

func applyOrdering(q sq.SelectBuilder, ordering []core.DBOrdering) sq.SelectBuilder {
	for _, o := range ordering {
		q = q.OrderBy(o.String())
	}
	return q
}

func contains(pattern string) string { return "%" + pattern + "%" }

func isUniqueViolation(err error) bool {
	if pqErr, ok := errors.Cause(err).(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
