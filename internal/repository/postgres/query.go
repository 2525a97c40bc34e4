package postgres

import (
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	ierr "github.com/netcycle/netcycle/internal/errors"
)

// uniqueViolation is the postgres error code for a duplicate key
const uniqueViolation = "23505"

// selectQuery assembles a filtered SELECT. Conditions use ? placeholders and
// slice arguments are expanded for IN clauses before rebinding to $n.
type selectQuery struct {
	columns string
	table   string
	where   []string
	args    []interface{}
	orderBy string
}

func newSelect(table, columns string) *selectQuery {
	return &selectQuery{table: table, columns: columns}
}

func (q *selectQuery) Where(cond string, args ...interface{}) *selectQuery {
	q.where = append(q.where, cond)
	q.args = append(q.args, args...)
	return q
}

func (q *selectQuery) OrderBy(order string) *selectQuery {
	q.orderBy = order
	return q
}

func (q *selectQuery) Build() (string, []interface{}, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.columns)
	b.WriteString(" FROM ")
	b.WriteString(q.table)
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	if q.orderBy != "" {
		b.WriteString(" ORDER BY ")
		b.WriteString(q.orderBy)
	}

	query, args, err := sqlx.In(b.String(), q.args...)
	if err != nil {
		return "", nil, ierr.WithError(err).
			WithHint("Invalid query filter").
			Mark(ierr.ErrDatabase)
	}
	return sqlx.Rebind(sqlx.DOLLAR, query), args, nil
}

// mapGetError turns a missing row into ErrNotFound and anything else into ErrDatabase
func mapGetError(err error, entity, id string) error {
	if ierr.Is(err, sql.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s %s not found", entity, id).
			WithReportableDetails(map[string]any{
				"id": id,
			}).
			Mark(ierr.ErrNotFound)
	}
	return ierr.WithError(err).
		WithHintf("Could not load %s", strings.ToLower(entity)).
		Mark(ierr.ErrDatabase)
}

// mapWriteError marks duplicate keys as ErrAlreadyExists
func mapWriteError(err error, entity string) error {
	var pqErr *pq.Error
	if ierr.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			Mark(ierr.ErrAlreadyExists)
	}
	return ierr.WithError(err).
		WithHintf("Could not save %s", strings.ToLower(entity)).
		Mark(ierr.ErrDatabase)
}

func mapListError(err error, entity string) error {
	return ierr.WithError(err).
		WithHintf("Could not list %s", entity).
		Mark(ierr.ErrDatabase)
}

// affectedOne reports whether exactly one row changed
func affectedOne(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
