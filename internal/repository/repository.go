// Package repository implements the record store contract on top of the
// local sqlite database, so the application can run without the hosted
// service.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/lehmann314159/recipes/internal/store"
)

type Repository struct {
	db      *sql.DB
	columns map[string][]string
}

// New returns a repository over db. columns whitelists the tables and
// columns queries may name; every identifier is checked against it.
func New(db *sql.DB, columns map[string][]string) *Repository {
	return &Repository{db: db, columns: columns}
}

func (r *Repository) Select(ctx context.Context, q store.Select) (store.Result, error) {
	cols, err := r.selectColumns(q.Table, q.Columns)
	if err != nil {
		return store.Result{}, err
	}

	where, args, err := r.where(q.Table, q.Filters)
	if err != nil {
		return store.Result{}, err
	}

	query := "SELECT " + strings.Join(cols, ", ") + " FROM " + q.Table + where
	if q.OrderBy != "" {
		if !r.hasColumn(q.Table, q.OrderBy) {
			return store.Result{}, fmt.Errorf("order by %s.%s: %w", q.Table, q.OrderBy, store.ErrUnknownColumn)
		}
		query += " ORDER BY " + q.OrderBy
	}
	pageArgs := args
	if q.Range != nil {
		query += " LIMIT ? OFFSET ?"
		pageArgs = append(append([]any{}, args...), q.Range.Limit, q.Range.Offset)
	}

	rows, err := r.query(ctx, query, cols, pageArgs...)
	if err != nil {
		return store.Result{}, err
	}

	result := store.Result{Rows: rows, Count: -1}
	if q.Count {
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.Table+where, args...).Scan(&result.Count); err != nil {
			return store.Result{}, fmt.Errorf("count %s: %w", q.Table, err)
		}
	}
	return result, nil
}

func (r *Repository) Insert(ctx context.Context, table string, row store.Row) ([]store.Row, error) {
	if _, ok := r.columns[table]; !ok {
		return nil, fmt.Errorf("insert into %s: %w", table, store.ErrUnknownTable)
	}

	values := store.Row{}
	for k, v := range row {
		values[k] = v
	}
	if id, _ := values["id"].(string); id == "" {
		values["id"] = uuid.NewString()
	}

	cols, err := r.sortedColumns(table, values)
	if err != nil {
		return nil, err
	}
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = values[c]
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO "+table+" ("+strings.Join(cols, ", ")+") VALUES ("+placeholders+")", args...)
	if err != nil {
		return nil, fmt.Errorf("insert into %s: %w", table, err)
	}

	res, err := r.Select(ctx, store.Select{Table: table, Filters: []store.Filter{store.Eq("id", values["id"])}})
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func (r *Repository) Update(ctx context.Context, table string, patch store.Row, match store.Filter) ([]store.Row, error) {
	if _, ok := r.columns[table]; !ok {
		return nil, fmt.Errorf("update %s: %w", table, store.ErrUnknownTable)
	}

	values := store.Row{}
	for k, v := range patch {
		if k != "id" {
			values[k] = v
		}
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("update %s: empty patch", table)
	}

	cols, err := r.sortedColumns(table, values)
	if err != nil {
		return nil, err
	}
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = c + " = ?"
		args = append(args, values[c])
	}

	where, whereArgs, err := r.where(table, []store.Filter{match})
	if err != nil {
		return nil, err
	}
	args = append(args, whereArgs...)

	if _, err := r.db.ExecContext(ctx, "UPDATE "+table+" SET "+strings.Join(sets, ", ")+where, args...); err != nil {
		return nil, fmt.Errorf("update %s: %w", table, err)
	}

	res, err := r.Select(ctx, store.Select{Table: table, Filters: []store.Filter{match}})
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

func (r *Repository) Delete(ctx context.Context, table string, match store.Filter) error {
	if _, ok := r.columns[table]; !ok {
		return fmt.Errorf("delete from %s: %w", table, store.ErrUnknownTable)
	}
	where, args, err := r.where(table, []store.Filter{match})
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM "+table+where, args...); err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	return nil
}

func (r *Repository) query(ctx context.Context, query string, cols []string, args ...any) ([]store.Row, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []store.Row{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(store.Row, len(cols))
		for i, c := range cols {
			if b, ok := values[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = values[i]
			}
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *Repository) where(table string, filters []store.Filter) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	conditions := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		if !r.hasColumn(table, f.Field) {
			return "", nil, fmt.Errorf("filter %s.%s: %w", table, f.Field, store.ErrUnknownColumn)
		}
		switch f.Op {
		case store.OpEq:
			conditions = append(conditions, f.Field+" = ?")
		case store.OpILike:
			conditions = append(conditions, "fold("+f.Field+") LIKE fold(?) ESCAPE '\\'")
		default:
			return "", nil, fmt.Errorf("filter %s.%s: unsupported operator %q", table, f.Field, f.Op)
		}
		args = append(args, f.Value)
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func (r *Repository) selectColumns(table string, requested []string) ([]string, error) {
	all, ok := r.columns[table]
	if !ok {
		return nil, fmt.Errorf("select from %s: %w", table, store.ErrUnknownTable)
	}
	if len(requested) == 0 {
		return all, nil
	}
	for _, c := range requested {
		if !r.hasColumn(table, c) {
			return nil, fmt.Errorf("select %s.%s: %w", table, c, store.ErrUnknownColumn)
		}
	}
	return requested, nil
}

func (r *Repository) sortedColumns(table string, row store.Row) ([]string, error) {
	cols := make([]string, 0, len(row))
	for c := range row {
		if !r.hasColumn(table, c) {
			return nil, fmt.Errorf("write %s.%s: %w", table, c, store.ErrUnknownColumn)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols, nil
}

func (r *Repository) hasColumn(table, column string) bool {
	for _, c := range r.columns[table] {
		if c == column {
			return true
		}
	}
	return false
}
