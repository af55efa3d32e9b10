package store

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
)

/* ---------- 假實作 ---------- */

// assign 以反射把 src 寫入 dest 指標；src 為 nil 時寫入零值
func assign(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: want %d dest, got %d", len(values), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		src := reflect.ValueOf(values[i])
		if !src.Type().AssignableTo(target.Type()) {
			return fmt.Errorf("scan column %d: %s not assignable to %s", i, src.Type(), target.Type())
		}
		target.Set(src)
	}
	return nil
}

// row 回傳固定值的 pgx.Row
func row(values ...any) pgx.Row {
	return database.FakeRow(func(dest ...any) error { return assign(dest, values) })
}

// errRow 回傳 Scan 錯誤的 pgx.Row
func errRow(err error) pgx.Row {
	return database.FakeRow(func(...any) error { return err })
}

type fakeRows struct {
	data [][]any
	idx  int
	err  error
}

func newRows(data ...[]any) *fakeRows { return &fakeRows{data: data, idx: -1} }

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return r.data[r.idx], nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	return assign(dest, r.data[r.idx])
}

// recorder 記錄最後一次收到的 SQL 與參數
type recorder struct {
	sql  string
	args []any
}

func (rec *recorder) queryRow(r pgx.Row) func(context.Context, string, ...any) pgx.Row {
	return func(_ context.Context, sql string, args ...any) pgx.Row {
		rec.sql, rec.args = sql, args
		return r
	}
}

func (rec *recorder) exec(tag string, err error) func(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
		rec.sql, rec.args = sql, args
		return pgconn.NewCommandTag(tag), err
	}
}

func (rec *recorder) query(rows pgx.Rows, err error) func(context.Context, string, ...any) (pgx.Rows, error) {
	return func(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
		rec.sql, rec.args = sql, args
		return rows, err
	}
}
