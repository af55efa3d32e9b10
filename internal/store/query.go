package store

import (
	"fmt"
	"strconv"
	"strings"
)

// Query 組出單一 SELECT 語句。所有 builder 方法都回傳新的 Query，不修改接收者。
// 條件以 ? 作為佔位符，Build 時依序轉為 $1, $2 ...
type Query struct {
	columns  string
	from     string
	wheres   []whereClause
	groupBy  string
	orderBys []string
	limit    *int
	offset   *int
}

type whereClause struct {
	clause string
	args   []any
}

// Select 以欄位清單與 FROM 子句 (可含 JOIN) 建立查詢
func Select(columns, from string) *Query {
	return &Query{columns: columns, from: from}
}

func (q *Query) clone() *Query {
	q2 := *q
	q2.wheres = append([]whereClause(nil), q.wheres...)
	q2.orderBys = append([]string(nil), q.orderBys...)
	return &q2
}

func (q *Query) Where(clause string, args ...any) *Query {
	q2 := q.clone()
	q2.wheres = append(q2.wheres, whereClause{clause, args})
	return q2
}

// WhereIf 只在 cond 為 true 時加入條件
func (q *Query) WhereIf(cond bool, clause string, args ...any) *Query {
	if !cond {
		return q
	}
	return q.Where(clause, args...)
}

func (q *Query) GroupBy(clause string) *Query {
	q2 := q.clone()
	q2.groupBy = clause
	return q2
}

func (q *Query) OrderBy(clause string) *Query {
	q2 := q.clone()
	q2.orderBys = append(q2.orderBys, clause)
	return q2
}

func (q *Query) Limit(n int) *Query {
	q2 := q.clone()
	q2.limit = &n
	return q2
}

func (q *Query) Offset(n int) *Query {
	q2 := q.clone()
	q2.offset = &n
	return q2
}

// Build 回傳完整 SQL 與參數
func (q *Query) Build() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.columns)
	b.WriteString(" FROM ")
	b.WriteString(q.from)
	args := q.writeWhere(&b)
	if q.groupBy != "" {
		b.WriteString(" GROUP BY ")
		b.WriteString(q.groupBy)
	}
	if len(q.orderBys) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBys, ", "))
	}
	if q.limit != nil {
		b.WriteString(" LIMIT ?")
		args = append(args, *q.limit)
	}
	if q.offset != nil {
		b.WriteString(" OFFSET ?")
		args = append(args, *q.offset)
	}
	return rebind(b.String()), args
}

// BuildCount 回傳相同條件下的 COUNT(*) 查詢，忽略排序與分頁
func (q *Query) BuildCount() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*) FROM ")
	b.WriteString(q.from)
	args := q.writeWhere(&b)
	return rebind(b.String()), args
}

func (q *Query) writeWhere(b *strings.Builder) []any {
	var args []any
	for i, w := range q.wheres {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		if len(q.wheres) > 1 && strings.Contains(strings.ToUpper(w.clause), " OR ") {
			fmt.Fprintf(b, "(%s)", w.clause)
		} else {
			b.WriteString(w.clause)
		}
		args = append(args, w.args...)
	}
	return args
}

// rebind 將 ? 轉為 PostgreSQL 的 $n，字串常值內的 ? 不處理
func rebind(sql string) string {
	var b strings.Builder
	b.Grow(len(sql) + 8)
	n := 0
	inQuote := false
	for _, r := range sql {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// likePattern 產生 ILIKE 用的 %term%，並跳脫萬用字元
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(term)) + "%"
}

// Page 分頁參數
type Page struct {
	Page    int
	PerPage int
}

const (
	defaultPerPage = 12
	maxPerPage     = 100
)

// Normalize 修正超出範圍的分頁參數
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = defaultPerPage
	}
	if p.PerPage > maxPerPage {
		p.PerPage = maxPerPage
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.PerPage
}
