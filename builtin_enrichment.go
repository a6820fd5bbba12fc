// builtin_enrichment.go
//
// Enrichment tables: keyed reference data a program joins into events.
// Tables live in a SQLite database the host opens (see cmd/vrl); the
// builtin issues one point lookup per call. The registration is separate
// from DefaultRegistry because it needs the handle.
package vrl

import (
	"database/sql"
	"fmt"
)

// EnrichmentTables wraps the lookup database. Safe for concurrent use; the
// underlying *sql.DB pools connections.
type EnrichmentTables struct {
	db *sql.DB
}

// NewEnrichmentTables wraps an open database. Each table is expected to be
// a SQL table with a unique `key` column; every other column becomes a
// field of the returned record.
func NewEnrichmentTables(db *sql.DB) *EnrichmentTables {
	return &EnrichmentTables{db: db}
}

// Lookup fetches the record for key in table. A missing row is an error:
// call sites handle it with `??` or `!` like any other failure.
func (et *EnrichmentTables) Lookup(table, key string) (Value, error) {
	// Table names can not be placeholders; restrict to identifier shape.
	if !identLike(table) {
		return Null, fmt.Errorf("enrichment table %q: invalid name", table)
	}
	rows, err := et.db.Query(`SELECT * FROM "`+table+`" WHERE key = ? LIMIT 1`, key)
	if err != nil {
		return Null, fmt.Errorf("enrichment table %q: %v", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return Null, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return Null, err
		}
		return Null, fmt.Errorf("enrichment table %q: no record for key %q", table, key)
	}
	cells := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return Null, err
	}

	o := NewObject()
	for i, col := range cols {
		o.Set(col, sqlValue(cells[i]))
	}
	return Obj(o), nil
}

func sqlValue(cell any) Value {
	switch v := cell.(type) {
	case nil:
		return Null
	case int64:
		return Int(v)
	case float64:
		return Float(v)
	case bool:
		return Bool(v)
	case []byte:
		return Str(string(v))
	case string:
		return Str(v)
	default:
		return Str(fmt.Sprint(v))
	}
}

func identLike(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// RegisterEnrichmentFns installs the lookup builtin backed by et. Hosts
// without a table database skip this group; calling the function then fails
// at compile time as undefined.
func RegisterEnrichmentFns(r *Registry, et *EnrichmentTables) {
	r.MustRegister(&Function{
		Name: "get_enrichment_table_record",
		Params: []Param{
			{Name: "table", Kinds: KindString, Required: true},
			{Name: "key", Kinds: KindString, Required: true},
		},
		Fallible: true,
		Return:   Returns(KindObject),
		Impl: func(c FuncCall) (Value, error) {
			return et.Lookup(c.Arg("table").Data.(string), c.Arg("key").Data.(string))
		},
		Doc: "get_enrichment_table_record(table, key) -> object\nFallible: fails when the table or key is missing.",
	})
}
