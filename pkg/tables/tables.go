// Package tables accumulates emitter output rows for one block and
// converts them into database change operations. Ordered maps keep row
// and column order stable so repeated runs over the same block produce
// byte-identical output.
package tables

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tracelake/evmetl/pkg/chaindata"
)

type Op int

const (
	OpAppend Op = iota
	OpUpsert
)

func (o Op) String() string {
	if o == OpUpsert {
		return "upsert"
	}
	return "append"
}

// Row is one flat record bound for a named table. Keys identify the row;
// Columns carry the data. Both preserve insertion order.
type Row struct {
	Table   string
	Op      Op
	Keys    *orderedmap.OrderedMap[string, string]
	Columns *orderedmap.OrderedMap[string, string]
}

// Cols builds an ordered column map from alternating name/value pairs.
func Cols(pairs ...string) *orderedmap.OrderedMap[string, string] {
	if len(pairs)%2 != 0 {
		panic("tables.Cols: odd number of arguments")
	}
	m := orderedmap.New[string, string]()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Tables accumulates rows per table for one block.
type Tables struct {
	tables *orderedmap.OrderedMap[string, []*Row]
	// upserts tracks the latest row per (table, key) so a later upsert in
	// the same block replaces the earlier one.
	upserts map[string]*Row
	count   int
}

func New() *Tables {
	return &Tables{
		tables:  orderedmap.New[string, []*Row](),
		upserts: make(map[string]*Row),
	}
}

// AppendRow records a create-row operation.
func (t *Tables) AppendRow(table string, keys, cols *orderedmap.OrderedMap[string, string]) {
	row := &Row{Table: table, Op: OpAppend, Keys: keys, Columns: cols}
	existing, _ := t.tables.Get(table)
	t.tables.Set(table, append(existing, row))
	t.count++
}

// UpsertRow records a merge-by-key operation. The last write for a key
// within the block wins.
func (t *Tables) UpsertRow(table string, keys, cols *orderedmap.OrderedMap[string, string]) {
	id := upsertId(table, keys)
	if prev, ok := t.upserts[id]; ok {
		prev.Keys = keys
		prev.Columns = cols
		return
	}
	row := &Row{Table: table, Op: OpUpsert, Keys: keys, Columns: cols}
	t.upserts[id] = row
	existing, _ := t.tables.Get(table)
	t.tables.Set(table, append(existing, row))
	t.count++
}

func upsertId(table string, keys *orderedmap.OrderedMap[string, string]) string {
	var sb strings.Builder
	sb.WriteString(table)
	for pair := keys.Oldest(); pair != nil; pair = pair.Next() {
		sb.WriteByte('|')
		sb.WriteString(pair.Value)
	}
	return sb.String()
}

// RowCount is the number of accumulated rows.
func (t *Tables) RowCount() int {
	return t.count
}

// RowsFor returns the accumulated rows for one table.
func (t *Tables) RowsFor(table string) []*Row {
	rows, _ := t.tables.Get(table)
	return rows
}

// RowOp is one change operation handed to the sink.
type RowOp struct {
	Table   string            `json:"table"`
	Op      string            `json:"op"`
	Keys    map[string]string `json:"keys"`
	KeyCols []string          `json:"key_cols"`
	Columns map[string]string `json:"columns"`
	Cols    []string          `json:"cols"`
}

// DatabaseChanges is the block's full set of row operations in
// deterministic order.
type DatabaseChanges struct {
	BlockNumber uint64   `json:"block_number"`
	Ops         []*RowOp `json:"ops"`
}

// ToDatabaseChanges flattens the accumulator. A blocks row is prepended
// only when at least one other row exists for the block.
func (t *Tables) ToDatabaseChanges(block *chaindata.Block) (*DatabaseChanges, error) {
	changes := &DatabaseChanges{BlockNumber: block.Number, Ops: make([]*RowOp, 0, t.count+1)}
	if t.count == 0 {
		return changes, nil
	}

	ts, err := block.MustTimestamp()
	if err != nil {
		return nil, err
	}
	blockRow := &RowOp{
		Table: "blocks",
		Op:    OpAppend.String(),
		Keys:  map[string]string{"block_num": fmt.Sprintf("%d", block.Number)},
		KeyCols: []string{"block_num"},
		Columns: map[string]string{
			"timestamp":  fmt.Sprintf("%d", ts.Unix()),
			"block_hash": fmt.Sprintf("0x%x", block.Hash),
		},
		Cols: []string{"timestamp", "block_hash"},
	}
	changes.Ops = append(changes.Ops, blockRow)

	for pair := t.tables.Oldest(); pair != nil; pair = pair.Next() {
		for _, row := range pair.Value {
			changes.Ops = append(changes.Ops, rowOp(row))
		}
	}
	return changes, nil
}

func rowOp(row *Row) *RowOp {
	op := &RowOp{
		Table:   row.Table,
		Op:      row.Op.String(),
		Keys:    make(map[string]string, row.Keys.Len()),
		KeyCols: make([]string, 0, row.Keys.Len()),
		Columns: make(map[string]string, row.Columns.Len()),
		Cols:    make([]string, 0, row.Columns.Len()),
	}
	for pair := row.Keys.Oldest(); pair != nil; pair = pair.Next() {
		op.Keys[pair.Key] = pair.Value
		op.KeyCols = append(op.KeyCols, pair.Key)
	}
	for pair := row.Columns.Oldest(); pair != nil; pair = pair.Next() {
		op.Columns[pair.Key] = pair.Value
		op.Cols = append(op.Cols, pair.Key)
	}
	return op
}
