package sqlengine

import (
	"context"

	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/plugin"
)

// StaticTable is a Table plugin over a fixed, precomputed dataframe,
// grounded on §8 scenario 3's literal test fixture ("schema (id, name)
// and rows (1,"a"),(2,"b"),(3,"c")"). It is a convenience for tests and
// demo wiring — most real table plugins compute a fresh batch per Scan.
type StaticTable struct {
	schema []plugin.Field
	frame  *ele.DataFrame
}

// NewStaticTable builds a Table that always returns frame unchanged.
func NewStaticTable(schema []plugin.Field, frame *ele.DataFrame) *StaticTable {
	return &StaticTable{schema: schema, frame: frame}
}

func (t *StaticTable) Schema() []plugin.Field { return t.schema }

func (t *StaticTable) Scan(ctx context.Context) (*ele.DataFrame, error) {
	return t.frame, nil
}
