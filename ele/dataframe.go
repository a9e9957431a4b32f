package ele

import "github.com/cockroachdb/errors"

// ErrColumnLengthMismatch is returned by NewDataFrame when columns disagree
// on row count.
var ErrColumnLengthMismatch = errors.New("dataframe columns have mismatched lengths")

// DataFrame is a named collection of equal-length columns. Query results
// that would otherwise be empty are represented as a nil *DataFrame (no
// dataframe), per spec §3 and §8 scenario 4 — never as a zero-row
// DataFrame with columns present.
type DataFrame struct {
	Names []string
	Cols  []Seq
}

// NewDataFrame validates the row-count invariant and returns the frame.
func NewDataFrame(names []string, cols []Seq) (*DataFrame, error) {
	if len(names) != len(cols) {
		return nil, errors.Wrapf(ErrColumnLengthMismatch, "%d names but %d columns", len(names), len(cols))
	}
	if len(cols) > 0 {
		n := cols[0].Len()
		for i, c := range cols {
			if c.Len() != n {
				return nil, errors.Wrapf(ErrColumnLengthMismatch, "column %q has %d rows, column %q has %d", names[0], n, names[i], c.Len())
			}
		}
	}
	return &DataFrame{Names: names, Cols: cols}, nil
}

// NumRows returns the row count, or 0 for a frame with no columns.
func (df *DataFrame) NumRows() int {
	if df == nil || len(df.Cols) == 0 {
		return 0
	}
	return df.Cols[0].Len()
}

// NumCols returns the column count.
func (df *DataFrame) NumCols() int {
	if df == nil {
		return 0
	}
	return len(df.Cols)
}

// Row materializes row i as a slice of Ele, in column order.
func (df *DataFrame) Row(i int) []Ele {
	if df == nil {
		return nil
	}
	row := make([]Ele, len(df.Cols))
	for c, col := range df.Cols {
		row[c] = col.Get(i)
	}
	return row
}

// Column returns the named column, or (Seq{}, false) if absent.
func (df *DataFrame) Column(name string) (Seq, bool) {
	if df == nil {
		return Seq{}, false
	}
	for i, n := range df.Names {
		if n == name {
			return df.Cols[i], true
		}
	}
	return Seq{}, false
}
