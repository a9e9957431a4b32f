package sqlengine

import (
	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	"github.com/forbearing/probing/sqlengine/parser"
)

// literalSeq builds a one-element Seq matching v's variant.
func literalSeq(v ele.Ele) ele.Seq {
	seq, _ := ele.NewSeqNil().Append(v)
	return seq
}

// evalLiteralWhere evaluates a WHERE clause that compares two literals,
// the shape §8 scenario 4 needs ("SELECT 1 WHERE 1=0").
func evalLiteralWhere(cmp *parser.Comparison) (bool, error) {
	if cmp.LeftLiteral == nil {
		return false, errors.Wrapf(ErrEngine, "WHERE on a column requires a FROM clause")
	}
	return compareEle(*cmp.LeftLiteral, cmp.Literal, cmp.Op)
}

// filterRows selects the rows of df for which cmp holds, comparing the
// named column against cmp.Literal row by row.
func filterRows(df *ele.DataFrame, cmp *parser.Comparison) (*ele.DataFrame, error) {
	if cmp == nil {
		return df, nil
	}
	col, ok := df.Column(cmp.Column)
	if !ok {
		return nil, errors.Wrapf(ErrEngine, "unknown column %q in WHERE", cmp.Column)
	}

	newCols := make([]ele.Seq, len(df.Cols))
	for i := range df.Cols {
		newCols[i] = ele.NewSeqNil()
	}
	for row := 0; row < df.NumRows(); row++ {
		ok, err := compareEle(col.Get(row), cmp.Literal, cmp.Op)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		for i, c := range df.Cols {
			var err error
			newCols[i], err = newCols[i].Append(c.Get(row))
			if err != nil {
				return nil, errors.Wrap(err, "filter: append selected row")
			}
		}
	}
	return ele.NewDataFrame(df.Names, newCols)
}

// projectColumns reorders/subsets df's columns according to targets. A
// lone Star target passes df through unchanged.
func projectColumns(df *ele.DataFrame, targets []parser.Target) (*ele.DataFrame, error) {
	if len(targets) == 1 && targets[0].Star {
		return df, nil
	}
	names := make([]string, 0, len(targets))
	cols := make([]ele.Seq, 0, len(targets))
	for _, t := range targets {
		if t.Star {
			return nil, errors.Wrapf(ErrEngine, "'*' cannot be mixed with other select targets")
		}
		if t.Literal != nil {
			return nil, errors.Wrapf(ErrEngine, "literal select targets are not supported alongside a FROM clause")
		}
		col, ok := df.Column(t.Column)
		if !ok {
			return nil, errors.Wrapf(ErrEngine, "unknown column %q", t.Column)
		}
		names = append(names, t.Column)
		cols = append(cols, col)
	}
	return ele.NewDataFrame(names, cols)
}

// limitRows truncates df to at most n rows. A nil limit is a no-op.
func limitRows(df *ele.DataFrame, limit *int64) (*ele.DataFrame, error) {
	if limit == nil || df == nil || df.NumRows() <= int(*limit) {
		return df, nil
	}
	n := int(*limit)
	if n < 0 {
		n = 0
	}
	newCols := make([]ele.Seq, len(df.Cols))
	for i, c := range df.Cols {
		s := ele.NewSeqNil()
		for row := 0; row < n; row++ {
			var err error
			s, err = s.Append(c.Get(row))
			if err != nil {
				return nil, errors.Wrap(err, "limit: append row")
			}
		}
		newCols[i] = s
	}
	return ele.NewDataFrame(df.Names, newCols)
}

// effectiveLimit resolves the SQL-literal LIMIT against the query
// protocol's opts.limit (§6); the smaller of the two (when both present)
// wins, since opts.limit is a caller-imposed ceiling.
func effectiveLimit(sqlLimit *int64, optsLimit *int) *int64 {
	var out *int64
	if sqlLimit != nil {
		v := *sqlLimit
		out = &v
	}
	if optsLimit != nil {
		v := int64(*optsLimit)
		if out == nil || v < *out {
			out = &v
		}
	}
	return out
}

// compareEle evaluates "a <op> b" across the engine's scalar variants:
// numeric kinds compare by value, Text/Url compare lexicographically,
// Bool compares by equality/inequality only.
func compareEle(a, b ele.Ele, op string) (bool, error) {
	if af, aok := numericValue(a); aok {
		if bf, bok := numericValue(b); bok {
			return numericCompare(af, bf, op)
		}
	}
	if isTextual(a) || isTextual(b) {
		return stringCompare(a.String(), b.String(), op)
	}
	if a.Kind() == ele.KindBool && b.Kind() == ele.KindBool {
		av, _ := ele.BoolFromEle(a)
		bv, _ := ele.BoolFromEle(b)
		switch op {
		case "=":
			return av == bv, nil
		case "<>", "!=":
			return av != bv, nil
		default:
			return false, errors.Wrapf(ErrEngine, "unsupported boolean operator %q", op)
		}
	}
	return false, errors.Wrapf(ErrEngine, "cannot compare %v and %v", a.Kind(), b.Kind())
}

func isTextual(e ele.Ele) bool {
	return e.Kind() == ele.KindText || e.Kind() == ele.KindURL
}

func numericValue(e ele.Ele) (float64, bool) {
	switch e.Kind() {
	case ele.KindI32, ele.KindI64:
		v, err := ele.I64FromEle(e)
		if err != nil {
			return 0, false
		}
		return float64(v), true
	case ele.KindF32, ele.KindF64:
		v, err := ele.F64FromEle(e)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

func numericCompare(a, b float64, op string) (bool, error) {
	switch op {
	case "=":
		return a == b, nil
	case "<>", "!=":
		return a != b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	default:
		return false, errors.Wrapf(ErrEngine, "unsupported operator %q", op)
	}
}

func stringCompare(a, b, op string) (bool, error) {
	switch op {
	case "=":
		return a == b, nil
	case "<>", "!=":
		return a != b, nil
	case "<":
		return a < b, nil
	case "<=":
		return a <= b, nil
	case ">":
		return a > b, nil
	case ">=":
		return a >= b, nil
	default:
		return false, errors.Wrapf(ErrEngine, "unsupported operator %q", op)
	}
}
