// Package parser wraps pg_query_go to turn the conservative SQL subset
// the engine understands — SELECT, SHOW TABLES, SET — into a small typed
// AST. It is deliberately not a general SQL frontend: per §4.5, the
// planner/executor is not the core invention here, so this package leans
// entirely on a real grammar (Postgres's, via pg_query_go) rather than
// hand-rolling a tokenizer, and only interprets the handful of node
// shapes the engine actually needs.
package parser

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/forbearing/probing/ele"
	pgquery "github.com/pganalyze/pg_query_go/v6"
)

// ErrUnsupportedStatement is returned for any statement shape outside the
// supported subset (multiple statements, DDL, joins, subqueries, ...).
var ErrUnsupportedStatement = errors.New("unsupported statement")

// Target is one entry of a SELECT's target list: either "*", a bare
// column reference, or a literal constant (e.g. the "1" in "SELECT 1").
type Target struct {
	Star    bool
	Column  string
	Literal *ele.Ele
}

// Comparison is one conservative WHERE predicate: "<column> <op>
// <literal>", or "<literal> <op> <literal>" when Column is empty (the
// literal-only guard of §8 scenario 4, "SELECT 1 WHERE 1=0").
type Comparison struct {
	Column      string
	Op          string
	Literal     ele.Ele
	LeftLiteral *ele.Ele // set instead of Column when the left side is itself a literal
}

// SelectStatement is the parsed shape of a supported SELECT.
type SelectStatement struct {
	Targets   []Target
	Namespace string // empty when there's no FROM clause
	Table     string
	Where     *Comparison
	Limit     *int64
}

// ShowTablesStatement is the parsed shape of "SHOW TABLES".
type ShowTablesStatement struct{}

// SetStatement is the parsed shape of "SET key = value".
type SetStatement struct {
	Key   string
	Value ele.Ele
}

// Statement is the union of supported statement shapes. Exactly one of
// Select, ShowTables, Set is non-nil.
type Statement struct {
	Select     *SelectStatement
	ShowTables *ShowTablesStatement
	Set        *SetStatement
}

// Parse parses a single SQL statement into the supported subset's AST.
func Parse(sql string) (*Statement, error) {
	result, err := pgquery.Parse(sql)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", sql)
	}
	if len(result.Stmts) != 1 {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "expected exactly one statement, got %d", len(result.Stmts))
	}
	node := result.Stmts[0].Stmt
	if node == nil {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "empty statement")
	}

	switch {
	case node.GetSelectStmt() != nil:
		sel, err := parseSelect(node.GetSelectStmt())
		if err != nil {
			return nil, err
		}
		return &Statement{Select: sel}, nil
	case node.GetVariableShowStmt() != nil:
		show := node.GetVariableShowStmt()
		if !strings.EqualFold(show.GetName(), "tables") {
			return nil, errors.Wrapf(ErrUnsupportedStatement, "SHOW %s", show.GetName())
		}
		return &Statement{ShowTables: &ShowTablesStatement{}}, nil
	case node.GetVariableSetStmt() != nil:
		set, err := parseSet(node.GetVariableSetStmt())
		if err != nil {
			return nil, err
		}
		return &Statement{Set: set}, nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedStatement, "%T", node.Node)
	}
}

func parseSelect(stmt *pgquery.SelectStmt) (*SelectStatement, error) {
	if len(stmt.FromClause) > 1 {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "multi-table FROM not supported")
	}

	out := &SelectStatement{}

	for _, tNode := range stmt.TargetList {
		res := tNode.GetResTarget()
		if res == nil {
			return nil, errors.Wrapf(ErrUnsupportedStatement, "non-ResTarget select target")
		}
		tgt, err := parseTarget(res.Val)
		if err != nil {
			return nil, err
		}
		out.Targets = append(out.Targets, tgt)
	}

	if len(stmt.FromClause) == 1 {
		rv := stmt.FromClause[0].GetRangeVar()
		if rv == nil {
			return nil, errors.Wrapf(ErrUnsupportedStatement, "FROM clause is not a plain table reference")
		}
		out.Namespace = rv.GetSchemaname()
		out.Table = rv.GetRelname()
	}

	if stmt.WhereClause != nil {
		cmp, err := parseWhere(stmt.WhereClause)
		if err != nil {
			return nil, err
		}
		out.Where = cmp
	}

	if stmt.LimitCount != nil {
		n, ok := literalInt(stmt.LimitCount)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedStatement, "LIMIT must be a literal integer")
		}
		out.Limit = &n
	}

	return out, nil
}

func parseTarget(val *pgquery.Node) (Target, error) {
	if val == nil {
		return Target{}, errors.Wrapf(ErrUnsupportedStatement, "empty select target")
	}
	if col := val.GetColumnRef(); col != nil {
		if len(col.Fields) == 1 && col.Fields[0].GetAStar() != nil {
			return Target{Star: true}, nil
		}
		if len(col.Fields) == 1 && col.Fields[0].GetString_() != nil {
			return Target{Column: col.Fields[0].GetString_().GetSval()}, nil
		}
		return Target{}, errors.Wrapf(ErrUnsupportedStatement, "unsupported column reference")
	}
	if lit, ok := literalEle(val); ok {
		return Target{Literal: &lit}, nil
	}
	return Target{}, errors.Wrapf(ErrUnsupportedStatement, "unsupported select expression")
}

func parseWhere(node *pgquery.Node) (*Comparison, error) {
	expr := node.GetAExpr()
	if expr == nil {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "WHERE must be a single comparison")
	}
	if len(expr.Name) != 1 || expr.Name[0].GetString_() == nil {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "unsupported WHERE operator")
	}
	op := expr.Name[0].GetString_().GetSval()

	cmp := &Comparison{Op: op}

	if col := expr.Lexpr.GetColumnRef(); col != nil && len(col.Fields) == 1 && col.Fields[0].GetString_() != nil {
		cmp.Column = col.Fields[0].GetString_().GetSval()
	} else if lit, ok := literalEle(expr.Lexpr); ok {
		cmp.LeftLiteral = &lit
	} else {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "unsupported left-hand WHERE operand")
	}

	lit, ok := literalEle(expr.Rexpr)
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "unsupported right-hand WHERE operand, only literals are supported")
	}
	cmp.Literal = lit

	return cmp, nil
}

func parseSet(stmt *pgquery.VariableSetStmt) (*SetStatement, error) {
	if len(stmt.Args) != 1 {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "SET requires exactly one value")
	}
	lit, ok := literalEle(stmt.Args[0])
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedStatement, "SET value must be a literal")
	}
	return &SetStatement{Key: stmt.Name, Value: lit}, nil
}

func literalInt(node *pgquery.Node) (int64, bool) {
	lit, ok := literalEle(node)
	if !ok {
		return 0, false
	}
	v, err := ele.I64FromEle(lit)
	if err != nil {
		return 0, false
	}
	return v, true
}

func literalEle(node *pgquery.Node) (ele.Ele, bool) {
	if node == nil {
		return ele.Nil(), false
	}
	c := node.GetAConst()
	if c == nil {
		if tc := node.GetTypeCast(); tc != nil {
			return literalEle(tc.Arg)
		}
		return ele.Nil(), false
	}
	if c.Isnull {
		return ele.Nil(), true
	}
	switch {
	case c.GetIval() != nil:
		return ele.I64(c.GetIval().GetIval()), true
	case c.GetFval() != nil:
		f, err := strconv.ParseFloat(c.GetFval().GetFval(), 64)
		if err != nil {
			return ele.Nil(), false
		}
		return ele.F64(f), true
	case c.GetSval() != nil:
		return ele.Text(c.GetSval().GetSval()), true
	case c.GetBoolval() != nil:
		return ele.Bool(c.GetBoolval().GetBoolval()), true
	default:
		return ele.Nil(), false
	}
}
