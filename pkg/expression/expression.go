// Package expression evaluates column formulas against a dataset.Frame.
//
// Formulas use the expr language (github.com/expr-lang/expr): columns are
// variables, null cells are nil, and the column functions in functions.go give
// access to whole-column windows and aggregates. A formula is compiled once per
// Bind and evaluated row by row.
package expression

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/expr-lang/expr/vm"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
)

// Expression is an engine-native formula plus the columns it reads. When
// Inputs is empty the columns are derived from the formula.
type Expression struct {
	Formula string
	Inputs  []string
}

// New returns an Expression reading the given columns. With no inputs the
// columns are derived from the formula.
func New(formula string, inputs ...string) Expression {
	return Expression{Formula: formula, Inputs: inputs}
}

func (e Expression) String() string { return e.Formula }

// Assignment binds the result of an expression to a column name.
type Assignment struct {
	Column string
	Expr   Expression
}

// Columns returns the columns the expression reads: the explicit Inputs, or
// every free identifier, every $env["name"] lookup and the string-literal
// column argument of the column functions.
func (e Expression) Columns() ([]string, error) {
	if len(e.Inputs) > 0 {
		return dedupe(e.Inputs), nil
	}
	tree, err := parser.Parse(e.Formula)
	if err != nil {
		return nil, &ds.ExpressionError{Formula: e.Formula, Row: -1, Err: err}
	}
	v := &identVisitor{callees: map[string]bool{}, locals: map[string]bool{}}
	ast.Walk(&tree.Node, v)
	var out []string
	for _, name := range v.idents {
		if v.callees[name] || v.locals[name] || strings.HasPrefix(name, "$") {
			continue
		}
		out = append(out, name)
	}
	out = append(out, v.columnArgs...)
	return dedupe(out), nil
}

type identVisitor struct {
	idents     []string
	callees    map[string]bool
	locals     map[string]bool
	columnArgs []string
}

func (v *identVisitor) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IdentifierNode:
		v.idents = append(v.idents, n.Value)
	case *ast.VariableDeclaratorNode:
		v.locals[n.Name] = true
	case *ast.MemberNode:
		// $env["math score"] reads a column whose name is not an identifier
		if id, ok := n.Node.(*ast.IdentifierNode); ok && id.Value == "$env" {
			if s, ok := n.Property.(*ast.StringNode); ok {
				v.columnArgs = append(v.columnArgs, s.Value)
			}
		}
	case *ast.CallNode:
		id, ok := n.Callee.(*ast.IdentifierNode)
		if !ok {
			return
		}
		v.callees[id.Value] = true
		if columnFunctions[id.Value] && len(n.Arguments) > 0 {
			if s, ok := n.Arguments[0].(*ast.StringNode); ok {
				v.columnArgs = append(v.columnArgs, s.Value)
			}
		}
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Program is an Expression compiled against one frame.
type Program struct {
	expr    Expression
	frame   *ds.Frame
	inputs  []ds.Column
	program *vm.Program
	state   *rowState
	env     map[string]any
}

// Bind validates the expression's columns against f and compiles it. Unknown
// columns fail with a SchemaError; formulas the engine rejects fail with an
// ExpressionError.
func (e Expression) Bind(f *ds.Frame) (*Program, error) {
	names, err := e.Columns()
	if err != nil {
		return nil, err
	}
	p := &Program{expr: e, frame: f, state: &rowState{frame: f, cache: map[string]any{}}}
	for _, name := range names {
		c, ok := f.ColumnByName(name)
		if !ok {
			return nil, &ds.SchemaError{Column: name, Msg: fmt.Sprintf("referenced by expression %q does not exist", e.Formula)}
		}
		p.inputs = append(p.inputs, c)
	}
	// typed zero values let the engine check operators; nulls are nil at run time
	env := make(map[string]any, f.Cols())
	for _, c := range f.Columns() {
		env[c.Name()] = zeroOf(c.Kind())
	}
	opts := append([]expr.Option{expr.Env(env)}, p.state.functions()...)
	prog, err := expr.Compile(e.Formula, opts...)
	if err != nil {
		return nil, &ds.ExpressionError{Formula: e.Formula, Row: -1, Err: err}
	}
	p.program = prog
	p.env = env
	return p, nil
}

// Eval evaluates the formula on one row. A runtime failure on a row where one
// of the expression's columns is null yields nil, the way SQL propagates nulls.
func (p *Program) Eval(row int) (any, error) {
	for _, c := range p.frame.Columns() {
		p.env[c.Name()] = c.Value(row)
	}
	p.state.row = row
	out, err := expr.Run(p.program, p.env)
	if err != nil {
		var fnErr *functionError
		if !errors.As(err, &fnErr) && p.hasNullInput(row) {
			return nil, nil
		}
		return nil, &ds.ExpressionError{Formula: p.expr.Formula, Row: row, Err: err}
	}
	out = ds.Normalize(out)
	if out != nil && ds.KindOf(out) == ds.KindInvalid {
		return nil, &ds.ExpressionError{Formula: p.expr.Formula, Row: row, Err: fmt.Errorf("unsupported result type %T", out)}
	}
	return out, nil
}

func (p *Program) hasNullInput(row int) bool {
	for _, c := range p.inputs {
		if c.IsNull(row) {
			return true
		}
	}
	return false
}

// Column evaluates every row and returns the results as a column named name.
// The column kind is the common kind of the non-null results (see
// dataset.Promote), or string when every result is null.
func (p *Program) Column(name string) (ds.Column, error) {
	rows := make([]int, p.frame.Rows())
	for i := range rows {
		rows[i] = i
	}
	vals, err := p.EvalRows(rows)
	if err != nil {
		return nil, err
	}
	return Build(name, ds.KindInvalid, vals)
}

// EvalRows evaluates the given rows, returning one value per row.
func (p *Program) EvalRows(rows []int) ([]any, error) {
	out := make([]any, len(rows))
	for i, r := range rows {
		v, err := p.Eval(r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Build makes a column from values, using kind base promoted with the kinds of
// the values. base may be KindInvalid.
func Build(name string, base ds.Kind, vals []any) (ds.Column, error) {
	k := base
	for _, v := range vals {
		if v != nil {
			k = ds.Promote(k, ds.KindOf(v))
		}
	}
	if k == ds.KindInvalid {
		k = ds.KindString
	}
	c, err := ds.NewColumn(name, k, len(vals))
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		cv, ok := ds.CastValue(v, k)
		if !ok {
			continue
		}
		if err := ds.SetValue(c, i, cv); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Evaluate binds e to f and evaluates it on every row.
func Evaluate(f *ds.Frame, e Expression, name string) (ds.Column, error) {
	p, err := e.Bind(f)
	if err != nil {
		return nil, err
	}
	return p.Column(name)
}

func zeroOf(k ds.Kind) any {
	switch k {
	case ds.KindBool:
		return false
	case ds.KindInt:
		return int64(0)
	case ds.KindFloat:
		return 0.0
	case ds.KindString:
		return ""
	case ds.KindTime:
		return zeroTime
	}
	return nil
}

// sortedKeys is used by Mapping for a stable formula.
func sortedKeys(m map[any]any) []any {
	keys := make([]any, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j]) })
	return keys
}
