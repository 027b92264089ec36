package expression_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	ds "github.com/wdm0006/mlprep/pkg/dataset"
	"github.com/wdm0006/mlprep/pkg/expression"
)

func people(t *testing.T) *ds.Frame {
	t.Helper()
	f, err := ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "name", Type: ds.KindString, Nullable: true},
		{Name: "age", Type: ds.KindInt, Nullable: true},
		{Name: "income", Type: ds.KindFloat, Nullable: true},
	}}, [][]any{
		{"ann", 30, 3000.0},
		{"bob", 10, nil},
		{nil, nil, 1000.0},
		{"dan", 30, 2000.0},
		{"eve", 50, nil},
	})
	require.NoError(t, err)
	return f
}

func values(c ds.Column) []any {
	out := make([]any, c.Len())
	for i := range out {
		out[i] = c.Value(i)
	}
	return out
}

func TestColumnsDerivedFromFormula(t *testing.T) {
	e := expression.New(`let k = 2; age * k + rank("income") + len(name)`)
	cols, err := e.Columns()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"age", "name", "income"}, cols)

	e = expression.New("age + 1", "age", "income", "age")
	cols, err = e.Columns()
	require.NoError(t, err)
	require.Equal(t, []string{"age", "income"}, cols)
}

func scores(t *testing.T) *ds.Frame {
	t.Helper()
	f, err := ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{
		{Name: "math score", Type: ds.KindInt, Nullable: true},
		{Name: "race/ethnicity", Type: ds.KindString, Nullable: true},
	}}, [][]any{{50, "group A"}, {nil, "group B"}, {70, nil}})
	require.NoError(t, err)
	return f
}

func TestEnvLookupColumns(t *testing.T) {
	e := expression.New(`$env["math score"] * 2 + len($env["race/ethnicity"])`)
	cols, err := e.Columns()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"math score", "race/ethnicity"}, cols)

	c, err := expression.Evaluate(scores(t), expression.New(`$env["math score"] * 2`), "doubled")
	require.NoError(t, err)
	require.Equal(t, []any{int64(100), nil, int64(140)}, values(c))

	_, err = expression.Evaluate(scores(t), expression.New(`$env["nope"] * 2`), "x")
	var se *ds.SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "nope", se.Column)
}

func TestBindUnknownColumn(t *testing.T) {
	_, err := expression.New("height * 2").Bind(people(t))
	var se *ds.SchemaError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "height", se.Column)
}

func TestBindRejectsBadFormula(t *testing.T) {
	_, err := expression.New("age +* 2").Bind(people(t))
	var ee *ds.ExpressionError
	require.True(t, errors.As(err, &ee))
	require.Equal(t, -1, ee.Row)

	_, err = expression.New("no_such_function(age)").Bind(people(t))
	require.True(t, errors.As(err, &ee))
}

func TestEvaluateNullPropagation(t *testing.T) {
	c, err := expression.Evaluate(people(t), expression.New("age * 2"), "double")
	require.NoError(t, err)
	require.Equal(t, ds.KindInt, c.Kind())
	require.Equal(t, []any{int64(60), int64(20), nil, int64(60), int64(100)}, values(c))
}

func TestEvaluatePromotesResultKind(t *testing.T) {
	c, err := expression.Evaluate(people(t), expression.New("age > 20 ? age : 0.5"), "mixed")
	require.NoError(t, err)
	require.Equal(t, ds.KindFloat, c.Kind())
	require.Equal(t, []any{30.0, 0.5, nil, 30.0, 50.0}, values(c))

	c, err = expression.Evaluate(people(t), expression.New("nil"), "empty")
	require.NoError(t, err)
	require.Equal(t, ds.KindString, c.Kind())
	require.Equal(t, []any{nil, nil, nil, nil, nil}, values(c))
}

func TestColumnFunctionErrorsAreNotNulled(t *testing.T) {
	_, err := expression.Evaluate(people(t), expression.New(`mean_of("name")`), "m")
	var ee *ds.ExpressionError
	require.True(t, errors.As(err, &ee))
	require.Equal(t, 0, ee.Row)
}

func TestWindowFunctions(t *testing.T) {
	f := people(t)
	for _, tc := range []struct {
		formula string
		want    []any
	}{
		{`rank("age")`, []any{int64(2), int64(1), nil, int64(2), int64(4)}},
		{`dense_rank("age")`, []any{int64(2), int64(1), nil, int64(2), int64(3)}},
		{`rank("age", "desc")`, []any{int64(2), int64(4), nil, int64(2), int64(1)}},
		{`percent_rank("age")`, []any{1.0 / 3, 0.0, nil, 1.0 / 3, 1.0}},
		{`row_number()`, []any{int64(1), int64(2), int64(3), int64(4), int64(5)}},
	} {
		t.Run(tc.formula, func(t *testing.T) {
			c, err := expression.Evaluate(f, expression.New(tc.formula), "out")
			require.NoError(t, err)
			got := values(c)
			require.Len(t, got, len(tc.want))
			for i := range got {
				if w, ok := tc.want[i].(float64); ok {
					require.InDelta(t, w, got[i], 1e-9)
					continue
				}
				require.Equal(t, tc.want[i], got[i])
			}
		})
	}
}

func TestAggregateFunctions(t *testing.T) {
	f := people(t)
	for _, tc := range []struct {
		formula string
		want    any
	}{
		{`mean_of("income")`, 2000.0},
		{`median_of("age")`, 30.0},
		{`mode_of("age")`, int64(30)},
		{`min_of("age")`, int64(10)},
		{`max_of("income")`, 3000.0},
		{`count_of("income")`, int64(3)},
	} {
		t.Run(tc.formula, func(t *testing.T) {
			p, err := expression.New(tc.formula).Bind(f)
			require.NoError(t, err)
			v, err := p.Eval(1)
			require.NoError(t, err)
			require.Equal(t, tc.want, v)
		})
	}
}

func TestModeTiesGoToFirstValue(t *testing.T) {
	f, err := ds.FromRows(ds.Schema{Columns: []ds.ColumnSchema{{Name: "s", Type: ds.KindString, Nullable: true}}},
		[][]any{{nil}, {"b"}, {"a"}, {"a"}, {"b"}})
	require.NoError(t, err)
	p, err := expression.New(`mode_of("s")`).Bind(f)
	require.NoError(t, err)
	v, err := p.Eval(0)
	require.NoError(t, err)
	require.Equal(t, "b", v)
}

func TestImputeWithAggregate(t *testing.T) {
	c, err := expression.Evaluate(people(t), expression.New(`income ?? mean_of("income")`), "income")
	require.NoError(t, err)
	require.Equal(t, []any{3000.0, 2000.0, 1000.0, 2000.0, 2000.0}, values(c))
}

func TestCoalesceFunction(t *testing.T) {
	c, err := expression.Evaluate(people(t), expression.New(`coalesce(name, "unknown")`), "name")
	require.NoError(t, err)
	require.Equal(t, []any{"ann", "bob", "unknown", "dan", "eve"}, values(c))
}

func TestClip(t *testing.T) {
	c, err := expression.Evaluate(people(t), expression.New(`clip(age, 15, 40)`), "age")
	require.NoError(t, err)
	require.Equal(t, ds.KindInt, c.Kind())
	require.Equal(t, []any{int64(30), int64(15), nil, int64(30), int64(40)}, values(c))

	c, err = expression.Evaluate(people(t), expression.New(`clip(income, nil, 2500.0)`), "income")
	require.NoError(t, err)
	require.Equal(t, []any{2500.0, nil, 1000.0, 2000.0, nil}, values(c))

	_, err = expression.Evaluate(people(t), expression.New(`clip(name, 0, 1)`), "x")
	var ee *ds.ExpressionError
	require.True(t, errors.As(err, &ee))
}

func TestMapping(t *testing.T) {
	e, err := expression.Mapping("name", map[any]any{"ann": "A", "bob": "B"}, "other")
	require.NoError(t, err)
	require.Equal(t, []string{"name"}, e.Inputs)

	again, err := expression.Mapping("name", map[any]any{"bob": "B", "ann": "A"}, "other")
	require.NoError(t, err)
	require.Equal(t, e.Formula, again.Formula)

	c, err := expression.Evaluate(people(t), e, "initial")
	require.NoError(t, err)
	require.Equal(t, []any{"A", "B", "other", "other", "other"}, values(c))

	e, err = expression.Mapping("age", map[any]any{30: "thirty"}, nil)
	require.NoError(t, err)
	c, err = expression.Evaluate(people(t), e, "label")
	require.NoError(t, err)
	require.Equal(t, []any{"thirty", nil, nil, "thirty", nil}, values(c))

	_, err = expression.Mapping("age", map[any]any{30: []int{1}}, nil)
	require.Error(t, err)

	e, err = expression.Mapping("race/ethnicity", map[any]any{"group A": "a"}, "other")
	require.NoError(t, err)
	c, err = expression.Evaluate(scores(t), e, "group")
	require.NoError(t, err)
	require.Equal(t, []any{"a", "other", "other"}, values(c))
}

func TestRef(t *testing.T) {
	require.Equal(t, "age", expression.Ref("age"))
	require.Equal(t, `$env["math score"]`, expression.Ref("math score"))
	require.Equal(t, `$env["in"]`, expression.Ref("in"))
}
