package impute

import (
	"fmt"

	"github.com/wdm0006/mlprep/pkg/expression"
)

// Mean imputes nulls with the mean of the column's non-null values.
func Mean(column string) *Expr { return aggregate(column, "mean_of") }

// Median imputes nulls with the median of the column's non-null values.
func Median(column string) *Expr { return aggregate(column, "median_of") }

// Mode imputes nulls with the most frequent value of the column.
func Mode(column string) *Expr { return aggregate(column, "mode_of") }

// Constant imputes nulls with a literal expression.
func Constant(column, literal string) *Expr {
	return &Expr{Rules: []expression.Assignment{{Column: column, Expr: expression.New(literal, column)}}}
}

func aggregate(column, fn string) *Expr {
	return &Expr{Rules: []expression.Assignment{{
		Column: column,
		Expr:   expression.New(fmt.Sprintf("%s(%q)", fn, column), column),
	}}}
}
