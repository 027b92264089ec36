package expression

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Mapping builds an expression that looks the value of column up in mapping.
// Nulls and values without an entry map to otherwise, which may be nil. Entries are
// emitted in a stable order so identical mappings give identical formulas.
func Mapping(column string, mapping map[any]any, otherwise any) (Expression, error) {
	def, err := literal(otherwise)
	if err != nil {
		return Expression{}, err
	}
	ref := Ref(column)
	var b strings.Builder
	fmt.Fprintf(&b, "%s == nil ? %s : ", ref, def)
	for _, k := range sortedKeys(mapping) {
		key, err := literal(k)
		if err != nil {
			return Expression{}, err
		}
		val, err := literal(mapping[k])
		if err != nil {
			return Expression{}, err
		}
		fmt.Fprintf(&b, "%s == %s ? %s : ", ref, key, val)
	}
	b.WriteString(def)
	return New(b.String(), column), nil
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var keywords = map[string]bool{
	"nil": true, "true": true, "false": true, "and": true, "or": true, "not": true,
	"in": true, "matches": true, "contains": true, "startsWith": true, "endsWith": true,
	"let": true, "if": true, "else": true,
}

// Ref returns a formula fragment reading column: the bare name when it is an
// identifier, $env["name"] otherwise.
func Ref(column string) string {
	if identRe.MatchString(column) && !keywords[column] {
		return column
	}
	return "$env[" + strconv.Quote(column) + "]"
}

func literal(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "nil", nil
	case string:
		return strconv.Quote(t), nil
	case bool:
		return strconv.FormatBool(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float64:
		s := strconv.FormatFloat(t, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s, nil
	case time.Time:
		return fmt.Sprintf("date(%q)", t.Format(time.RFC3339Nano)), nil
	}
	return "", fmt.Errorf("mapping: unsupported literal %T", v)
}
