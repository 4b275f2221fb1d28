package domain

import (
	"fmt"
	"strings"
)

// Column holds one display value per ranked row.
type Column []string

// Render joins the column into a single block, every entry followed by a line break.
func (c Column) Render() string {
	sb := &strings.Builder{}
	for _, v := range c {
		sb.WriteString(v)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// BuildColumn produces exactly n rows by calling row for every index. The first failing row
// aborts the whole column, so a short provider list is reported instead of truncated.
func BuildColumn(n int, row func(i int) (string, error)) (Column, error) {
	if n < 0 {
		return nil, fmt.Errorf("negative row count %d", n)
	}

	col := make(Column, 0, n)
	for i := range n {
		v, err := row(i)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		col = append(col, v)
	}

	return col, nil
}

// Numbered prefixes a value with its one-based rank.
func Numbered(i int, v string) string {
	return fmt.Sprintf("%d) %s", i+1, v)
}

// Parenthesized wraps a value in round brackets.
func Parenthesized(_ int, v string) string {
	return "(" + v + ")"
}
