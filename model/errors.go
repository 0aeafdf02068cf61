package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidConfig = errors.New("hdp: invalid configuration")

// InvariantError reports broken sampler bookkeeping. It is raised with
// panic: once counts are inconsistent every later sweep would build on
// them. Doc, Table and Dish are -1 when not implicated.
type InvariantError struct {
	Doc   int
	Table int
	Dish  int
	Msg   string
}

func (e *InvariantError) Error() string {
	var ids []string
	if e.Doc >= 0 {
		ids = append(ids, fmt.Sprintf("doc=%d", e.Doc))
	}
	if e.Table >= 0 {
		ids = append(ids, fmt.Sprintf("table=%d", e.Table))
	}
	if e.Dish >= 0 {
		ids = append(ids, fmt.Sprintf("dish=%d", e.Dish))
	}
	if len(ids) == 0 {
		return "hdp: invariant violated: " + e.Msg
	}
	return fmt.Sprintf("hdp: invariant violated (%s): %s", strings.Join(ids, " "), e.Msg)
}

func violation(doc, tbl, dish int, format string, args ...any) {
	panic(&InvariantError{
		Doc:   doc,
		Table: tbl,
		Dish:  dish,
		Msg:   fmt.Sprintf(format, args...),
	})
}

func configError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
