// Package jsonpath reads scalar fields out of upstream JSON documents by explicit path.
// Every lookup returns an error instead of a zero value when the document does not have
// the expected shape.
package jsonpath

import (
	"fmt"
	"strconv"
	"strings"

	"tbot/internal/core/domain"

	"github.com/tidwall/gjson"
)

type Segment struct {
	key     string
	index   int
	isIndex bool
}

func Key(k string) Segment {
	return Segment{key: k}
}

func Index(i int) Segment {
	return Segment{index: i, isIndex: true}
}

func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

type Path []Segment

// ParsePath splits a dotted path. Segments made only of digits address array elements.
func ParsePath(p string) Path {
	if p == "" {
		return Path{}
	}

	parts := strings.Split(p, ".")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		if i, err := strconv.Atoi(part); err == nil && i >= 0 && isDigits(part) {
			path = append(path, Index(i))
			continue
		}
		path = append(path, Key(part))
	}
	return path
}

// Join returns a new path with more segments appended.
func (p Path) Join(more ...Segment) Path {
	out := make(Path, 0, len(p)+len(more))
	out = append(out, p...)
	return append(out, more...)
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

type Document struct {
	root gjson.Result
}

// Parse validates body as JSON.
func Parse(body []byte) (Document, error) {
	if !gjson.ValidBytes(body) {
		return Document{}, fmt.Errorf("%w: invalid JSON", domain.ErrDecode)
	}
	return Document{root: gjson.ParseBytes(body)}, nil
}

// Get returns the raw value at path.
func (d Document) Get(path Path) (gjson.Result, error) {
	cur := d.root

	for i, seg := range path {
		if seg.isIndex {
			if !cur.IsArray() {
				return gjson.Result{}, mismatch(path[:i+1], "array")
			}
			items := cur.Array()
			if seg.index < 0 || seg.index >= len(items) {
				return gjson.Result{}, missing(path[:i+1])
			}
			cur = items[seg.index]
			continue
		}

		if !cur.IsObject() {
			return gjson.Result{}, mismatch(path[:i+1], "object")
		}
		next := cur.Get(escape(seg.key))
		if !next.Exists() {
			return gjson.Result{}, missing(path[:i+1])
		}
		cur = next
	}

	if cur.Type == gjson.Null {
		return gjson.Result{}, missing(path)
	}

	return cur, nil
}

// String returns the scalar at path in its text form.
func (d Document) String(path Path) (string, error) {
	v, err := d.Get(path)
	if err != nil {
		return "", err
	}

	if v.IsObject() || v.IsArray() {
		return "", mismatch(path, "scalar")
	}

	return v.String(), nil
}

// Int returns the integer at path. Numeric strings such as Ergast's "total" are accepted.
func (d Document) Int(path Path) (int, error) {
	s, err := d.String(path)
	if err != nil {
		return 0, err
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is %q, not an integer", domain.ErrTypeMismatch, path, s)
	}
	return n, nil
}

// Len returns the length of the array at path.
func (d Document) Len(path Path) (int, error) {
	v, err := d.Get(path)
	if err != nil {
		return 0, err
	}

	if !v.IsArray() {
		return 0, mismatch(path, "array")
	}
	return len(v.Array()), nil
}

// Column reads item from the first n elements of the array at list. A row missing from the
// array is an error, the column is never shorter than n.
func (d Document) Column(n int, list, item Path, decorate func(i int, v string) string) (domain.Column, error) {
	return domain.BuildColumn(n, func(i int) (string, error) {
		v, err := d.String(list.Join(Index(i)).Join(item...))
		if err != nil {
			return "", err
		}
		if decorate != nil {
			v = decorate(i, v)
		}
		return v, nil
	})
}

// Lookup scans the object or array at container for the member whose match field equals
// value and returns that member's want field.
func (d Document) Lookup(container Path, match, value, want string) (string, error) {
	v, err := d.Get(container)
	if err != nil {
		return "", err
	}

	if !v.IsObject() && !v.IsArray() {
		return "", mismatch(container, "container")
	}

	var found gjson.Result
	v.ForEach(func(_, member gjson.Result) bool {
		if member.Get(escape(match)).String() == value {
			found = member
			return false
		}
		return true
	})

	if !found.Exists() {
		return "", fmt.Errorf("%w: no member of %s with %s=%q", domain.ErrFieldMissing, container, match, value)
	}

	out := found.Get(escape(want))
	if !out.Exists() || out.IsObject() || out.IsArray() {
		return "", fmt.Errorf("%w: %s=%q has no scalar %s", domain.ErrFieldMissing, match, value, want)
	}
	return out.String(), nil
}

func missing(path Path) error {
	return fmt.Errorf("%w: %s", domain.ErrFieldMissing, path)
}

func mismatch(path Path, want string) error {
	return fmt.Errorf("%w: %s is not %s", domain.ErrTypeMismatch, path, want)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// escape quotes every gjson path metacharacter so keys are matched literally.
func escape(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '!', '=', '<', '>', '%', '\\', '(', ')', '[', ']', '{', '}', ',', ':', '~':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
