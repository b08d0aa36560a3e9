// Package uritemplate implements RFC 6570 URI templates with partial
// expansion.
//
// Partial expansion substitutes the variables that are known and keeps the
// rest as template expressions, so a link can be expanded against an object
// and still be handed to a client as a template:
//
//	t, _ := uritemplate.Parse("/posts/{id}{?page,per_page}")
//	t.ExpandPartial(map[string]any{"id": 7, "page": 2})
//	// "/posts/7?page=2{&per_page}"
//
// A variable counts as known when its name is present in the map, even with
// a nil value; nil and empty lists or maps are "undefined" in the RFC sense
// and expand to nothing.
package uritemplate

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// ErrMalformed is returned by Parse for templates with unbalanced braces or
// invalid variable specifications.
var ErrMalformed = errors.New("uritemplate: malformed template")

// Template is a parsed URI template. It is immutable and safe for concurrent
// use.
type Template struct {
	raw   string
	parts []part
}

type part struct {
	literal string
	expr    *expression
}

type expression struct {
	raw  string
	op   operator
	vars []varspec
}

type varspec struct {
	name    string
	explode bool
	prefix  int
}

func (v varspec) String() string {
	switch {
	case v.explode:
		return v.name + "*"
	case v.prefix > 0:
		return v.name + ":" + strconv.Itoa(v.prefix)
	}
	return v.name
}

type operator struct {
	char     string
	first    string
	sep      string
	named    bool
	ifEmpty  string
	reserved bool
}

var operators = map[byte]operator{
	'+': {char: "+", first: "", sep: ",", reserved: true},
	'#': {char: "#", first: "#", sep: ",", reserved: true},
	'.': {char: ".", first: ".", sep: "."},
	'/': {char: "/", first: "/", sep: "/"},
	';': {char: ";", first: ";", sep: ";", named: true},
	'?': {char: "?", first: "?", sep: "&", named: true, ifEmpty: "="},
	'&': {char: "&", first: "&", sep: "&", named: true, ifEmpty: "="},
}

var simple = operator{sep: ","}

// Parse parses a URI template.
func Parse(raw string) (*Template, error) {
	t := &Template{raw: raw}
	rest := raw
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return nil, errors.Wrapf(ErrMalformed, "unexpected '}' in %q", raw)
			}
			t.parts = append(t.parts, part{literal: rest})
			break
		}
		if open > 0 {
			lit := rest[:open]
			if strings.IndexByte(lit, '}') >= 0 {
				return nil, errors.Wrapf(ErrMalformed, "unexpected '}' in %q", raw)
			}
			t.parts = append(t.parts, part{literal: lit})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, errors.Wrapf(ErrMalformed, "unclosed expression in %q", raw)
		}
		expr, err := parseExpression(rest[open : open+end+1])
		if err != nil {
			return nil, errors.Wrapf(err, "template %q", raw)
		}
		t.parts = append(t.parts, part{expr: expr})
		rest = rest[open+end+1:]
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(raw string) *Template {
	t, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func parseExpression(raw string) (*expression, error) {
	body := raw[1 : len(raw)-1]
	if body == "" {
		return nil, errors.Wrap(ErrMalformed, "empty expression")
	}
	e := &expression{raw: raw, op: simple}
	if op, ok := operators[body[0]]; ok {
		e.op = op
		body = body[1:]
	}
	for _, spec := range strings.Split(body, ",") {
		v := varspec{name: spec}
		switch {
		case strings.HasSuffix(spec, "*"):
			v.name = strings.TrimSuffix(spec, "*")
			v.explode = true
		case strings.Contains(spec, ":"):
			i := strings.IndexByte(spec, ':')
			n, err := strconv.Atoi(spec[i+1:])
			if err != nil || n <= 0 || n >= 10000 {
				return nil, errors.Wrapf(ErrMalformed, "invalid prefix in %q", spec)
			}
			v.name, v.prefix = spec[:i], n
		}
		if !validName(v.name) {
			return nil, errors.Wrapf(ErrMalformed, "invalid variable name %q", v.name)
		}
		e.vars = append(e.vars, v)
	}
	return e, nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '.', c == '%':
		default:
			return false
		}
	}
	return true
}

// String returns the template source.
func (t *Template) String() string { return t.raw }

// Variables returns the distinct variable names in order of appearance.
func (t *Template) Variables() []string {
	var names []string
	seen := make(map[string]bool)
	for _, p := range t.parts {
		if p.expr == nil {
			continue
		}
		for _, v := range p.expr.vars {
			if !seen[v.name] {
				seen[v.name] = true
				names = append(names, v.name)
			}
		}
	}
	return names
}

// Templated reports whether the template contains any expression.
func (t *Template) Templated() bool {
	for _, p := range t.parts {
		if p.expr != nil {
			return true
		}
	}
	return false
}

// Expand expands every expression; variables missing from vars are
// undefined and expand to nothing.
func (t *Template) Expand(vars map[string]any) string {
	var sb strings.Builder
	for _, p := range t.parts {
		if p.expr == nil {
			sb.WriteString(p.literal)
			continue
		}
		sb.WriteString(p.expr.expand(p.expr.op.first, p.expr.vars, vars))
	}
	return sb.String()
}

// ExpandPartial expands the variables present in vars and leaves the others
// as template expressions.
//
// Form-style query expressions split cleanly: "{?a,b}" with only a known
// becomes "?a=1{&b}". Path-style expressions ("/", ".", ";") split the same
// way. Simple, reserved and fragment expressions can't be split without
// changing their meaning and stay untouched until all their variables are
// known.
func (t *Template) ExpandPartial(vars map[string]any) string {
	var sb strings.Builder
	for _, p := range t.parts {
		if p.expr == nil {
			sb.WriteString(p.literal)
			continue
		}
		sb.WriteString(p.expr.expandPartial(vars))
	}
	return sb.String()
}

// IsTemplate reports whether s contains a URI template expression.
func IsTemplate(s string) bool {
	t, err := Parse(s)
	return err == nil && t.Templated()
}

func (e *expression) expandPartial(vars map[string]any) string {
	var known, unknown []varspec
	for _, v := range e.vars {
		if _, ok := vars[v.name]; ok {
			known = append(known, v)
		} else {
			unknown = append(unknown, v)
		}
	}
	switch {
	case len(unknown) == 0:
		return e.expand(e.op.first, e.vars, vars)
	case len(known) == 0:
		return e.raw
	}

	var cont string
	switch e.op.char {
	case "?", "&":
		cont = "&"
	case "/", ".", ";":
		cont = e.op.char
	default:
		return e.raw
	}

	expanded := e.expand(e.op.first, known, vars)
	rest := make([]string, len(unknown))
	for i, v := range unknown {
		rest[i] = v.String()
	}
	if expanded == "" && e.op.char == "?" {
		cont = "?"
	}
	return expanded + "{" + cont + strings.Join(rest, ",") + "}"
}

func (e *expression) expand(first string, specs []varspec, vars map[string]any) string {
	var pieces []string
	for _, v := range specs {
		if piece, ok := e.expandVar(v, vars[v.name]); ok {
			pieces = append(pieces, piece)
		}
	}
	if len(pieces) == 0 {
		return ""
	}
	return first + strings.Join(pieces, e.op.sep)
}

func (e *expression) expandVar(v varspec, value any) (string, bool) {
	switch val := normalize(value).(type) {
	case nil:
		return "", false
	case string:
		if v.prefix > 0 {
			val = truncate(val, v.prefix)
		}
		enc := e.encode(val)
		if !e.op.named {
			return enc, true
		}
		if val == "" {
			return v.name + e.op.ifEmpty, true
		}
		return v.name + "=" + enc, true
	case []string:
		if len(val) == 0 {
			return "", false
		}
		items := make([]string, len(val))
		for i, item := range val {
			items[i] = e.encode(item)
		}
		if !v.explode {
			joined := strings.Join(items, ",")
			if e.op.named {
				return v.name + "=" + joined, true
			}
			return joined, true
		}
		if e.op.named {
			for i, item := range items {
				items[i] = v.name + "=" + item
			}
		}
		return strings.Join(items, e.op.sep), true
	case [][2]string:
		if len(val) == 0 {
			return "", false
		}
		items := make([]string, 0, len(val)*2)
		if v.explode {
			for _, kv := range val {
				items = append(items, e.encode(kv[0])+"="+e.encode(kv[1]))
			}
			return strings.Join(items, e.op.sep), true
		}
		for _, kv := range val {
			items = append(items, e.encode(kv[0]), e.encode(kv[1]))
		}
		joined := strings.Join(items, ",")
		if e.op.named {
			return v.name + "=" + joined, true
		}
		return joined, true
	}
	return "", false
}

// normalize reduces a value to nil, a string, a list of strings or an
// ordered list of key/value pairs.
func normalize(value any) any {
	switch val := value.(type) {
	case nil:
		return nil
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	case []string:
		return val
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := normalize(item).(string); ok {
				out = append(out, s)
			}
		}
		return out
	case map[string]string:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([][2]string, len(keys))
		for i, k := range keys {
			out[i] = [2]string{k, val[k]}
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([][2]string, 0, len(keys))
		for _, k := range keys {
			if s, ok := normalize(val[k]).(string); ok {
				out = append(out, [2]string{k, s})
			}
		}
		return out
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return fmt.Sprint(value)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

const upperhex = "0123456789ABCDEF"

func (e *expression) encode(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isUnreserved(c):
			sb.WriteByte(c)
		case e.op.reserved && isReserved(c):
			sb.WriteByte(c)
		case e.op.reserved && c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			sb.WriteString(s[i : i+3])
			i += 2
		default:
			sb.WriteByte('%')
			sb.WriteByte(upperhex[c>>4])
			sb.WriteByte(upperhex[c&15])
		}
	}
	return sb.String()
}

func isUnreserved(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func isReserved(c byte) bool {
	return strings.IndexByte(":/?#[]@!$&'()*+,;=", c) >= 0
}

func isHex(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
