package xasm

import "strings"

const (
	maxMacros     = 64
	maxMacroArgs  = 10
	maxMacroDepth = 20
)

// Macro is one `MACRO name(a,b,...) ... ENDMAC` definition. The body is
// stored with formal parameter occurrences already rewritten to positional
// placeholder tokens, so expansion is pure textual substitution with no
// re-parsing of the parameter list.
type Macro struct {
	Name   string
	Params []string
	Body   []string // lines, placeholders in the form \x01N\x01
}

// MacroTable interns macros by name. Callers upper-case names before
// Define and Lookup, so macro names are case-insensitive whatever the
// symbol case-sensitivity setting.
type MacroTable struct {
	macros map[string]*Macro
	order  []string
}

func NewMacroTable() *MacroTable {
	return &MacroTable{macros: make(map[string]*Macro)}
}

func (t *MacroTable) Lookup(name string) (*Macro, bool) {
	m, ok := t.macros[name]
	return m, ok
}

// Define records a macro, enforcing the table-size and parameter-count
// ceilings from spec §4.6.
func (t *MacroTable) Define(name string, params []string, body []string, line int) error {
	if _, exists := t.macros[name]; exists {
		return newErr(KindSemantic, "", line, 0, "macro %q already defined", name)
	}
	if len(t.macros) >= maxMacros {
		return newErr(KindResource, "", line, 0, "macro table exceeds %d entries", maxMacros)
	}
	if len(params) > maxMacroArgs {
		return newErr(KindSemantic, "", line, 0, "macro %q declares more than %d parameters", name, maxMacroArgs)
	}
	m := &Macro{Name: name, Params: params, Body: rewriteFormals(body, params)}
	t.macros[name] = m
	t.order = append(t.order, name)
	return nil
}

const placeholderMark = '\x01'

// rewriteFormals replaces every standalone occurrence of a formal
// parameter name in body with a positional placeholder token, so Expand
// never needs the parameter list again.
func rewriteFormals(body []string, params []string) []string {
	if len(params) == 0 {
		return body
	}
	index := make(map[string]int, len(params))
	for i, p := range params {
		index[strings.ToUpper(p)] = i
	}
	out := make([]string, len(body))
	for i, line := range body {
		out[i] = substituteIdentifiers(line, func(id string) (string, bool) {
			if n, ok := index[strings.ToUpper(id)]; ok {
				return placeholderToken(n), true
			}
			return "", false
		})
	}
	return out
}

func placeholderToken(n int) string {
	return string(placeholderMark) + string(rune('0'+n)) + string(placeholderMark)
}

// substituteIdentifiers scans s for identifier runs and replaces each one
// for which replace returns ok, leaving everything else (strings, numbers,
// punctuation) untouched.
func substituteIdentifiers(s string, replace func(string) (string, bool)) string {
	var b strings.Builder
	i := 0
	inStr := false
	for i < len(s) {
		c := s[i]
		if c == '"' {
			inStr = !inStr
			b.WriteByte(c)
			i++
			continue
		}
		if !inStr && isIdentStart(c) {
			j := i + 1
			for j < len(s) && isIdentChar(s[j]) {
				j++
			}
			id := s[i:j]
			if rep, ok := replace(id); ok {
				b.WriteString(rep)
			} else {
				b.WriteString(id)
			}
			i = j
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// Expand substitutes args into m's body by position, returning the lines
// to feed back into the pass driver as if they had appeared inline. The
// expansion does not consume a source line number of its own: every
// expanded line is attributed to the invoking `MACRO_NAME(...)` call site
// for listing and error-reporting purposes.
func Expand(m *Macro, args []string) ([]string, error) {
	if len(args) > len(m.Params) {
		return nil, newErr(KindSemantic, "", 0, 0,
			"macro %q invoked with %d arguments, wants %d", m.Name, len(args), len(m.Params))
	}
	out := make([]string, len(m.Body))
	for i, line := range m.Body {
		out[i] = expandLine(line, args)
	}
	return out, nil
}

func expandLine(line string, args []string) string {
	var b strings.Builder
	for i := 0; i < len(line); i++ {
		if line[i] == placeholderMark && i+2 < len(line) && line[i+2] == placeholderMark {
			n := int(line[i+1] - '0')
			if n >= 0 && n < len(args) {
				b.WriteString(args[n])
			}
			i += 2
			continue
		}
		b.WriteByte(line[i])
	}
	return b.String()
}

// SplitMacroArgs splits a macro invocation's argument list on top-level
// commas, respecting quoted strings and nested parentheses so an argument
// like `(a,b)` or `"a,b"` is not itself split.
func SplitMacroArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var args []string
	depth := 0
	inStr := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inStr = !inStr
		case '(':
			if !inStr {
				depth++
			}
		case ')':
			if !inStr {
				depth--
			}
		case ',':
			if !inStr && depth == 0 {
				args = append(args, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(s[start:]))
	return args
}
