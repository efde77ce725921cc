package xasm

import "strings"

// Undefined is the sentinel address value for a symbol that has not yet
// been resolved, and the value the expression evaluator propagates
// through any expression touching an unresolved symbol. It deliberately
// lies outside any legal 16-bit address or byte-wide quantity.
const Undefined = 0xFF0000

// DefKind is the provenance of a symbol definition, which governs the
// phase-error policy applied when the same symbol is defined again.
type DefKind int

const (
	DefAssign DefKind = iota
	DefBSS
	DefPosition
)

// RefTag marks how a symbol was used at a given reference site: the
// addressing-mode mnemonic in effect, or one of the synthetic tags used
// for the definition-site entry.
type RefTag string

const (
	RefDef RefTag = "DEF"
	RefBSS RefTag = "BSS"
	RefPos RefTag = "POS"
)

// Reference is one use of a symbol: the source line it occurred on and
// the addressing-mode (or synthetic) tag describing how.
type Reference struct {
	Line int
	Tag  RefTag
}

// Symbol is an interned named label or constant.
type Symbol struct {
	Name    string // display name, original case
	Address int    // Undefined until resolved
	Span    int    // byte-length of an associated data object, for `?`
	Locked  bool   // defined via CLI -D, immune to redefinition errors
	Paired  bool   // merged with adjacent-address symbol for display
	Refs    []Reference
}

func (s *Symbol) defined() bool { return s.Address != Undefined }

// SymbolTable interns symbols by name, honoring a case-sensitivity mode,
// and implements the phase-convergence-aware redefinition policy from
// spec §4.2.
type SymbolTable struct {
	caseSensitive bool
	syms          map[string]*Symbol
	order         []string // insertion order, for stable first-definition diagnostics

	// changed counts definitions in the current pass whose resolved
	// address differs from the previous pass; the pass driver uses this
	// to detect convergence.
	changed int
}

func NewSymbolTable(caseSensitive bool) *SymbolTable {
	return &SymbolTable{
		caseSensitive: caseSensitive,
		syms:          make(map[string]*Symbol),
	}
}

// SetCaseSensitive changes the case-folding mode applied to subsequent
// lookups and definitions, per the `.CASE` pseudo-op.
func (t *SymbolTable) SetCaseSensitive(v bool) { t.caseSensitive = v }

func (t *SymbolTable) key(name string) string {
	if t.caseSensitive {
		return name
	}
	return strings.ToUpper(name)
}

// Lookup returns the symbol if interned, without creating it.
func (t *SymbolTable) Lookup(name string) (*Symbol, bool) {
	s, ok := t.syms[t.key(name)]
	return s, ok
}

// AutoRegister interns name with an Undefined address if it has not been
// seen before, per the evaluator's auto-registration rule, and returns
// the (possibly pre-existing) symbol.
func (t *SymbolTable) AutoRegister(name string) *Symbol {
	k := t.key(name)
	if s, ok := t.syms[k]; ok {
		return s
	}
	s := &Symbol{Name: name, Address: Undefined}
	t.syms[k] = s
	t.order = append(t.order, k)
	return s
}

// BeginPass resets the per-pass change counter. It must be called before
// streaming each pass's source lines.
func (t *SymbolTable) BeginPass() { t.changed = 0 }

// Changed reports how many symbol definitions changed address during the
// pass just completed.
func (t *SymbolTable) Changed() int { return t.changed }

// Define assigns value to name under the given definition kind, applying
// the phase-error policy from spec §4.2. finalPass indicates the pass
// currently running is the terminal pass (listing + image writing); pass1
// indicates it is the very first pass, where conflicting definitions are
// immediately fatal rather than merely tracked for convergence.
func (t *SymbolTable) Define(name string, value int, kind DefKind, line int, pass1, finalPass bool) (*Symbol, error) {
	k := t.key(name)
	s, existed := t.syms[k]
	if !existed {
		s = &Symbol{Name: name, Address: Undefined}
		t.syms[k] = s
		t.order = append(t.order, k)
	}

	tag := RefDef
	switch kind {
	case DefBSS:
		tag = RefBSS
	case DefPosition:
		tag = RefPos
	}

	if !existed || !s.defined() {
		s.Address = value
		s.Refs = append([]Reference{{Line: line, Tag: tag}}, s.Refs...)
		return s, nil
	}

	if s.Address == value {
		return s, nil
	}

	// Redefinition with a different value.
	if s.Locked {
		return s, nil
	}

	switch {
	case pass1:
		e := newErr(KindSemantic, "", line, 0,
			"symbol %q redefined with a different value", name)
		e.Fatal = true
		return s, e
	case finalPass:
		return s, newErr(KindConvergence, "", line, 0,
			"symbol %q address changed on the final pass (phase mismatch)", name)
	default:
		s.Address = value
		t.changed++
		return s, nil
	}
}

// AddReference appends a use-site to name's reference list. Callers only
// invoke this in the final pass, per spec §4.1.
func (t *SymbolTable) AddReference(name string, line int, tag RefTag) {
	s := t.AutoRegister(name)
	s.Refs = append(s.Refs, Reference{Line: line, Tag: tag})
}

// All returns every interned symbol in first-seen order.
func (t *SymbolTable) All() []*Symbol {
	out := make([]*Symbol, 0, len(t.order))
	for _, k := range t.order {
		out = append(out, t.syms[k])
	}
	return out
}
