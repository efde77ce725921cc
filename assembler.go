package xasm

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const maxPasses = 20

// Options configures one assembly run, populated from CLI flags per
// spec §6.
type Options struct {
	InputFile          string
	CPU                CPU
	IgnoreCase         bool // -i
	StripHex           bool // -x
	Defines            map[string]int
	IncludeLineNumbers bool // -n
	WritePreproc       bool // -p
	BranchOpt          bool // -b
	FillByte           byte
	ErrorMax           int
	Debug              *slog.Logger
	Open               FileOpener
}

// Assembler owns every piece of mutable state threaded through a pass, per
// spec §3's data model.
type Assembler struct {
	opts Options

	cpu           CPU
	caseSensitive bool
	fillByte      byte
	branchOpt     bool

	pc        int
	bss       int
	origin    bool // whether .ORG/*= has been seen this pass
	scope     string
	basePage  int
	charset   Charset

	loadPending bool // sticky .LOAD flag, consulted by the next .STORE
	inModule    bool
	moduleStart int

	syms    *SymbolTable
	macros  *MacroTable
	image   *Image
	cond    condStack
	reader  *SourceReader
	stores  []StoreDirective

	pass      int
	finalPass bool
	prevFinal bool                // set on pass maxPasses-1 only: the pass that freezes branch widths
	frozen    map[string]AddrMode // branch mnemonic+line key -> frozen mode

	curText string
	listing []ListingLine
	ppLines []string
	errs    []*AsmError
	errMax  int

	log *slog.Logger
}

// ListingLine is one rendered line of the listing output (`-n` adds the
// line-number column).
type ListingLine struct {
	File  string
	Line  int
	Addr  int
	Bytes []byte
	Text  string
}

// isBSOSource reports whether name's extension marks it as a BSO-format
// source file, per spec §6: `.src` activates the BSO-compatibility
// defaults (45GS02, case-insensitive, branch optimization on, 0xFF fill).
func isBSOSource(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".src")
}

func NewAssembler(opts Options) *Assembler {
	if opts.Open == nil {
		opts.Open = osFileOpener
	}
	if opts.ErrorMax <= 0 {
		opts.ErrorMax = 50
	}
	if opts.Debug == nil {
		opts.Debug = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	bso := isBSOSource(opts.InputFile)

	cpu := opts.CPU
	if cpu == 0 && bso {
		cpu = CPU45GS02
	}

	caseSensitive := !opts.IgnoreCase && !bso

	branchOpt := opts.BranchOpt || bso

	fillByte := opts.FillByte
	if bso && fillByte == 0 {
		fillByte = 0xFF
	}

	a := &Assembler{
		opts:          opts,
		cpu:           cpu,
		caseSensitive: caseSensitive,
		fillByte:      fillByte,
		branchOpt:     branchOpt,
		syms:          NewSymbolTable(caseSensitive),
		macros:        NewMacroTable(),
		image:         NewImage(fillByte),
		errMax:        opts.ErrorMax,
		frozen:        make(map[string]AddrMode),
		log:           opts.Debug,
	}
	for name, v := range opts.Defines {
		sym, _ := a.syms.Define(name, v, DefAssign, 0, true, false)
		sym.Locked = true
	}
	return a
}

// Assemble runs the full multi-pass pipeline described in spec §4.8. The
// slice holds every error recorded in the final pass plus any fatal error
// from an earlier pass; a fatal error is also returned as the second
// result. An empty slice with a nil fatal error means success.
func (a *Assembler) Assemble() ([]*AsmError, error) {
	prevChanged := -1
	for a.pass = 1; a.pass <= maxPasses; a.pass++ {
		a.finalPass = false
		a.prevFinal = a.pass == maxPasses-1

		changed, fatal := a.runPass(false)
		if fatal != nil {
			return a.errs, fatal
		}
		a.log.Debug("pass complete", "pass", a.pass, "changed", changed, "errors", len(a.errs))

		// A first pass has no previous pass to compare against (forward
		// references only gain their first value in it), so at least two
		// passes run before the final one.
		if changed == 0 && a.pass > 1 {
			break
		}
		if changed == prevChanged && a.pass > 2 {
			return a.errs, newErr(KindConvergence, a.opts.InputFile, 0, 0,
				"symbol addresses did not converge after %d passes", a.pass)
		}
		prevChanged = changed
		if a.pass == maxPasses {
			return a.errs, newErr(KindConvergence, a.opts.InputFile, 0, 0,
				"assembly did not converge within %d passes", maxPasses)
		}
	}

	// One more pass: the final, output-producing pass.
	a.pass++
	a.finalPass = true
	if _, fatal := a.runPass(true); fatal != nil {
		return a.errs, fatal
	}
	return a.errs, nil
}

func (a *Assembler) runPass(final bool) (changed int, fatal error) {
	a.pc = Undefined
	a.bss = Undefined
	a.origin = false
	a.scope = ""
	a.basePage = 0
	a.charset = CharsetASCII
	a.loadPending = false
	a.inModule = false
	a.moduleStart = 0
	a.cond.Reset()
	a.image.Reset()
	a.syms.BeginPass()
	a.listing = nil
	a.stores = nil
	a.ppLines = nil

	a.reader = NewSourceReader(a.opts.Open)
	a.reader.stripHex = a.opts.StripHex
	a.reader.cpu = a.cpu
	if err := a.reader.PushFile(a.opts.InputFile); err != nil {
		return 0, err
	}

	for {
		file, lineNo, text, ok := a.reader.NextLine()
		if !ok {
			break
		}
		if err := a.processLine(file, lineNo, text); err != nil {
			if ae, isAsm := err.(*AsmError); isAsm {
				a.recordError(ae)
				if ae.Fatal {
					return a.syms.Changed(), ae
				}
				if len(a.errs) >= a.errMax {
					return a.syms.Changed(), newErr(KindResource, file, lineNo, 0,
						"too many errors (limit %d)", a.errMax)
				}
				continue
			}
			return a.syms.Changed(), err
		}
	}
	return a.syms.Changed(), nil
}

func (a *Assembler) recordError(e *AsmError) {
	if a.finalPass {
		a.errs = append(a.errs, e)
	} else if e.Fatal {
		a.errs = append(a.errs, e)
	}
}

// processLine dispatches one physical source line: comment stripping,
// label extraction, conditional/macro interception, then either a pseudo-op
// or an instruction.
func (a *Assembler) processLine(file string, lineNo int, raw string) error {
	a.curText = raw
	line := stripComment(raw)
	trimmed := strings.TrimSpace(line)

	if handled, err := a.handleConditionalLine(file, lineNo, trimmed); handled || err != nil {
		return err
	}
	if !a.cond.Active() {
		return nil
	}

	label, rest := splitLabel(line)
	if label != "" {
		if assignExpr, isAssign := splitAssignment(rest); isAssign {
			return a.defineAssign(label, assignExpr, file, lineNo)
		}
		if m, _ := splitMnemonic(rest); strings.EqualFold(m, ".BSS") {
			// `NAME .BSS n`: NAME takes the current BSS pointer.
			name := qualifyIdentifier(label, a.scope)
			if _, err := a.syms.Define(name, a.bss, DefBSS, lineNo, a.pass == 1, a.finalPass); err != nil {
				if ae, ok := err.(*AsmError); ok {
					ae.File = file
				}
				return err
			}
		} else if err := a.defineLabel(label, file, lineNo); err != nil {
			return err
		}
	}

	rest = strings.TrimSpace(rest)
	if rest == "" {
		return nil
	}

	mnemonic, operand := splitMnemonic(rest)
	if i := strings.IndexByte(mnemonic, '('); i >= 0 && strings.HasSuffix(mnemonic, ")") {
		// A macro invocation's argument list may abut the name with no
		// intervening space, e.g. `LDXY(1,2)`.
		operand = mnemonic[i:]
		mnemonic = mnemonic[:i]
	}
	upper := strings.ToUpper(mnemonic)

	if m, ok := a.macros.Lookup(qualifyMacroName(upper)); ok {
		return a.expandMacroCall(m, operand, file, lineNo)
	}

	if a.finalPass {
		a.ppLines = append(a.ppLines, a.curText)
	}

	if handler, ok := pseudoOps[upper]; ok {
		return handler(a, file, lineNo, operand)
	}

	return a.assembleInstruction(file, lineNo, upper, operand)
}

func qualifyMacroName(name string) string { return name }

func (a *Assembler) expandMacroCall(m *Macro, operand, file string, lineNo int) error {
	operand = strings.TrimSpace(operand)
	if strings.HasPrefix(operand, "(") && strings.HasSuffix(operand, ")") {
		operand = operand[1 : len(operand)-1]
	}
	args := SplitMacroArgs(operand)
	lines, err := Expand(m, args)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := a.processLine(file, lineNo, l); err != nil {
			return err
		}
	}
	return nil
}

// splitLabel extracts a leading label (anything before the first run of
// whitespace that is not itself an instruction/pseudo-op mnemonic, or a
// token ending in ':'), returning the label and the remainder of the line.
func splitLabel(line string) (label, rest string) {
	if line == "" || isSpace(line[0]) {
		return "", line
	}
	i := 0
	for i < len(line) && !isSpace(line[i]) {
		i++
	}
	first := line[:i]
	remainder := line[i:]
	if strings.HasSuffix(first, ":") {
		return strings.TrimSuffix(first, ":"), remainder
	}
	// A bare leading token followed by whitespace and more text is a
	// label only if it isn't a known mnemonic or directive; callers that
	// need the stricter rule (pseudo-ops masquerading as labels) rely on
	// the caller trying pseudoOps/instruction lookup first on failure.
	if strings.TrimSpace(remainder) == "" {
		return "", line
	}
	if _, isPseudo := pseudoOps[strings.ToUpper(first)]; isPseudo {
		return "", line
	}
	if _, isInstr := byMnemonic[strings.ToUpper(first)]; isInstr {
		return "", line
	}
	if isBranchMnemonic(strings.ToUpper(first)) {
		return "", line
	}
	return first, remainder
}

func splitMnemonic(rest string) (mnemonic, operand string) {
	rest = strings.TrimSpace(rest)
	i := 0
	for i < len(rest) && !isSpace(rest[i]) {
		i++
	}
	return rest[:i], strings.TrimSpace(rest[i:])
}

// splitAssignment reports whether rest is a `= expr` constant-assignment
// form (as opposed to a positional label's instruction/directive
// continuation), returning the expression text with the leading '=' and
// surrounding space removed.
func splitAssignment(rest string) (expr string, ok bool) {
	trimmed := strings.TrimSpace(rest)
	if trimmed == "" || trimmed[0] != '=' {
		return "", false
	}
	return strings.TrimSpace(trimmed[1:]), true
}

// defineAssign implements the `NAME = expr` constant-assignment form, per
// spec §4.2's DefAssign symbol kind.
func (a *Assembler) defineAssign(raw, expr, file string, lineNo int) error {
	name := qualifyIdentifier(raw, a.scope)
	v, err := EvalExpr(expr, a.evalCtx(file, lineNo, ""))
	if err != nil {
		if ae, ok := err.(*AsmError); ok {
			ae.File = file
		}
		return err
	}
	_, err = a.syms.Define(name, v, DefAssign, lineNo, a.pass == 1, a.finalPass)
	if err != nil {
		if ae, ok := err.(*AsmError); ok {
			ae.File = file
		}
		return err
	}
	return nil
}

func (a *Assembler) defineLabel(raw, file string, lineNo int) error {
	name := qualifyIdentifier(raw, a.scope)
	value := a.pc
	if value == Undefined {
		return newErr(KindSemantic, file, lineNo, 0, "label %q defined before any origin is set", raw)
	}
	_, err := a.syms.Define(name, value, DefPosition, lineNo, a.pass == 1, a.finalPass)
	if err != nil {
		if ae, ok := err.(*AsmError); ok {
			ae.File = file
		}
		return err
	}
	return nil
}

func (a *Assembler) evalCtx(file string, lineNo int, tag RefTag) EvalContext {
	return EvalContext{
		Syms: a.syms, PC: a.pc, Scope: a.scope, FinalPass: a.finalPass,
		Line: lineNo, File: file, RefTag: tag, Charset: a.charset,
	}
}

func (a *Assembler) emit(file string, lineNo int, bytes []byte) error {
	if a.pc == Undefined {
		return newErr(KindSemantic, file, lineNo, 0, "no origin set before emitting data")
	}
	start := a.pc
	for i, b := range bytes {
		addr := a.pc + i
		if addr < 0 || addr >= 0x10000 {
			return newErr(KindRange, file, lineNo, 0, "program counter overflowed 64KiB at $%04X", addr)
		}
		if !a.finalPass {
			continue
		}
		if err := a.image.WriteByte(addr, b); err != nil {
			if ae, ok := err.(*AsmError); ok {
				ae.File, ae.Line = file, lineNo
			}
			return err
		}
	}
	a.pc += len(bytes)
	if a.finalPass {
		a.listing = append(a.listing, ListingLine{File: file, Line: lineNo, Addr: start, Bytes: bytes, Text: a.curText})
	}
	return nil
}

func (a *Assembler) handleConditionalLine(file string, lineNo int, trimmed string) (handled bool, err error) {
	switch {
	case strings.HasPrefix(trimmed, "#ifdef"):
		name := strings.TrimSpace(trimmed[len("#ifdef"):])
		sym, found := a.syms.Lookup(qualifyIdentifier(name, a.scope))
		return true, a.cond.PushIf(found && sym.defined())
	case strings.HasPrefix(trimmed, "#ifndef"):
		name := strings.TrimSpace(trimmed[len("#ifndef"):])
		sym, found := a.syms.Lookup(qualifyIdentifier(name, a.scope))
		return true, a.cond.PushIf(!(found && sym.defined()))
	case strings.HasPrefix(trimmed, "#if"):
		expr := strings.TrimSpace(trimmed[len("#if"):])
		v, err := EvalExpr(expr, a.evalCtx(file, lineNo, ""))
		if err != nil {
			return true, err
		}
		return true, a.cond.PushIf(v != 0 && v != Undefined)
	case strings.HasPrefix(trimmed, "#else"):
		return true, a.cond.Else()
	case strings.HasPrefix(trimmed, "#endif"):
		return true, a.cond.EndIf()
	case strings.HasPrefix(trimmed, "#error"):
		if !a.cond.Active() {
			return true, nil
		}
		msg := strings.TrimSpace(trimmed[len("#error"):])
		return true, newErr(KindUser, file, lineNo, 0, "%s", msg)
	}
	return false, nil
}

// PreprocessedSource returns the macro-expanded, conditional-trimmed
// source lines produced by the final pass, for the `-p` flag.
func (a *Assembler) PreprocessedSource() []string { return a.ppLines }

// branchFreezeKey identifies a branch instruction's source location for
// the penultimate-pass encoding freeze.
func branchFreezeKey(file string, line int) string {
	return fmt.Sprintf("%s:%d", file, line)
}
