package xasm

// assembleInstruction classifies operand, evaluates it, narrows the
// addressing mode, and emits the encoded bytes, per spec §4.4.
func (a *Assembler) assembleInstruction(file string, lineNo int, mnemonic, operand string) error {
	candidates := CandidatesForMnemonic(a.cpu, mnemonic)
	isQ, base := false, mnemonic
	if b, ok := isQMnemonic(mnemonic); ok {
		isQ = true
		base = b
		candidates = CandidatesForMnemonic(a.cpu, base)
	}
	if len(candidates) == 0 {
		return newErr(KindSemantic, file, lineNo, 0, "unknown mnemonic %q for CPU %s", mnemonic, a.cpu)
	}
	if isQ && a.cpu&CPUQRegister == 0 {
		return newErr(KindSemantic, file, lineNo, 0, "%q requires a CPU with Q-register support", mnemonic)
	}

	syntax, err := classifyOperand(mnemonic, operand, a.cpu)
	if err != nil {
		if ae, ok := err.(*AsmError); ok {
			ae.File, ae.Line = file, lineNo
		}
		return err
	}

	if syntax.Mode == ModeTestBitBranch {
		return a.assembleTestBitBranch(file, lineNo, mnemonic, syntax)
	}

	mode, value, value2, err := a.resolveMode(file, lineNo, syntax)
	if err != nil {
		return err
	}

	in, ok := FindExact(a.cpu, base, mode)
	if !ok {
		// Widen a narrowed direct-page mode back to absolute if no
		// direct-page encoding exists for this mnemonic.
		if widened, wok := widenMode(mode); wok {
			if in2, ok2 := FindExact(a.cpu, base, widened); ok2 {
				in, mode, ok = in2, widened, true
			}
		}
	}
	if !ok {
		return newErr(KindSemantic, file, lineNo, 0,
			"%s does not support %s addressing on CPU %s", mnemonic, mode, a.cpu)
	}

	bytes, err := a.encodeOperand(file, lineNo, in, mode, value, value2)
	if err != nil {
		return err
	}

	if isQ {
		prefix := []byte{0x42, 0x42}
		if mode == ModeIndirect32 {
			prefix = append(prefix, 0xEA)
		}
		bytes = append(prefix, bytes...)
	}

	return a.emit(file, lineNo, bytes)
}

// widenMode maps a direct-page mode to its absolute counterpart, for the
// case where an operand value happens to fit in a byte but the mnemonic
// only has an absolute-width encoding (e.g. JMP/JSR have no direct-page
// form at all, so this rarely fires, but STX/STY's ,Y / ,X variants do
// lack 16-bit counterparts and must fail rather than widen).
func widenMode(m AddrMode) (AddrMode, bool) {
	switch m {
	case ModeDirectPage:
		return ModeAbsolute, true
	case ModeDirectPageX:
		return ModeAbsoluteX, true
	case ModeDirectPageY:
		return ModeAbsoluteY, true
	}
	return 0, false
}

// resolveMode evaluates operand.Expr (and Expr2 for bit-branch forms,
// handled separately) and narrows an Absolute/AbsoluteX/AbsoluteY mode to
// its DirectPage counterpart when the operand's resolved value fits in one
// byte and the caller did not request ForceWide.
func (a *Assembler) resolveMode(file string, lineNo int, syntax OperandSyntax) (mode AddrMode, value, value2 int, err error) {
	mode = syntax.Mode
	switch mode {
	case ModeImplied, ModeAccumulator:
		return mode, 0, 0, nil
	}

	value, evalErr := EvalExpr(syntax.Expr, a.evalCtx(file, lineNo, RefTag(mode.String())))
	if evalErr != nil {
		if ae, ok := evalErr.(*AsmError); ok {
			ae.File, ae.Line = file, lineNo
		}
		return mode, 0, 0, evalErr
	}
	if a.finalPass && value == Undefined && mode != ModeRelative {
		return mode, 0, 0, newErr(KindSemantic, file, lineNo, 0,
			"operand %q did not resolve to a defined value", syntax.Expr)
	}

	if syntax.ForceWide {
		return mode, value, 0, nil
	}

	fits := value != Undefined && value >= a.basePage && value <= a.basePage+0xFF
	switch mode {
	case ModeAbsolute:
		if fits {
			mode = ModeDirectPage
		}
	case ModeAbsoluteX:
		if fits {
			mode = ModeDirectPageX
		}
	case ModeAbsoluteY:
		if fits {
			mode = ModeDirectPageY
		}
	}
	return mode, value, 0, nil
}

func (a *Assembler) assembleTestBitBranch(file string, lineNo int, mnemonic string, syntax OperandSyntax) error {
	in, ok := FindExact(a.cpu, mnemonic, ModeTestBitBranch)
	if !ok {
		return newErr(KindSemantic, file, lineNo, 0, "%s is not available on CPU %s", mnemonic, a.cpu)
	}
	dp, err := EvalExpr(syntax.Expr, a.evalCtx(file, lineNo, RefBSS))
	if err != nil {
		return err
	}
	if a.finalPass && dp == Undefined {
		return newErr(KindSemantic, file, lineNo, 0, "operand %q did not resolve to a defined value", syntax.Expr)
	}
	target, err := EvalExpr(syntax.Expr2, a.evalCtx(file, lineNo, "branch"))
	if err != nil {
		return err
	}
	offset, err := a.relativeOffset(file, lineNo, target, a.pc+3)
	if err != nil {
		return err
	}
	return a.emit(file, lineNo, []byte{in.Opcode, byte(dp), byte(offset)})
}

// encodeOperand serializes the addressing-mode-specific operand bytes
// following the opcode, handling the branch family's relative-offset
// arithmetic and penultimate-pass freeze per spec §4.4 and §4.8.
func (a *Assembler) encodeOperand(file string, lineNo int, in Instruction, mode AddrMode, value, _ int) ([]byte, error) {
	switch mode {
	case ModeImplied, ModeAccumulator:
		return []byte{in.Opcode}, nil

	case ModeImmediate, ModeDirectPage, ModeDirectPageX, ModeDirectPageY,
		ModeIndirect, ModeIndirectX, ModeIndirectY, ModeIndirectZ:
		if in.Length == 3 {
			// JMP (abs), JMP (abs,X) and JSR (abs,X) take a 16-bit operand.
			return []byte{in.Opcode, byte(value), byte(value >> 8)}, nil
		}
		return []byte{in.Opcode, byte(value)}, nil

	case ModeAbsolute, ModeAbsoluteX, ModeAbsoluteY, ModeIndirect32:
		return []byte{in.Opcode, byte(value), byte(value >> 8)}, nil

	case ModeRelative:
		return a.encodeRelativeBranch(file, lineNo, in, value)

	default:
		return nil, newErr(KindSemantic, file, lineNo, 0, "unsupported addressing mode %s", mode)
	}
}

// encodeRelativeBranch handles the short-vs-long branch choice: a pass
// picks the short (2-byte) form whenever the offset fits, so addresses can
// only grow monotonically toward convergence. Widths are recorded into
// `a.frozen` only on the pass with prevFinal set (pass maxPasses-1), and
// every later pass reuses the recorded width. When the passes converge
// before that, nothing is frozen and the final pass recomputes each width
// from the symbol values of the last pass, which changed no address.
//
// The long form (45GS02, when branch optimization is enabled) is the
// short-branch opcode OR'd with 3, followed by a 16-bit displacement —
// not an invert-and-JMP sequence.
func (a *Assembler) encodeRelativeBranch(file string, lineNo int, in Instruction, target int) ([]byte, error) {
	key := branchFreezeKey(file, lineNo)

	wantLong := false
	if frozenMode, ok := a.frozen[key]; ok {
		wantLong = frozenMode == ModeRelativeLong
	} else if target != Undefined && a.pc != Undefined {
		offset := target - (a.pc + 2)
		if offset < -128 || offset > 127 {
			if !a.branchOpt || a.cpu&CPULongBranch == 0 {
				return nil, newErr(KindRange, file, lineNo, 0, "branch target out of range (%+d)", offset)
			}
			wantLong = true
		}
	}

	if a.prevFinal {
		if wantLong {
			a.frozen[key] = ModeRelativeLong
			a.log.Debug("branch widened to long form", "file", file, "line", lineNo)
		} else {
			a.frozen[key] = ModeRelative
		}
	}

	if !wantLong {
		offset, err := a.relativeOffset(file, lineNo, target, a.pc+2)
		if err != nil {
			return nil, err
		}
		return []byte{in.Opcode, byte(offset)}, nil
	}

	disp, err := a.longRelativeOffset(file, lineNo, target, a.pc+3)
	if err != nil {
		return nil, err
	}
	return []byte{in.Opcode | 0x03, byte(disp), byte(disp >> 8)}, nil
}

func (a *Assembler) relativeOffset(file string, lineNo int, target, nextPC int) (int, error) {
	if target == Undefined || nextPC == Undefined {
		if a.finalPass {
			return 0, newErr(KindSemantic, file, lineNo, 0, "branch target did not resolve to a defined value")
		}
		return 0, nil
	}
	offset := target - nextPC
	if offset < -128 || offset > 127 {
		return 0, newErr(KindRange, file, lineNo, 0, "branch target out of range (%+d)", offset)
	}
	if offset < 0 {
		offset += 256
	}
	return offset, nil
}

// longRelativeOffset is relativeOffset's 16-bit counterpart for the
// 45GS02 long-branch form.
func (a *Assembler) longRelativeOffset(file string, lineNo int, target, nextPC int) (int, error) {
	if target == Undefined || nextPC == Undefined {
		if a.finalPass {
			return 0, newErr(KindSemantic, file, lineNo, 0, "branch target did not resolve to a defined value")
		}
		return 0, nil
	}
	offset := target - nextPC
	if offset < -32768 || offset > 32767 {
		return 0, newErr(KindRange, file, lineNo, 0, "long branch target out of range (%+d)", offset)
	}
	if offset < 0 {
		offset += 0x10000
	}
	return offset, nil
}
