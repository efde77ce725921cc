package xasm

// AddrMode enumerates the concrete addressing modes the classifier can
// resolve an operand to, per spec §4.3.
type AddrMode int

const (
	ModeImplied AddrMode = iota
	ModeAccumulator
	ModeImmediate
	ModeRelative
	ModeRelativeLong
	ModeDirectPage
	ModeAbsolute
	ModeDirectPageX
	ModeDirectPageY
	ModeAbsoluteX
	ModeAbsoluteY
	ModeIndirect
	ModeIndirectX
	ModeIndirectY
	ModeIndirectZ
	ModeIndirect32
	ModeTestBitBranch
)

func (m AddrMode) String() string {
	names := map[AddrMode]string{
		ModeImplied: "implied", ModeAccumulator: "accumulator", ModeImmediate: "immediate",
		ModeRelative: "relative", ModeRelativeLong: "relative-long", ModeDirectPage: "direct-page",
		ModeAbsolute: "absolute", ModeDirectPageX: "direct-page,X", ModeDirectPageY: "direct-page,Y",
		ModeAbsoluteX: "absolute,X", ModeAbsoluteY: "absolute,Y", ModeIndirect: "indirect",
		ModeIndirectX: "(indirect,X)", ModeIndirectY: "(indirect),Y", ModeIndirectZ: "(indirect),Z",
		ModeIndirect32: "[indirect],Z", ModeTestBitBranch: "bit,branch",
	}
	if s, ok := names[m]; ok {
		return s
	}
	return "?"
}

// Instruction is one (CPU-set, mnemonic, mode) -> (opcode, length) mapping.
type Instruction struct {
	CPUs     CPU
	Mnemonic string
	Mode     AddrMode
	Opcode   byte
	Length   int
}

func (in *Instruction) runsOn(cpu CPU) bool { return in.CPUs&cpu != 0 }

var branchMnemonics = map[string]byte{
	"BPL": 0x10, "BMI": 0x30, "BVC": 0x50, "BVS": 0x70,
	"BCC": 0x90, "BCS": 0xB0, "BNE": 0xD0, "BEQ": 0xF0,
}

// qMnemonics maps a 45GS02 Q-register quad mnemonic to the base mnemonic
// whose addressing-mode candidates it reuses (the quad form is the same
// shape with a 0x42 0x42 escape prefix, per spec §4.4 step 6).
var qMnemonics = map[string]string{
	"LDQ": "LDA", "STQ": "STA", "ADCQ": "ADC", "SBCQ": "SBC",
	"ANDQ": "AND", "ORAQ": "ORA", "EORQ": "EOR", "CMPQ": "CMP",
	"ASLQ": "ASL", "LSRQ": "LSR", "ROLQ": "ROL", "RORQ": "ROR", "INCQ": "INC", "DECQ": "DEC",
}

func isQMnemonic(m string) (string, bool) {
	base, ok := qMnemonics[m]
	return base, ok
}

// instructionTable is the single declarative source of instruction data,
// following the teacher's style of one flat var literal built once at
// init time into lookup indices, generalized from a one-CPU decode table
// to a multi-CPU encode table.
var instructionTable []Instruction

func init() {
	instructionTable = append(instructionTable, base6502()...)
	instructionTable = append(instructionTable, cmos65C02Additions()...)
	instructionTable = append(instructionTable, rockwellBitBranch()...)
	instructionTable = append(instructionTable, gs02Additions()...)
	instructionTable = append(instructionTable, w65816Additions()...)
	buildIndices()
}

const (
	allCPUs = CPU6502 | CPU65SC02 | CPU65C02 | CPU45GS02 | CPU65816
	cmos    = CPU65SC02 | CPU65C02 | CPU45GS02 | CPU65816
)

// base6502 is the documented NMOS 6502 instruction set, available on every
// CPU in the family, plus the three widely emulated undocumented opcodes
// the teacher's own table tracks (ANC, SLO, SRE), available on the 6502
// only.
func base6502() []Instruction {
	t := []Instruction{
		{allCPUs, "ADC", ModeImmediate, 0x69, 2}, {allCPUs, "ADC", ModeDirectPage, 0x65, 2},
		{allCPUs, "ADC", ModeDirectPageX, 0x75, 2}, {allCPUs, "ADC", ModeAbsolute, 0x6D, 3},
		{allCPUs, "ADC", ModeAbsoluteX, 0x7D, 3}, {allCPUs, "ADC", ModeAbsoluteY, 0x79, 3},
		{allCPUs, "ADC", ModeIndirectX, 0x61, 2}, {allCPUs, "ADC", ModeIndirectY, 0x71, 2},

		{CPU6502, "ANC", ModeImmediate, 0x0B, 2},

		{allCPUs, "AND", ModeImmediate, 0x29, 2}, {allCPUs, "AND", ModeDirectPage, 0x25, 2},
		{allCPUs, "AND", ModeDirectPageX, 0x35, 2}, {allCPUs, "AND", ModeAbsolute, 0x2D, 3},
		{allCPUs, "AND", ModeAbsoluteX, 0x3D, 3}, {allCPUs, "AND", ModeAbsoluteY, 0x39, 3},
		{allCPUs, "AND", ModeIndirectX, 0x21, 2}, {allCPUs, "AND", ModeIndirectY, 0x31, 2},

		{allCPUs, "ASL", ModeAccumulator, 0x0A, 1}, {allCPUs, "ASL", ModeDirectPage, 0x06, 2},
		{allCPUs, "ASL", ModeDirectPageX, 0x16, 2}, {allCPUs, "ASL", ModeAbsolute, 0x0E, 3},
		{allCPUs, "ASL", ModeAbsoluteX, 0x1E, 3},

		{allCPUs, "BIT", ModeDirectPage, 0x24, 2}, {allCPUs, "BIT", ModeAbsolute, 0x2C, 3},
		{allCPUs, "BIT", ModeImplied, 0x2C, 1},

		{allCPUs, "BRK", ModeImplied, 0x00, 1},

		{allCPUs, "CMP", ModeImmediate, 0xC9, 2}, {allCPUs, "CMP", ModeDirectPage, 0xC5, 2},
		{allCPUs, "CMP", ModeDirectPageX, 0xD5, 2}, {allCPUs, "CMP", ModeAbsolute, 0xCD, 3},
		{allCPUs, "CMP", ModeAbsoluteX, 0xDD, 3}, {allCPUs, "CMP", ModeAbsoluteY, 0xD9, 3},
		{allCPUs, "CMP", ModeIndirectX, 0xC1, 2}, {allCPUs, "CMP", ModeIndirectY, 0xD1, 2},

		{allCPUs, "CPX", ModeImmediate, 0xE0, 2}, {allCPUs, "CPX", ModeDirectPage, 0xE4, 2},
		{allCPUs, "CPX", ModeAbsolute, 0xEC, 3},

		{allCPUs, "CPY", ModeImmediate, 0xC0, 2}, {allCPUs, "CPY", ModeDirectPage, 0xC4, 2},
		{allCPUs, "CPY", ModeAbsolute, 0xCC, 3},

		{allCPUs, "DEC", ModeDirectPage, 0xC6, 2}, {allCPUs, "DEC", ModeDirectPageX, 0xD6, 2},
		{allCPUs, "DEC", ModeAbsolute, 0xCE, 3}, {allCPUs, "DEC", ModeAbsoluteX, 0xDE, 3},

		{allCPUs, "EOR", ModeImmediate, 0x49, 2}, {allCPUs, "EOR", ModeDirectPage, 0x45, 2},
		{allCPUs, "EOR", ModeDirectPageX, 0x55, 2}, {allCPUs, "EOR", ModeAbsolute, 0x4D, 3},
		{allCPUs, "EOR", ModeAbsoluteX, 0x5D, 3}, {allCPUs, "EOR", ModeAbsoluteY, 0x59, 3},
		{allCPUs, "EOR", ModeIndirectX, 0x41, 2}, {allCPUs, "EOR", ModeIndirectY, 0x51, 2},

		{allCPUs, "CLC", ModeImplied, 0x18, 1}, {allCPUs, "SEC", ModeImplied, 0x38, 1},
		{allCPUs, "CLI", ModeImplied, 0x58, 1}, {allCPUs, "SEI", ModeImplied, 0x78, 1},
		{allCPUs, "CLV", ModeImplied, 0xB8, 1}, {allCPUs, "CLD", ModeImplied, 0xD8, 1},
		{allCPUs, "SED", ModeImplied, 0xF8, 1},

		{allCPUs, "INC", ModeDirectPage, 0xE6, 2}, {allCPUs, "INC", ModeDirectPageX, 0xF6, 2},
		{allCPUs, "INC", ModeAbsolute, 0xEE, 3}, {allCPUs, "INC", ModeAbsoluteX, 0xFE, 3},

		{allCPUs, "JMP", ModeAbsolute, 0x4C, 3}, {allCPUs, "JMP", ModeIndirect, 0x6C, 3},
		{allCPUs, "JSR", ModeAbsolute, 0x20, 3},

		{allCPUs, "LDA", ModeImmediate, 0xA9, 2}, {allCPUs, "LDA", ModeDirectPage, 0xA5, 2},
		{allCPUs, "LDA", ModeDirectPageX, 0xB5, 2}, {allCPUs, "LDA", ModeAbsolute, 0xAD, 3},
		{allCPUs, "LDA", ModeAbsoluteX, 0xBD, 3}, {allCPUs, "LDA", ModeAbsoluteY, 0xB9, 3},
		{allCPUs, "LDA", ModeIndirectX, 0xA1, 2}, {allCPUs, "LDA", ModeIndirectY, 0xB1, 2},

		{allCPUs, "LDX", ModeImmediate, 0xA2, 2}, {allCPUs, "LDX", ModeDirectPage, 0xA6, 2},
		{allCPUs, "LDX", ModeDirectPageY, 0xB6, 2}, {allCPUs, "LDX", ModeAbsolute, 0xAE, 3},
		{allCPUs, "LDX", ModeAbsoluteY, 0xBE, 3},

		{allCPUs, "LDY", ModeImmediate, 0xA0, 2}, {allCPUs, "LDY", ModeDirectPage, 0xA4, 2},
		{allCPUs, "LDY", ModeDirectPageX, 0xB4, 2}, {allCPUs, "LDY", ModeAbsolute, 0xAC, 3},
		{allCPUs, "LDY", ModeAbsoluteX, 0xBC, 3},

		{allCPUs, "LSR", ModeAccumulator, 0x4A, 1}, {allCPUs, "LSR", ModeDirectPage, 0x46, 2},
		{allCPUs, "LSR", ModeDirectPageX, 0x56, 2}, {allCPUs, "LSR", ModeAbsolute, 0x4E, 3},
		{allCPUs, "LSR", ModeAbsoluteX, 0x5E, 3},

		{allCPUs, "NOP", ModeImplied, 0xEA, 1},

		{allCPUs, "ORA", ModeImmediate, 0x09, 2}, {allCPUs, "ORA", ModeDirectPage, 0x05, 2},
		{allCPUs, "ORA", ModeDirectPageX, 0x15, 2}, {allCPUs, "ORA", ModeAbsolute, 0x0D, 3},
		{allCPUs, "ORA", ModeAbsoluteX, 0x1D, 3}, {allCPUs, "ORA", ModeAbsoluteY, 0x19, 3},
		{allCPUs, "ORA", ModeIndirectX, 0x01, 2}, {allCPUs, "ORA", ModeIndirectY, 0x11, 2},

		{allCPUs, "TAX", ModeImplied, 0xAA, 1}, {allCPUs, "TXA", ModeImplied, 0x8A, 1},
		{allCPUs, "DEX", ModeImplied, 0xCA, 1}, {allCPUs, "INX", ModeImplied, 0xE8, 1},
		{allCPUs, "TAY", ModeImplied, 0xA8, 1}, {allCPUs, "TYA", ModeImplied, 0x98, 1},
		{allCPUs, "DEY", ModeImplied, 0x88, 1}, {allCPUs, "INY", ModeImplied, 0xC8, 1},

		{allCPUs, "ROL", ModeAccumulator, 0x2A, 1}, {allCPUs, "ROL", ModeDirectPage, 0x26, 2},
		{allCPUs, "ROL", ModeDirectPageX, 0x36, 2}, {allCPUs, "ROL", ModeAbsolute, 0x2E, 3},
		{allCPUs, "ROL", ModeAbsoluteX, 0x3E, 3},

		{allCPUs, "ROR", ModeAccumulator, 0x6A, 1}, {allCPUs, "ROR", ModeDirectPage, 0x66, 2},
		{allCPUs, "ROR", ModeDirectPageX, 0x76, 2}, {allCPUs, "ROR", ModeAbsolute, 0x6E, 3},
		{allCPUs, "ROR", ModeAbsoluteX, 0x7E, 3},

		{allCPUs, "RTI", ModeImplied, 0x40, 1}, {allCPUs, "RTS", ModeImplied, 0x60, 1},

		{allCPUs, "SBC", ModeImmediate, 0xE9, 2}, {allCPUs, "SBC", ModeDirectPage, 0xE5, 2},
		{allCPUs, "SBC", ModeDirectPageX, 0xF5, 2}, {allCPUs, "SBC", ModeAbsolute, 0xED, 3},
		{allCPUs, "SBC", ModeAbsoluteX, 0xFD, 3}, {allCPUs, "SBC", ModeAbsoluteY, 0xF9, 3},
		{allCPUs, "SBC", ModeIndirectX, 0xE1, 2}, {allCPUs, "SBC", ModeIndirectY, 0xF1, 2},

		{CPU6502, "SRE", ModeDirectPage, 0x47, 2}, {CPU6502, "SRE", ModeDirectPageX, 0x57, 2},
		{CPU6502, "SRE", ModeAbsolute, 0x4F, 3}, {CPU6502, "SRE", ModeAbsoluteX, 0x5F, 3},
		{CPU6502, "SRE", ModeAbsoluteY, 0x5B, 3}, {CPU6502, "SRE", ModeIndirectX, 0x43, 2},
		{CPU6502, "SRE", ModeIndirectY, 0x53, 2},

		{allCPUs, "STA", ModeDirectPage, 0x85, 2}, {allCPUs, "STA", ModeDirectPageX, 0x95, 2},
		{allCPUs, "STA", ModeAbsolute, 0x8D, 3}, {allCPUs, "STA", ModeAbsoluteX, 0x9D, 3},
		{allCPUs, "STA", ModeAbsoluteY, 0x99, 3}, {allCPUs, "STA", ModeIndirectX, 0x81, 2},
		{allCPUs, "STA", ModeIndirectY, 0x91, 2},

		{allCPUs, "TXS", ModeImplied, 0x9A, 1}, {allCPUs, "TSX", ModeImplied, 0xBA, 1},
		{allCPUs, "PHA", ModeImplied, 0x48, 1}, {allCPUs, "PLA", ModeImplied, 0x68, 1},
		{allCPUs, "PHP", ModeImplied, 0x08, 1}, {allCPUs, "PLP", ModeImplied, 0x28, 1},

		{CPU6502, "SLO", ModeDirectPage, 0x07, 2}, {CPU6502, "SLO", ModeDirectPageX, 0x17, 2},
		{CPU6502, "SLO", ModeAbsolute, 0x0F, 3}, {CPU6502, "SLO", ModeAbsoluteX, 0x1F, 3},
		{CPU6502, "SLO", ModeAbsoluteY, 0x1B, 3}, {CPU6502, "SLO", ModeIndirectX, 0x03, 2},
		{CPU6502, "SLO", ModeIndirectY, 0x13, 2},

		{allCPUs, "STX", ModeDirectPage, 0x86, 2}, {allCPUs, "STX", ModeDirectPageY, 0x96, 2},
		{allCPUs, "STX", ModeAbsolute, 0x8E, 3},

		{allCPUs, "STY", ModeDirectPage, 0x84, 2}, {allCPUs, "STY", ModeDirectPageX, 0x94, 2},
		{allCPUs, "STY", ModeAbsolute, 0x8C, 3},
	}
	for mnem, op := range branchMnemonics {
		t = append(t, Instruction{allCPUs, mnem, ModeRelative, op, 2})
	}
	return t
}

// cmos65C02Additions is the 65SC02/65C02/45GS02/65816 common extension
// set: new instructions and new addressing modes for old ones.
func cmos65C02Additions() []Instruction {
	return []Instruction{
		{cmos, "BRA", ModeRelative, 0x80, 2},

		{cmos, "PHX", ModeImplied, 0xDA, 1}, {cmos, "PLX", ModeImplied, 0xFA, 1},
		{cmos, "PHY", ModeImplied, 0x5A, 1}, {cmos, "PLY", ModeImplied, 0x7A, 1},

		{cmos, "STZ", ModeDirectPage, 0x64, 2}, {cmos, "STZ", ModeDirectPageX, 0x74, 2},
		{cmos, "STZ", ModeAbsolute, 0x9C, 3}, {cmos, "STZ", ModeAbsoluteX, 0x9E, 3},

		{cmos, "TRB", ModeDirectPage, 0x14, 2}, {cmos, "TRB", ModeAbsolute, 0x1C, 3},
		{cmos, "TSB", ModeDirectPage, 0x04, 2}, {cmos, "TSB", ModeAbsolute, 0x0C, 3},

		{cmos, "INC", ModeAccumulator, 0x1A, 1}, {cmos, "DEC", ModeAccumulator, 0x3A, 1},

		{cmos, "BIT", ModeDirectPageX, 0x34, 2}, {cmos, "BIT", ModeAbsoluteX, 0x3C, 3},
		{cmos, "BIT", ModeImmediate, 0x89, 2},

		{cmos, "ADC", ModeIndirect, 0x72, 2}, {cmos, "AND", ModeIndirect, 0x32, 2},
		{cmos, "CMP", ModeIndirect, 0xD2, 2}, {cmos, "EOR", ModeIndirect, 0x52, 2},
		{cmos, "LDA", ModeIndirect, 0xB2, 2}, {cmos, "ORA", ModeIndirect, 0x12, 2},
		{cmos, "SBC", ModeIndirect, 0xF2, 2}, {cmos, "STA", ModeIndirect, 0x92, 2},

		{cmos, "JMP", ModeIndirectX, 0x7C, 3}, {cmos, "JSR", ModeIndirectX, 0xFC, 3},
	}
}

// rockwellBitBranch adds the Rockwell/WDC RMB/SMB/BBR/BBS bit-oriented
// direct-page instruction family, the concrete instance of spec §4.3's
// "Test-bit-branch" addressing mode (`bit dp,target`).
func rockwellBitBranch() []Instruction {
	var t []Instruction
	for bit := 0; bit < 8; bit++ {
		t = append(t,
			Instruction{cmos, mnemonicWithBit("RMB", bit), ModeDirectPage, byte(0x07 + bit*0x10), 2},
			Instruction{cmos, mnemonicWithBit("SMB", bit), ModeDirectPage, byte(0x87 + bit*0x10), 2},
			Instruction{cmos, mnemonicWithBit("BBR", bit), ModeTestBitBranch, byte(0x0F + bit*0x10), 3},
			Instruction{cmos, mnemonicWithBit("BBS", bit), ModeTestBitBranch, byte(0x8F + bit*0x10), 3},
		)
	}
	return t
}

func mnemonicWithBit(prefix string, bit int) string {
	return prefix + string(rune('0'+bit))
}

// gs02Additions covers the 45GS02-only ,Z and 32-bit-indirect addressing
// modes. Q-register quad forms are not separate table rows: the encoder
// derives them from the base mnemonic's table entry plus the 0x42 0x42
// escape prefix, per spec §4.4 step 6.
func gs02Additions() []Instruction {
	return []Instruction{
		{CPU45GS02, "LDA", ModeIndirectZ, 0xB2, 2}, {CPU45GS02, "STA", ModeIndirectZ, 0x92, 2},
		{CPU45GS02, "ADC", ModeIndirectZ, 0x72, 2}, {CPU45GS02, "SBC", ModeIndirectZ, 0xF2, 2},
		{CPU45GS02, "AND", ModeIndirectZ, 0x32, 2}, {CPU45GS02, "ORA", ModeIndirectZ, 0x12, 2},
		{CPU45GS02, "EOR", ModeIndirectZ, 0x52, 2}, {CPU45GS02, "CMP", ModeIndirectZ, 0xD2, 2},

		{CPU45GS02, "LDA", ModeIndirect32, 0xEA, 3}, {CPU45GS02, "STA", ModeIndirect32, 0xEA, 3},
	}
}

// w65816Additions covers the small set of named 65816 mnemonics that fit
// the existing 1-3 byte operand model; see SPEC_FULL.md's scoping
// decision on 65816 native-mode addressing.
func w65816Additions() []Instruction {
	return []Instruction{
		{CPU65816, "JML", ModeAbsolute, 0x5C, 3},
		{CPU65816, "JSL", ModeAbsolute, 0x22, 3},
		{CPU65816, "RTL", ModeImplied, 0x6B, 1},
		{CPU65816, "PHB", ModeImplied, 0x8B, 1}, {CPU65816, "PLB", ModeImplied, 0xAB, 1},
		{CPU65816, "PHD", ModeImplied, 0x0B, 1}, {CPU65816, "PLD", ModeImplied, 0x2B, 1},
		{CPU65816, "PHK", ModeImplied, 0x4B, 1},
		{CPU65816, "TCD", ModeImplied, 0x5B, 1}, {CPU65816, "TDC", ModeImplied, 0x7B, 1},
		{CPU65816, "TCS", ModeImplied, 0x1B, 1}, {CPU65816, "TSC", ModeImplied, 0x3B, 1},
		{CPU65816, "XBA", ModeImplied, 0xEB, 1}, {CPU65816, "XCE", ModeImplied, 0xFB, 1},
		{CPU65816, "WDM", ModeImmediate, 0x42, 2},
	}
}

var (
	byMnemonic map[string][]Instruction
	byOpcode   map[CPU]map[byte]Instruction
)

func buildIndices() {
	byMnemonic = make(map[string][]Instruction)
	byOpcode = make(map[CPU]map[byte]Instruction)
	for _, cpu := range []CPU{CPU6502, CPU65SC02, CPU65C02, CPU45GS02, CPU65816} {
		byOpcode[cpu] = make(map[byte]Instruction)
	}
	for _, in := range instructionTable {
		byMnemonic[in.Mnemonic] = append(byMnemonic[in.Mnemonic], in)
		for _, cpu := range []CPU{CPU6502, CPU65SC02, CPU65C02, CPU45GS02, CPU65816} {
			if in.runsOn(cpu) {
				// First (shortest-length) definition for a given opcode wins,
				// matching the lowest encoding length preference used when
				// narrowing addressing modes.
				if existing, ok := byOpcode[cpu][in.Opcode]; !ok || in.Length < existing.Length {
					byOpcode[cpu][in.Opcode] = in
				}
			}
		}
	}
}

// CandidatesForMnemonic returns every addressing-mode variant of mnemonic
// available on cpu.
func CandidatesForMnemonic(cpu CPU, mnemonic string) []Instruction {
	var out []Instruction
	for _, in := range byMnemonic[mnemonic] {
		if in.runsOn(cpu) {
			out = append(out, in)
		}
	}
	return out
}

// FindExact returns the instruction table entry for an exact
// (cpu, mnemonic, mode) triple.
func FindExact(cpu CPU, mnemonic string, mode AddrMode) (Instruction, bool) {
	for _, in := range byMnemonic[mnemonic] {
		if in.runsOn(cpu) && in.Mode == mode {
			return in, true
		}
	}
	return Instruction{}, false
}

// DecodeLength looks up the byte length of the instruction beginning with
// opcode on cpu. It is the instruction table's inverse (opcode ->
// mnemonic/length) index, used by the `-x` listing-stripping preprocessor
// to know how many hex byte columns belong to one source line.
func DecodeLength(cpu CPU, opcode byte) (mnemonic string, length int, ok bool) {
	in, found := byOpcode[cpu][opcode]
	if !found {
		return "", 1, false
	}
	return in.Mnemonic, in.Length, true
}

func isBranchMnemonic(m string) bool {
	_, ok := branchMnemonics[m]
	return ok
}
