package xasm

import "strings"

// CPU identifies one member of the 6502 instruction-set family. Each CPU
// value is a bitmask so an instruction table entry can declare the set of
// CPUs it is valid on with a single OR'd constant.
type CPU uint8

const (
	CPU6502 CPU = 1 << iota
	CPU65SC02
	CPU65C02
	CPU45GS02
	CPU65816
)

// CPU65C02Family is the 65C02 together with the 45GS02 and 65816. The
// instruction tables do not use it: they grant the 65C02 additions (BRA,
// STZ, PHX/PHY/PLX/PLY, TRB/TSB, the RMB/SMB/BBR/BBS bit-branch family)
// through their own `cmos` mask, which also includes the 65SC02.
const CPU65C02Family = CPU65C02 | CPU45GS02 | CPU65816

// CPULongBranch are the CPUs on which out-of-range short branches are
// promoted to a 3-byte long branch by branch optimization (MEGA65 mode).
const CPULongBranch = CPU45GS02

// CPUQRegister are the CPUs that support the Q-register quad instructions.
const CPUQRegister = CPU45GS02

// ParseCPUFlag is the exported form of parseCPU, used by the CLI to
// validate the `-cpu` flag.
func ParseCPUFlag(name string) (CPU, bool) { return parseCPU(name) }

func parseCPU(name string) (CPU, bool) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "6502":
		return CPU6502, true
	case "65SC02":
		return CPU65SC02, true
	case "65C02":
		return CPU65C02, true
	case "45GS02":
		return CPU45GS02, true
	case "65816", "65802":
		return CPU65816, true
	default:
		return 0, false
	}
}

func (c CPU) String() string {
	switch c {
	case CPU6502:
		return "6502"
	case CPU65SC02:
		return "65SC02"
	case CPU65C02:
		return "65C02"
	case CPU45GS02:
		return "45GS02"
	case CPU65816:
		return "65816"
	default:
		return "unknown"
	}
}
