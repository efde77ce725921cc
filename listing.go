package xasm

import (
	"fmt"
	"sort"
	"strings"
)

// WriteListing renders the listing: one line per emitted instruction or
// data directive (`[LINE] ADDR BYTES SOURCE`, the LINE column present
// only when `-n` requested it), followed by a symbol table sorted by
// address and the zero-page / low-16KiB reference-count tables called
// out in spec §6.
func WriteListing(a *Assembler) string {
	var b strings.Builder
	for _, l := range a.listing {
		if a.opts.IncludeLineNumbers {
			fmt.Fprintf(&b, "%5d  %04X  %-9s  %s\n", l.Line, l.Addr, formatBytes(l.Bytes), l.Text)
		} else {
			fmt.Fprintf(&b, "%04X  %-9s  %s\n", l.Addr, formatBytes(l.Bytes), l.Text)
		}
	}

	b.WriteString("\nSYMBOL TABLE\n")
	syms := append([]*Symbol(nil), a.syms.All()...)
	sort.Slice(syms, func(i, j int) bool { return syms[i].Address < syms[j].Address })
	for _, s := range syms {
		if s.Address == Undefined {
			fmt.Fprintf(&b, "     UNDEF  %s\n", s.Name)
			continue
		}
		fmt.Fprintf(&b, "%04X        %s\n", s.Address, s.Name)
	}

	writeRefCountTable(&b, "ZERO-PAGE REFERENCES", syms, 0, 0x100)
	writeRefCountTable(&b, "LOW 16KiB REFERENCES", syms, 0, 0x4000)

	return b.String()
}

func formatBytes(bytes []byte) string {
	var parts []string
	for _, bv := range bytes {
		parts = append(parts, fmt.Sprintf("%02X", bv))
	}
	return strings.Join(parts, " ")
}

func writeRefCountTable(b *strings.Builder, title string, syms []*Symbol, lo, hi int) {
	fmt.Fprintf(b, "\n%s\n", title)
	for _, s := range syms {
		if s.Address < lo || s.Address >= hi {
			continue
		}
		if len(s.Refs) == 0 {
			continue
		}
		fmt.Fprintf(b, "%04X  %-20s  %d refs\n", s.Address, s.Name, len(s.Refs))
	}
}
