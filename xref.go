package xasm

import (
	"fmt"
	"sort"
	"strings"
)

// WriteCrossReference renders the cross-reference report: a per-symbol
// listing of its definition site and every use site, tagged by addressing
// mode, the "Cross-reference table" component named in spec §2.
func WriteCrossReference(a *Assembler) string {
	var b strings.Builder
	syms := append([]*Symbol(nil), a.syms.All()...)
	sort.Slice(syms, func(i, j int) bool { return syms[i].Name < syms[j].Name })
	for _, s := range syms {
		fmt.Fprintf(&b, "%-24s ", s.Name)
		if s.Address == Undefined {
			b.WriteString("UNDEFINED")
		} else {
			fmt.Fprintf(&b, "$%04X", s.Address)
		}
		for _, r := range s.Refs {
			fmt.Fprintf(&b, "  %d(%s)", r.Line, r.Tag)
		}
		b.WriteString("\n")
	}
	return b.String()
}
