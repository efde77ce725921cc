package xasm

import (
	"fmt"
	"os"
)

// WriteStores writes every `.STORE` region recorded during the final
// pass to its own file, optionally prefixed by a little-endian load
// address when `.LOAD` preceded it.
func WriteStores(a *Assembler) error {
	for _, sd := range a.stores {
		if err := os.WriteFile(sd.Filename, storeBytes(a, sd), 0o644); err != nil {
			return fmt.Errorf("writing .STORE output %q: %w", sd.Filename, err)
		}
	}
	return nil
}

func storeBytes(a *Assembler, sd StoreDirective) []byte {
	data := a.image.Slice(sd.Start, sd.Length)
	if !sd.Load {
		return data
	}
	out := make([]byte, 0, len(data)+2)
	out = append(out, byte(sd.Start), byte(sd.Start>>8))
	out = append(out, data...)
	return out
}
