package xasm

import "strings"

// qualifyIdentifier expands a raw identifier into its fully qualified
// symbol-table name given the active module scope, per spec §3's "Scope"
// data model and §4.2's BSO-compatibility note:
//   - `.foo` / `_foo` (local identifiers) become `<scope>.foo` / `<scope>_foo`
//   - `NN$` (all-digit name ending in `$`, the BSO numeric-local
//     convention) becomes `<scope>_NN$`
//   - anything else (an ordinary global symbol) passes through unchanged
func qualifyIdentifier(raw, scope string) string {
	if raw == "" {
		return raw
	}
	if isBSOLocal(raw) {
		if scope == "" {
			return raw
		}
		return scope + "_" + raw
	}
	if raw[0] == '.' || raw[0] == '_' {
		if scope == "" {
			return raw
		}
		return scope + raw
	}
	return raw
}

// isBSOLocal reports whether raw is an all-digit identifier immediately
// followed by `$`, e.g. "10$".
func isBSOLocal(raw string) bool {
	if len(raw) < 2 || raw[len(raw)-1] != '$' {
		return false
	}
	digits := raw[:len(raw)-1]
	if digits == "" {
		return false
	}
	for i := 0; i < len(digits); i++ {
		if !isDigit(digits[i]) {
			return false
		}
	}
	return true
}

// isLocalIdentifier reports whether raw begins with the local-identifier
// marker (`.` or `_`) or is a BSO numeric local, and therefore needs
// scope qualification before it can be looked up or defined.
func isLocalIdentifier(raw string) bool {
	if raw == "" {
		return false
	}
	return raw[0] == '.' || raw[0] == '_' || isBSOLocal(raw)
}

// moduleName validates and normalizes a MODULE directive's name argument.
func moduleName(s string) string {
	return strings.TrimSpace(s)
}
