package source

import "golang.org/x/text/unicode/norm"

// NormalizeName brings an identifier to NFC so index lookups are stable
// regardless of how the editor encoded composed characters.
func NormalizeName(name string) string {
	if norm.NFC.IsNormalString(name) {
		return name
	}
	return norm.NFC.String(name)
}
