package ledger

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeName trims surrounding whitespace and converts to Unicode NFC so
// visually identical names typed on different keyboards map to one row.
func normalizeName(what, s string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(s))
	if n == "" {
		return "", errInvalidName(what)
	}
	return n, nil
}
