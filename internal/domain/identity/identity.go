// Package identity derives the stable record identity from raw payload fields.
//
// The id is a sha256 over the ordered natural-key tuple
// (Date, Full Name, EntryType, Time, Kiosk Name). Two raw events with
// identical values in these five fields collapse to the same identity;
// that is intentional deduplication, not a collision bug. Hashing the
// natural key keeps the id computable across independent extraction runs
// without any provider-issued primary key.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/batisback/loyverse-daily-sync/internal/domain/model"
)

// keyFields is the ordered tuple the identity is derived from.
var keyFields = []string{ //nolint:gochecknoglobals // fixed natural-key order
	model.KeyDate,
	model.KeyFullName,
	model.KeyEntryType,
	model.KeyTime,
	model.KeyKioskName,
}

// ID returns the 64-char lowercase hex identity for a payload. Absent keys
// contribute the empty string, so the function is total and deterministic
// over any payload.
func ID(payload map[string]string) string {
	parts := make([]string, len(keyFields))
	for i, k := range keyFields {
		parts[i] = payload[k]
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
