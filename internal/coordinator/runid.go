package coordinator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// computeRunID derives a stable run id from {seed, players}, per
// spec.md §4.3. Player order is part of the request's identity (it
// fixes turn order), so it is hashed as given rather than sorted:
// two start_run calls only collide, and thus count as the same run
// for the idempotent-restart check, when seed and seating agree
// exactly.
func computeRunID(seed int64, playerIDs []string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d|%s", seed, strings.Join(playerIDs, ","))))
	return "run-" + hex.EncodeToString(sum[:])[:16]
}
