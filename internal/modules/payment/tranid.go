package payment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewTransactionID returns "{userID}_{32 hex chars}". The random half
// carries 128 bits of entropy, so ids are practically unique without any
// coordination; an insert-time collision surfaces as a uniqueness
// conflict and the caller retries with a fresh id. The user id prefix is
// what lets an unauthenticated gateway callback be correlated back to
// its owner.
func NewTransactionID(userID int64) string {
	token := strings.ReplaceAll(uuid.New().String(), "-", "")
	return fmt.Sprintf("%d_%s", userID, token)
}

// SplitTransactionID recovers the owning user id from a transaction id.
// The split is on the first separator only; the random half is opaque.
func SplitTransactionID(tranID string) (int64, error) {
	if tranID == "" {
		return 0, ErrBadTransactionID
	}
	parts := strings.SplitN(tranID, "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return 0, ErrBadTransactionID
	}
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || userID <= 0 {
		return 0, ErrBadTransactionID
	}
	return userID, nil
}
