package impl_transfer

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// HashExecuteTransferInput fingerprints the request so a reused idempotency
// key with a different payload can be told apart from a retry.
func HashExecuteTransferInput(sourceAccountID, destinationAccountID string, amount decimal.Decimal) string {
	src := strings.TrimSpace(sourceAccountID)
	dst := strings.TrimSpace(destinationAccountID)

	payload := fmt.Sprintf("%s|%s|%s", src, dst, amount.String())

	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
