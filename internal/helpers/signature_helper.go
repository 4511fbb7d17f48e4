package helpers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// SignSale produces the HMAC signature embedded in a ticket QR payload.
// The secret is the server's JWT secret, so a QR can only be minted and
// verified by this service.
func SignSale(saleID, eventID uint, reference uuid.UUID, secret string) string {
	data := fmt.Sprintf("%d:%d:%s", saleID, eventID, reference.String())
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func VerifySaleSignature(saleID, eventID uint, reference uuid.UUID, secret, signature string) bool {
	expected := SignSale(saleID, eventID, reference, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
