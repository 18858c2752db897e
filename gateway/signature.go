/*
signature.go - HMAC signing and receipt construction

PURPOSE:
  The provider signs (orderID, paymentID) pairs with a shared secret after
  a successful authorization. We recompute the signature and compare in
  constant time. Also builds the receipt identifiers sent with orders,
  keeping them inside the provider's length limit.
*/
package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// MaxReceiptLen is the provider's receipt length limit.
const MaxReceiptLen = 40

// Sign computes hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares the provided signature against the expected one
// in constant time.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	expected := Sign(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Receipt derives a receipt identifier from a worker id and a timestamp.
// The worker id is truncated so the result always fits MaxReceiptLen.
func Receipt(workerID string, at time.Time) string {
	short := workerID
	if len(short) > 8 {
		short = short[:8]
	}
	r := fmt.Sprintf("wkr_%s_%d", short, at.Unix())
	if len(r) > MaxReceiptLen {
		r = r[:MaxReceiptLen]
	}
	return r
}
