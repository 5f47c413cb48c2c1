package nowpayments

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
)

// VerifySignature reports whether sig matches the hex HMAC-SHA512 of body
// under secret, as sent in the x-nowpayments-sig IPN header. The comparison
// is constant-time.
func VerifySignature(secret string, body []byte, sig string) bool {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(sig))
}
