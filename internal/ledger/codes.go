package ledger

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

const (
	referralCodeLength  = 6
	referralCodeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// QRTokenTTL is how long a freshly rotated token stays scannable.
	QRTokenTTL = 24 * time.Hour
)

// NewReferralCode returns a 6-character uppercase alphanumeric code.
// Codes are only unique per restaurant; the caller re-draws on collision.
func NewReferralCode() string {
	buf := make([]byte, referralCodeLength)
	max := big.NewInt(int64(len(referralCodeCharset)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// fall back to a uuid-derived byte rather than return an error.
			buf[i] = referralCodeCharset[uuid.New()[i]%byte(len(referralCodeCharset))]
			continue
		}
		buf[i] = referralCodeCharset[n.Int64()]
	}
	return string(buf)
}

// NewQRToken returns an opaque token and its expiry. The previous token
// becomes invalid the moment the restaurant record is overwritten.
func NewQRToken(now time.Time) (string, time.Time) {
	return uuid.NewString(), now.Add(QRTokenTTL).UTC()
}
