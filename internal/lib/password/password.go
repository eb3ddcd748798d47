// Package password hashes credentials with bcrypt and generates the
// random secrets handed out by the auth flows.
package password

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// OTPLength is the number of digits in a verification or reset code.
const OTPLength = 6

type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt hasher. Costs outside bcrypt's accepted range
// fall back to bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	return string(hashed), nil
}

// Compare reports whether plain matches the stored bcrypt hash.
func (h *Hasher) Compare(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// Random returns a URL-safe random string built from n random bytes. It is
// used as the unusable password of accounts created through OAuth.
func Random(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, "failed to read random bytes")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// GenerateOTP returns a zero-padded numeric code of OTPLength digits.
func GenerateOTP() (string, error) {
	limit := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", errors.Wrap(err, "failed to generate otp")
	}
	return fmt.Sprintf("%0*d", OTPLength, n.Int64()), nil
}
