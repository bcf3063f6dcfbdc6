package identity

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// GenerateOTP returns a 6 digit numeric one-time code in [100000, 999999].
func GenerateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// there is no useful recovery path at this layer.
		panic(fmt.Sprintf("identity: otp entropy source failed: %v", err))
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// NewOpaqueSecret returns an unguessable random secret for refresh tokens
// and password reset links.
func NewOpaqueSecret() string {
	return uuid.NewString()
}
