package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// StateSigner produces OAuth state values of the form "<nonce>.<hmac>".
// The nonce also goes into a short-lived cookie, so the callback can check
// that the state came from this browser and from this server.
type StateSigner struct {
	secret []byte
}

// NewStateSigner creates a signer keyed with secret
func NewStateSigner(secret string) *StateSigner {
	return &StateSigner{secret: []byte(secret)}
}

func (s *StateSigner) mac(nonce string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(nonce))
	return hex.EncodeToString(mac.Sum(nil))
}

// New returns a fresh nonce and the state value that carries it
func (s *StateSigner) New() (nonce, state string) {
	nonce = uuid.NewString()
	return nonce, nonce + "." + s.mac(nonce)
}

// Verify reports whether state was signed by us for nonce
func (s *StateSigner) Verify(nonce, state string) bool {
	if nonce == "" || state == "" {
		return false
	}
	gotNonce, sig, ok := strings.Cut(state, ".")
	if !ok || gotNonce != nonce {
		return false
	}
	return hmac.Equal([]byte(sig), []byte(s.mac(nonce)))
}
