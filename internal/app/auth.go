package app

import (
	"crypto/subtle"
	"errors"
)

var ErrUnauthorized = errors.New("unauthorized")

// TriggerAuth checks the Authorization header of a job trigger against the
// shared secret. With no secret configured every caller is accepted.
type TriggerAuth struct {
	secret string
}

func NewTriggerAuth(secret string) TriggerAuth {
	return TriggerAuth{secret: secret}
}

// Enabled reports whether a secret is configured.
func (a TriggerAuth) Enabled() bool {
	return a.secret != ""
}

// Check expects exactly "Bearer <secret>".
func (a TriggerAuth) Check(authorization string) error {
	if !a.Enabled() {
		return nil
	}
	want := "Bearer " + a.secret
	if subtle.ConstantTimeCompare([]byte(authorization), []byte(want)) != 1 {
		return ErrUnauthorized
	}
	return nil
}
