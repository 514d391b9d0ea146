package match

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"go.jetify.com/typeid"
)

// tokenBytes gives 64 bits of entropy, enough to make cross-session name
// collisions on a shared host implausible.
const tokenBytes = 8

// NewToken returns the session token used to namespace every resource the
// session creates: URL- and filename-safe, lower-cased, unguessable.
//
// An unreadable entropy source is not a recoverable condition, so this panics
// rather than returning an error.
func NewToken() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("read entropy source: %v", err))
	}
	return strings.ToLower(base64.RawURLEncoding.EncodeToString(b))
}

// NewRunID returns a typed identifier for one match run. It names the log
// directory and the history record, not engine resources (those use the token).
func NewRunID() string {
	id, err := typeid.WithPrefix("match")
	if err != nil {
		// typeid only fails on a broken entropy source; fall back to the token
		// generator, which panics in that case anyway.
		return "match_" + NewToken()
	}
	return id.String()
}
