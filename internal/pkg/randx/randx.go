/*
Package randx provides functions for generating cryptographically secure random numbers
and unique identifiers.

It is primarily used to generate session IDs for accepted IRC connections and the
numeric tokens carried by keep-alive PING lines.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// SessionID generates a standard UUID v4 string to serve as the unique identifier
// for an accepted IRC connection. The session ID, not the nickname, is the
// registry key for the connection's whole lifetime.
func SessionID() string {
	return uuid.New().String()
}

// PingToken generates a single random decimal digit used as the payload of a
// keep-alive PING line, using a cryptographically secure random number generator.
func PingToken() (string, error) {
	num, err := rand.Int(rand.Reader, big.NewInt(10))
	if err != nil {
		return "", fmt.Errorf("failed to generate random number for ping token: %v", err)
	}

	return num.String(), nil
}
