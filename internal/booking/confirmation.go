package booking

import (
	"fmt"
	"math/rand/v2"
)

// NewConfirmationCode returns a short URL-safe token identifying a
// reservation: a random integer below one million rendered as hex,
// zero-padded to at least four characters.  The code is a human
// reference, not a secret; collision handling is out of scope.
func NewConfirmationCode() string {
	return fmt.Sprintf("%04x", rand.IntN(1000000))
}
