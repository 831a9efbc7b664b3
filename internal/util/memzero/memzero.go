package memzero

import "crypto/subtle"

// Zero overwrites b in place so key material does not linger after use.
func Zero(b []byte) {
	if len(b) == 0 {
		return
	}
	subtle.ConstantTimeCopy(1, b, make([]byte, len(b)))
}
