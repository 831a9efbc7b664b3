package domain

import "errors"

// Error taxonomy. Call sites wrap these with context (pkg/errors) so callers
// can branch with errors.Is while logs keep the full chain.
var (
	// ErrInvalidKeyFormat: key text is neither valid hex nor valid bech32.
	ErrInvalidKeyFormat = errors.New("invalid key format")
	// ErrKeyKindMismatch: a public key was supplied where a private key is
	// required, or vice versa.
	ErrKeyKindMismatch = errors.New("key kind mismatch")
	// ErrSigningError: signing was requested of an identity without a
	// private key, or the signer failed.
	ErrSigningError = errors.New("signing error")
	// ErrVerificationFailed: an event id or signature did not verify.
	ErrVerificationFailed = errors.New("event verification failed")
	// ErrNotAddressedToMe: a gift wrap's recipient tag names someone else.
	// Expected during batch recovery; skipped, not reported.
	ErrNotAddressedToMe = errors.New("not addressed to me")
	// ErrDecryptionFailed: a wrap or seal did not decrypt or did not parse.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrRelayUnreachable: a single relay endpoint could not be reached.
	ErrRelayUnreachable = errors.New("relay unreachable")
	// ErrAllRelaysFailed: no endpoint in a required set produced a result.
	ErrAllRelaysFailed = errors.New("all relays failed")
	// ErrPartialFetch: a fetch produced results while part of the relay set
	// failed or part of the batch was skipped. Results accompany the error.
	ErrPartialFetch = errors.New("partial fetch")
	// ErrGroupMismatch: publish groups do not line up with events under the
	// one-to-one policy.
	ErrGroupMismatch = errors.New("relay group count does not match event count")
	// ErrMalformedInput: input JSON or text did not parse.
	ErrMalformedInput = errors.New("malformed input")
	// ErrStorageConflict: a history record exists under the same key with
	// different content.
	ErrStorageConflict = errors.New("storage write conflict")
)
