// Package crypto exposes the primitives nostrdm builds on.
//
// Contents
//
//   - secp256k1 key generation and schnorr signing/verification over event
//     digests (GenerateKeypair, Sign, Verify)
//   - the hex/bech32 key codec with automatic detection (ParseKey,
//     EncodeKey and the kind-checked ParsePublicKey/ParsePrivateKey)
//   - conversation-key derivation (ECDH + HKDF-SHA256) and authenticated
//     payload encryption for seals and gift wraps (ConversationKey,
//     Encrypt, Decrypt)
//
// # Notes
//
// Keys cross package boundaries as the fixed-size array types defined in
// internal/domain. Callers should wipe derived secrets with memzero.Zero
// when they fall out of scope.
package crypto
