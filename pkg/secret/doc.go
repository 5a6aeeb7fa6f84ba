// Package secret keeps the server password as a salted Argon2id digest.
//
// The plaintext password is read from configuration once, digested and
// dropped. AUTH attempts are digested with the same salt and compared in
// constant time.
//
// Security:
//
//   - Uses crypto/rand for the salt
//   - Argon2id key derivation with a small memory cost, since it runs on
//     every AUTH
//   - Constant-time comparison of digests
package secret
