package common

// Hash is a 32-byte cryptographic digest.
type Hash [32]byte

// Key is a 256-bit key addressing a slot in an authenticated index. Keys are
// interpreted as big-endian bit strings; navigation structures consume them
// in 4-bit steps.
type Key [32]byte
