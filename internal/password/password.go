package password

import "golang.org/x/crypto/bcrypt"

// Cost matches the original deployment (bcrypt work factor 10).
const Cost = 10

// Hash computes a salted bcrypt digest of the plaintext. The digest
// embeds its own salt, so hashing the same input twice yields
// different digests that both verify.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether digest was produced from plain. A mismatch is
// not an error condition: it returns false.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
