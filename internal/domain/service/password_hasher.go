package service

// PasswordHasher abstracts password hashing and verification. The core only
// ever verifies equality of a hash; the algorithm (bcrypt in production)
// stays an infrastructure detail.
type PasswordHasher interface {
	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Check compares a plaintext password with a hash to see if they match.
	Check(password, hash string) bool
}
