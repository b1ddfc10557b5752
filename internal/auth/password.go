package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// Password hashes use the passlib pbkdf2_sha256 format so hashes migrated
// from the previous system keep verifying:
//
//	$pbkdf2-sha256$<rounds>$<salt>$<checksum>
//
// Salt and checksum are base64 with '+' replaced by '.' and no padding
// (passlib's "adapted base64").

const (
	pbkdf2Rounds  = 29000
	pbkdf2SaltLen = 16
	pbkdf2KeyLen  = 32
)

var ab64 = base64.RawStdEncoding

func ab64Encode(b []byte) string {
	return strings.ReplaceAll(ab64.EncodeToString(b), "+", ".")
}

func ab64Decode(s string) ([]byte, error) {
	return ab64.DecodeString(strings.ReplaceAll(s, ".", "+"))
}

// HashPassword derives a PBKDF2-HMAC-SHA256 hash with a random salt
func HashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Rounds, pbkdf2KeyLen, sha256.New)
	return fmt.Sprintf("$pbkdf2-sha256$%d$%s$%s", pbkdf2Rounds, ab64Encode(salt), ab64Encode(key)), nil
}

// VerifyPassword checks password against a stored hash. Malformed hashes
// verify as false rather than erroring, matching login's generic failure.
func VerifyPassword(password, hashed string) bool {
	parts := strings.Split(hashed, "$")
	if len(parts) != 5 || parts[0] != "" || parts[1] != "pbkdf2-sha256" {
		return false
	}

	rounds, err := strconv.Atoi(parts[2])
	if err != nil || rounds <= 0 {
		return false
	}

	salt, err := ab64Decode(parts[3])
	if err != nil {
		return false
	}

	want, err := ab64Decode(parts[4])
	if err != nil || len(want) == 0 {
		return false
	}

	got := pbkdf2.Key([]byte(password), salt, rounds, len(want), sha256.New)
	return hmac.Equal(got, want)
}
