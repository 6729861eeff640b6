package user

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/scrypt"
)

// scrypt parameters; records are stored as "<hex(key)>.<hex(salt)>".
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

// dummyRecord is well formed but matches no password. Unknown usernames are
// verified against it so they cost the same key derivation as a wrong password.
var dummyRecord = strings.Repeat("0", 2*scryptKeyLen) + "." + strings.Repeat("0", 2*saltLen)

var deriveKeyFunc = deriveKey

// HashPassword derives a salted scrypt record for pwd.
func HashPassword(pwd string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", errors.Wrap(err, "generating salt")
	}
	hexSalt := hex.EncodeToString(salt)
	key, err := deriveKeyFunc(pwd, hexSalt)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key) + "." + hexSalt, nil
}

// VerifyPassword reports whether pwd matches the record. Malformed records never match.
func VerifyPassword(pwd, record string) bool {
	hexKey, hexSalt, ok := strings.Cut(record, ".")
	if !ok || hexSalt == "" {
		return false
	}
	stored, err := hex.DecodeString(hexKey)
	if err != nil || len(stored) != scryptKeyLen {
		return false
	}
	if _, err := hex.DecodeString(hexSalt); err != nil {
		return false
	}
	key, err := deriveKeyFunc(pwd, hexSalt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(stored, key) == 1
}

// the hex encoded salt is used as is, so records stay compatible with existing hashes.
func deriveKey(pwd, hexSalt string) ([]byte, error) {
	key, err := scrypt.Key([]byte(pwd), []byte(hexSalt), scryptN, scryptR, scryptP, scryptKeyLen)
	return key, errors.Wrap(err, "deriving scrypt key")
}
