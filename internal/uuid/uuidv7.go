// Package uuid generates time-ordered UUIDv7 identifiers for database
// primary keys.
package uuid

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New generates a UUIDv7 from the current timestamp per RFC 4122:
// 48 bits of Unix milliseconds, 4 version bits (0111), 12 random bits,
// 2 variant bits (10), and 62 random bits. Time ordering keeps index
// pages warm when used as a primary key.
func New() string {
	var id [16]byte

	ms := uint64(time.Now().UnixMilli())
	binary.BigEndian.PutUint64(id[0:8], ms<<16)

	if _, err := rand.Read(id[6:]); err != nil {
		// Random source failure: fall back to a standard UUIDv4.
		return googleuuid.New().String()
	}

	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return format(id)
}

func format(id [16]byte) string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x",
		binary.BigEndian.Uint32(id[0:4]),
		binary.BigEndian.Uint16(id[4:6]),
		binary.BigEndian.Uint16(id[6:8]),
		binary.BigEndian.Uint16(id[8:10]),
		id[10:16],
	)
}

// Parse validates and canonicalizes a UUID string.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid reports whether s is a well-formed UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
