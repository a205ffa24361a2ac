package util

import (
	"crypto/md5"

	"github.com/google/uuid"
)

// NameUUID returns the version 3 UUID of the MD5 hash of name, without a
// namespace, as used for category and feature ids.
func NameUUID(name string) uuid.UUID {
	h := md5.Sum([]byte(name))
	h[6] = h[6]&0x0f | 0x30
	h[8] = h[8]&0x3f | 0x80
	return uuid.UUID(h)
}
