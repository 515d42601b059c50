package postgres

import (
	"crypto/md5"
	"encoding/hex"
)

// md5AuthResponse implements spec §4.2's MD5 algorithm:
// "md5" || hex(md5(hex(md5(password || user)) || salt)).
func md5AuthResponse(user, password string, salt []byte) string {
	inner := md5Hex(password + user)
	outer := md5Hex(inner + string(salt))
	return "md5" + outer
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
