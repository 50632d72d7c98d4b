package table

import (
	"encoding/binary"
	"errors"
	"strings"
)

// Column width limits, in usable bytes. Each field is stored one byte
// wider than its usable width: the extra byte is always zero and keeps
// the on-disk row compatible with a C-style null-terminated string even
// though Go never relies on the terminator to find the string's end.
const (
	UsernameMaxLength = 32
	EmailMaxLength    = 255

	idSize       = 4
	usernameSize = UsernameMaxLength + 1
	emailSize    = EmailMaxLength + 1

	idOffset       = 0
	usernameOffset = idOffset + idSize
	emailOffset    = usernameOffset + usernameSize

	// RowSize is the fixed serialized width of a row: 4 + 33 + 256.
	RowSize = emailOffset + emailSize
)

// ErrStringTooLong is returned when username or email exceeds its
// usable-byte cap.
var ErrStringTooLong = errors.New("String is too long.")

// ErrIDNotPositive is returned for a zero or negative id.
var ErrIDNotPositive = errors.New("ID must be positive.")

// Row is a single record of the store's fixed three-column schema.
type Row struct {
	ID       uint32
	Username string
	Email    string
}

// Validate checks the username and email length caps the REPL's
// statement parser must enforce before a row ever reaches the tree.
// It does not check the id; the parser rejects a non-positive id itself.
func (r Row) Validate() error {
	if len(r.Username) > UsernameMaxLength || len(r.Email) > EmailMaxLength {
		return ErrStringTooLong
	}
	return nil
}

// Serialize writes r into dst, which must be exactly RowSize bytes.
func Serialize(r Row, dst []byte) {
	_ = dst[RowSize-1] // bounds check hint

	for i := range dst {
		dst[i] = 0
	}
	binary.LittleEndian.PutUint32(dst[idOffset:idOffset+idSize], r.ID)
	copy(dst[usernameOffset:usernameOffset+UsernameMaxLength], r.Username)
	copy(dst[emailOffset:emailOffset+EmailMaxLength], r.Email)
}

// Deserialize reads a Row out of src, which must be exactly RowSize
// bytes (as produced by Serialize).
func Deserialize(src []byte) Row {
	_ = src[RowSize-1]

	id := binary.LittleEndian.Uint32(src[idOffset : idOffset+idSize])
	username := trimZero(src[usernameOffset : usernameOffset+UsernameMaxLength])
	email := trimZero(src[emailOffset : emailOffset+EmailMaxLength])
	return Row{ID: id, Username: username, Email: email}
}

func trimZero(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}
