package walk

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/minio/highwayhash"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// MaxReadBytes caps how much of a single file is loaded for analysis.
const MaxReadBytes = 8 << 20

const sniffLen = 8 << 10

// ErrBinary is returned by ReadText for files that look like binary data.
var ErrBinary = errors.New("binary content")

var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// ReadText loads a source file as text. A byte-order mark selects the decoder
// and invalid UTF-8 sequences are replaced, so any text file yields a string.
func ReadText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	raw, err := io.ReadAll(io.LimitReader(f, MaxReadBytes))
	if err != nil {
		return "", err
	}
	return DecodeText(raw)
}

// DecodeText converts raw bytes to a string following the same rules as ReadText.
func DecodeText(raw []byte) (string, error) {
	if IsBinary(raw) {
		return "", ErrBinary
	}
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		// fall back to the lossy path below
		decoded = raw
	}
	return strings.ToValidUTF8(string(decoded), "�"), nil
}

// IsBinary reports whether the leading bytes contain a NUL. UTF-16 text
// carrying a BOM is not binary.
func IsBinary(raw []byte) bool {
	if bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) || bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
		return false
	}
	head := raw
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.IndexByte(head, 0) >= 0
}

// Hash returns a 64-bit content fingerprint used for duplicate detection.
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
