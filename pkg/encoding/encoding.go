// Package encoding decodes object, group and material names exported by
// tools that do not write UTF-8.
package encoding

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for encoding names this package does not know.
var ErrUnknownEncoding = errors.New("unknown encoding")

// Lookup returns the decoder source for a name. An empty name and "utf-8"
// return nil, meaning no conversion.
func Lookup(name string) (xenc.Encoding, error) {
	switch strings.ToLower(strings.ReplaceAll(name, "_", "-")) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "euc-kr", "cp949":
		return korean.EUCKR, nil
	case "shift-jis", "sjis":
		return japanese.ShiftJIS, nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// DecodeName converts s from the named encoding to UTF-8.
// Strings that are already valid UTF-8 multi-byte text are returned as-is
// when the source encoding cannot be applied.
func DecodeName(s, enc string) (string, error) {
	e, err := Lookup(enc)
	if err != nil {
		return "", err
	}
	if e == nil {
		return s, nil
	}
	out, _, err := transform.String(e.NewDecoder(), s)
	if err != nil {
		if utf8.ValidString(s) {
			return s, nil
		}
		return "", fmt.Errorf("decoding %q as %s: %w", s, enc, err)
	}
	return out, nil
}

// EUCKRToUTF8 converts EUC-KR encoded bytes to UTF-8 string.
// Returns the original string if conversion fails.
func EUCKRToUTF8(data []byte) string {
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// EncodeName converts a UTF-8 name to the named encoding.
func EncodeName(s, enc string) ([]byte, error) {
	e, err := Lookup(enc)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return []byte(s), nil
	}
	out, _, err := transform.Bytes(e.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %q as %s: %w", s, enc, err)
	}
	return out, nil
}
