package walker

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// fallbackEncodings are tried in order when content is not valid UTF-8
var fallbackEncodings = []encoding.Encoding{
	charmap.ISO8859_1,
	charmap.Windows1252,
	unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
}

// ReadText reads a file as text: UTF-8 first, then latin-1, cp1252 and utf-16.
// Latin-1 accepts any byte sequence, so in practice the later fallbacks only
// matter if the order is ever reconfigured; the chain mirrors the decode
// behavior the analyzers were written against.
func ReadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	for _, enc := range fallbackEncodings {
		decoded, err := enc.NewDecoder().Bytes(data)
		if err == nil {
			return string(decoded), nil
		}
	}
	return "", fmt.Errorf("failed to decode %s with any supported encoding", path)
}
