package dropbox

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// EncodeArg serializes arg as the value of the Dropbox-API-Arg header.
//
// The value is JSON text. Runes outside printable ASCII are written as \uXXXX
// escapes, which keeps the header transport-safe while decoding to the same
// string on the server.
func EncodeArg(arg any) (string, error) {
	raw, err := json.Marshal(arg)
	if err != nil {
		return "", err
	}
	return headerSafeJSON(raw), nil
}

// DecodeArg parses a Dropbox-API-Arg or Dropbox-API-Result header value into out.
func DecodeArg(value string, out any) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("empty header value")
	}
	return json.Unmarshal([]byte(value), out)
}

func headerSafeJSON(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	for len(raw) > 0 {
		r, size := utf8.DecodeRune(raw)
		raw = raw[size:]
		if r < 0x7f {
			b.WriteRune(r)
			continue
		}
		if r1, r2 := utf16.EncodeRune(r); r1 != utf8.RuneError {
			fmt.Fprintf(&b, `\u%04x\u%04x`, r1, r2)
			continue
		}
		fmt.Fprintf(&b, `\u%04x`, r)
	}
	return b.String()
}
