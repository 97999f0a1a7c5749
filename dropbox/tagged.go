package dropbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ParseTag extracts the variant name of a Dropbox union value. Void members may
// be sent either as a bare string ("doc_not_found") or as an object
// ({".tag": "doc_not_found"}); both forms are accepted.
func ParseTag(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return "", errors.New("empty union value")
	}

	if data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return "", err
		}
		if tag == "" {
			return "", errors.New("empty union tag")
		}
		return tag, nil
	}

	var tagged struct {
		Tag string `json:".tag"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return "", err
	}
	if tagged.Tag == "" {
		return "", fmt.Errorf("union value has no .tag: %s", data)
	}
	return tagged.Tag, nil
}

// Empty is the result type of routes that return no payload. It accepts an
// empty body, null, or any JSON value.
type Empty struct{}

func (*Empty) UnmarshalJSON([]byte) error { return nil }

func (Empty) acceptsEmptyBody() {}

// NoError is the error type of routes whose contract has no error union.
// It decodes from any JSON value so that the envelope can still be built; an
// endpoint returning one is reported through Infallible as a contract violation.
type NoError struct{}

func (*NoError) UnmarshalJSON([]byte) error { return nil }

// emptyBodyAcceptor is implemented by result types that allow a 2xx response
// with no body at all.
type emptyBodyAcceptor interface {
	acceptsEmptyBody()
}
