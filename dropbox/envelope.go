package dropbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// Response is the successful outcome of an RPC or upload call.
type Response[T any] struct {
	Body       T
	StatusCode int
	Header     http.Header
}

// ContentResponse is the successful outcome of a download call. Body is the
// metadata decoded from the Dropbox-API-Result header. Content is the unread
// response body; the caller must drain and close it to release the connection.
type ContentResponse[T any] struct {
	Body       T
	Content    io.ReadCloser
	StatusCode int
	Header     http.Header
}

// Close closes the content stream.
func (r *ContentResponse[T]) Close() error {
	if r.Content == nil {
		return nil
	}
	return r.Content.Close()
}

// Envelope holds the decoded outcome of a call. Exactly one of Ok and Err is set.
type Envelope[T, E any] struct {
	Ok  *Response[T]
	Err *APIError[E]
}

// Result collapses the envelope into the usual Go (value, error) pair.
func (e Envelope[T, E]) Result() (*Response[T], error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Ok, nil
}

// ContentEnvelope is the Envelope counterpart for download calls.
type ContentEnvelope[T, E any] struct {
	Ok  *ContentResponse[T]
	Err *APIError[E]
}

// Result collapses the envelope into the usual Go (value, error) pair.
func (e ContentEnvelope[T, E]) Result() (*ContentResponse[T], error) {
	if e.Err != nil {
		return nil, e.Err
	}
	return e.Ok, nil
}

// Infallible unwraps the envelope of a route whose contract has no error
// union. An Err arm means the remote side broke that contract; it is returned
// as a *ContractViolationError that still carries the raw *APIError.
func Infallible[T any](route string, env Envelope[T, NoError], err error) (*Response[T], error) {
	if err != nil {
		return nil, err
	}
	if env.Err != nil {
		return nil, &ContractViolationError{Route: route, Err: env.Err}
	}
	return env.Ok, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// DecodeRPC decodes an RPC or upload response. The body is always consumed and closed.
func DecodeRPC[T, E any](resp *http.Response) (Envelope[T, E], error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope[T, E]{}, &TransportError{Op: "read response body", Err: err}
	}

	if !isSuccess(resp.StatusCode) {
		apiErr, err := decodeAPIError[E](resp.StatusCode, body)
		if err != nil {
			return Envelope[T, E]{}, err
		}
		return Envelope[T, E]{Err: apiErr}, nil
	}

	var out T
	if err := decodeBody(body, &out); err != nil {
		return Envelope[T, E]{}, &DecodeError{Source: "response body", Raw: string(body), Err: err}
	}

	return Envelope[T, E]{Ok: &Response[T]{
		Body:       out,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}}, nil
}

// DecodeContent decodes a download response. On success the body is handed
// back untouched in ContentResponse.Content; on every other path it is closed.
func DecodeContent[T, E any](resp *http.Response) (ContentEnvelope[T, E], error) {
	if !isSuccess(resp.StatusCode) {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return ContentEnvelope[T, E]{}, &TransportError{Op: "read response body", Err: err}
		}
		apiErr, err := decodeAPIError[E](resp.StatusCode, body)
		if err != nil {
			return ContentEnvelope[T, E]{}, err
		}
		return ContentEnvelope[T, E]{Err: apiErr}, nil
	}

	values := resp.Header.Values(ResultHeader)
	if len(values) == 0 {
		resp.Body.Close()
		return ContentEnvelope[T, E]{}, &MissingHeaderError{Header: ResultHeader}
	}

	var out T
	if err := decodeResultHeader(values[0], &out); err != nil {
		resp.Body.Close()
		return ContentEnvelope[T, E]{}, &DecodeError{Source: ResultHeader + " header", Raw: values[0], Err: err}
	}

	return ContentEnvelope[T, E]{Ok: &ContentResponse[T]{
		Body:       out,
		Content:    resp.Body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}}, nil
}

// decodeBody parses a 2xx body into out. An empty or null body is only
// accepted by result types that carry no payload.
func decodeBody(body []byte, out any) error {
	body = bytes.TrimSpace(body)
	if _, ok := out.(emptyBodyAcceptor); ok && (len(body) == 0 || isNull(body)) {
		return nil
	}
	switch {
	case len(body) == 0:
		return errors.New("empty response body")
	case isNull(body):
		return errors.New("null response body")
	}
	return json.Unmarshal(body, out)
}

func decodeResultHeader(value string, out any) error {
	if _, ok := out.(emptyBodyAcceptor); !ok && isNull([]byte(strings.TrimSpace(value))) {
		return errors.New("null header value")
	}
	return DecodeArg(value, out)
}

func isNull(data []byte) bool {
	return bytes.Equal(data, []byte("null"))
}

// errorBody is the wire shape of every Dropbox error response.
type errorBody struct {
	ErrorSummary *string        `json:"error_summary"`
	Error        json.RawMessage `json:"error"`
	UserMessage  *userMessage    `json:"user_message"`
}

// userMessage accepts both a plain string and the localized
// {"locale": "...", "text": "..."} form.
type userMessage struct {
	Text string
}

func (m *userMessage) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &m.Text)
	}
	var localized struct {
		Locale string `json:"locale"`
		Text   string `json:"text"`
	}
	if err := json.Unmarshal(data, &localized); err != nil {
		return err
	}
	m.Text = localized.Text
	return nil
}

func decodeAPIError[E any](status int, body []byte) (*APIError[E], error) {
	raw := string(body)

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return nil, &DecodeError{Source: "error body", Raw: raw, Err: err}
	}
	if eb.ErrorSummary == nil {
		return nil, &DecodeError{Source: "error body", Raw: raw, Err: errors.New("missing error_summary")}
	}
	if len(eb.Error) == 0 {
		return nil, &DecodeError{Source: "error body", Raw: raw, Err: errors.New("missing error")}
	}

	var endpointErr E
	if err := json.Unmarshal(eb.Error, &endpointErr); err != nil {
		return nil, &DecodeError{Source: "error union", Raw: raw, Err: err}
	}

	apiErr := &APIError[E]{
		StatusCode:    status,
		Body:          raw,
		Summary:       *eb.ErrorSummary,
		EndpointError: endpointErr,
	}
	if eb.UserMessage != nil {
		msg := eb.UserMessage.Text
		apiErr.UserMessage = &msg
	}
	return apiErr, nil
}
