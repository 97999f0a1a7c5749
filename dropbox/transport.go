package dropbox

import (
	"context"
	"io"
)

// RPC calls an RPC-style route: arg is sent as the JSON request body and the
// JSON response body is decoded as T, or as E on a non-2xx status.
// A nil arg is sent as JSON null, which Dropbox accepts for routes without arguments.
func RPC[T, E any](ctx context.Context, c *Client, route string, arg any) (Envelope[T, E], error) {
	req, err := c.newRequest(ctx, styleRPC, route, arg, nil)
	if err != nil {
		return Envelope[T, E]{}, err
	}
	resp, err := c.send(req, styleRPC, route)
	if err != nil {
		return Envelope[T, E]{}, err
	}
	return DecodeRPC[T, E](resp)
}

// Upload calls a content-upload route: content is streamed as the request
// body and arg travels in the Dropbox-API-Arg header.
func Upload[T, E any](ctx context.Context, c *Client, route string, arg any, content io.Reader) (Envelope[T, E], error) {
	req, err := c.newRequest(ctx, styleUpload, route, arg, content)
	if err != nil {
		return Envelope[T, E]{}, err
	}
	resp, err := c.send(req, styleUpload, route)
	if err != nil {
		return Envelope[T, E]{}, err
	}
	return DecodeRPC[T, E](resp)
}

// Download calls a content-download route. The result metadata is read from
// the Dropbox-API-Result header and the content is returned unread.
func Download[T, E any](ctx context.Context, c *Client, route string, arg any) (ContentEnvelope[T, E], error) {
	req, err := c.newRequest(ctx, styleDownload, route, arg, nil)
	if err != nil {
		return ContentEnvelope[T, E]{}, err
	}
	resp, err := c.send(req, styleDownload, route)
	if err != nil {
		return ContentEnvelope[T, E]{}, err
	}
	return DecodeContent[T, E](resp)
}
