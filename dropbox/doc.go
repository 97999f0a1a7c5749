// Package dropbox implements the request and response plumbing shared by every
// Dropbox API namespace in this module.
//
// Dropbox exposes three request styles, all issued as authenticated POSTs:
//
//   - RPC: JSON argument in the request body, JSON result in the response body.
//   - Upload: raw bytes in the request body, JSON argument in the Dropbox-API-Arg
//     header, JSON result in the response body.
//   - Download: JSON argument in the Dropbox-API-Arg header, raw bytes in the
//     response body and JSON result in the Dropbox-API-Result header.
//
// Every call decodes into an Envelope. A 2xx status fills the Ok arm with the
// typed result; any other status fills the Err arm with an *APIError carrying the
// endpoint's own error union. Bodies or headers that do not match the documented
// shape are reported as decode errors rather than being defaulted.
//
// # Usage
//
//	client, err := dropbox.New(token, dropbox.WithLogger(logger))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	env, err := dropbox.RPC[ListResult, dropbox.NoError](ctx, client, "paper/docs/list", args)
//
// # Error Handling
//
// Failures fall into distinct kinds that can be matched with errors.Is:
//
//   - ErrInvalidArgument: the argument failed validation, nothing was sent
//   - ErrTransport: URL, serialization or network failure
//   - ErrDecode: a body or header could not be parsed as the expected shape
//   - ErrMissingHeader: a download response carried no Dropbox-API-Result header
//   - ErrContractViolation: an endpoint documented as infallible returned an error
//
// Typed endpoint errors are returned in the Err arm of the envelope and can be
// recovered from any wrapped error with AsAPIError.
package dropbox
