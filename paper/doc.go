// Package paper implements the Dropbox Paper paper/docs routes.
//
// Every route decodes failures into the closed error union Dropbox documents
// for it and returns them as *Error:
//
//	err := client.Archive(ctx, docID)
//	if e, ok := paper.EndpointError[paper.DocLookupError](err); ok && e == paper.DocNotFound {
//		// ...
//	}
//
// Continue routes nest a PaperAPICursorError under their cursor_error
// variant. CursorErrorOf reaches it for any of them.
package paper
