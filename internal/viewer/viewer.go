// Package viewer resolves citation links into displayable documents.
package viewer

import (
	"context"
	"errors"

	"lexi-backend/internal/model"
)

var ErrDocumentNotFound = errors.New("document not found")

// Viewer opens the document behind a citation link. A non-nil paragraph
// asks the viewer to mark that paragraph; an anchor the document does not
// have is not an error.
type Viewer interface {
	Open(ctx context.Context, link string, paragraph *int) (*model.Document, error)
}
