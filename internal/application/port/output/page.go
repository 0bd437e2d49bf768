package output

import (
	"context"
	"io"
)

type PageSession interface {
	Document() Document
	WaitLoad(ctx context.Context) error
	io.Closer
}

type PageLoader interface {
	Open(ctx context.Context, pageURL string) (PageSession, error)
}
