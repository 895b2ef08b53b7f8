package artifact

import (
	"context"
	"io"
)

// Store persists generated documentation outside the job record. The
// finalize stage uses it when artifact upload is enabled; the job record
// keeps only the resulting URL.
type Store interface {
	// Put uploads an artifact under key and returns its public URL.
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
}
