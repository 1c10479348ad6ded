package port

import (
	"context"
	"io"

	"github.com/uptpik/amanat/internal/domain/entity"
)

// FileStore persists attachment bytes. Implementations decide the physical
// layout; callers only keep the returned stored name.
type FileStore interface {
	Save(ctx context.Context, ref entity.LetterRef, fileName string, r io.Reader) (storedName string, size int64, err error)
	Open(ctx context.Context, ref entity.LetterRef, storedName string) (io.ReadCloser, error)
}
