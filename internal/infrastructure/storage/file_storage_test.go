package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
)

func TestLocalFileStore_Save(t *testing.T) {
	tempDir := t.TempDir()
	logger, _ := zap.NewDevelopment()
	fs := NewLocalFileStore(tempDir, logger)
	ctx := context.Background()

	t.Run("saves file under the letter folder", func(t *testing.T) {
		content := "surat masuk scan"

		storedName, size, err := fs.Save(ctx, entity.IncomingRef(42), "scan.pdf", strings.NewReader(content))

		require.NoError(t, err)
		assert.Equal(t, int64(len(content)), size)
		assert.True(t, strings.HasSuffix(storedName, ".pdf"))

		fullPath := filepath.Join(tempDir, "incoming", "42", storedName)
		assert.FileExists(t, fullPath)

		saved, err := os.ReadFile(fullPath)
		require.NoError(t, err)
		assert.Equal(t, content, string(saved))
	})

	t.Run("generated names never collide", func(t *testing.T) {
		first, _, err := fs.Save(ctx, entity.OutgoingRef(7), "draft.docx", strings.NewReader("a"))
		require.NoError(t, err)
		second, _, err := fs.Save(ctx, entity.OutgoingRef(7), "draft.docx", strings.NewReader("b"))
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("original file name never reaches disk", func(t *testing.T) {
		storedName, _, err := fs.Save(ctx, entity.IncomingRef(9), "../escape.pdf", strings.NewReader("x"))

		require.NoError(t, err)
		assert.NotContains(t, storedName, "..")
		assert.FileExists(t, filepath.Join(tempDir, "incoming", "9", storedName))
	})
}

func TestLocalFileStore_Open(t *testing.T) {
	tempDir := t.TempDir()
	logger, _ := zap.NewDevelopment()
	fs := NewLocalFileStore(tempDir, logger)
	ctx := context.Background()

	t.Run("reads back a stored file", func(t *testing.T) {
		storedName, _, err := fs.Save(ctx, entity.IncomingRef(1), "scan.pdf", strings.NewReader("content"))
		require.NoError(t, err)

		r, err := fs.Open(ctx, entity.IncomingRef(1), storedName)
		require.NoError(t, err)
		defer r.Close()

		content, err := io.ReadAll(r)
		require.NoError(t, err)
		assert.Equal(t, "content", string(content))
	})

	t.Run("missing file maps to not found", func(t *testing.T) {
		_, err := fs.Open(ctx, entity.IncomingRef(1), "does-not-exist.pdf")
		assert.ErrorIs(t, err, port.ErrNotFound)
	})

	t.Run("rejects stored name escaping the base directory", func(t *testing.T) {
		_, err := fs.Open(ctx, entity.IncomingRef(1), "../../../etc/passwd")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "escapes base directory")
	})
}
