package docstore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospital-onboarding/internal/common/apperr"
	"hospital-onboarding/internal/common/logger"
)

func TestSaveComputesChecksum(t *testing.T) {
	store := New(t.TempDir(), 1, logger.NewTestLogger(t))
	content := []byte("operating license scan")

	res, err := store.Save("app-1", "license.pdf", bytes.NewReader(content))
	require.NoError(t, err)

	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.Checksum)
	assert.Equal(t, int64(len(content)), res.SizeBytes)

	stored, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, content, stored)
}

func TestSaveRejectsOversizedFile(t *testing.T) {
	store := New(t.TempDir(), 1, logger.NewTestLogger(t))
	big := strings.NewReader(strings.Repeat("x", 1024*1024+1))

	res, err := store.Save("app-1", "huge.bin", big)

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSaveStripsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store := New(dir, 1, logger.NewTestLogger(t))

	res, err := store.Save("app-1", "../../etc/passwd", bytes.NewReader([]byte("data")))
	require.NoError(t, err)
	assert.Contains(t, res.Path, dir)
	assert.NotContains(t, res.Path, "..")
}

func TestDeleteMissingFileIsNoError(t *testing.T) {
	store := New(t.TempDir(), 1, logger.NewTestLogger(t))
	assert.NoError(t, store.Delete("/nonexistent/file.pdf"))
}

func TestSaveRenderedRoundTrip(t *testing.T) {
	store := New(t.TempDir(), 1, logger.NewTestLogger(t))

	res, err := store.SaveRendered("contracts", "CON-2026-08-000001.html", []byte("<html>contract</html>"))
	require.NoError(t, err)

	stored, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, "<html>contract</html>", string(stored))
}
