package ssh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfassina/scribe/internal/config"
)

func TestNewCreatesHostKey(t *testing.T) {
	cfg := config.Default()
	cfg.CacheDir = t.TempDir()
	cfg.Listen = "127.0.0.1:0"

	s, err := New(cfg, nil)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(filepath.Join(cfg.CacheDir, HostKeyFile))
	assert.NoError(t, err)
}
