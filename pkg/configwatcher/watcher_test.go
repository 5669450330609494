package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sankalp_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
server:
  mode: debug
jwt:
  secret: watcher-secret
rate_limit:
  max_requests: %d
`

func writeYAML(t *testing.T, path string, n int) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(baseYAML, n)), 0o644))
}

func TestWatchConfigReloadsOnWrite(t *testing.T) {
	Debounce = 50 * time.Millisecond
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	writeYAML(t, file, 100)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, file, func(cfg *config.Config) { reloaded <- cfg })
	}()

	// 给 watcher 注册目录的时间
	time.Sleep(100 * time.Millisecond)
	writeYAML(t, file, 42)

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 42, cfg.RateLimit.MaxRequests)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	assert.NoError(t, <-done)
}
