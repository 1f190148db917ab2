package docs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ggoodman/contracts/docs"
	"github.com/stretchr/testify/require"
)

func TestWatchFileReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".contractdoc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title: a\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- docs.WatchFile(ctx, path, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// The watch is installed asynchronously; keep writing until it notices.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("title: b\n"), 0o600)
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 5*time.Second, 3*docs.WatchDebounce)

	// Let any trailing burst settle before watching for silence.
	time.Sleep(3 * docs.WatchDebounce)
	select {
	case <-changed:
	default:
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))
	require.Never(t, func() bool {
		select {
		case <-changed:
			return true
		default:
			return false
		}
	}, 4*docs.WatchDebounce, docs.WatchDebounce/4)

	cancel()
	require.NoError(t, <-done)
}

func TestWatchFileMissingDirectory(t *testing.T) {
	err := docs.WatchFile(context.Background(), filepath.Join(t.TempDir(), "nope", "cfg.yaml"), func() {})
	require.ErrorContains(t, err, "watch ")
}
