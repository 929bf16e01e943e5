package mpv

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ipcEndpoint is where a freshly launched mpv exposes its JSON IPC:
// a Unix socket path, or a named pipe on Windows.
type ipcEndpoint struct {
	address string
	socket  bool
}

func newIPCEndpoint() (*ipcEndpoint, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generate ipc endpoint: %w", err)
	}
	suffix := hex.EncodeToString(b)

	if runtime.GOOS == "windows" {
		return &ipcEndpoint{
			address: fmt.Sprintf(`\\.\pipe\teleview-mpv-%s`, suffix),
		}, nil
	}
	return &ipcEndpoint{
		address: filepath.Join(os.TempDir(), fmt.Sprintf("teleview-mpv-%s.sock", suffix)),
		socket:  true,
	}, nil
}

// arg returns the mpv flag that binds the IPC server to this endpoint.
func (e *ipcEndpoint) arg() string {
	return "--input-ipc-server=" + e.address
}

// cleanup removes the socket file once the player is gone.
func (e *ipcEndpoint) cleanup() {
	if e.socket {
		_ = os.Remove(e.address)
	}
}

func executableName() string {
	if runtime.GOOS == "windows" {
		return "mpv.exe"
	}
	return "mpv"
}
