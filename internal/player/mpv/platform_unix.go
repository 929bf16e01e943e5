//go:build !windows

package mpv

import (
	"os"
	"os/exec"
)

// endpointReady reports whether the IPC endpoint accepts connections.
// On Unix the socket file appearing is the signal.
func endpointReady(e *ipcEndpoint) bool {
	_, err := os.Stat(e.address)
	return err == nil
}

// detachProcess is a no-op on Unix.
func detachProcess(cmd *exec.Cmd) {}
