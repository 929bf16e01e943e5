//go:build windows

package mpv

import (
	"os/exec"
	"syscall"
	"time"

	"github.com/Microsoft/go-winio"
)

// endpointReady probes the named pipe with a short dial.
func endpointReady(e *ipcEndpoint) bool {
	timeout := 200 * time.Millisecond
	conn, err := winio.DialPipe(e.address, &timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// detachProcess puts mpv in its own process group so the console's
// Ctrl+C handler cannot reach it and corrupt the TUI.
func detachProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP,
	}
}
