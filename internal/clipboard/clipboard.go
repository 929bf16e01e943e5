// Package clipboard copies stream URLs to the system clipboard so
// users can open a stream in an external player. The primary path is
// the cross-platform clipboard package; when that fails (headless X,
// Wayland, WSL) it falls back to the platform's native utility.
package clipboard

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// Copy writes text to the system clipboard.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	} else {
		slog.Debug("primary clipboard write failed, trying fallback", "error", err)
	}
	return copyWithUtility(text)
}

func copyWithUtility(text string) error {
	cmd, err := utilityCommand()
	if err != nil {
		return err
	}
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("clipboard utility %s failed: %w", cmd.Path, err)
	}
	return nil
}

func utilityCommand() (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("pbcopy"), nil
	case "windows":
		return exec.Command("clip.exe"), nil
	case "linux":
		if isWSL() {
			return exec.Command("clip.exe"), nil
		}
		switch {
		case commandExists("wl-copy"):
			return exec.Command("wl-copy"), nil
		case commandExists("xclip"):
			return exec.Command("xclip", "-selection", "clipboard"), nil
		case commandExists("xsel"):
			return exec.Command("xsel", "--clipboard", "--input"), nil
		}
		return nil, fmt.Errorf("no clipboard tool found (install xclip, xsel, or wl-clipboard)")
	default:
		return nil, fmt.Errorf("clipboard not supported on %s", runtime.GOOS)
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func isWSL() bool {
	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(string(data)), "microsoft")
}
