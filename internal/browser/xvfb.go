package browser

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// xvfbScreen is the virtual screen geometry headful Chrome renders into.
const xvfbScreen = "1920x1080x24"

// startXvfb launches the virtual display for headful mode and waits for
// its X socket to appear so Chrome never races the server.
func (m *Manager) startXvfb() error {
	if m.xvfb != nil {
		return nil // already running
	}

	display := m.cfg.XvfbDisplay
	cmd := exec.Command("Xvfb", display, "-screen", "0", xvfbScreen, "-ac")
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start xvfb: %w", err)
	}
	m.xvfb = cmd

	if err := waitForDisplay(display, 3*time.Second); err != nil {
		m.cfg.Logger.Warn("browser: xvfb socket not confirmed", "display", display, "error", err)
	}

	m.cfg.Logger.Info("browser: xvfb started", "display", display, "pid", cmd.Process.Pid)
	return nil
}

// waitForDisplay polls for the display's X socket. X servers create
// /tmp/.X11-unix/X<n> for display :<n> once they accept connections.
func waitForDisplay(display string, timeout time.Duration) error {
	socket := "/tmp/.X11-unix/X" + strings.TrimPrefix(display, ":")
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(socket); err == nil {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("socket %s not ready after %s", socket, timeout)
}

// stopXvfb kills the Xvfb process if one was started.
func (m *Manager) stopXvfb() {
	if m.xvfb == nil {
		return
	}
	if m.xvfb.Process != nil {
		m.xvfb.Process.Kill()
		m.xvfb.Wait()
	}
	m.cfg.Logger.Info("browser: xvfb stopped")
	m.xvfb = nil
}
