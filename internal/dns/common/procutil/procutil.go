// Package procutil holds process-level helpers for the daemon and its tests:
// ephemeral port allocation, liveness probes and pidfiles.
package procutil

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ErrAlreadyRunning is returned by WritePIDFile when the pidfile names a live process.
var ErrAlreadyRunning = errors.New("process already running")

// FreePort returns a TCP port on the loopback interface that was free at the
// time of the call.
func FreePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("allocate port: %w", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}

// ProcessAlive probes pid with signal 0. Unlike a check that treats every
// signalling error as "gone", EPERM reports true: the process exists but
// belongs to another user, so a pidfile naming it is still held.
func ProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// ReadPIDFile returns the pid stored at path.
func ReadPIDFile(path string) (int, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil {
		return 0, fmt.Errorf("parse pidfile %s: %w", path, err)
	}
	return pid, nil
}

// WritePIDFile records the current process id at path. A stale pidfile is
// replaced; one naming a live process is an ErrAlreadyRunning error.
func WritePIDFile(path string) error {
	if pid, err := ReadPIDFile(path); err == nil && pid != os.Getpid() && ProcessAlive(pid) {
		return fmt.Errorf("%w: pid %d (%s)", ErrAlreadyRunning, pid, path)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644)
}

// RemovePIDFile deletes path when it still names the current process.
func RemovePIDFile(path string) error {
	pid, err := ReadPIDFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if pid != os.Getpid() {
		return nil
	}
	return os.Remove(path)
}
