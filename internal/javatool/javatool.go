// Package javatool runs the command line interfaces of Java based
// proteomics tools as subprocesses
package javatool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/pbnjay/memory"
	log "github.com/sirupsen/logrus"
)

// Bounds for the default Java heap size in MiB
const (
	minHeapMB     = 1024
	maxHeapMB     = 64 * 1024
	defaultHeapMB = 4096
)

// ErrMissingOutput means a tool exited successfully but did not produce
// the expected output
var ErrMissingOutput = errors.New("expected output missing")

// ExitError is returned when a tool exits with a non-zero status
type ExitError struct {
	Step string // Pipeline step that ran the tool
	Code int    // Exit code of the java process
	Log  string // File holding the output of the tool
}

func (e *ExitError) Error() string {
	if e.Log == "" {
		return fmt.Sprintf("%s: exit status %d", e.Step, e.Code)
	}
	return fmt.Sprintf("%s: exit status %d, see %s", e.Step, e.Code, e.Log)
}

// Tool describes one main class in a jar file
type Tool struct {
	Name      string    // Human readable name, used in log messages
	Java      string    // Java executable, "java" if empty
	Jar       string    // Jar file put on the class path
	MainClass string    // Fully qualified class to run
	MaxHeapMB int       // Passed as -Xmx, omitted when 0
	LogDir    string    // Directory for per step log files, no log file if empty
	Dir       string    // Working directory of the process
	Echo      io.Writer // Optional copy of the tool output, e.g. os.Stderr
}

// Command returns the full command line for running the tool with args
func (t Tool) Command(args ...string) []string {
	java := t.Java
	if java == "" {
		java = "java"
	}
	cmdLine := []string{java}
	if t.MaxHeapMB > 0 {
		cmdLine = append(cmdLine, fmt.Sprintf("-Xmx%dM", t.MaxHeapMB))
	}
	cmdLine = append(cmdLine, "-cp", t.Jar, t.MainClass)
	return append(cmdLine, args...)
}

// LogPath returns the log file used for step
func (t Tool) LogPath(step string) string {
	if t.LogDir == "" {
		return ""
	}
	return filepath.Join(t.LogDir, step+".log")
}

// Run runs the tool with args and waits for it to finish. Output of the
// tool is written to the log file of step. When ctx is cancelled the
// whole process group of the tool is killed.
func (t Tool) Run(ctx context.Context, step string, args ...string) error {
	cmdLine := t.Command(args...)
	logger := log.WithFields(log.Fields{"step": step, "tool": t.Name})
	logger.Debug(strings.Join(cmdLine, " "))

	var out io.Writer = io.Discard
	logPath := t.LogPath(step)
	if logPath != "" {
		logFile, err := os.Create(logPath)
		if err != nil {
			return fmt.Errorf("%s: %w", step, err)
		}
		defer logFile.Close()
		fmt.Fprintf(logFile, "# %s\n", strings.Join(cmdLine, " "))
		out = logFile
	}
	if t.Echo != nil {
		if out == io.Discard {
			out = t.Echo
		} else {
			out = io.MultiWriter(out, t.Echo)
		}
	}

	cmd := exec.Command(cmdLine[0], cmdLine[1:]...)
	cmd.Dir = t.Dir
	cmd.Stdout = out
	cmd.Stderr = out
	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%s: failed to start %s: %w", step, cmdLine[0], err)
	}
	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		killProcessGroup(cmd)
		<-done
		logger.Warn("killed")
		return fmt.Errorf("%s: %w", step, ctx.Err())
	case err = <-done:
	}
	logger = logger.WithField("elapsed", time.Since(start).Round(time.Millisecond))
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.WithField("exit", exitErr.ExitCode()).Error("failed")
			return &ExitError{Step: step, Code: exitErr.ExitCode(), Log: logPath}
		}
		return fmt.Errorf("%s: %w", step, err)
	}
	logger.Info("done")
	return nil
}

// CheckOutput returns ErrMissingOutput when path does not exist or is empty
func CheckOutput(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, ErrMissingOutput)
		}
		return err
	}
	if fi.IsDir() {
		return nil
	}
	if fi.Size() == 0 {
		return fmt.Errorf("%s is empty: %w", path, ErrMissingOutput)
	}
	return nil
}

// DefaultMaxHeapMB returns 3/4 of the physical memory in MiB, bounded to
// a range that the tools can work with
func DefaultMaxHeapMB() int {
	total := memory.TotalMemory()
	if total == 0 {
		return defaultHeapMB
	}
	mb := int(total / 4 * 3 >> 20)
	if mb < minHeapMB {
		mb = minHeapMB
	}
	if mb > maxHeapMB {
		mb = maxHeapMB
	}
	return mb
}
