// Package logger records crash reports for panics raised while handling a
// chat message or a scheduled job.
package logger

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

const (
	// CrashLogDir is the directory for crash logs relative to the data dir
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the maximum number of crash logs to keep
	MaxCrashLogs = 10
)

// CrashLog represents a crash log entry.
type CrashLog struct {
	Timestamp  time.Time
	Version    string
	Source     string
	PanicValue string
	StackTrace string
	LastInput  string
	GoVersion  string
	OS         string
	Arch       string
}

// Recorder writes crash logs under <base>/crash_logs.
type Recorder struct {
	fs      afero.Fs
	dir     string
	version string
	now     func() time.Time
	logger  *slog.Logger
}

// NewRecorder creates a recorder rooted at basePath.
func NewRecorder(fs afero.Fs, basePath, version string, logger *slog.Logger) *Recorder {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		fs:      fs,
		dir:     filepath.Join(basePath, CrashLogDir),
		version: version,
		now:     time.Now,
		logger:  logger,
	}
}

// Dir returns the crash log directory.
func (r *Recorder) Dir() string { return r.dir }

// Recover is deferred around a unit of work. A panic is written to a crash
// log and reported to onPanic instead of unwinding further.
//
//	defer rec.Recover("router", input, func(path string) { ... })
func (r *Recorder) Recover(source, input string, onPanic func(path string)) {
	v := recover()
	if v == nil {
		return
	}
	path, err := r.Write(source, input, v, debug.Stack())
	if err != nil {
		r.logger.Error("failed to write crash log", "error", err, "panic", fmt.Sprint(v))
	} else {
		r.logger.Error("recovered from panic", "source", source, "crashLog", path, "panic", fmt.Sprint(v))
	}
	if onPanic != nil {
		onPanic(path)
	}
}

// Write persists one crash log and prunes old ones. It returns the file path.
func (r *Recorder) Write(source, input string, panicValue any, stack []byte) (string, error) {
	log := CrashLog{
		Timestamp:  r.now(),
		Version:    r.version,
		Source:     source,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(stack),
		LastInput:  truncateForLog(strings.TrimSpace(input), 500),
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}

	if err := r.fs.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}

	path := filepath.Join(r.dir, fmt.Sprintf("crash_%s.log", log.Timestamp.Format("20060102_150405.000000")))
	if err := afero.WriteFile(r.fs, path, []byte(formatCrashLog(log)), 0o644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}

	if err := r.prune(); err != nil {
		r.logger.Warn("failed to clean old crash logs", "error", err)
	}
	return path, nil
}

// List returns crash log paths, oldest first.
func (r *Recorder) List() ([]string, error) {
	entries, err := afero.ReadDir(r.fs, r.dir)
	if err != nil {
		if exists, _ := afero.DirExists(r.fs, r.dir); !exists {
			return nil, nil
		}
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, filepath.Join(r.dir, e.Name()))
		}
	}
	sort.Strings(logs)
	return logs, nil
}

func (r *Recorder) prune() error {
	logs, err := r.List()
	if err != nil {
		return err
	}
	for i := 0; i < len(logs)-MaxCrashLogs; i++ {
		if err := r.fs.Remove(logs[i]); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", filepath.Base(logs[i]), err)
		}
	}
	return nil
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

func formatCrashLog(log CrashLog) string {
	rule := strings.Repeat("=", 80)
	sep := strings.Repeat("-", 80)

	var sb strings.Builder
	sb.WriteString(rule + "\nTASK BOT CRASH LOG\n" + rule + "\n\n")
	fmt.Fprintf(&sb, "Timestamp: %s\n", log.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Version:   %s\n", log.Version)
	fmt.Fprintf(&sb, "Source:    %s\n", log.Source)
	fmt.Fprintf(&sb, "Go:        %s\n", log.GoVersion)
	fmt.Fprintf(&sb, "OS/Arch:   %s/%s\n", log.OS, log.Arch)

	sb.WriteString("\n" + sep + "\nPANIC VALUE\n" + sep + "\n")
	sb.WriteString(log.PanicValue + "\n")
	sb.WriteString("\n" + sep + "\nSTACK TRACE\n" + sep + "\n")
	sb.WriteString(log.StackTrace)

	if log.LastInput != "" {
		sb.WriteString("\n" + sep + "\nLAST MESSAGE\n" + sep + "\n")
		sb.WriteString(log.LastInput + "\n")
	}

	sb.WriteString("\n" + rule + "\nEND OF CRASH LOG\n" + rule + "\n")
	return sb.String()
}
