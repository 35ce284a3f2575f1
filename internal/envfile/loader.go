// Package envfile finds and parses the files that declare environment
// variables: dotenv files, direnv and shell exports, docker-compose services,
// Kubernetes ConfigMaps and Secrets, and systemd units.
package envfile

import (
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
)

// DefaultFiles are always loaded when present, in this order.
var DefaultFiles = []string{".env", ".env.local", "env.example"}

// Set is the merged outcome of loading several env files.
type Set struct {
	// Vars holds every declared variable. Later files override earlier ones.
	Vars map[string]string
	// Sources maps each variable to the file that set its final value,
	// relative to the root when possible.
	Sources map[string]string
	// Files lists the files that were parsed, in load order.
	Files []string
	// Failed maps files that could not be parsed to the reason.
	Failed map[string]error
}

// Loader handles loading and parsing environment files
type Loader struct {
	envFiles   []string
	autoDetect bool
	logger     *log.Logger
}

// NewLoader creates a new env file loader
func NewLoader() *Loader {
	return &Loader{
		envFiles:   slices.Clone(DefaultFiles),
		autoDetect: true,
		logger:     log.New(io.Discard),
	}
}

// SetAutoDetect enables or disables automatic detection of env files
func (l *Loader) SetAutoDetect(enabled bool) {
	l.autoDetect = enabled
}

// AddEnvFile adds a custom env file to load
func (l *Loader) AddEnvFile(path string) {
	l.envFiles = append(l.envFiles, path)
}

// SetEnvFiles sets the list of env files to load
func (l *Loader) SetEnvFiles(files []string) {
	l.envFiles = files
}

// SetLogger sets the logger used to report files that fail to parse.
func (l *Loader) SetLogger(logger *log.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// findEnvFiles returns the configured files that exist followed by the
// auto-detected ones in rootPath. Auto-detection does not recurse.
func (l *Loader) findEnvFiles(rootPath string) []string {
	var files []string
	add := func(p string) {
		if !slices.Contains(files, p) {
			files = append(files, p)
		}
	}

	for _, envFile := range l.envFiles {
		path := envFile
		if !filepath.IsAbs(envFile) {
			path = filepath.Join(rootPath, envFile)
		}
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			add(path)
		}
	}

	if !l.autoDetect {
		return files
	}

	entries, err := os.ReadDir(rootPath)
	if err != nil {
		return files // Can't read directory, return what we have
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if autoDetected(name) {
			add(filepath.Join(rootPath, name))
		}
	}

	return files
}

func autoDetected(name string) bool {
	switch DetectKind(name) {
	case KindEnvrc, KindCompose, KindK8s, KindSystemd, KindShell:
		return true
	case KindDotenv:
		return isDotenvName(strings.ToLower(name))
	}
	return false
}

// Load loads all configured and detected env files in rootPath and merges
// them. A file that fails to parse is recorded in Set.Failed and skipped.
func (l *Loader) Load(rootPath string) (*Set, error) {
	set := &Set{
		Vars:    make(map[string]string),
		Sources: make(map[string]string),
		Failed:  make(map[string]error),
	}

	for _, path := range l.findEnvFiles(rootPath) {
		name := path
		if rel, err := filepath.Rel(rootPath, path); err == nil && !strings.HasPrefix(rel, "..") {
			name = filepath.ToSlash(rel)
		}

		vars, err := ParseFile(path)
		if err != nil {
			l.logger.Warn("skipping env file", "file", name, "error", err)
			set.Failed[name] = err
			continue
		}
		l.logger.Debug("loaded env file", "file", name, "kind", DetectKind(path), "vars", len(vars))

		set.Files = append(set.Files, name)
		// Merge: later files override earlier ones
		for k, v := range vars {
			set.Vars[k] = v
			set.Sources[k] = name
		}
	}

	return set, nil
}

// LoadWithExportedEnv loads rootPath's env files and also returns them merged
// with the process environment. Env file values win over exported ones.
func (l *Loader) LoadWithExportedEnv(rootPath string) (all map[string]string, set *Set, err error) {
	set, err = l.Load(rootPath)
	if err != nil {
		return nil, nil, err
	}

	all = ExportedEnv()
	for k, v := range set.Vars {
		all[k] = v
	}
	return all, set, nil
}

// ExportedEnv returns the current process environment as a map.
func ExportedEnv() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			env[k] = v
		}
	}
	return env
}
