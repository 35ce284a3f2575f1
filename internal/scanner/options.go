package scanner

import (
	"runtime"

	"github.com/jenian/envscan/internal/parser"
)

// ScanOptions controls which files a scan visits and how.
type ScanOptions struct {
	// Include globs select files. Empty means every file a registered
	// language recognizes.
	Include []string
	// Exclude globs prune directories and drop files; they win over Include.
	Exclude []string
	// MaxDepth stops descent into directories at this depth (the root's
	// children are at depth 1). Zero or less means unlimited.
	MaxDepth int
	Parallel bool
	// Workers is the number of concurrent file scanners in parallel mode.
	// Zero or less means GOMAXPROCS.
	Workers int
	// MaxFileSize is the per-file size guard in bytes.
	MaxFileSize int64
}

// DefaultExclude lists the build output, dependency and generated files that
// are never worth scanning.
func DefaultExclude() []string {
	return []string{
		// directories
		"node_modules", "target", ".git", "vendor", "dist", "build", ".next", ".nuxt",
		"coverage", "__pycache__", ".venv", ".tox", ".idea", ".vscode",
		// generated or minified files
		"*.min.js", "*.min.css", "*.lock", "*.pb.go", "*_pb2.py",
		"*.generated.*", "*.mock.*", "*.test.*", "*.spec.*",
	}
}

// DefaultOptions returns the options used when the caller has no opinion.
func DefaultOptions() ScanOptions {
	return ScanOptions{
		Exclude:     DefaultExclude(),
		MaxDepth:    10,
		Parallel:    true,
		Workers:     runtime.GOMAXPROCS(0),
		MaxFileSize: parser.DefaultMaxFileSize,
	}
}

func (o ScanOptions) workers() int {
	if o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Workers
}
