//go:build !windows

package output

import "os"

// enableANSI reports whether f can show colors. Unix terminals always can.
func enableANSI(_ *os.File) bool {
	return true
}
