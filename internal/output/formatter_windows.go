//go:build windows

package output

import (
	"os"
	"syscall"
	"unsafe"
)

// Windows API constants for enabling ANSI
const enableVirtualTerminalProcessing = 0x0004

var (
	kernel32           = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleMode = kernel32.NewProc("GetConsoleMode")
	procSetConsoleMode = kernel32.NewProc("SetConsoleMode")
)

// enableANSI turns on escape sequence processing for the console behind f
// (Windows 10 and later).
func enableANSI(f *os.File) bool {
	handle := f.Fd()

	var mode uint32
	ret, _, _ := procGetConsoleMode.Call(handle, uintptr(unsafe.Pointer(&mode)))
	if ret == 0 {
		return false
	}
	if mode&enableVirtualTerminalProcessing != 0 {
		return true
	}

	mode |= enableVirtualTerminalProcessing
	ret, _, _ = procSetConsoleMode.Call(handle, uintptr(mode))
	return ret != 0
}
