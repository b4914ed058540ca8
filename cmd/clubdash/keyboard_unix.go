//go:build linux
// +build linux

package main

import (
	"os"
	"syscall"
	"unsafe"
)

// listenForKeyboard reads single keys from the terminal until quit
func listenForKeyboard(c *console) {
	if !stdinIsTerminal() {
		return
	}

	fd := int(os.Stdin.Fd())
	var oldState syscall.Termios
	if _, _, err := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), syscall.TCGETS, uintptr(unsafe.Pointer(&oldState))); err != 0 {
		return
	}

	// Non-canonical, no echo; OPOST stays on so log lines keep their newlines
	newState := oldState
	newState.Lflag &^= syscall.ICANON | syscall.ECHO
	newState.Cc[syscall.VMIN] = 1
	newState.Cc[syscall.VTIME] = 0

	if _, _, err := syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), syscall.TCSETS, uintptr(unsafe.Pointer(&newState))); err != 0 {
		return
	}
	restore := func() {
		syscall.Syscall(syscall.SYS_IOCTL, uintptr(fd), syscall.TCSETS, uintptr(unsafe.Pointer(&oldState)))
	}
	defer restore()

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		if c.handleKey(buf[0]) {
			restore()
			c.app.Close()
			os.Exit(0)
		}
	}
}
