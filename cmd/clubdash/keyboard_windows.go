//go:build windows
// +build windows

package main

import (
	"os"

	"golang.org/x/term"
)

// listenForKeyboard reads single keys from the console until quit
func listenForKeyboard(c *console) {
	if !stdinIsTerminal() {
		return
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer term.Restore(fd, oldState)

	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		if c.handleKey(buf[0]) {
			term.Restore(fd, oldState)
			c.app.Close()
			os.Exit(0)
		}
	}
}
