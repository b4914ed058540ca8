package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/abrezinsky/clubdash/internal/app"
	"github.com/abrezinsky/clubdash/internal/browser"
	"github.com/abrezinsky/clubdash/internal/logger"
)

// console holds what the keyboard shortcuts act on
type console struct {
	dashboardURL string
	log          *logger.SlogLogger
	app          *app.App
}

// stdinIsTerminal reports whether shortcuts can be read at all
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// handleKey runs one shortcut and reports whether the server should stop
func (c *console) handleKey(b byte) (quit bool) {
	switch strings.ToLower(string(b)) {
	case "o":
		fmt.Printf("%sOpening dashboard in browser...%s\n", cyan, reset)
		if err := browser.Open(c.dashboardURL); err != nil {
			fmt.Printf("%sError opening browser: %v%s\n", red, err, reset)
		}
	case "s":
		fmt.Printf("%sSyncing spreadsheet...%s\n", cyan, reset)
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		res, err := c.app.SyncNow(ctx)
		cancel()
		if err != nil {
			fmt.Printf("%sSync failed: %v%s\n", red, err, reset)
		} else {
			fmt.Printf("%sSynced %d members, %d time trials%s\n", green, res.Members, res.TimeTrials, reset)
		}
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		next := logger.NextLevel(c.log.GetLevel())
		c.log.SetLevel(next)
		fmt.Printf("%sLog level: %s%s%s\n", green, yellow, strings.ToLower(next.String()), reset)
	case "?":
		printKeyboardHelp()
	case "q", "\x03":
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
		return true
	}
	return false
}
