package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/abrezinsky/clubdash/internal/app"
	"github.com/abrezinsky/clubdash/internal/auth"
	"github.com/abrezinsky/clubdash/internal/browser"
	"github.com/abrezinsky/clubdash/internal/config"
	"github.com/abrezinsky/clubdash/internal/logger"
	"github.com/abrezinsky/clubdash/pkg/sheets"
	"github.com/abrezinsky/clubdash/web"
)

// ANSI escape codes
const (
	moveUp = "\033[%dA"
	reset  = "\033[0m"
	yellow = "\033[33m"
	red    = "\033[31m"
	blue   = "\033[34m"
	green  = "\033[32m"
	cyan   = "\033[36m"
	bold   = "\033[1m"
)

// showBanner prints the logo, then a swimmer crossing the pool unless animate is false
func showBanner(animate bool) {
	const width = 62
	border := strings.Repeat("═", width)

	logo := []string{
		"    ____ _       _     ____            _                   ",
		"   / ___| |_   _| |__ |  _ \\  __ _ ___| |__                ",
		"  | |   | | | | | '_ \\| | | |/ _` / __| '_ \\               ",
		"  | |___| | |_| | |_) | |_| | (_| \\__ \\ | | |              ",
		"   \\____|_|\\__,_|_.__/|____/ \\__,_|___/_| |_|              ",
	}

	fmt.Printf("\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Printf("  %s║%s%-62s%s║%s\n", cyan, yellow, line, cyan, reset)
	}
	if !animate {
		fmt.Printf("  %s╚%s╝%s\n\n", cyan, border, reset)
		return
	}

	fmt.Printf("  %s╠%s╣%s\n", cyan, border, reset)
	swimmer := `~o/`
	lane := width - len(swimmer)
	for pos := 0; pos <= lane; pos += 4 {
		water := strings.Repeat("~", pos) + blue + swimmer + cyan + strings.Repeat(" ", lane-pos)
		fmt.Printf("  %s║%s║%s\n", cyan, water, reset)
		fmt.Printf("  %s╚%s╝%s\n", cyan, border, reset)
		if pos+4 <= lane {
			fmt.Printf(moveUp, 2)
		}
		time.Sleep(40 * time.Millisecond)
	}
	fmt.Println()
}

var (
	version = "dev"
)

// printKeyboardHelp displays all available keyboard shortcuts
func printKeyboardHelp() {
	fmt.Printf("\n%s%s  Keyboard Shortcuts:%s\n", bold, green, reset)
	fmt.Printf("    %so%s      - Open the dashboard in browser\n", cyan, reset)
	fmt.Printf("    %ss%s      - Sync the club spreadsheet now\n", cyan, reset)
	fmt.Printf("    %sh%s      - Toggle HTTP request logging\n", cyan, reset)
	fmt.Printf("    %sl%s      - Cycle log level (debug → info → warn → error)\n", cyan, reset)
	fmt.Printf("    %sq%s      - Quit server\n", cyan, reset)
	fmt.Printf("    %s?%s      - Show this help\n\n", cyan, reset)
}

// flagOverrides maps the flags the user actually set to config keys
func flagOverrides(fs *flag.FlagSet, keys map[string]string) map[string]any {
	out := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		key, ok := keys[f.Name]
		if !ok {
			return
		}
		if g, ok := f.Value.(flag.Getter); ok {
			out[key] = g.Get()
		} else {
			out[key] = f.Value.String()
		}
	})
	return out
}

func main() {
	configPath := flag.String("config", "", "YAML config file (default $CLUBDASH_CONFIG)")
	flag.String("addr", ":8081", "HTTP listen address")
	flag.String("db", "clubdash.db", "SQLite cache path")
	flag.String("adminpw", "", "Coach password (auto-generated if not set)")
	flag.String("loglevel", "info", "Log level (debug, info, warn, error)")
	flag.String("sheet", "", "Club spreadsheet ID")
	flag.Duration("sync", 15*time.Minute, "Spreadsheet sync interval (0 disables)")
	noAnimate := flag.Bool("noanimate", false, "Show logo only, skip the animation")
	noKeyboard := flag.Bool("nokeyboard", false, "Disable keyboard shortcuts")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `ClubDash - masters swim club dashboard and relay planner

Usage:
  clubdash [options]

Options:
  -config str    YAML config file (default $CLUBDASH_CONFIG)
  -addr str      HTTP listen address (default ":8081")
  -db string     SQLite cache path (default "clubdash.db")
  -adminpw str   Coach password (auto-generated if not set)
  -loglevel str  Log level: debug, info, warn, error (default "info")
  -sheet str     Club spreadsheet ID; without it the roster comes from workbook imports
  -sync dur      Spreadsheet sync interval, 0 disables (default 15m)
  -noanimate     Show logo only, skip the animation
  -nokeyboard    Disable keyboard shortcuts
  -version       Show version and exit
  -help          Show this help message

Every option can also be set in the config file or as CLUBDASH_<KEY>,
e.g. CLUBDASH_SHEET_ID. Flags win over both.

Keyboard Shortcuts (when enabled):
  o              Open the dashboard in browser
  s              Sync the club spreadsheet now
  h              Toggle HTTP request logging
  l              Cycle log level (debug → info → warn → error)
  q              Quit server
  ?              Show keyboard help

Examples:
  clubdash -sheet 1AbC...xyz             # Sync from a published spreadsheet
  clubdash -addr :8080 -db /data/club.db # Custom port and cache path
  clubdash -adminpw secret123            # Use a fixed coach password
  clubdash -config club.yaml -nokeyboard # Run as a service

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("clubdash %s\n", version)
		os.Exit(0)
	}

	overrides := flagOverrides(flag.CommandLine, map[string]string{
		"addr":     "addr",
		"db":       "db_path",
		"adminpw":  "admin_password",
		"loglevel": "log_level",
		"sheet":    "sheet_id",
		"sync":     "sync_interval",
	})
	if *noKeyboard {
		overrides["keyboard"] = false
	}

	cfg, err := config.Load(context.Background(), *configPath, overrides)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	showBanner(!*noAnimate)

	if cfg.AdminPassword == "" {
		cfg.AdminPassword = auth.GeneratePassword()
	}

	appLog := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	// Without a sheet the cache only changes through imports and entries
	var client sheets.Client
	if cfg.SheetID != "" {
		client = sheets.NewHTTPClient(cfg.SheetBaseURL, cfg.SheetID, cfg.SheetWriteURL, appLog)
	} else {
		appLog.Warn("No sheet_id configured; import a workbook from the settings page")
	}

	a, err := app.New(cfg, appLog, client, web.GetTemplatesFS(), web.GetStaticFS())
	if err != nil {
		log.Fatal("Failed to initialize application: ", err)
	}
	defer a.Close()

	appLog.Info("Coach password", "password", cfg.AdminPassword)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.Run(cfg.Addr)
	}()

	// Wait a moment for server to start
	time.Sleep(100 * time.Millisecond)

	if cfg.Keyboard {
		printKeyboardHelp()
		go listenForKeyboard(&console{
			dashboardURL: browser.PageURL(cfg.Addr, "/"),
			log:          appLog,
			app:          a,
		})
	} else {
		fmt.Printf("\n%sKeyboard shortcuts disabled%s\n\n", yellow, reset)
	}

	if err := <-serverErr; err != nil {
		log.Fatal(err)
	}
}
