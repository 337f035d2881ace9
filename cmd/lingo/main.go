package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/llm"
	"github.com/hpungsan/lingo/internal/logger"
	"github.com/hpungsan/lingo/internal/mcp"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// cliCommands contains known CLI subcommands.
var cliCommands = map[string]bool{
	"add": true, "show": true, "update": true, "delete": true, "favorite": true,
	"record": true, "list": true, "categories": true, "stats": true,
	"export": true, "import": true, "import-sheet": true, "export-sheet": true,
	"exercise": true, "serve": true,
	"help": true,
}

// isCLIMode determines if we should run CLI vs MCP server.
func isCLIMode() bool {
	if len(os.Args) < 2 {
		return false // No args → MCP server
	}
	arg := os.Args[1]
	if cliCommands[arg] {
		return true
	}
	if arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" {
		return true
	}
	return false
}

// isHelpOrVersion returns true if the user is requesting help or version info.
func isHelpOrVersion() bool {
	if len(os.Args) < 2 {
		return false
	}
	arg := os.Args[1]
	return arg == "--help" || arg == "-h" || arg == "--version" || arg == "-v" || arg == "help"
}

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, _ := os.Stdin.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
   _ _
  | (_)_ __   __ _  ___
  | | | '_ \ / _' |/ _ \
  | | | | | | (_| | (_) |
  |_|_|_| |_|\__, |\___/
             |___/

  Vocabulary trainer with fuzzy search and generated exercises

  Usage: lingo <command> [options]
         lingo --help

  MCP server mode requires piped input.`)
}

func main() {
	if len(os.Args) < 2 && isTerminal() {
		printBanner()
		return
	}

	// Handle --help/--version before DB init (no DB needed)
	if isHelpOrVersion() {
		app := newCLIApp(nil, nil, nil, logger.NewNop())
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	log, err := logger.New(os.Getenv("LINGO_LOG_MODE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not determine home directory: %v\n", err)
		os.Exit(1)
	}
	baseDir := filepath.Join(homeDir, ".lingo")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}

	if err := config.LoadEnv(baseDir, cwd); err != nil {
		log.Warn("failed to load .env", "error", err)
	}

	cfg, err := config.LoadWithRepo(baseDir, cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	for _, name := range mcp.ValidateDisabledTools(cfg.DisabledTools) {
		log.Warn("unknown tool in disabled_tools", "tool", name)
	}
	for _, name := range mcp.ValidateDisabledTypes(cfg.DisabledTypes) {
		log.Warn("unknown type in disabled_types", "type", name)
	}

	database, err := db.Init(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to initialize database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	db.ConfigurePool(database, cfg)

	// Without a key the app still works; only exercise generation is unavailable.
	var client llm.Client
	if c, err := llm.FromConfig(log, cfg.LLM); err == nil {
		client = c
	} else {
		log.Debug("exercise generation disabled", "reason", err)
	}

	if isCLIMode() {
		app := newCLIApp(database, cfg, client, log)
		if err := app.Run(os.Args); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Unknown argument + terminal → show error (don't start MCP server)
	if len(os.Args) >= 2 && isTerminal() {
		fmt.Fprintf(os.Stderr, "error: unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "Run 'lingo --help' for usage.\n")
		os.Exit(1)
	}

	if err := mcp.Run(database, cfg, client, Version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
