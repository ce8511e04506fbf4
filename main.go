package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"browsebot-cli/internal/api"
	"browsebot-cli/internal/chat"
	"browsebot-cli/internal/config"
	"browsebot-cli/internal/display"
	"browsebot-cli/internal/logging"
	"browsebot-cli/internal/tui"
)

// Populated via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	activeProfile string
	debugMode     bool
)

func main() {
	args := parseGlobalFlags(os.Args[1:])

	// No args → launch interactive mode (default)
	if len(args) == 0 || args[0] == "-i" || args[0] == "--interactive" || args[0] == "interactive" {
		log, err := logging.Setup(debugMode)
		if err != nil {
			display.Error(err.Error())
			os.Exit(1)
		}
		if err := tui.Run(version, activeProfile, log); err != nil {
			display.Error(err.Error())
			os.Exit(1)
		}
		return
	}

	var err error

	switch args[0] {
	case "ask":
		err = cmdAsk(args[1:])
	case "set":
		err = cmdSet(args[1:])
	case "config":
		err = cmdConfig()
	case "status":
		err = cmdStatus()
	case "profiles":
		err = cmdProfiles()
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Println(versionString())
	default:
		display.Error(fmt.Sprintf("Unknown command: %s", args[0]))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		display.Error(err.Error())
		os.Exit(1)
	}
}

// ─── ask ────────────────────────────────────────────────────────────────────

func cmdAsk(args []string) error {
	streamOverride := -1 // -1 = use config, 0 = off, 1 = on
	maxSources := 0
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--stream":
			streamOverride = 1
		case "--no-stream":
			streamOverride = 0
		case "-n", "--sources":
			if i+1 < len(args) {
				i++
				n, err := strconv.Atoi(args[i])
				if err != nil {
					return fmt.Errorf("invalid source count: %s", args[i])
				}
				maxSources = n
			} else {
				return fmt.Errorf("--sources requires a value")
			}
		case "--debug":
			debugMode = true
		default:
			positional = append(positional, args[i])
		}
	}

	if len(positional) == 0 {
		fmt.Println("Usage: browsebot ask <question> [--no-stream] [-n <sources>]")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println(`  browsebot ask "What happened in tech news today?"`)
		fmt.Println(`  browsebot ask "Current weather in Tokyo" --no-stream -n 5`)
		return nil
	}
	question := strings.Join(positional, " ")

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	if maxSources != 0 {
		cfg.MaxSources = maxSources
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.Setup(debugMode)
	if err != nil {
		return err
	}

	opts := chat.Options{Stream: cfg.Stream, MaxSources: cfg.MaxSources}
	switch streamOverride {
	case 0:
		opts.Stream = false
	case 1:
		opts.Stream = true
	}

	client := api.NewClient(cfg, log)
	sess := chat.NewSession(client, opts, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Println()
	if opts.Stream {
		return askStreaming(ctx, sess, question)
	}
	return askRequest(ctx, sess, question)
}

func askStreaming(ctx context.Context, sess *chat.Session, question string) error {
	printer := display.NewStreamPrinter(os.Stdout)
	sess.SetOnChange(func() {
		printer.Advance(sess.Snapshot())
	})

	if !sess.Submit(ctx, question) {
		return fmt.Errorf("question is empty")
	}
	printer.Finish()

	if sess.Ledger().OpenID() != "" {
		display.Warn("The answer ended early; showing what arrived.")
	}
	fmt.Println()
	return nil
}

func askRequest(ctx context.Context, sess *chat.Session, question string) error {
	display.Spinner("Browsing...")
	ok := sess.Submit(ctx, question)
	display.ClearLine()
	if !ok {
		return fmt.Errorf("question is empty")
	}

	msgs := sess.Snapshot()
	bot := msgs[len(msgs)-1]
	if bot.Text == chat.ErrorReplyText {
		return fmt.Errorf("the backend could not answer; try again or run browsebot status")
	}

	fmt.Println(display.RenderMarkdown(bot.Text, 80))

	if len(bot.Sources) > 0 {
		fmt.Printf("\n%s📎 Sources:%s\n", display.Bold+display.Blue, display.Reset)
		for i, s := range bot.Sources {
			title := s.Title
			if title == "" {
				title = s.URL
			}
			fmt.Printf("   %d. %s\n", i+1, truncate(title, 90))
			if s.URL != "" && s.URL != title {
				fmt.Printf("      %s%s%s\n", display.Gray, s.URL, display.Reset)
			}
			if s.Snippet != "" {
				for _, line := range wrapText(s.Snippet, 76) {
					fmt.Printf("      %s%s%s\n", display.Dim, line, display.Reset)
				}
			}
		}
	}

	fmt.Println()
	return nil
}

// ─── set ────────────────────────────────────────────────────────────────────

func cmdSet(args []string) error {
	if len(args) < 2 {
		fmt.Println("Usage: browsebot set <key> <value>")
		fmt.Println()
		fmt.Println("Keys:")
		fmt.Println("  server   Backend URL            (e.g. http://localhost:8000)")
		fmt.Printf("  sources  Max sources per answer (%d-%d)\n", config.MinSources, config.MaxSources)
		fmt.Println("  mode     Answer delivery        (stream | request)")
		return nil
	}

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	key, value := args[0], args[1]

	switch key {
	case "server":
		cfg.Server = strings.TrimRight(value, "/")
	case "sources":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid source count: %s", value)
		}
		cfg.MaxSources = n
	case "mode":
		switch value {
		case "stream":
			cfg.Stream = true
		case "request":
			cfg.Stream = false
		default:
			return fmt.Errorf("unknown mode: %s (valid: stream, request)", value)
		}
	default:
		return fmt.Errorf("unknown config key: %s (valid: server, sources, mode)", key)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}

	display.Success(fmt.Sprintf("%s set to %s", key, value))
	return nil
}

// ─── config ─────────────────────────────────────────────────────────────────

func cmdConfig() error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	display.Header("Browsebot Configuration")

	display.Info("Profile:", config.ProfileName(activeProfile))
	display.Info("Server:", cfg.Server)

	mode := "request"
	if cfg.Stream {
		mode = "stream"
	}
	display.Info("Mode:", mode)
	display.Info("Max sources:", strconv.Itoa(cfg.MaxSources))
	fmt.Println()

	return nil
}

// ─── status ─────────────────────────────────────────────────────────────────

func cmdStatus() error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.Setup(debugMode)
	if err != nil {
		return err
	}
	client := api.NewClient(cfg, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	display.Header("Browsebot Status")
	display.Info("Server:", cfg.Server)

	health, err := client.Health(ctx)
	if err != nil {
		display.Info("Health:", display.Red+"unreachable"+display.Reset)
		fmt.Println()
		return fmt.Errorf("backend unreachable: %w", err)
	}

	healthLabel := display.Green + health.Status + display.Reset
	if health.Status != "healthy" {
		healthLabel = display.Yellow + health.Status + display.Reset
	}
	display.Info("Health:", healthLabel)
	if health.Timestamp > 0 {
		display.Info("Checked:", display.FormatUnix(health.Timestamp))
	}

	if info, err := client.ServiceInfo(ctx); err == nil {
		display.Info("Service:", info.Service)
		if info.Version != "" {
			display.Info("Version:", info.Version)
		}
	}

	fmt.Println()
	return nil
}

// ─── profiles ───────────────────────────────────────────────────────────────

func cmdProfiles() error {
	profiles, err := config.ListProfiles()
	if err != nil {
		return err
	}

	display.Header(fmt.Sprintf("Profiles (%d)", len(profiles)))

	if len(profiles) == 0 {
		display.Warn("No profiles found.")
		return nil
	}

	for _, p := range profiles {
		marker := " "
		if p == config.ProfileName(activeProfile) {
			marker = display.Green + "●" + display.Reset
		}
		fmt.Printf("  %s %s\n", marker, p)
	}
	fmt.Println()

	return nil
}

// ─── helpers ────────────────────────────────────────────────────────────────

func wrapText(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}
		words := strings.Fields(paragraph)
		current := ""
		for _, word := range words {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

func parseGlobalFlags(args []string) []string {
	var remaining []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--profile":
			if i+1 < len(args) {
				i++
				activeProfile = args[i]
			}
		case "--debug":
			debugMode = true
		default:
			remaining = append(remaining, args[i])
		}
	}
	return remaining
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func versionString() string {
	s := "browsebot " + version
	if commit != "none" {
		s += fmt.Sprintf("\n  commit: %s\n  built:  %s", commit, date)
	}
	return s
}

// ─── usage ──────────────────────────────────────────────────────────────────

func printUsage() {
	fmt.Printf(`%sBrowsebot%s — real-time browsing chatbot (v%s)

%sUsage:%s
  browsebot                                          Launch interactive mode (default)
  browsebot [--profile <name>] <command> [arguments] Run a specific command

%sAsking:%s
  ask "<question>"          Ask a one-off question
    --stream / --no-stream  Override the configured delivery mode
    -n, --sources <count>   Max web sources to cite (%d-%d)

%sSettings:%s
  set server <url>          Set the backend URL
  set sources <count>       Set the default source count
  set mode <stream|request> Set the default delivery mode
  config                    Show current configuration
  status                    Check backend health

%sProfiles:%s
  profiles                  List all config profiles
  --profile <name>          Use a named config profile (default: unnamed)

%sDebugging:%s
  --debug                   Write a debug log to ~/.browsebot/debug.log

%sExamples:%s
  browsebot                                          # Start interactive mode
  browsebot ask "What happened in tech news today?"
  browsebot ask "Current weather in Tokyo" --no-stream -n 5
  browsebot set server http://localhost:8000
  browsebot --profile staging ask "Is the release out yet?"

`, display.Bold, display.Reset, version,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset, config.MinSources, config.MaxSources,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset)
}
