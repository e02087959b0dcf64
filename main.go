package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/tinymachines/sovereign/config"
	"github.com/tinymachines/sovereign/interpreter"
	"github.com/tinymachines/sovereign/isa"
	"github.com/tinymachines/sovereign/llmhook"
	"github.com/tinymachines/sovereign/parser"
	"github.com/tinymachines/sovereign/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		configPath  = flag.String("config", "", "Path to a TOML config file (default: platform config dir)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		maxSteps    = flag.Int("max-steps", 0, "Override the configured maximum execution steps (0: use config)")
		enableHooks = flag.Bool("hooks", false, "Enable the LLMGEN/EVOLVE Ollama hooks (overrides config)")
	)

	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		fmt.Printf("Sovereign VM %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if flag.NArg() < 2 {
		printHelp()
		os.Exit(0)
	}

	cmd := flag.Arg(0)
	path := flag.Arg(1)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		color.Red("Error loading config: %v", err)
		os.Exit(1)
	}
	if *maxSteps > 0 {
		cfg.VM.MaxExecutionSteps = *maxSteps
	}
	if *enableHooks {
		cfg.Hooks.Enabled = true
	}

	switch cmd {
	case "run":
		runFile(cfg, path, *verboseMode)
	case "check":
		checkFile(path, *verboseMode)
	default:
		color.Red("Unknown command: %s", cmd)
		printHelp()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

// enableFileLogging tees the standard logger to a run log under the
// platform log directory, returning a closer to flush and restore stderr
// output. A failure to open the log file is non-fatal: verbose output
// still reaches the terminal.
func enableFileLogging() func() {
	logPath := filepath.Join(config.GetLogPath(), "sovereign.log")
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600) // #nosec G304 -- fixed, non-user-controlled path
	if err != nil {
		log.Printf("verbose logging: could not open %s: %v", logPath, err)
		return nil
	}
	log.SetOutput(io.MultiWriter(os.Stderr, f))
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}
}

func runFile(cfg *config.Config, path string, verbose bool) {
	var hooks isa.Hooks
	if cfg.Hooks.Enabled {
		hooks = llmhook.NewOllamaHooks(cfg.Hooks.ToLLMHookConfig())
	}

	it := interpreter.New(cfg.VM, hooks)

	if verbose {
		if closeLog := enableFileLogging(); closeLog != nil {
			defer closeLog()
		}
		log.Printf("loading %s", path)
	}

	if err := it.RunFile(context.Background(), path); err != nil {
		color.Red("Error: %v", err)
		snap := it.DumpState()
		fmt.Println(formatSnapshot(snap))
		os.Exit(1)
	}

	snap := it.DumpState()
	color.Green("Execution complete")
	fmt.Println(formatSnapshot(snap))
}

func checkFile(path string, verbose bool) {
	source, err := os.ReadFile(path) // #nosec G304 -- user-specified program path
	if err != nil {
		color.Red("Error: cannot read %s: %v", path, err)
		os.Exit(1)
	}

	p := parser.NewParser()
	if p.ValidateSyntax(string(source)) {
		color.Green("%s: syntax OK", path)
		return
	}

	program, err := p.Parse(string(source))
	if err != nil {
		color.Red("%s: %v", path, err)
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("%d instructions, %d labels\n", len(program.Instructions), len(program.Labels))
	}
	os.Exit(1)
}

func formatSnapshot(snap vm.Snapshot) string {
	return fmt.Sprintf(
		"data stack:    %v\ncontrol stack: %v\nregisters:     %v\nprogram counter: %d\nsteps: %d   memory usage: %d bytes\nerror: %s",
		snap.DataStack, snap.ControlStack, snap.Registers, snap.ProgramCounter,
		snap.ExecutionSteps, snap.MemoryUsage, snap.ErrorState,
	)
}

func printHelp() {
	fmt.Printf(`Sovereign VM %s

Usage: sovereign run <file.sov>
       sovereign check <file.sov>

Options:
  -version          Show version information
  -config FILE      Path to a TOML config file (default: platform config dir)
  -verbose          Enable verbose output
  -max-steps N      Override the configured maximum execution steps
  -hooks            Enable the LLMGEN/EVOLVE Ollama hooks (overrides config)

Commands:
  run FILE          Parse and execute FILE, printing the final VM state
  check FILE        Parse FILE and report syntax errors without executing it

Examples:
  sovereign run fib.sov
  sovereign check fib.sov
  sovereign -hooks run self_improving.sov
`, Version)
}
