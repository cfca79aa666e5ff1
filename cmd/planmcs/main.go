// Command planmcs scores the modulation complexity of DICOM RT Plans and
// generates synthetic plans for testing.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printHelp(stderr)
		return 1
	}

	switch args[0] {
	case "score":
		return runScore(args[1:], stdout, stderr)
	case "generate":
		return runGenerate(args[1:], stdout, stderr)
	case "wizard":
		return runWizard(args[1:], stdout, stderr)
	case "version", "--version":
		fmt.Fprintf(stdout, "planmcs %s\n", version)
		return 0
	case "help", "--help", "-h":
		printHelp(stdout)
		return 0
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", args[0])
		printHelp(stderr)
		return 1
	}
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func printHelp(w io.Writer) {
	lines := []string{
		"planmcs",
		"=======",
		"",
		"Compute the Modulation Complexity Score (MCS) of DICOM RT Plans.",
		"",
		"Usage:",
		"  planmcs score [options] FILE...",
		"  planmcs generate --output <DIR> [options]",
		"  planmcs wizard",
		"  planmcs version",
		"",
		"Run 'planmcs <command> --help' for the options of a command.",
		"",
		"Examples:",
		"  # Score two plans as a table",
		"  planmcs score RP1.dcm RP2.dcm",
		"",
		"  # Score as JSON and print the beam names",
		"  planmcs score --format json --tag BeamName RP1.dcm",
		"",
		"  # Generate 10 reproducible ion plans",
		"  planmcs generate --output plans --num-plans 10 --seed 42 --variants ion,no-fraction-group",
	}
	fmt.Fprintln(w, strings.Join(lines, "\n"))
}
