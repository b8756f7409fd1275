// Command sanbench sanitizes a file under a chosen preset and reports
// elapsed time and output size, the way a teacher-style cmd/ entry point
// wraps a library for quick manual exercise rather than being a real
// production tool.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/htmlguard/htmlguard"
	"github.com/htmlguard/htmlguard/presets"
)

func main() {
	preset := flag.String("preset", "standard", "policy preset: standard, formatting, links")
	verify := flag.Bool("verify-idempotent", false, "check Sanitize(Sanitize(x)) == Sanitize(x)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sanbench [-preset=standard] <file>")
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		slog.Error("sanbench: read input", "error", err)
		os.Exit(1)
	}

	factory, err := selectPreset(*preset)
	if err != nil {
		slog.Error("sanbench: preset", "error", err)
		os.Exit(1)
	}

	start := time.Now()
	out := factory.Sanitize(string(data), nil)
	elapsed := time.Since(start)

	fmt.Printf("input bytes:  %d\n", len(data))
	fmt.Printf("output bytes: %d\n", len(out))
	fmt.Printf("elapsed:      %s\n", elapsed)

	if *verify {
		if factory.VerifyIdempotent(string(data)) {
			fmt.Println("idempotent:   yes")
		} else {
			fmt.Println("idempotent:   NO")
			os.Exit(1)
		}
	}
}

func selectPreset(name string) (*htmlguard.PolicyFactory, error) {
	switch name {
	case "standard":
		return htmlguard.StandardFactory(), nil
	case "formatting":
		return presets.Formatting(), nil
	case "links":
		return presets.Links(), nil
	default:
		return nil, fmt.Errorf("unknown preset %q", name)
	}
}
