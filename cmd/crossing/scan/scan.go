// Package scan implements the "scan" subcommand: parses CLI flags, runs
// internal/scanner.Scan, and writes the resulting report as text or JSON —
// grounded on cmd/gorisk/scan/scan.go's flag-parsing, phase-timing, and
// exit-code conventions.
package scan

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fridayops/crossing/internal/model"
	"github.com/fridayops/crossing/internal/report"
	"github.com/fridayops/crossing/internal/scanner"
	"github.com/fridayops/crossing/internal/walklog"
)

// Run executes the scan subcommand and returns a process exit code.
func Run(args []string, version string) int {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	format := fs.String("format", "text", "output format: text|json")
	implicit := fs.Bool("implicit", false, "enable the implicit raise detector")
	minRisk := fs.String("min-risk", "", "filter emitted crossings: low|medium|elevated|high")
	configFile := fs.String("config", "", "optional YAML scan-config file")
	verbose := fs.Bool("verbose", false, "enable verbose debug logging")
	timings := fs.Bool("timings", false, "print per-phase timing breakdown after output")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: crossing scan [flags] <path>")
		return 2
	}
	root := fs.Arg(0)

	opts := scanner.Options{DetectImplicit: *implicit, ToolVersion: version}

	if *configFile != "" {
		cfg, err := scanner.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load config:", err)
			return 2
		}
		if cfg.Implicit {
			opts.DetectImplicit = true
		}
		if cfg.MinRisk != "" {
			*minRisk = cfg.MinRisk
		}
		if cfg.MinToolVersion != "" {
			ok, err := scanner.CheckToolVersion(version, cfg.MinToolVersion)
			if err != nil {
				fmt.Fprintln(os.Stderr, "config:", err)
				return 2
			}
			if !ok {
				fmt.Fprintf(os.Stderr, "tool version %s does not satisfy min_tool_version %s\n", version, cfg.MinToolVersion)
				return 2
			}
		}
	}

	switch *minRisk {
	case "", "low", "medium", "elevated", "high":
		if *minRisk != "" {
			opts.MinRisk = model.RiskLevel(*minRisk)
		}
	default:
		fmt.Fprintf(os.Stderr, "--min-risk must be low|medium|elevated|high, got %q\n", *minRisk)
		return 2
	}
	switch *format {
	case "text", "json":
	default:
		fmt.Fprintf(os.Stderr, "--format must be text|json, got %q\n", *format)
		return 2
	}

	if *verbose {
		walklog.SetVerbose(true)
	}

	info, err := os.Stat(root)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scan:", err)
		return 1
	}
	if !info.IsDir() && !strings.HasSuffix(root, ".py") {
		fmt.Fprintln(os.Stderr, "scan: path is neither a directory nor a .py file")
		return 1
	}

	t0 := time.Now()
	sr, err := scanner.Scan(root, opts)
	scanDur := time.Since(t0)
	if err != nil {
		fmt.Fprintln(os.Stderr, "scan:", err)
		return 1
	}

	t1 := time.Now()
	var writeErr error
	switch *format {
	case "json":
		writeErr = report.WriteScanJSON(os.Stdout, sr)
	default:
		report.WriteScan(os.Stdout, sr)
	}
	outDur := time.Since(t1)

	if writeErr != nil {
		fmt.Fprintln(os.Stderr, "write output:", writeErr)
		return 2
	}

	if *timings {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, "=== Timings ===")
		fmt.Fprintf(os.Stdout, "%-20s  %s\n", "scan", fmtDur(scanDur))
		fmt.Fprintf(os.Stdout, "%-20s  %s\n", "output formatting", fmtDur(outDur))
		fmt.Fprintln(os.Stdout, strings.Repeat("─", 32))
		fmt.Fprintf(os.Stdout, "%-20s  %s\n", "total", fmtDur(scanDur+outDur))
	}

	return 0
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.2fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
