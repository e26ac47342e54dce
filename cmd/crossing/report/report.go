// Package report implements the "report" subcommand: loads scan JSON (from
// a file, stdin, or by running a scan directly) and renders it as a
// markdown audit report via internal/mdreport — a thin CLI wrapper
// mirroring original_source/report.py's argparse surface, translated to
// Go's flag package in the teacher's subcommand style.
package report

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fridayops/crossing/internal/mdreport"
	"github.com/fridayops/crossing/internal/report"
	"github.com/fridayops/crossing/internal/scanner"
)

// Run executes the report subcommand and returns a process exit code.
func Run(args []string, version string) int {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	input := fs.String("input", "", "JSON file from 'crossing scan --format json'")
	scanPath := fs.String("scan", "", "directory to scan directly, instead of reading JSON")
	name := fs.String("name", "", "project name for the report header (required)")
	repo := fs.String("repo", "", "repository identifier, e.g. org/project")
	projectVersion := fs.String("version", "", "project version string")
	output := fs.String("output", "", "output file (default: stdout)")
	implicit := fs.Bool("implicit", false, "enable the implicit raise detector when using --scan")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "report: --name is required")
		return 2
	}

	var sr report.ScanReport
	switch {
	case *scanPath != "":
		var err error
		sr, err = scanner.Scan(*scanPath, scanner.Options{DetectImplicit: *implicit, ToolVersion: version})
		if err != nil {
			fmt.Fprintln(os.Stderr, "scan:", err)
			return 1
		}
	case *input != "":
		f, err := os.Open(*input)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load input:", err)
			return 2
		}
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&sr); err != nil {
			fmt.Fprintln(os.Stderr, "parse input:", err)
			return 2
		}
	default:
		if err := json.NewDecoder(os.Stdin).Decode(&sr); err != nil {
			fmt.Fprintln(os.Stderr, "parse stdin:", err)
			return 2
		}
	}

	toolVersion := sr.ToolVersion
	if toolVersion == "" {
		toolVersion = version
	}

	md := mdreport.Generate(sr, mdreport.Options{
		ProjectName: *name,
		Repo:        *repo,
		Version:     *projectVersion,
		ToolVersion: toolVersion,
	})

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintln(os.Stderr, "write output:", err)
			return 2
		}
		defer f.Close()
		w = f
	}

	if _, err := io.WriteString(w, md); err != nil {
		fmt.Fprintln(os.Stderr, "write output:", err)
		return 2
	}
	if *output != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", *output)
	}

	return 0
}
