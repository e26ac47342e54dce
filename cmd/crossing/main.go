package main

import (
	"fmt"
	"os"

	"github.com/fridayops/crossing/cmd/crossing/report"
	"github.com/fridayops/crossing/cmd/crossing/scan"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "scan":
		os.Exit(scan.Run(os.Args[2:], version))
	case "report":
		os.Exit(report.Run(os.Args[2:], version))
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand: %s\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `crossing — semantic exception boundary crossing analyzer for Python

Usage:
  crossing scan    [--format text|json] [--implicit] [--min-risk low|medium|elevated|high]
                   [--config crossing.yaml] [--verbose] [--timings] <path>
  crossing report  [--input scan.json | --scan <path>] --name <project>
                   [--repo org/project] [--version v1.2.3] [--output file.md] [--implicit]
  crossing version`)
}
