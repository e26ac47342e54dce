// Package scanner is the Report Aggregator: it walks a filesystem tree,
// runs the Walker over every Python file in parallel, resolves call edges,
// builds the call graph and exception hierarchy, runs the Crossing
// Analyzer, and assembles the final scan report — grounded on the
// teacher's cmd/gorisk/scan/scan.go phase-timing/orchestration shape and
// other_examples/0fc28942_..._throws.go.go's errgroup fan-out-then-merge.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/fridayops/crossing/internal/callgraph"
	"github.com/fridayops/crossing/internal/crossing"
	"github.com/fridayops/crossing/internal/hierarchy"
	"github.com/fridayops/crossing/internal/model"
	"github.com/fridayops/crossing/internal/report"
	"github.com/fridayops/crossing/internal/resolver"
	"github.com/fridayops/crossing/internal/walker"
	"github.com/fridayops/crossing/internal/walklog"
)

// Options controls one scan run.
type Options struct {
	DetectImplicit bool
	MinRisk        model.RiskLevel // empty means no filtering
	ToolVersion    string
}

// fileResult is one file's walk outcome, or an error if the file could not
// be read or parsed.
type fileResult struct {
	path string
	res  *walker.Result
	err  error
}

// Scan walks root (a directory or a single Python file), analyzes every
// Python source file found, and returns the assembled report.
func Scan(root string, opts Options) (report.ScanReport, error) {
	info, err := os.Stat(root)
	if err != nil {
		return report.ScanReport{}, err
	}

	files, err := discoverFiles(root, info)
	if err != nil {
		return report.ScanReport{}, err
	}

	walklog.Infof("discovered %d python file(s) under %s", len(files), root)

	results := runWalkers(files, opts.DetectImplicit)

	var (
		allRaises   []model.RaiseSite
		allHandlers []model.HandlerSite
		allEdges    []model.CallEdge
		allParents  []model.ExceptionParent
		fileInfos   []resolver.FileInfo
		parseErrors int
	)
	for _, r := range results {
		if r.err != nil {
			walklog.Warnf("skip %s: %v", r.path, r.err)
			parseErrors++
			continue
		}
		allRaises = append(allRaises, r.res.Raises...)
		allHandlers = append(allHandlers, r.res.Handlers...)
		allEdges = append(allEdges, r.res.Edges...)
		allParents = append(allParents, r.res.Parents...)
		fileInfos = append(fileInfos, resolver.FileInfo{
			File:         r.path,
			Imports:      r.res.Imports,
			TopLevelDefs: r.res.TopLevelDefs,
		})
	}

	resolvedEdges := resolver.Resolve(fileInfos, allEdges, files)
	g := callgraph.New(resolvedEdges)
	h := hierarchy.Build(allParents)
	crossings := crossing.Analyze(allRaises, allHandlers, h, g)

	if opts.MinRisk != "" {
		crossings = filterByMinRisk(crossings, opts.MinRisk)
	}

	summary := buildSummary(root, len(files), parseErrors, allRaises, allHandlers, crossings)

	return report.ScanReport{
		ToolVersion: opts.ToolVersion,
		Summary:     summary,
		Crossings:   crossings,
	}, nil
}

// discoverFiles returns every Python source file under root in
// deterministic (lexical) order, skipping hidden directories and
// non-Python files. A single .py file passed as root is returned as-is.
func discoverFiles(root string, info os.FileInfo) ([]string, error) {
	if !info.IsDir() {
		return []string{root}, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// runWalkers fans the per-file Walker pass out over a bounded worker pool
// and merges results back into a slice indexed by file, so the merge
// itself stays single-threaded and deterministic.
func runWalkers(files []string, detectImplicit bool) []fileResult {
	results := make([]fileResult, len(files))

	workers := runtime.NumCPU()
	if workers > len(files) {
		workers = len(files)
	}
	if workers < 1 {
		workers = 1
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			results[i].path = path
			content, err := os.ReadFile(path)
			if err != nil {
				results[i].err = err
				return nil
			}
			res, err := walker.WalkFile(path, content, detectImplicit)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].res = res
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func filterByMinRisk(crossings []model.SemanticCrossing, minRisk model.RiskLevel) []model.SemanticCrossing {
	threshold := model.RiskValue(minRisk)
	out := make([]model.SemanticCrossing, 0, len(crossings))
	for _, c := range crossings {
		if model.RiskValue(c.RiskLevel) >= threshold {
			out = append(out, c)
		}
	}
	return out
}

func buildSummary(root string, filesScanned, parseErrors int, raises []model.RaiseSite, handlers []model.HandlerSite, crossings []model.SemanticCrossing) report.Summary {
	s := report.Summary{
		Root:          root,
		FilesScanned:  filesScanned,
		ParseErrors:   parseErrors,
		TotalRaises:   len(raises),
		TotalHandlers: len(handlers),
	}
	for _, r := range raises {
		if r.Implicit {
			s.ImplicitRaises++
		} else {
			s.ExplicitRaises++
		}
	}

	s.TotalCrossings = len(crossings)
	var lossSum, ratioSum float64
	for _, c := range crossings {
		if c.IsPolymorphic {
			s.PolymorphicCrossings++
		}
		if model.RiskValue(c.RiskLevel) >= model.RiskValue(model.RiskElevated) {
			s.RiskyCrossings++
		}
		lossSum += c.InformationTheory.InformationLossBits
		ratioSum += c.InformationTheory.CollapseRatio
	}
	s.TotalInformationLossBits = lossSum
	if len(crossings) > 0 {
		s.MeanCollapseRatio = ratioSum / float64(len(crossings))
	}
	return s
}
