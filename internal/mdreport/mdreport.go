// Package mdreport generates an audit-quality markdown report from a scan
// report — a direct port of original_source/report.py's generate_report
// and its helper functions, kept as a thin collaborator consumed by
// cmd/crossing/report rather than folded into the core analysis engine.
package mdreport

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fridayops/crossing/internal/hierarchy"
	"github.com/fridayops/crossing/internal/model"
	"github.com/fridayops/crossing/internal/report"
)

// Options configures one report generation.
type Options struct {
	ProjectName string
	Repo        string
	Version     string
	ToolVersion string
}

func riskSortKey(level model.RiskLevel) int {
	switch level {
	case model.RiskHigh:
		return 0
	case model.RiskElevated:
		return 1
	case model.RiskMedium:
		return 2
	default:
		return 3
	}
}

func classifyOverallRisk(crossings []model.SemanticCrossing) string {
	var high, elevated, medium int
	for _, c := range crossings {
		switch c.RiskLevel {
		case model.RiskHigh:
			high++
		case model.RiskElevated:
			elevated++
		case model.RiskMedium:
			medium++
		}
	}
	switch {
	case high >= 3:
		return "High"
	case high >= 1 || elevated >= 3:
		return "Medium-High"
	case elevated >= 1 || medium >= 3:
		return "Medium"
	case medium >= 1:
		return "Low-Medium"
	default:
		return "Low"
	}
}

func describeImpact(c model.SemanticCrossing) string {
	raiseCount := len(c.RaiseSites)
	handlerCount := len(c.HandlerSites)
	collapse := c.InformationTheory.CollapseRatio

	functions := make(map[string]bool)
	files := make(map[string]bool)
	for _, r := range c.RaiseSites {
		functions[r.Function] = true
		if r.File != "" {
			files[filepath.Base(r.File)] = true
		}
	}

	var reraiseCount, returnCount, defaultCount int
	for _, h := range c.HandlerSites {
		switch {
		case h.ReRaises:
			reraiseCount++
		case h.ReturnsValue:
			returnCount++
		case h.AssignsDefault:
			defaultCount++
		}
	}

	var parts []string

	switch {
	case raiseCount == 1:
		parts = append(parts, fmt.Sprintf("Single `%s` raise site — no semantic ambiguity.", c.ExceptionType))
	case len(files) > 1:
		parts = append(parts, fmt.Sprintf(
			"`%s` is raised at %d sites across %d files (%s), in %d different functions.",
			c.ExceptionType, raiseCount, len(files), strings.Join(sortedKeys(files), ", "), len(functions)))
	default:
		parts = append(parts, fmt.Sprintf(
			"`%s` is raised at %d sites in %d different functions.",
			c.ExceptionType, raiseCount, len(functions)))
	}

	switch {
	case handlerCount == 0:
		parts = append(parts, "No local handlers — the exception propagates to the caller with full semantic information preserved.")
	case handlerCount == 1:
		h := c.HandlerSites[0]
		action := "handles"
		switch {
		case h.ReRaises:
			action = "re-raises"
		case h.ReturnsValue:
			action = "returns a value"
		case h.AssignsDefault:
			action = "assigns a default"
		}
		parts = append(parts, fmt.Sprintf(
			"A single handler in `%s` %s. With %d raise sites funneling through one handler, semantic disambiguation is impossible.",
			h.Function, action, raiseCount))
	default:
		var behaviors []string
		if reraiseCount > 0 {
			behaviors = append(behaviors, fmt.Sprintf("%d re-raise", reraiseCount))
		}
		if returnCount > 0 {
			behaviors = append(behaviors, fmt.Sprintf("%d return", returnCount))
		}
		if defaultCount > 0 {
			behaviors = append(behaviors, fmt.Sprintf("%d assign default", defaultCount))
		}
		behaviorText := "various behaviors"
		if len(behaviors) > 0 {
			behaviorText = strings.Join(behaviors, ", ")
		}
		parts = append(parts, fmt.Sprintf("%d handlers (%s).", handlerCount, behaviorText))
	}

	if collapse > 0.5 {
		parts = append(parts, fmt.Sprintf(
			"Information collapse: %.0f%% of semantic information is lost (%.1f bits destroyed).",
			collapse*100, c.InformationTheory.InformationLossBits))
	}

	return strings.Join(parts, " ")
}

func generateRecommendation(c model.SemanticCrossing) string {
	raiseCount := len(c.RaiseSites)
	handlerCount := len(c.HandlerSites)

	var implicitCount int
	for _, r := range c.RaiseSites {
		if r.Implicit {
			implicitCount++
		}
	}
	explicitCount := raiseCount - implicitCount

	if handlerCount == 1 && raiseCount > 2 {
		h := c.HandlerSites[0]
		switch {
		case h.ReRaises:
			return "The single handler re-raises, so downstream handlers inherit the ambiguity. " +
				"Consider adding context (e.g., chaining with `raise ... from`) or using distinct exception subclasses."
		case h.ReturnsValue || h.AssignsDefault:
			return fmt.Sprintf(
				"Narrow the handler scope: isolate the specific call that may raise `%s` inside the try block, "+
					"so unrelated `%s` exceptions from other code paths aren't caught.", c.ExceptionType, c.ExceptionType)
		default:
			return fmt.Sprintf(
				"Consider using distinct exception subclasses for the %d different error conditions, "+
					"or narrow the handler to catch only from the expected call site.", raiseCount)
		}
	}

	if implicitCount > 0 && explicitCount > 0 && handlerCount > 0 {
		return fmt.Sprintf(
			"Handlers designed for explicit `%s` raises also catch %d implicit source(s) (dict access, type conversions, etc.). "+
				"Consider using `.get()` or EAFP patterns that don't conflate the implicit raises with the intentional ones.",
			c.ExceptionType, implicitCount)
	}

	if hierarchy.IsBuiltinException(c.ExceptionType) && raiseCount > 3 {
		return fmt.Sprintf(
			"`%s` is a broad built-in type carrying %d different meanings here. "+
				"Consider defining project-specific exception subclasses, or narrowing handler try-blocks to minimize the catch surface.",
			c.ExceptionType, raiseCount)
	}

	if handlerCount > 1 {
		return "Multiple handlers exist, which may provide adequate discrimination. " +
			"Verify that each handler's try-block scope only exposes the expected raise sites."
	}

	if c.RiskLevel == model.RiskLow {
		return "No action needed."
	}

	return fmt.Sprintf(
		"Review whether the %d handler(s) can distinguish between the %d different raise contexts.",
		handlerCount, raiseCount)
}

func affectedFiles(c model.SemanticCrossing, root string) []string {
	files := make(map[string]bool)
	for _, r := range c.RaiseSites {
		if r.File != "" {
			files[relTo(root, r.File)] = true
		}
	}
	for _, h := range c.HandlerSites {
		if h.File != "" {
			files[relTo(root, h.File)] = true
		}
	}
	return sortedKeys(files)
}

func relTo(root, file string) string {
	if root == "" {
		return file
	}
	if rel, err := filepath.Rel(root, file); err == nil {
		return rel
	}
	return file
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Generate renders a ScanReport as the markdown audit report.
func Generate(sr report.ScanReport, opts Options) string {
	crossings := make([]model.SemanticCrossing, len(sr.Crossings))
	copy(crossings, sr.Crossings)
	sort.SliceStable(crossings, func(i, j int) bool {
		return riskSortKey(crossings[i].RiskLevel) < riskSortKey(crossings[j].RiskLevel)
	})

	var significant []model.SemanticCrossing
	for _, c := range crossings {
		if c.RiskLevel == model.RiskHigh || c.RiskLevel == model.RiskElevated || c.RiskLevel == model.RiskMedium {
			significant = append(significant, c)
		}
	}

	s := sr.Summary
	density := 0.0
	if s.FilesScanned > 0 {
		density = float64(s.TotalCrossings) / float64(s.FilesScanned)
	}
	overallRisk := classifyOverallRisk(crossings)

	var high, elevated, medium, low int
	for _, c := range crossings {
		switch c.RiskLevel {
		case model.RiskHigh:
			high++
		case model.RiskElevated:
			elevated++
		case model.RiskMedium:
			medium++
		case model.RiskLow:
			low++
		}
	}

	scanDate := time.Now().UTC().Format("2006-01-02")

	var b strings.Builder
	w := func(format string, args ...interface{}) { fmt.Fprintf(&b, format+"\n", args...) }

	toolVersion := opts.ToolVersion
	if toolVersion == "" {
		toolVersion = "dev"
	}

	w("# Crossing Audit Report: %s", opts.ProjectName)
	w("")
	if opts.Repo != "" {
		w("**Project:** %s (%s)", opts.ProjectName, opts.Repo)
	} else {
		w("**Project:** %s", opts.ProjectName)
	}
	if opts.Version != "" {
		w("**Version:** %s", opts.Version)
	}
	w("**Scanned:** %s", scanDate)
	w("**Tool:** Crossing Semantic Scanner %s", toolVersion)
	w("")
	w("---")
	w("")

	w("## Executive Summary")
	w("")
	if s.TotalCrossings == 0 {
		w("%s has **zero semantic boundary crossings**. For a %d-file codebase with %d raise sites "+
			"and %d handlers, this is excellent — all exception handling is semantically unambiguous.",
			opts.ProjectName, s.FilesScanned, s.TotalRaises, s.TotalHandlers)
	} else {
		var breakdown []string
		if high > 0 {
			breakdown = append(breakdown, fmt.Sprintf("**%d high-risk**", high))
		}
		if elevated > 0 {
			breakdown = append(breakdown, fmt.Sprintf("**%d elevated-risk**", elevated))
		}
		if len(breakdown) == 0 && medium > 0 {
			breakdown = append(breakdown, fmt.Sprintf("**%d medium-risk**", medium))
		}
		breakdownText := "no significant"
		if len(breakdown) > 0 {
			breakdownText = strings.Join(breakdown, ", ")
		}
		w("%s has **%d semantic boundary crossing%s**, including %s findings. For a %d-file codebase "+
			"with %d raise sites and %d handlers, this gives a crossing density of %.2f per file.",
			opts.ProjectName, s.TotalCrossings, pluralS(s.TotalCrossings), breakdownText,
			s.FilesScanned, s.TotalRaises, s.TotalHandlers, density)

		if len(significant) > 0 {
			filesAffected := make(map[string]bool)
			for _, c := range significant {
				for _, f := range affectedFiles(c, s.Root) {
					filesAffected[f] = true
				}
			}
			if len(filesAffected) > 0 && len(filesAffected) <= 3 {
				keys := sortedKeys(filesAffected)
				quoted := make([]string, len(keys))
				for i, k := range keys {
					quoted[i] = "`" + k + "`"
				}
				w("")
				w("The significant findings are concentrated in %s.", strings.Join(quoted, ", "))
			}
		}

		w("")
		w("**Risk Level:** %s.", overallRisk)
	}
	w("")
	w("---")
	w("")

	w("## Scan Summary")
	w("")
	w("| Metric | Value |")
	w("|--------|-------|")
	w("| Files scanned | %d |", s.FilesScanned)
	w("| Raise sites | %d |", s.TotalRaises)
	w("| Exception handlers | %d |", s.TotalHandlers)
	w("| Total crossings | %d |", s.TotalCrossings)
	w("| High risk | %d |", high)
	w("| Elevated risk | %d |", elevated)
	w("| Medium risk | %d |", medium)
	w("| Low risk | %d |", low)
	if s.MeanCollapseRatio > 0 {
		w("| Mean collapse ratio | %.0f%% |", s.MeanCollapseRatio*100)
	}
	w("")
	w("---")
	w("")

	switch {
	case len(significant) > 0:
		w("## Findings")
		w("")
		for _, c := range significant {
			writeFinding(&b, c, s.Root)
		}
	case s.TotalCrossings > 0:
		w("## Findings")
		w("")
		verb := "is"
		if s.TotalCrossings != 1 {
			verb = "are"
		}
		w("All %d crossing%s %s low risk. No action required.", s.TotalCrossings, pluralS(s.TotalCrossings), verb)
		w("")
	}

	w("---")
	w("")

	w("## Benchmark Context")
	w("")
	w("| Project | Files | Crossings | Elevated+ | Density |")
	w("|---------|-------|-----------|-----------|---------|")
	w("| **%s** | **%d** | **%d** | **%d** | **%.2f** |",
		opts.ProjectName, s.FilesScanned, s.TotalCrossings, high+elevated, density)

	names := make([]string, 0, len(benchmarks))
	for name := range benchmarks {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return benchmarks[names[i]].Density > benchmarks[names[j]].Density })
	for _, name := range names {
		if strings.EqualFold(name, opts.ProjectName) {
			continue
		}
		bm := benchmarks[name]
		w("| %s | %d | %d | %d | %.2f |", name, bm.Files, bm.Crossings, bm.Elevated, bm.Density)
	}
	w("")

	if len(benchmarks) > 0 {
		var sum float64
		for _, bm := range benchmarks {
			sum += bm.Density
		}
		avg := sum / float64(len(benchmarks))
		switch {
		case density > avg*1.5:
			w("%s's crossing density (%.2f) is significantly above the benchmark average (%.2f).", opts.ProjectName, density, avg)
		case density < avg*0.5:
			w("%s's crossing density (%.2f) is well below the benchmark average (%.2f).", opts.ProjectName, density, avg)
		default:
			w("%s's crossing density (%.2f) is in line with the benchmark average (%.2f).", opts.ProjectName, density, avg)
		}
	}
	w("")
	w("---")
	w("")

	w("## Methodology")
	w("")
	w("Crossing performs static AST analysis on Python source files. It maps every `raise` statement to " +
		"every `except` handler that could catch it, then identifies **semantic boundary crossings** — places " +
		"where the same exception type is raised with different meanings in different contexts. No code is " +
		"executed; no network calls are made; no dependencies are required.")
	w("")
	w("Risk levels:")
	w("- **Low:** Single raise site or uniform semantics")
	w("- **Medium:** Multiple raise sites in different functions — handler may not distinguish")
	w("- **Elevated:** Many divergent raise sites — high chance of incorrect handling")
	w("- **High:** Handler collapse — many raise sites, very few handlers, ambiguous behavior")
	w("")
	w("---")
	w("")
	w("*Report generated by Crossing %s*  ", toolVersion)
	w("*Scan performed %s*", scanDate)

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeFinding(b *strings.Builder, c model.SemanticCrossing, root string) {
	w := func(format string, args ...interface{}) { fmt.Fprintf(b, format+"\n", args...) }

	risk := strings.ToUpper(string(c.RiskLevel))
	raises := c.RaiseSites
	handlers := c.HandlerSites
	files := affectedFiles(c, root)

	w("### %s RISK: `%s` — %d raise site%s, %d handler%s",
		risk, c.ExceptionType, len(raises), pluralS(len(raises)), len(handlers), pluralS(len(handlers)))
	w("")

	switch len(files) {
	case 0:
	case 1:
		w("**File:** `%s`", files[0])
	default:
		quoted := make([]string, len(files))
		for i, f := range files {
			quoted[i] = "`" + f + "`"
		}
		w("**Files:** %s", strings.Join(quoted, ", "))
	}

	w("**Impact:** %s", describeImpact(c))
	w("")

	w("**Raise sites:**")
	limit := 8
	for i, r := range raises {
		if i >= limit {
			break
		}
		relFile := relTo(root, r.File)
		kind := "raise"
		if r.Implicit {
			kind = "implicit"
		}
		detail := ""
		if r.Context != "" {
			detail = "— " + r.Context
		}
		if r.Message != "" {
			detail += fmt.Sprintf(` ("%s")`, truncate(r.Message, 60))
		}
		w("- `%s:%d` %s `%s` in `%s` %s", relFile, r.Line, kind, c.ExceptionType, r.Function, detail)
	}
	if len(raises) > limit {
		w("- ... and %d more", len(raises)-limit)
	}
	w("")

	if len(handlers) > 0 {
		w("**Handlers:**")
		hlimit := 5
		for i, h := range handlers {
			if i >= hlimit {
				break
			}
			relFile := relTo(root, h.File)
			action := "handles"
			switch {
			case h.ReRaises:
				action = "re-raises"
			case h.ReturnsValue:
				action = "returns"
			case h.AssignsDefault:
				action = "assigns default"
			}
			w("- `%s:%d` — except `%s` in `%s` (%s)", relFile, h.Line, c.ExceptionType, h.Function, action)
		}
		if len(handlers) > hlimit {
			w("- ... and %d more", len(handlers)-hlimit)
		}
		w("")
	}

	info := c.InformationTheory
	if info.SemanticEntropyBits > 0 {
		w("**Information theory:** %.1f bits entropy, %.1f bits lost, %.0f%% collapse",
			info.SemanticEntropyBits, info.InformationLossBits, info.CollapseRatio*100)
		w("")
	}

	w("**Recommendation:** %s", generateRecommendation(c))
	w("")
}
