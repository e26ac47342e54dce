package mdreport

// benchmark is one project's crossing density data point, carried over
// verbatim from the accumulated-scans table this package is ported from.
type benchmark struct {
	Files     int
	Crossings int
	Elevated  int
	Density   float64
}

var benchmarks = map[string]benchmark{
	"flask":      {Files: 24, Crossings: 6, Elevated: 2, Density: 0.25},
	"requests":   {Files: 18, Crossings: 5, Elevated: 2, Density: 0.28},
	"rich":       {Files: 100, Crossings: 5, Elevated: 1, Density: 0.05},
	"celery":     {Files: 161, Crossings: 12, Elevated: 3, Density: 0.07},
	"httpx":      {Files: 23, Crossings: 3, Elevated: 0, Density: 0.13},
	"fastapi":    {Files: 47, Crossings: 0, Elevated: 0, Density: 0.0},
	"hypothesis": {Files: 103, Crossings: 29, Elevated: 7, Density: 0.28},
	"pytest":     {Files: 71, Crossings: 9, Elevated: 9, Density: 0.13},
	"click":      {Files: 17, Crossings: 11, Elevated: 4, Density: 0.65},
	"tqdm":       {Files: 31, Crossings: 7, Elevated: 3, Density: 0.23},
	"uvicorn":    {Files: 40, Crossings: 7, Elevated: 3, Density: 0.18},
	"invoke":     {Files: 47, Crossings: 12, Elevated: 3, Density: 0.26},
	"scrapy":     {Files: 113, Crossings: 23, Elevated: 8, Density: 0.20},
	"colorama":   {Files: 7, Crossings: 1, Elevated: 0, Density: 0.14},
}
