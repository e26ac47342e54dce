// Package model defines the data types shared across the scan pipeline:
// raise sites, handler sites, call edges, import records, exception-parent
// bindings, and the semantic crossings derived from them.
package model

// RaiseSite is an explicit or implicit exception raise discovered by the
// Walker. Immutable once created.
type RaiseSite struct {
	File          string `json:"file"`
	Line          int    `json:"line"`
	ExceptionType string `json:"exception_type"`
	Function      string `json:"function"`
	Class         string `json:"class,omitempty"`
	Snippet       string `json:"-"`
	Context       string `json:"context,omitempty"`
	Implicit      bool   `json:"implicit"`
	TryScopeID    string `json:"-"` // empty means not inside a try body
	Message       string `json:"message,omitempty"`
}

// HandlerBody classifies the dominant behavior of an except-clause body.
type HandlerBody string

const (
	BodyReRaise HandlerBody = "re-raise"
	BodyReturn  HandlerBody = "return"
	BodyAssign  HandlerBody = "assign"
	BodyLog     HandlerBody = "log"
	BodyPass    HandlerBody = "pass"
	BodyOther   HandlerBody = "other"
)

// HandlerSite is an except clause discovered by the Walker.
type HandlerSite struct {
	File                string      `json:"file"`
	Line                int         `json:"line"`
	ExceptionType       string      `json:"exception_type"`
	Function            string      `json:"function"`
	Class               string      `json:"class,omitempty"`
	Body                HandlerBody `json:"body"`
	Snippet             string      `json:"-"`
	ReRaises            bool        `json:"re_raises"`
	ReturnsValue        bool        `json:"returns_value"`
	AssignsDefault      bool        `json:"assigns_default"`
	DirectRaisesInScope int         `json:"direct_raises_in_scope"`
}

// CallEdge is a caller -> callee call-graph edge. Caller is always
// file-qualified ("<file>:<function>") by the Walker; Callee starts
// unresolved (bare name as written) and is rewritten to the same
// "<file>:<function>" form by the Import Resolver where possible (the
// resolver returns new edges rather than mutating these).
type CallEdge struct {
	Caller string
	Callee string
	File   string
	Line   int
}

// ImportRecord is one `import` or `from ... import ...` statement.
type ImportRecord struct {
	Module string // dotted module path, e.g. "a.b.c"
	Name   string // imported name; empty for plain `import M`
	Alias  string // local binding name
}

// ExceptionParent is a child -> direct-parent exception class-name edge.
type ExceptionParent struct {
	Child  string
	Parent string
}

// InformationTheory holds the entropy/discrimination/loss metrics for one
// crossing.
type InformationTheory struct {
	SemanticEntropyBits       float64 `json:"semantic_entropy_bits"`
	HandlerDiscriminationBits float64 `json:"handler_discrimination_bits"`
	InformationLossBits       float64 `json:"information_loss_bits"`
	CollapseRatio             float64 `json:"collapse_ratio"`
}

// RiskLevel is the classification assigned to a SemanticCrossing.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskElevated RiskLevel = "elevated"
	RiskHigh     RiskLevel = "high"
)

// riskOrder gives a total order over RiskLevel for comparisons, sorting and
// --min-risk filtering. Grounded on capability.RiskLevel()'s threshold style
// in the teacher, generalized to an explicit ordered table since this
// domain's levels are categorical rather than score-derived.
var riskOrder = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskElevated: 2,
	RiskHigh:     3,
}

// RiskValue returns the ordinal rank of a risk level, for comparisons.
// Unknown levels rank below RiskLow.
func RiskValue(level RiskLevel) int {
	if v, ok := riskOrder[level]; ok {
		return v
	}
	return -1
}

// Upgrade raises a risk level one step for the scope-mismatch rule: low
// becomes medium and medium becomes high; elevated and high are returned
// unchanged.
func (r RiskLevel) Upgrade() RiskLevel {
	switch r {
	case RiskLow:
		return RiskMedium
	case RiskMedium:
		return RiskHigh
	default:
		return r
	}
}

// Downgrade returns the next risk level down, saturating at RiskLow.
func (r RiskLevel) Downgrade() RiskLevel {
	switch r {
	case RiskHigh:
		return RiskElevated
	case RiskElevated:
		return RiskMedium
	case RiskMedium:
		return RiskLow
	default:
		return r
	}
}

// SemanticCrossing is a family of raise sites and the handlers that
// associate with them, as derived by the Crossing Analyzer.
type SemanticCrossing struct {
	ExceptionType     string            `json:"exception_type"`
	RaiseSites        []RaiseSite       `json:"raise_sites"`
	HandlerSites      []HandlerSite     `json:"handler_sites"`
	IsPolymorphic     bool              `json:"is_polymorphic"`
	HasUniformHandler bool              `json:"has_uniform_handler"`
	RiskLevel         RiskLevel         `json:"risk_level"`
	Description       string            `json:"description"`
	InformationTheory InformationTheory `json:"information_theory"`
}

// Origin is a (function, class) pair identifying a raise site's lexical
// origin; multiple raises in one function/class count as one origin.
type Origin struct {
	Function string
	Class    string
}
