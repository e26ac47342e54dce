// Package infotheory computes the closed-form entropy, discrimination,
// loss, and collapse-ratio metrics for a semantic crossing, grounded on
// the teacher's closed-form composite-scoring style (internal/priority/score.go)
// adapted to spec.md §4.7's exact formulas.
package infotheory

import (
	"math"

	"github.com/fridayops/crossing/internal/model"
)

// HandlerCapacity returns the capacity value for one handler's behavior
// flags: 1.0 for a re-raiser (preserves everything), 0.5 for a handler
// that both returns a value and assigns a default, 0.25 for an
// unclassified ("other") body, and 0.0 for a pure return/assign (destroys
// everything).
func HandlerCapacity(h model.HandlerSite) float64 {
	switch {
	case h.ReRaises:
		return 1.0
	case h.ReturnsValue && h.AssignsDefault:
		return 0.5
	case h.ReturnsValue || h.AssignsDefault:
		return 0.0
	default:
		return 0.25
	}
}

// Compute returns the information-theory metrics for a crossing with N
// distinct raise origins and the given associated handlers.
func Compute(originCount int, handlers []model.HandlerSite) model.InformationTheory {
	var entropy float64
	if originCount >= 2 {
		entropy = math.Log2(float64(originCount))
	}

	var discrimination float64
	if len(handlers) == 0 {
		discrimination = entropy
	} else {
		var sum float64
		for _, h := range handlers {
			sum += HandlerCapacity(h)
		}
		mean := sum / float64(len(handlers))
		discrimination = entropy * mean
	}

	loss := entropy - discrimination

	var collapse float64
	if entropy > 0 {
		collapse = loss / entropy
	}

	return model.InformationTheory{
		SemanticEntropyBits:       entropy,
		HandlerDiscriminationBits: discrimination,
		InformationLossBits:       loss,
		CollapseRatio:             collapse,
	}
}
