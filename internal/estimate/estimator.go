// Package estimate implements the size prediction heuristic and the
// similar-task ranking used when creating or importing tasks.
package estimate

import (
	"math/rand"
	"strings"

	"github.com/teamsizer/sizeup/internal/task"
)

// complexityKeywords are matched as substrings of the lower-cased title and
// description. Each keyword counts at most once per task.
var complexityKeywords = []string{
	"complex", "difficult", "challenging", "intricate",
	"refactor", "architecture", "redesign", "optimize", "security",
	"implement", "create", "build", "develop", "integration",
	"database", "api", "performance", "authentication", "authorization",
}

type Prediction struct {
	Size       task.Size `json:"size"`
	Points     int       `json:"points"`
	Confidence int       `json:"confidence"`
}

// Estimator scores task text into a T-shirt size. The random source only
// feeds the displayed confidence value; size and points are deterministic
// for a given input.
type Estimator struct {
	rng *rand.Rand
}

func NewEstimator(rng *rand.Rand) *Estimator {
	return &Estimator{rng: rng}
}

// Estimate maps the combined text to a size via keyword count plus a length
// factor. Thresholds are inclusive upper bounds: <=1 XS, <=3 S, <=5 M,
// <=7 L, <=9 XL, else XXL.
func (e *Estimator) Estimate(title, description string) Prediction {
	text := strings.ToLower(title + " " + description)
	wordCount := len(strings.Fields(text))

	complexityScore := 0
	for _, keyword := range complexityKeywords {
		if strings.Contains(text, keyword) {
			complexityScore++
		}
	}

	lengthFactor := wordCount / 20
	if lengthFactor > 3 {
		lengthFactor = 3
	}

	totalScore := complexityScore + lengthFactor

	var size task.Size
	var confidence int
	switch {
	case totalScore <= 1:
		size = task.SizeXS
		confidence = 70 + e.rng.Intn(15)
	case totalScore <= 3:
		size = task.SizeS
		confidence = 75 + e.rng.Intn(15)
	case totalScore <= 5:
		size = task.SizeM
		confidence = 80 + e.rng.Intn(15)
	case totalScore <= 7:
		size = task.SizeL
		confidence = 75 + e.rng.Intn(20)
	case totalScore <= 9:
		size = task.SizeXL
		confidence = 70 + e.rng.Intn(20)
	default:
		size = task.SizeXXL
		confidence = 65 + e.rng.Intn(25)
	}

	return Prediction{
		Size:       size,
		Points:     task.Points(size),
		Confidence: confidence,
	}
}
