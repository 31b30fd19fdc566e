package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// GradientBoosting is a multiclass gradient-boosted ensemble: each round fits
// one regression tree per class to the softmax pseudo-residuals and adds it
// to the raw scores with a shrinkage factor. Raw scores start at the class
// log-priors.
type GradientBoosting struct {
	NRounds         int
	MaxDepth        int
	MinSamplesSplit int
	LearningRate    float64
	Seed            int64

	InitScores  []float64
	Rounds      [][]Tree // [round][class]
	NumClasses  int
	NumFeatures int
	Importances []float64
}

// NewGradientBoosting returns a booster with the default hyperparameters
// (100 rounds, depth 10, learning rate 0.1).
func NewGradientBoosting(seed int64) *GradientBoosting {
	return &GradientBoosting{
		NRounds:         100,
		MaxDepth:        10,
		MinSamplesSplit: 10,
		LearningRate:    0.1,
		Seed:            seed,
	}
}

// Type returns the model type identifier.
func (g *GradientBoosting) Type() string { return domain.ModelGradientBoosting }

// Fit trains the booster on the encoded feature matrix.
func (g *GradientBoosting) Fit(X [][]float64, y []int, numClasses int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training data: %d rows, %d labels", len(X), len(y))
	}
	if numClasses < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", numClasses)
	}

	n := len(X)
	p := len(X[0])
	g.NumClasses = numClasses
	g.NumFeatures = p
	g.Importances = make([]float64, p)
	g.Rounds = make([][]Tree, 0, g.NRounds)

	// Raw scores start at the log of the class priors.
	g.InitScores = make([]float64, numClasses)
	counts := make([]float64, numClasses)
	for _, c := range y {
		counts[c]++
	}
	for c := range g.InitScores {
		prior := counts[c] / float64(n)
		if prior <= 0 {
			prior = 1e-9
		}
		g.InitScores[c] = math.Log(prior)
	}

	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = append([]float64(nil), g.InitScores...)
	}

	samples := make([]int, n)
	for i := range samples {
		samples[i] = i
	}
	residual := make([]float64, n)

	for round := 0; round < g.NRounds; round++ {
		rng := rand.New(rand.NewSource(g.Seed + int64(round)))
		params := treeParams{
			maxDepth:        g.MaxDepth,
			minSamplesSplit: g.MinSamplesSplit,
			rng:             rng,
		}

		roundTrees := make([]Tree, numClasses)
		for c := 0; c < numClasses; c++ {
			for i := range X {
				probs := softmax(scores[i])
				target := 0.0
				if y[i] == c {
					target = 1.0
				}
				residual[i] = target - probs[c]
			}
			roundTrees[c] = buildRegressionTree(X, residual, samples, params, g.Importances)
		}

		for i := range X {
			for c := 0; c < numClasses; c++ {
				scores[i][c] += g.LearningRate * roundTrees[c].PredictValue(X[i])
			}
		}
		g.Rounds = append(g.Rounds, roundTrees)
	}

	normalize(g.Importances)
	return nil
}

// PredictProba returns the softmax class probability vector for one row.
func (g *GradientBoosting) PredictProba(x []float64) []float64 {
	scores := append([]float64(nil), g.InitScores...)
	for _, roundTrees := range g.Rounds {
		for c := range roundTrees {
			scores[c] += g.LearningRate * roundTrees[c].PredictValue(x)
		}
	}
	return softmax(scores)
}

// FeatureImportances returns the normalized impurity-decrease importances.
func (g *GradientBoosting) FeatureImportances() []float64 {
	return g.Importances
}

func softmax(scores []float64) []float64 {
	max := math.Inf(-1)
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
