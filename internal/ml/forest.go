package ml

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// Model is the narrow contract a severity estimator fulfills. Both ensemble
// implementations are deterministic for a fixed seed.
type Model interface {
	Fit(X [][]float64, y []int, numClasses int) error
	PredictProba(x []float64) []float64
	FeatureImportances() []float64
	Type() string
}

// RandomForest is a bagged ensemble of gini CART trees with per-node feature
// subsampling (sqrt of the feature count). Probabilities are the average of
// the per-tree leaf distributions.
type RandomForest struct {
	NTrees          int
	MaxDepth        int
	MinSamplesSplit int
	Seed            int64

	Trees       []Tree
	NumClasses  int
	NumFeatures int
	Importances []float64
}

// NewRandomForest returns a forest with the default hyperparameters
// (100 trees, depth 20, minimum split 10).
func NewRandomForest(seed int64) *RandomForest {
	return &RandomForest{
		NTrees:          100,
		MaxDepth:        20,
		MinSamplesSplit: 10,
		Seed:            seed,
	}
}

// Type returns the model type identifier.
func (f *RandomForest) Type() string { return domain.ModelRandomForest }

// Fit trains the forest on the encoded feature matrix.
func (f *RandomForest) Fit(X [][]float64, y []int, numClasses int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("invalid training data: %d rows, %d labels", len(X), len(y))
	}
	if numClasses < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", numClasses)
	}

	n := len(X)
	p := len(X[0])
	f.NumClasses = numClasses
	f.NumFeatures = p
	f.Trees = make([]Tree, 0, f.NTrees)
	f.Importances = make([]float64, p)

	maxFeatures := int(math.Sqrt(float64(p)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	for t := 0; t < f.NTrees; t++ {
		rng := rand.New(rand.NewSource(f.Seed + int64(t)))

		// Bootstrap sample with replacement.
		samples := make([]int, n)
		for i := range samples {
			samples[i] = rng.Intn(n)
		}

		params := treeParams{
			maxDepth:        f.MaxDepth,
			minSamplesSplit: f.MinSamplesSplit,
			maxFeatures:     maxFeatures,
			rng:             rng,
		}
		tree := buildClassificationTree(X, y, numClasses, samples, params, f.Importances)
		f.Trees = append(f.Trees, tree)
	}

	normalize(f.Importances)
	return nil
}

// PredictProba returns the class probability vector for one encoded row.
func (f *RandomForest) PredictProba(x []float64) []float64 {
	probs := make([]float64, f.NumClasses)
	if len(f.Trees) == 0 {
		return probs
	}
	for i := range f.Trees {
		leaf := f.Trees[i].PredictProba(x)
		for c, p := range leaf {
			probs[c] += p
		}
	}
	inv := 1 / float64(len(f.Trees))
	for c := range probs {
		probs[c] *= inv
	}
	return probs
}

// FeatureImportances returns the normalized impurity-decrease importances.
func (f *RandomForest) FeatureImportances() []float64 {
	return f.Importances
}

// normalize scales a vector to sum to one, leaving all-zero vectors alone.
func normalize(v []float64) {
	total := 0.0
	for _, x := range v {
		total += x
	}
	if total == 0 {
		return
	}
	for i := range v {
		v[i] /= total
	}
}

// ArgMax returns the index of the largest value.
func ArgMax(v []float64) int {
	best, bestVal := 0, math.Inf(-1)
	for i, x := range v {
		if x > bestVal {
			best, bestVal = i, x
		}
	}
	return best
}
