package ml

import (
	"math"
	"math/rand"
	"sort"
)

// Node is one node of a fitted decision tree, stored in a flat arena so the
// whole tree serializes as a single slice.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Leaf      bool
	// Value holds the class probability distribution for classification
	// trees, or a single element with the predicted value for regression.
	Value []float64
}

// Tree is a fitted CART decision tree. NumClasses is zero for regression.
type Tree struct {
	Nodes      []Node
	NumClasses int
}

// PredictProba walks the tree and returns the leaf class distribution.
func (t *Tree) PredictProba(x []float64) []float64 {
	return t.leaf(x).Value
}

// PredictValue walks a regression tree and returns the leaf value.
func (t *Tree) PredictValue(x []float64) float64 {
	return t.leaf(x).Value[0]
}

func (t *Tree) leaf(x []float64) *Node {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeParams bundle the growth limits shared by both tree kinds.
type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	maxFeatures     int // 0 means all features
	rng             *rand.Rand
}

// candidateFeatures returns the feature indices considered at one node.
func (p treeParams) candidateFeatures(numFeatures int) []int {
	if p.maxFeatures <= 0 || p.maxFeatures >= numFeatures {
		all := make([]int, numFeatures)
		for i := range all {
			all[i] = i
		}
		return all
	}
	return p.rng.Perm(numFeatures)[:p.maxFeatures]
}

// ---- classification ----

type classTreeBuilder struct {
	X          [][]float64
	y          []int
	numClasses int
	params     treeParams
	nodes      []Node
	// importances accumulates impurity decrease per feature, weighted by the
	// node sample share. The caller normalizes.
	importances []float64
	totalRows   float64
}

// buildClassificationTree grows a gini CART tree on the given sample indices.
func buildClassificationTree(X [][]float64, y []int, numClasses int, samples []int, p treeParams, importances []float64) Tree {
	b := &classTreeBuilder{
		X:           X,
		y:           y,
		numClasses:  numClasses,
		params:      p,
		importances: importances,
		totalRows:   float64(len(samples)),
	}
	b.grow(samples, 0)
	return Tree{Nodes: b.nodes, NumClasses: numClasses}
}

func (b *classTreeBuilder) grow(samples []int, depth int) int {
	counts := make([]float64, b.numClasses)
	for _, i := range samples {
		counts[b.y[i]]++
	}
	impurity := gini(counts, float64(len(samples)))

	nodeIdx := len(b.nodes)
	b.nodes = append(b.nodes, Node{})

	if depth >= b.params.maxDepth || len(samples) < b.params.minSamplesSplit || impurity == 0 {
		b.nodes[nodeIdx] = b.makeLeaf(counts, len(samples))
		return nodeIdx
	}

	feature, threshold, gain := b.bestSplit(samples, counts, impurity)
	if feature < 0 {
		b.nodes[nodeIdx] = b.makeLeaf(counts, len(samples))
		return nodeIdx
	}

	var left, right []int
	for _, i := range samples {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		b.nodes[nodeIdx] = b.makeLeaf(counts, len(samples))
		return nodeIdx
	}

	if b.importances != nil {
		b.importances[feature] += gain * float64(len(samples)) / b.totalRows
	}

	leftIdx := b.grow(left, depth+1)
	rightIdx := b.grow(right, depth+1)
	b.nodes[nodeIdx] = Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      leftIdx,
		Right:     rightIdx,
	}
	return nodeIdx
}

func (b *classTreeBuilder) makeLeaf(counts []float64, n int) Node {
	probs := make([]float64, b.numClasses)
	if n > 0 {
		for c, v := range counts {
			probs[c] = v / float64(n)
		}
	}
	return Node{Leaf: true, Value: probs}
}

// bestSplit scans candidate features for the threshold with the largest gini
// decrease. Returns feature -1 when no split improves impurity.
func (b *classTreeBuilder) bestSplit(samples []int, counts []float64, impurity float64) (int, float64, float64) {
	n := float64(len(samples))
	bestFeature, bestThreshold, bestGain := -1, 0.0, 1e-12

	sorted := make([]int, len(samples))
	leftCounts := make([]float64, b.numClasses)
	rightCounts := make([]float64, b.numClasses)

	for _, f := range b.params.candidateFeatures(len(b.X[samples[0]])) {
		copy(sorted, samples)
		sort.Slice(sorted, func(i, j int) bool {
			return b.X[sorted[i]][f] < b.X[sorted[j]][f]
		})

		for c := range leftCounts {
			leftCounts[c] = 0
			rightCounts[c] = counts[c]
		}

		for k := 0; k < len(sorted)-1; k++ {
			c := b.y[sorted[k]]
			leftCounts[c]++
			rightCounts[c]--

			v, next := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if v == next {
				continue
			}

			nLeft := float64(k + 1)
			nRight := n - nLeft
			weighted := nLeft/n*gini(leftCounts, nLeft) + nRight/n*gini(rightCounts, nRight)
			gain := impurity - weighted
			if gain > bestGain {
				bestFeature = f
				bestThreshold = (v + next) / 2
				bestGain = gain
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func gini(counts []float64, n float64) float64 {
	if n == 0 {
		return 0
	}
	sumSq := 0.0
	for _, c := range counts {
		p := c / n
		sumSq += p * p
	}
	return 1 - sumSq
}

// ---- regression ----

type regTreeBuilder struct {
	X           [][]float64
	y           []float64
	params      treeParams
	nodes       []Node
	importances []float64
	totalRows   float64
}

// buildRegressionTree grows a variance-reduction CART tree used by the
// gradient boosting stages.
func buildRegressionTree(X [][]float64, y []float64, samples []int, p treeParams, importances []float64) Tree {
	b := &regTreeBuilder{
		X:           X,
		y:           y,
		params:      p,
		importances: importances,
		totalRows:   float64(len(samples)),
	}
	b.grow(samples, 0)
	return Tree{Nodes: b.nodes}
}

func (b *regTreeBuilder) grow(samples []int, depth int) int {
	sum, sumSq := 0.0, 0.0
	for _, i := range samples {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(samples))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}

	nodeIdx := len(b.nodes)
	b.nodes = append(b.nodes, Node{})

	if depth >= b.params.maxDepth || len(samples) < b.params.minSamplesSplit || variance < 1e-12 {
		b.nodes[nodeIdx] = Node{Leaf: true, Value: []float64{mean}}
		return nodeIdx
	}

	feature, threshold, gain := b.bestSplit(samples, sum, sumSq, variance)
	if feature < 0 {
		b.nodes[nodeIdx] = Node{Leaf: true, Value: []float64{mean}}
		return nodeIdx
	}

	var left, right []int
	for _, i := range samples {
		if b.X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		b.nodes[nodeIdx] = Node{Leaf: true, Value: []float64{mean}}
		return nodeIdx
	}

	if b.importances != nil {
		b.importances[feature] += gain * n / b.totalRows
	}

	leftIdx := b.grow(left, depth+1)
	rightIdx := b.grow(right, depth+1)
	b.nodes[nodeIdx] = Node{
		Feature:   feature,
		Threshold: threshold,
		Left:      leftIdx,
		Right:     rightIdx,
	}
	return nodeIdx
}

func (b *regTreeBuilder) bestSplit(samples []int, sum, sumSq, variance float64) (int, float64, float64) {
	n := float64(len(samples))
	bestFeature, bestThreshold, bestGain := -1, 0.0, 1e-12

	sorted := make([]int, len(samples))

	for _, f := range b.params.candidateFeatures(len(b.X[samples[0]])) {
		copy(sorted, samples)
		sort.Slice(sorted, func(i, j int) bool {
			return b.X[sorted[i]][f] < b.X[sorted[j]][f]
		})

		leftSum, leftSumSq := 0.0, 0.0
		for k := 0; k < len(sorted)-1; k++ {
			yi := b.y[sorted[k]]
			leftSum += yi
			leftSumSq += yi * yi

			v, next := b.X[sorted[k]][f], b.X[sorted[k+1]][f]
			if v == next {
				continue
			}

			nLeft := float64(k + 1)
			nRight := n - nLeft
			leftVar := varianceOf(leftSum, leftSumSq, nLeft)
			rightVar := varianceOf(sum-leftSum, sumSq-leftSumSq, nRight)
			weighted := nLeft/n*leftVar + nRight/n*rightVar
			gain := variance - weighted
			if gain > bestGain {
				bestFeature = f
				bestThreshold = (v + next) / 2
				bestGain = gain
			}
		}
	}
	return bestFeature, bestThreshold, bestGain
}

func varianceOf(sum, sumSq, n float64) float64 {
	if n == 0 {
		return 0
	}
	mean := sum / n
	v := sumSq/n - mean*mean
	return math.Max(v, 0)
}
