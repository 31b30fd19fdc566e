package ml

import (
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// Accuracy returns the share of matching predictions.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 || len(yTrue) != len(yPred) {
		return 0
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

// ConfusionMatrix builds a k-by-k matrix where cell [i][j] counts rows whose
// true class is i and predicted class is j. Row sums therefore equal the
// per-class counts in the evaluated partition.
func ConfusionMatrix(yTrue, yPred []int, numClasses int) [][]int {
	m := make([][]int, numClasses)
	for i := range m {
		m[i] = make([]int, numClasses)
	}
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t >= 0 && t < numClasses && p >= 0 && p < numClasses {
			m[t][p]++
		}
	}
	return m
}

// ClassificationReport computes per-class precision, recall, F1 and support
// from true and predicted codes.
func ClassificationReport(yTrue, yPred []int, classes []string) []domain.ClassMetrics {
	k := len(classes)
	tp := make([]int, k)
	fp := make([]int, k)
	fn := make([]int, k)
	support := make([]int, k)

	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= k {
			continue
		}
		support[t]++
		if p == t {
			tp[t]++
		} else {
			fn[t]++
			if p >= 0 && p < k {
				fp[p]++
			}
		}
	}

	report := make([]domain.ClassMetrics, k)
	for c := 0; c < k; c++ {
		var precision, recall, f1 float64
		if tp[c]+fp[c] > 0 {
			precision = float64(tp[c]) / float64(tp[c]+fp[c])
		}
		if tp[c]+fn[c] > 0 {
			recall = float64(tp[c]) / float64(tp[c]+fn[c])
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		report[c] = domain.ClassMetrics{
			Class:     classes[c],
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   support[c],
		}
	}
	return report
}
