package domain

import "time"

// Model type identifiers accepted by the train operation.
const (
	ModelRandomForest     = "random_forest"
	ModelGradientBoosting = "gradient_boosting"
)

// ClassMetrics holds per-class evaluation metrics on the held-out partition.
type ClassMetrics struct {
	Class     string  `json:"class"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// FeatureImportance pairs a feature name with its importance score.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// TrainSummary is the API-facing result of a training run.
type TrainSummary struct {
	ModelType       string              `json:"model_type"`
	Accuracy        float64             `json:"accuracy"`
	Classes         []string            `json:"classes"`
	ConfusionMatrix [][]int             `json:"confusion_matrix"`
	ClassReport     []ClassMetrics      `json:"class_report"`
	Importances     []FeatureImportance `json:"feature_importances"`
	TrainRows       int                 `json:"train_rows"`
	TestRows        int                 `json:"test_rows"`
	TrainedAt       time.Time           `json:"trained_at"`
}

// Prediction is one scored row: the predicted severity label plus the
// probability assigned to every class. Confidence is the maximum probability.
type Prediction struct {
	Label         string             `json:"label"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// ArtifactInfo describes the currently loaded model artifact bundle.
type ArtifactInfo struct {
	ModelType           string    `json:"model_type"`
	Classes             []string  `json:"classes"`
	CategoricalFeatures []string  `json:"categorical_features"`
	NumericFeatures     []string  `json:"numeric_features"`
	RandomState         int64     `json:"random_state"`
	TrainedAt           time.Time `json:"trained_at"`
}
