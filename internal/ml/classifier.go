package ml

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/khkk24/projeto-how-final/internal/dataset"
	"github.com/khkk24/projeto-how-final/pkg/contracts/domain"
)

// ErrModelNotFitted is returned when inference is requested before training
// or loading an artifact bundle.
var ErrModelNotFitted = errors.New("model has not been fitted")

// MissingFeatureError reports feature columns the input lacks.
type MissingFeatureError struct {
	Missing []string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("input is missing model features: %v", e.Missing)
}

// TrainOptions configure a training run. Zero values fall back to the
// defaults of the chosen model type.
type TrainOptions struct {
	ModelType    string
	TestSize     float64
	Trees        int
	MaxDepth     int
	MinSplit     int
	LearningRate float64
	Seed         int64
}

// DefaultCategoricalFeatures returns the categorical model features.
func DefaultCategoricalFeatures() []string {
	return []string{
		domain.ColState,
		domain.ColAccidentType,
		domain.ColCause,
		domain.ColRoadType,
		domain.ColRoadLayout,
		domain.ColWeather,
		domain.ColDayPhase,
		domain.ColRoadDirection,
		domain.ColWeekdayName,
		domain.ColDayPeriod,
	}
}

// DefaultNumericFeatures returns the numeric model features.
func DefaultNumericFeatures() []string {
	return []string{
		domain.ColHour,
		domain.ColMonth,
		domain.ColYear,
		domain.ColWeekdayNum,
		domain.ColKilometer,
		domain.ColVehicles,
		domain.ColPeople,
		domain.ColIsWeekend,
		domain.ColIsNight,
	}
}

// SeverityClassifier predicts the accident severity class from a cleaned,
// feature-built table. The fitted state (model, per-column label encoders,
// target encoder, scaler) always travels as one unit; see Save and Load.
//
// Unseen-category policy: categorical values never seen during training are
// encoded as the reserved UnknownValue bucket, deterministically, and are
// never an error.
type SeverityClassifier struct {
	categorical []string
	numeric     []string
	target      string
	randomState int64

	encoders      map[string]*LabelEncoder
	targetEncoder *LabelEncoder
	scaler        *StandardScaler
	model         Model
	trainedAt     time.Time

	logger *slog.Logger
}

// NewSeverityClassifier creates an unfitted classifier with the default
// feature set and seed 42.
func NewSeverityClassifier(logger *slog.Logger) *SeverityClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SeverityClassifier{
		categorical: DefaultCategoricalFeatures(),
		numeric:     DefaultNumericFeatures(),
		target:      domain.ColSeverity,
		randomState: 42,
		logger:      logger.With(slog.String("component", "ml.classifier")),
	}
}

// FeatureNames returns the model feature names, categorical block first.
func (c *SeverityClassifier) FeatureNames() []string {
	return append(append([]string(nil), c.categorical...), c.numeric...)
}

// Fitted reports whether the classifier carries a complete fitted state.
func (c *SeverityClassifier) Fitted() bool {
	return c.model != nil && c.targetEncoder != nil && c.targetEncoder.Fitted() &&
		c.scaler != nil && c.scaler.Fitted() && len(c.encoders) == len(c.categorical)
}

// Info describes the fitted artifact.
func (c *SeverityClassifier) Info() (domain.ArtifactInfo, error) {
	if !c.Fitted() {
		return domain.ArtifactInfo{}, ErrModelNotFitted
	}
	return domain.ArtifactInfo{
		ModelType:           c.model.Type(),
		Classes:             append([]string(nil), c.targetEncoder.Classes...),
		CategoricalFeatures: append([]string(nil), c.categorical...),
		NumericFeatures:     append([]string(nil), c.numeric...),
		RandomState:         c.randomState,
		TrainedAt:           c.trainedAt,
	}, nil
}

// Train fits the classifier on a cleaned, feature-built table and evaluates
// it on a stratified held-out partition. Encoders and the scaler are fitted
// on the training partition only.
func (c *SeverityClassifier) Train(ctx context.Context, t *dataset.Table, opts TrainOptions) (*domain.TrainSummary, error) {
	opts = c.fillDefaults(opts)
	c.randomState = opts.Seed

	if missing := c.missingColumns(t, true); len(missing) > 0 {
		return nil, &MissingFeatureError{Missing: missing}
	}

	// Only labeled rows participate in training.
	labeled := make([]int, 0, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		if !dataset.IsMissing(t.Cell(r, c.target)) {
			labeled = append(labeled, r)
		}
	}
	if len(labeled) < 10 {
		return nil, fmt.Errorf("not enough labeled rows to train: %d", len(labeled))
	}

	targets := make([]string, len(labeled))
	for i, r := range labeled {
		targets[i] = t.Cell(r, c.target)
	}
	targetEncoder := &LabelEncoder{}
	targetEncoder.Fit(targets)

	y := make([]int, len(labeled))
	for i, v := range targets {
		y[i] = targetEncoder.Transform(v)
	}

	trainIdx, testIdx, err := StratifiedSplit(y, opts.TestSize, opts.Seed)
	if err != nil {
		return nil, err
	}

	// Fit the per-column encoders on the training partition only; the test
	// partition then exercises the same unknown-bucket path production data
	// will hit.
	encoders := make(map[string]*LabelEncoder, len(c.categorical))
	for _, col := range c.categorical {
		values := make([]string, len(trainIdx))
		for i, li := range trainIdx {
			values[i] = t.Cell(labeled[li], col)
		}
		enc := &LabelEncoder{}
		enc.Fit(values)
		encoders[col] = enc
	}

	xTrain, yTrain := c.encodeRows(t, labeled, trainIdx, y, encoders, nil)
	if len(xTrain) < 2 {
		return nil, fmt.Errorf("not enough valid training rows after encoding: %d", len(xTrain))
	}

	scaler := &StandardScaler{}
	numericBlock := make([][]float64, len(xTrain))
	for i, row := range xTrain {
		numericBlock[i] = row[len(c.categorical):]
	}
	if err := scaler.Fit(numericBlock); err != nil {
		return nil, err
	}
	if err := scaler.Transform(numericBlock); err != nil {
		return nil, err
	}

	xTest, yTest := c.encodeRows(t, labeled, testIdx, y, encoders, scaler)

	model, err := c.buildModel(opts)
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "training model",
		slog.String("model_type", opts.ModelType),
		slog.Int("train_rows", len(xTrain)),
		slog.Int("test_rows", len(xTest)),
		slog.Int("classes", targetEncoder.NumClasses()))

	if err := model.Fit(xTrain, yTrain, targetEncoder.NumClasses()); err != nil {
		return nil, fmt.Errorf("model fit failed: %w", err)
	}

	yPred := make([]int, len(xTest))
	for i, row := range xTest {
		yPred[i] = ArgMax(model.PredictProba(row))
	}

	c.encoders = encoders
	c.targetEncoder = targetEncoder
	c.scaler = scaler
	c.model = model
	c.trainedAt = time.Now().UTC()

	summary := &domain.TrainSummary{
		ModelType:       model.Type(),
		Accuracy:        Accuracy(yTest, yPred),
		Classes:         append([]string(nil), targetEncoder.Classes...),
		ConfusionMatrix: ConfusionMatrix(yTest, yPred, targetEncoder.NumClasses()),
		ClassReport:     ClassificationReport(yTest, yPred, targetEncoder.Classes),
		Importances:     c.rankedImportances(model),
		TrainRows:       len(xTrain),
		TestRows:        len(xTest),
		TrainedAt:       c.trainedAt,
	}

	c.logger.InfoContext(ctx, "training completed",
		slog.String("model_type", summary.ModelType),
		slog.Float64("accuracy", summary.Accuracy))
	return summary, nil
}

// Predict scores a cleaned, feature-built table with the fitted artifact.
// Encoders and the scaler are applied as fitted, never refit. Missing numeric
// cells are filled with the training mean; unseen categorical values map to
// the unknown bucket.
func (c *SeverityClassifier) Predict(ctx context.Context, t *dataset.Table) ([]domain.Prediction, error) {
	if !c.Fitted() {
		return nil, ErrModelNotFitted
	}
	if missing := c.missingColumns(t, false); len(missing) > 0 {
		return nil, &MissingFeatureError{Missing: missing}
	}

	predictions := make([]domain.Prediction, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		row := c.encodeRow(t, r)
		probs := c.model.PredictProba(row)

		best := ArgMax(probs)
		label, _ := c.targetEncoder.Inverse(best)

		probMap := make(map[string]float64, len(probs))
		for i, p := range probs {
			class, _ := c.targetEncoder.Inverse(i)
			probMap[class] = p
		}
		predictions[r] = domain.Prediction{
			Label:         label,
			Confidence:    probs[best],
			Probabilities: probMap,
		}
	}

	c.logger.InfoContext(ctx, "prediction completed", slog.Int("rows", t.NumRows()))
	return predictions, nil
}

// encodeRows builds the encoded matrix for the given split indices, dropping
// rows whose numeric cells do not parse. The scaler, when given, is applied
// to the numeric block in place.
func (c *SeverityClassifier) encodeRows(t *dataset.Table, labeled, split []int, y []int, encoders map[string]*LabelEncoder, scaler *StandardScaler) ([][]float64, []int) {
	var X [][]float64
	var kept []int

	for _, li := range split {
		r := labeled[li]
		row := make([]float64, 0, len(c.categorical)+len(c.numeric))

		for _, col := range c.categorical {
			row = append(row, float64(encoders[col].Transform(t.Cell(r, col))))
		}

		ok := true
		for _, col := range c.numeric {
			v, parsed := dataset.ParseNumber(t.Cell(r, col))
			if !parsed {
				ok = false
				break
			}
			row = append(row, v)
		}
		if !ok {
			continue
		}

		X = append(X, row)
		kept = append(kept, y[li])
	}

	if scaler != nil {
		for _, row := range X {
			scaler.Transform([][]float64{row[len(c.categorical):]})
		}
	}
	return X, kept
}

// encodeRow builds one inference vector. Unparseable numeric cells fall back
// to the training mean so they standardize to zero.
func (c *SeverityClassifier) encodeRow(t *dataset.Table, r int) []float64 {
	row := make([]float64, 0, len(c.categorical)+len(c.numeric))
	for _, col := range c.categorical {
		row = append(row, float64(c.encoders[col].Transform(t.Cell(r, col))))
	}
	for j, col := range c.numeric {
		v, parsed := dataset.ParseNumber(t.Cell(r, col))
		if !parsed {
			v = c.scaler.Mean[j]
		}
		row = append(row, v)
	}
	c.scaler.Transform([][]float64{row[len(c.categorical):]})
	return row
}

func (c *SeverityClassifier) missingColumns(t *dataset.Table, includeTarget bool) []string {
	var missing []string
	for _, col := range c.FeatureNames() {
		if !t.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if includeTarget && !t.HasColumn(c.target) {
		missing = append(missing, c.target)
	}
	return missing
}

func (c *SeverityClassifier) fillDefaults(opts TrainOptions) TrainOptions {
	if opts.ModelType == "" {
		opts.ModelType = domain.ModelRandomForest
	}
	if opts.TestSize == 0 {
		opts.TestSize = 0.2
	}
	if opts.Seed == 0 {
		opts.Seed = c.randomState
	}
	return opts
}

func (c *SeverityClassifier) buildModel(opts TrainOptions) (Model, error) {
	switch opts.ModelType {
	case domain.ModelRandomForest:
		m := NewRandomForest(opts.Seed)
		if opts.Trees > 0 {
			m.NTrees = opts.Trees
		}
		if opts.MaxDepth > 0 {
			m.MaxDepth = opts.MaxDepth
		}
		if opts.MinSplit > 0 {
			m.MinSamplesSplit = opts.MinSplit
		}
		return m, nil
	case domain.ModelGradientBoosting:
		m := NewGradientBoosting(opts.Seed)
		if opts.Trees > 0 {
			m.NRounds = opts.Trees
		}
		if opts.MaxDepth > 0 {
			m.MaxDepth = opts.MaxDepth
		}
		if opts.MinSplit > 0 {
			m.MinSamplesSplit = opts.MinSplit
		}
		if opts.LearningRate > 0 {
			m.LearningRate = opts.LearningRate
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported model type %q", opts.ModelType)
	}
}

// rankedImportances pairs importances with feature names, sorted descending.
func (c *SeverityClassifier) rankedImportances(model Model) []domain.FeatureImportance {
	names := c.FeatureNames()
	raw := model.FeatureImportances()
	out := make([]domain.FeatureImportance, 0, len(names))
	for i, name := range names {
		score := 0.0
		if i < len(raw) {
			score = raw[i]
		}
		out = append(out, domain.FeatureImportance{Feature: name, Importance: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Importance > out[j].Importance
	})
	return out
}
