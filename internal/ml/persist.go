package ml

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func init() {
	gob.Register(&RandomForest{})
	gob.Register(&GradientBoosting{})
}

const (
	modelFile         = "model.gob"
	labelEncodersFile = "label_encoders.gob"
	targetEncoderFile = "target_encoder.gob"
	scalerFile        = "scaler.gob"
	metadataFile      = "metadata.json"
)

// bundleFiles lists every file a complete artifact bundle must contain.
var bundleFiles = []string{modelFile, labelEncodersFile, targetEncoderFile, scalerFile, metadataFile}

// ArtifactError reports an incomplete or internally inconsistent bundle.
type ArtifactError struct {
	Dir    string
	Reason string
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact bundle %s: %s", e.Dir, e.Reason)
}

// metadata is the JSON sidecar written next to the gob files.
type metadata struct {
	ModelType           string    `json:"model_type"`
	Classes             []string  `json:"classes"`
	CategoricalFeatures []string  `json:"categorical_features"`
	NumericFeatures     []string  `json:"numeric_features"`
	RandomState         int64     `json:"random_state"`
	TrainedAt           time.Time `json:"trained_at"`
}

// Save writes the fitted state as a five-file bundle under dir. The write is
// atomic: everything goes to a staging directory first, which replaces dir
// with a rename only once all files are on disk. A crash mid-save leaves any
// previous bundle untouched.
func (c *SeverityClassifier) Save(dir string) error {
	if !c.Fitted() {
		return ErrModelNotFitted
	}

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("creating artifact parent: %w", err)
	}
	staging, err := os.MkdirTemp(parent, ".staging-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := writeGob(filepath.Join(staging, modelFile), &c.model); err != nil {
		return err
	}
	if err := writeGob(filepath.Join(staging, labelEncodersFile), c.encoders); err != nil {
		return err
	}
	if err := writeGob(filepath.Join(staging, targetEncoderFile), c.targetEncoder); err != nil {
		return err
	}
	if err := writeGob(filepath.Join(staging, scalerFile), c.scaler); err != nil {
		return err
	}

	meta := metadata{
		ModelType:           c.model.Type(),
		Classes:             c.targetEncoder.Classes,
		CategoricalFeatures: c.categorical,
		NumericFeatures:     c.numeric,
		RandomState:         c.randomState,
		TrainedAt:           c.trainedAt,
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(staging, metadataFile), raw, 0o644); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("removing previous bundle: %w", err)
	}
	if err := os.Rename(staging, dir); err != nil {
		return fmt.Errorf("publishing bundle: %w", err)
	}
	return nil
}

// Load restores a fitted state from a bundle directory. Every file must be
// present and the pieces must agree with each other; otherwise the classifier
// is left unchanged and an ArtifactError is returned.
func (c *SeverityClassifier) Load(dir string) error {
	for _, name := range bundleFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("missing %s", name)}
		}
	}

	raw, err := os.ReadFile(filepath.Join(dir, metadataFile))
	if err != nil {
		return fmt.Errorf("reading metadata: %w", err)
	}
	var meta metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("invalid metadata: %v", err)}
	}

	var model Model
	if err := readGob(filepath.Join(dir, modelFile), &model); err != nil {
		return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("decoding model: %v", err)}
	}
	encoders := make(map[string]*LabelEncoder)
	if err := readGob(filepath.Join(dir, labelEncodersFile), &encoders); err != nil {
		return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("decoding label encoders: %v", err)}
	}
	targetEncoder := &LabelEncoder{}
	if err := readGob(filepath.Join(dir, targetEncoderFile), targetEncoder); err != nil {
		return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("decoding target encoder: %v", err)}
	}
	scaler := &StandardScaler{}
	if err := readGob(filepath.Join(dir, scalerFile), scaler); err != nil {
		return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("decoding scaler: %v", err)}
	}

	if model.Type() != meta.ModelType {
		return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("model type %q does not match metadata %q", model.Type(), meta.ModelType)}
	}
	if len(meta.CategoricalFeatures) == 0 || len(meta.NumericFeatures) == 0 {
		return &ArtifactError{Dir: dir, Reason: "metadata lists no features"}
	}
	if scaler.Width() != len(meta.NumericFeatures) {
		return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("scaler width %d does not match %d numeric features", scaler.Width(), len(meta.NumericFeatures))}
	}
	for _, col := range meta.CategoricalFeatures {
		if enc, ok := encoders[col]; !ok || !enc.Fitted() {
			return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("no fitted encoder for feature %q", col)}
		}
	}
	if !targetEncoder.Fitted() {
		return &ArtifactError{Dir: dir, Reason: "target encoder is not fitted"}
	}
	if len(meta.Classes) != targetEncoder.NumClasses() {
		return &ArtifactError{Dir: dir, Reason: fmt.Sprintf("metadata lists %d classes, target encoder has %d", len(meta.Classes), targetEncoder.NumClasses())}
	}

	c.model = model
	c.encoders = encoders
	c.targetEncoder = targetEncoder
	c.scaler = scaler
	c.categorical = meta.CategoricalFeatures
	c.numeric = meta.NumericFeatures
	c.randomState = meta.RandomState
	c.trainedAt = meta.TrainedAt
	return nil
}

func writeGob(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := gob.NewEncoder(f).Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

func readGob(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewDecoder(f).Decode(v)
}
