// Package v1 defines the versioned HTTP request contracts.
package v1

// TrainRequest starts a training run over the selected years.
type TrainRequest struct {
	ModelType  string  `json:"model_type" validate:"omitempty,oneof=random_forest gradient_boosting"`
	TestSize   float64 `json:"test_size" validate:"omitempty,gt=0,lt=1"`
	Years      []int   `json:"years" validate:"omitempty,dive,min=2007,max=2100"`
	Trees      int     `json:"trees" validate:"omitempty,min=1,max=1000"`
	MaxDepth   int     `json:"max_depth" validate:"omitempty,min=1,max=64"`
	MinSplit   int     `json:"min_split" validate:"omitempty,min=2"`
	LearnRate  float64 `json:"learning_rate" validate:"omitempty,gt=0,lte=1"`
	RandomSeed int64   `json:"random_seed" validate:"omitempty,min=0"`
}

// PredictRequest scores rows against the loaded artifact bundle. Rows are
// column name to raw value maps, exactly as they appear in a cleaned extract.
type PredictRequest struct {
	Rows []map[string]string `json:"rows" validate:"required,min=1,max=10000,dive,required"`
}

// AnalysisRequest runs the full load → clean → features → insights pipeline.
type AnalysisRequest struct {
	Years []int `json:"years" validate:"omitempty,dive,min=2007,max=2100"`
}
