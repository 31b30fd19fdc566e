package operations

import (
	"sync"
	"time"
)

// OperationStatus is the overall status of an operation.
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// Context keys steps use to hand results to each other.
const (
	ContextKeyYears        = "years"
	ContextKeyTable        = "table"
	ContextKeyFiles        = "files"
	ContextKeySkippedRows  = "skipped_rows"
	ContextKeyRowsBefore   = "rows_before_clean"
	ContextKeyRowsAfter    = "rows_after_clean"
	ContextKeyTrainSummary = "train_summary"
)

// OperationState is the complete state of one operation execution.
type OperationState struct {
	mu sync.RWMutex

	ID        string          `json:"id"`
	Status    OperationStatus `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`

	Steps []*StepState `json:"steps"`

	// Context carries intermediate results between steps. It is not
	// serialized; the loaded table can be large.
	context map[string]any

	Error string `json:"error,omitempty"`
}

// NewOperationState creates a pending operation.
func NewOperationState(id string) *OperationState {
	return &OperationState{
		ID:      id,
		Status:  OperationStatusPending,
		context: make(map[string]any),
	}
}

// Start marks the operation running.
func (o *OperationState) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Status = OperationStatusRunning
	o.StartTime = time.Now()
}

// Complete marks the operation completed.
func (o *OperationState) Complete() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusCompleted
}

// Fail marks the operation failed.
func (o *OperationState) Fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusFailed
	o.Error = err.Error()
}

// Cancel marks the operation cancelled.
func (o *OperationState) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusCancelled
}

// AddStep registers a step state.
func (o *OperationState) AddStep(s *StepState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Steps = append(o.Steps, s)
}

// Step returns a step state by ID, or nil.
func (o *OperationState) Step(id string) *StepState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, s := range o.Steps {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// SetContext stores an intermediate result.
func (o *OperationState) SetContext(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.context[key] = value
}

// GetContext reads an intermediate result.
func (o *OperationState) GetContext(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.context[key]
	return v, ok
}

// CurrentStatus returns the status under the read lock.
func (o *OperationState) CurrentStatus() OperationStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Status
}

// Snapshot returns a serializable copy of the operation and its steps.
func (o *OperationState) Snapshot() map[string]any {
	o.mu.RLock()
	defer o.mu.RUnlock()

	steps := make([]StepState, 0, len(o.Steps))
	for _, s := range o.Steps {
		steps = append(steps, s.Snapshot())
	}
	snap := map[string]any{
		"id":         o.ID,
		"status":     o.Status,
		"start_time": o.StartTime,
		"steps":      steps,
	}
	if o.EndTime != nil {
		snap["end_time"] = *o.EndTime
	}
	if o.Error != "" {
		snap["error"] = o.Error
	}
	return snap
}
