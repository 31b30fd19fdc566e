package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/khkk24/projeto-how-final/internal/websocket"
)

// Manager executes operations sequentially and broadcasts progress over the
// WebSocket hub. The hub may be nil for CLI use.
type Manager struct {
	hub    *websocket.Hub
	logger *slog.Logger

	mu         sync.RWMutex
	operations map[string]*OperationState
}

// NewManager creates an operation manager.
func NewManager(hub *websocket.Hub, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		hub:        hub,
		logger:     logger.With(slog.String("component", "operations.manager")),
		operations: make(map[string]*OperationState),
	}
}

// Execute runs the steps in order against a fresh operation state. The first
// failing step fails the whole operation; remaining steps are marked skipped.
func (m *Manager) Execute(ctx context.Context, steps []Step) (*OperationState, error) {
	id := uuid.New().String()
	state := NewOperationState(id)
	for _, step := range steps {
		state.AddStep(NewStepState(step.ID(), step.Name()))
	}

	m.mu.Lock()
	m.operations[id] = state
	m.mu.Unlock()

	state.Start()
	m.broadcast(ctx, websocket.TypeOperationStatus, state)
	m.logger.InfoContext(ctx, "operation started",
		slog.String("operation_id", id),
		slog.Int("steps", len(steps)))

	var failed error
	for _, step := range steps {
		stepState := state.Step(step.ID())

		if failed != nil {
			stepState.Skip("previous step failed")
			continue
		}
		if err := ctx.Err(); err != nil {
			state.Cancel()
			m.broadcast(ctx, websocket.TypeOperationStatus, state)
			return state, err
		}

		if err := step.Validate(state); err != nil {
			failed = fmt.Errorf("step %s validation: %w", step.ID(), err)
			stepState.Fail(err)
			m.broadcast(ctx, websocket.TypeOperationProgress, state)
			continue
		}

		stepState.Start()
		m.broadcast(ctx, websocket.TypeOperationProgress, state)
		m.logger.InfoContext(ctx, "step started",
			slog.String("operation_id", id),
			slog.String("step", step.ID()))

		if err := step.Execute(ctx, state); err != nil {
			failed = fmt.Errorf("step %s: %w", step.ID(), err)
			stepState.Fail(err)
			m.broadcast(ctx, websocket.TypeOperationProgress, state)
			m.logger.ErrorContext(ctx, "step failed",
				slog.String("operation_id", id),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			continue
		}

		stepState.Complete("")
		m.broadcast(ctx, websocket.TypeOperationProgress, state)
		m.logger.InfoContext(ctx, "step completed",
			slog.String("operation_id", id),
			slog.String("step", step.ID()))
	}

	if failed != nil {
		state.Fail(failed)
		m.broadcast(ctx, websocket.TypeOperationStatus, state)
		return state, failed
	}

	state.Complete()
	m.broadcast(ctx, websocket.TypeOperationComplete, state)
	m.logger.InfoContext(ctx, "operation completed", slog.String("operation_id", id))
	return state, nil
}

// Get returns a past or running operation by ID.
func (m *Manager) Get(id string) (*OperationState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.operations[id]
	return state, ok
}

func (m *Manager) broadcast(ctx context.Context, messageType string, state *OperationState) {
	if m.hub == nil {
		return
	}
	m.hub.Broadcast(ctx, messageType, state.Snapshot())
}
