// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Stage is one named step of a pipeline run. Stages are closures so
// the orchestrator stays independent of the stage packages that depend
// on this one.
type Stage struct {
	Name string
	Run  func(ctx context.Context) error
}

// Orchestrator runs stages in order, stopping at the first failure.
type Orchestrator struct {
	stages []Stage
	logger *slog.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator) error

// WithOrchestratorLogger sets the logger. Defaults to slog.Default.
func WithOrchestratorLogger(logger *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) error {
		o.logger = logger
		return nil
	}
}

// NewOrchestrator builds an orchestrator over an ordered stage list.
func NewOrchestrator(stages []Stage, opts ...OrchestratorOption) (*Orchestrator, error) {
	if len(stages) == 0 {
		return nil, ErrNoStages
	}
	o := &Orchestrator{
		stages: stages,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "orchestrator")
	return o, nil
}

// Run executes the stages sequentially. The first stage error aborts
// the run; later stages do not execute. Cancellation is checked
// between stages, so a stage that returns cleanly after its context is
// cancelled still stops the run.
func (o *Orchestrator) Run(ctx context.Context) error {
	started := time.Now()
	for _, stage := range o.stages {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.logger.Info("stage starting", "stage", stage.Name)
		stageStarted := time.Now()
		if err := stage.Run(ctx); err != nil {
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}
		o.logger.Info("stage complete",
			"stage", stage.Name,
			"duration", time.Since(stageStarted).Round(time.Millisecond))
	}
	o.logger.Info("run complete",
		"stages", len(o.stages),
		"duration", time.Since(started).Round(time.Millisecond))
	return nil
}
