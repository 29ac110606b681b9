// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"context"
	"fmt"
	"time"

	"github.com/labthesis/thesis-engine/pkg/types"
)

// Engine produces a summary of segmented text. Anything the engine writes
// as diagnostics is returned in stderr; the Summarizer treats non-empty
// stderr as failure.
type Engine interface {
	Run(ctx context.Context, segmented string) (stdout, stderr string, err error)
}

// ProcessEngine runs an external summarizer script: <python> <script> <text>.
type ProcessEngine struct {
	Python  string
	Script  string
	Timeout time.Duration
	runner  Runner
}

// NewProcessEngine creates a ProcessEngine from cfg. A nil runner uses os/exec.
func NewProcessEngine(cfg types.NLPConfig, runner Runner) *ProcessEngine {
	if runner == nil {
		runner = defaultRunner
	}
	return &ProcessEngine{
		Python:  orDefault(cfg.Python, "python3"),
		Script:  cfg.SummarizerScript,
		Timeout: cfg.Timeout,
		runner:  runner,
	}
}

func (p *ProcessEngine) Run(ctx context.Context, segmented string) (string, string, error) {
	if _, err := p.runner.LookPath(p.Python); err != nil {
		return "", "", fmt.Errorf("%w: %s not found", ErrExternalUnavailable, p.Python)
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	stdout, stderr, err := p.runner.Run(ctx, p.Python, []string{p.Script, segmented}, nil)
	if err != nil && ctx.Err() != nil {
		return string(stdout), string(stderr), ctx.Err()
	}
	if err != nil && len(stderr) == 0 {
		return string(stdout), "", fmt.Errorf("running %s: %w", p.Script, err)
	}
	return string(stdout), string(stderr), nil
}

// NewEngine builds the engine selected by cfg.Engine.
func NewEngine(cfg types.NLPConfig, runner Runner) (Engine, error) {
	switch cfg.Engine {
	case types.EngineProcess:
		if cfg.SummarizerScript == "" {
			return nil, &types.ValidationError{Param: "nlp.summarizer_script", Value: ""}
		}
		return NewProcessEngine(cfg, runner), nil
	case types.EngineLuhn, "":
		return NewLuhnEngine(), nil
	default:
		return nil, &types.ValidationError{Param: "nlp.engine", Value: string(cfg.Engine)}
	}
}
