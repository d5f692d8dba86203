package pipeline

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadscout/internal/model"
	"github.com/sells-group/leadscout/internal/process"
	"github.com/sells-group/leadscout/internal/store"
)

// Service is the sole entry point exposed to the CLI and HTTP layers:
// it runs the orchestrator, finalizes records through the normalizer,
// wraps them in the response envelope, and records the run.
type Service struct {
	orch  *Orchestrator
	norm  *process.Normalizer
	store *store.Store
}

// NewService creates a Service. store may be nil.
func NewService(orch *Orchestrator, norm *process.Normalizer, st *store.Store) *Service {
	return &Service{orch: orch, norm: norm, store: st}
}

// Run executes a full search. A query matching nothing returns a
// success envelope with zero records; only programmer-error inputs
// (blank query, unknown mode) return an error.
func (s *Service) Run(ctx context.Context, query string, mode model.SearchMode) (model.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return model.SearchResponse{}, eris.New("pipeline: query must not be empty")
	}
	if mode != model.ModeDirectory && mode != model.ModeWebSearch {
		return model.SearchResponse{}, eris.Errorf("pipeline: unknown search mode %q", mode)
	}

	zap.L().Info("pipeline: starting search",
		zap.String("query", query),
		zap.String("mode", string(mode)),
	)

	raw := s.orch.Collect(ctx, query, mode)
	records := s.norm.Process(raw)

	resp := process.Envelope(query, records)

	if s.store != nil {
		if id, err := s.store.SaveRun(ctx, query, mode, records); err != nil {
			zap.L().Warn("pipeline: save run failed", zap.Error(err))
		} else {
			resp.RunID = id
		}
	}

	zap.L().Info("pipeline: search complete",
		zap.String("query", query),
		zap.Int("raw", len(raw)),
		zap.Int("records", len(records)),
	)
	return resp, nil
}
