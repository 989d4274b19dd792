package lifecycle

import (
	"context"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/observability"
)

type TargetResult struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type BulkResult struct {
	OK      bool           `json:"ok"`
	Results []TargetResult `json:"results"`
}

// Bulk applies one action to every target in order. A failing target is
// recorded and does not abort the rest; the response always carries one
// result per target, and OK only when every target succeeded.
func (m *Manager) Bulk(ctx context.Context, action core.Action, targets []string) (BulkResult, error) {
	switch action {
	case core.ActionStart, core.ActionStop, core.ActionDelete, core.ActionRebuild:
	case core.ActionResize, core.ActionDuplicate:
		return BulkResult{}, core.NewAppError(core.ErrBadRequest,
			string(action)+" needs per-target arguments and cannot run in bulk")
	case core.ActionCreate:
		return BulkResult{}, core.NewAppError(core.ErrBadRequest, "create cannot run in bulk")
	default:
		return BulkResult{}, core.NewAppError(core.ErrBadRequest, "unknown action")
	}
	if len(targets) == 0 {
		return BulkResult{}, core.NewAppError(core.ErrBadRequest, "no targets given")
	}

	result := BulkResult{OK: true, Results: make([]TargetResult, 0, len(targets))}
	for _, target := range targets {
		var err error
		switch action {
		case core.ActionStart:
			err = m.Start(ctx, target)
		case core.ActionStop:
			err = m.Stop(ctx, target)
		case core.ActionDelete:
			err = m.Delete(ctx, target)
		case core.ActionRebuild:
			err = m.Rebuild(ctx, target)
		}

		entry := TargetResult{Name: target, OK: err == nil}
		outcome := "ok"
		if err != nil {
			entry.Message = err.Error()
			result.OK = false
			outcome = "error"
		}
		observability.BulkTargetsTotal.WithLabelValues(string(action), outcome).Inc()
		result.Results = append(result.Results, entry)
	}
	return result, nil
}
