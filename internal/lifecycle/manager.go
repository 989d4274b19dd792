// Package lifecycle implements the workspace lifecycle operations:
// create, start, stop, delete, resize, rebuild, duplicate and bulk. It
// composes the spec builders, the cluster gateway and the metadata store,
// and reports creation progress through the pipeline tracker.
package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/kube"
	"github.com/lzjever/mbos-wso/internal/meta"
	"github.com/lzjever/mbos-wso/internal/pipeline"
	"github.com/lzjever/mbos-wso/internal/spec"
)

const (
	// stopGraceSeconds lets the editor flush state before the pod goes.
	stopGraceSeconds int64 = 30
	// deleteGraceSeconds applies to delete, rebuild and resize teardowns.
	deleteGraceSeconds int64 = 0
)

type Manager struct {
	gw       *kube.Gateway
	store    *meta.Store
	tracker  *pipeline.Tracker
	recorder *Recorder
	defaults spec.Defaults
	log      *zap.Logger
}

func NewManager(gw *kube.Gateway, store *meta.Store, tracker *pipeline.Tracker, defaults spec.Defaults, log *zap.Logger) *Manager {
	return &Manager{
		gw:       gw,
		store:    store,
		tracker:  tracker,
		recorder: NewRecorder(),
		defaults: defaults,
		log:      log,
	}
}

func (m *Manager) Tracker() *pipeline.Tracker { return m.tracker }
func (m *Manager) Recorder() *Recorder        { return m.recorder }

// resolveUID maps a caller-supplied reference (workspace name, uid, or
// pod name) to the workspace uid. Metadata is consulted first; when a
// failed create left resources without metadata, the resource labels
// serve as fallback.
func (m *Manager) resolveUID(ctx context.Context, ref string) (string, error) {
	if uid := spec.UIDFromPodName(ref); uid != "" {
		return uid, nil
	}
	if ws, err := m.store.Workspace(ctx, ref); err != nil {
		return "", err
	} else if ws != nil {
		return ws.UID, nil
	}
	if ws, err := m.store.FindWorkspaceByName(ctx, ref); err != nil {
		return "", err
	} else if ws != nil {
		return ws.UID, nil
	}
	selector := spec.LabelManagedBy + "=" + spec.ManagedByValue + "," + spec.LabelWorkspaceName + "=" + ref
	pvcs, err := m.gw.ListPVCs(ctx, selector)
	if err != nil {
		return "", err
	}
	if len(pvcs) > 0 {
		if uid := pvcs[0].Labels[spec.LabelWorkspaceUID]; uid != "" {
			return uid, nil
		}
	}
	pods, err := m.gw.ListPods(ctx, selector)
	if err != nil {
		return "", err
	}
	if len(pods) > 0 {
		if uid := pods[0].Labels[spec.LabelWorkspaceUID]; uid != "" {
			return uid, nil
		}
	}
	return "", core.NewAppError(core.ErrNotFound, "workspace "+ref+" not found")
}

// upstream converts a gateway error into the caller-facing taxonomy.
// AppErrors pass through untouched.
func upstream(err error) error {
	if err == nil {
		return nil
	}
	var app *core.AppError
	if errors.As(err, &app) {
		return err
	}
	return core.NewAppError(core.ErrUpstream, err.Error())
}
