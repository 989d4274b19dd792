package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/observability"
	"github.com/lzjever/mbos-wso/internal/spec"
)

// Start recreates the compute unit from the saved spec. The network
// endpoint and storage claim are expected to still exist and are left
// alone. The ref may be a workspace name, uid, or pod name.
func (m *Manager) Start(ctx context.Context, ref string) error {
	return m.recorded(core.ActionStart, ref, func() error {
		uid, err := m.resolveUID(ctx, ref)
		if err != nil {
			return err
		}
		saved, err := m.store.SavedPodSpec(ctx, uid)
		if err != nil {
			return upstream(err)
		}
		if saved == nil {
			return core.NewAppError(core.ErrPreconditionFailed,
				"no saved spec for "+spec.PodName(uid)+"; rebuild the workspace instead")
		}
		if _, err := m.gw.CreatePod(ctx, saved); err != nil {
			return upstream(err)
		}
		m.setRunning(ctx, uid, true)
		return nil
	})
}

// Stop deletes only the compute unit, with a grace period, keeping
// endpoint, claim and saved spec for a later start.
func (m *Manager) Stop(ctx context.Context, ref string) error {
	return m.recorded(core.ActionStop, ref, func() error {
		uid, err := m.resolveUID(ctx, ref)
		if err != nil {
			return err
		}
		if err := m.gw.DeletePod(ctx, spec.PodName(uid), stopGraceSeconds); err != nil {
			return upstream(err)
		}
		m.setRunning(ctx, uid, false)
		return nil
	})
}

// Delete removes everything derived from the workspace. Order matters:
// the compute unit goes first so a crash mid-delete never leaves a
// running pod pointing at a removed endpoint.
func (m *Manager) Delete(ctx context.Context, ref string) error {
	return m.recorded(core.ActionDelete, ref, func() error {
		uid, err := m.resolveUID(ctx, ref)
		if err != nil {
			return err
		}
		if err := m.gw.DeletePod(ctx, spec.PodName(uid), deleteGraceSeconds); err != nil {
			return upstream(err)
		}
		if err := m.gw.DeleteService(ctx, spec.ServiceName(uid)); err != nil {
			return upstream(err)
		}
		if err := m.gw.DeletePVC(ctx, spec.PVCName(uid)); err != nil {
			return upstream(err)
		}
		if err := m.store.DeleteWorkspace(ctx, uid); err != nil {
			return upstream(err)
		}
		if err := m.store.DeletePodSpec(ctx, uid); err != nil {
			return upstream(err)
		}
		return nil
	})
}

// Resize updates the workspace's declared sizing, replaces the saved
// spec, and recreates the pod when one is running.
func (m *Manager) Resize(ctx context.Context, ref string, sizing core.Sizing) error {
	return m.recorded(core.ActionResize, ref, func() error {
		if err := core.ValidateSizing(sizing); err != nil {
			return err
		}
		uid, err := m.resolveUID(ctx, ref)
		if err != nil {
			return err
		}
		ws, err := m.store.Workspace(ctx, uid)
		if err != nil {
			return upstream(err)
		}
		if ws == nil {
			return core.NewAppError(core.ErrNotFound, "workspace "+ref+" not found")
		}
		ws.Sizing = sizing

		pod, err := spec.BuildPod(*ws, m.defaults)
		if err != nil {
			return err
		}
		running, err := m.gw.GetPod(ctx, spec.PodName(uid))
		if err != nil {
			return upstream(err)
		}
		if err := m.store.SaveWorkspace(ctx, *ws); err != nil {
			return upstream(err)
		}
		if err := m.store.SavePodSpec(ctx, uid, pod); err != nil {
			return upstream(err)
		}
		if running == nil {
			return nil
		}
		if err := m.gw.DeletePod(ctx, spec.PodName(uid), deleteGraceSeconds); err != nil {
			return upstream(err)
		}
		if _, err := m.gw.CreatePod(ctx, pod); err != nil {
			return upstream(err)
		}
		return nil
	})
}

// Rebuild tears down the compute unit and drives the creation pipeline
// again for the same uid, re-initializing the creation log. Storage and
// endpoint survive and are reused.
func (m *Manager) Rebuild(ctx context.Context, ref string) error {
	return m.recorded(core.ActionRebuild, ref, func() error {
		uid, err := m.resolveUID(ctx, ref)
		if err != nil {
			return err
		}
		ws, err := m.store.Workspace(ctx, uid)
		if err != nil {
			return upstream(err)
		}
		if ws == nil {
			return core.NewAppError(core.ErrNotFound, "workspace "+ref+" not found")
		}
		if err := m.gw.DeletePod(ctx, spec.PodName(uid), deleteGraceSeconds); err != nil {
			return upstream(err)
		}
		m.tracker.Init(uid)
		go m.runCreate(context.Background(), *ws)
		return nil
	})
}

// Duplicate clones the source workspace's attributes under a new uid and
// name and runs a full creation for the clone.
func (m *Manager) Duplicate(ctx context.Context, ref, newName string) (string, error) {
	var newUID string
	err := m.recorded(core.ActionDuplicate, ref, func() error {
		if err := core.ValidateName(newName); err != nil {
			return err
		}
		uid, err := m.resolveUID(ctx, ref)
		if err != nil {
			return err
		}
		src, err := m.store.Workspace(ctx, uid)
		if err != nil {
			return upstream(err)
		}
		if src == nil {
			return core.NewAppError(core.ErrNotFound, "workspace "+ref+" not found")
		}
		if existing, err := m.store.FindWorkspaceByName(ctx, newName); err != nil {
			return upstream(err)
		} else if existing != nil {
			return core.NewAppError(core.ErrConflict, "workspace "+newName+" already exists")
		}

		clone := *src
		clone.UID = core.NewUID()
		clone.Name = newName
		clone.Running = false
		clone.Creating = false
		clone.ExpiryWarned = false
		clone.LastAccess = nil
		clone.CreatedAt = time.Now().UTC()

		m.tracker.Init(clone.UID)
		go m.runCreate(context.Background(), clone)
		newUID = clone.UID
		return nil
	})
	return newUID, err
}

// recorded wraps an operation with task-ring bookkeeping and metrics.
func (m *Manager) recorded(action core.Action, ref string, op func() error) error {
	taskID := m.recorder.Begin(action, ref)
	start := time.Now()
	err := op()
	m.recorder.Complete(taskID, err)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.LifecycleOpsTotal.WithLabelValues(string(action), outcome).Inc()
	observability.LifecycleOpDuration.WithLabelValues(string(action)).Observe(time.Since(start).Seconds())
	if err != nil {
		m.log.Warn("lifecycle operation failed",
			zap.String("action", string(action)), zap.String("ref", ref), zap.Error(err))
	} else {
		m.log.Info("lifecycle operation done",
			zap.String("action", string(action)), zap.String("ref", ref), zap.Duration("took", time.Since(start)))
	}
	return err
}

// setRunning updates the metadata running flag, best-effort.
func (m *Manager) setRunning(ctx context.Context, uid string, running bool) {
	ws, err := m.store.Workspace(ctx, uid)
	if err != nil || ws == nil {
		return
	}
	ws.Running = running
	now := time.Now().UTC()
	ws.LastAccess = &now
	if err := m.store.SaveWorkspace(ctx, *ws); err != nil {
		m.log.Warn("updating workspace metadata failed", zap.String("uid", uid), zap.Error(err))
	}
}
