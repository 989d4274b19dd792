package lifecycle

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/observability"
	"github.com/lzjever/mbos-wso/internal/pipeline"
	"github.com/lzjever/mbos-wso/internal/spec"
)

type CreateInput struct {
	Name   string      `json:"name"`
	Repo   string      `json:"repo"`
	Branch string      `json:"branch,omitempty"`
	Sizing core.Sizing `json:"sizing"`
	Image  string      `json:"image,omitempty"`
	Owner  string      `json:"owner"`
}

// Create validates the input, allocates a uid and kicks off the creation
// pipeline. The uid is returned immediately; progress is observed through
// the tracker's subscription feed.
func (m *Manager) Create(ctx context.Context, in CreateInput) (string, error) {
	if err := core.ValidateName(in.Name); err != nil {
		return "", err
	}
	if in.Repo == "" {
		return "", core.NewAppError(core.ErrBadRequest, "repository url is required")
	}
	if err := core.ValidateSizing(in.Sizing); err != nil {
		return "", err
	}
	existing, err := m.store.FindWorkspaceByName(ctx, in.Name)
	if err != nil {
		return "", upstream(err)
	}
	if existing != nil {
		return "", core.NewAppError(core.ErrConflict, fmt.Sprintf("workspace %q already exists", in.Name))
	}

	ws := core.Workspace{
		Name:      in.Name,
		UID:       core.NewUID(),
		Repo:      in.Repo,
		Branch:    in.Branch,
		Sizing:    in.Sizing,
		Image:     in.Image,
		Owner:     in.Owner,
		CreatedAt: time.Now().UTC(),
	}

	m.tracker.Init(ws.UID)
	// The run is detached from the request context: a client disconnect
	// must not abort the creation.
	go m.runCreate(context.Background(), ws)

	return ws.UID, nil
}

// runCreate drives the pipeline: storage, then compute, then network,
// then persistence of the saved spec and metadata. A failure at any step
// marks the run failed and leaves already-created resources in place for
// the operator to inspect or delete.
func (m *Manager) runCreate(ctx context.Context, ws core.Workspace) {
	uid := ws.UID
	log := observability.OpLogger(m.log, string(core.ActionCreate), ws.Name, uid)
	taskID := m.recorder.Begin(core.ActionCreate, ws.Name)
	start := time.Now()

	fail := func(step pipeline.StepID, err error) {
		m.tracker.UpdateStep(uid, step, pipeline.StatusError)
		m.tracker.AppendLog(uid, "Error: "+err.Error())
		m.tracker.Finish(uid, pipeline.RunFailed)
		m.recorder.Complete(taskID, err)
		observability.CreationRunsTotal.WithLabelValues(string(pipeline.RunFailed)).Inc()
		log.Error("workspace creation failed", zap.String("step", string(step)), zap.Error(err))
	}

	stepStart := time.Now()
	m.tracker.UpdateStep(uid, pipeline.StepProvisioning, pipeline.StatusInProgress)
	m.tracker.AppendLog(uid, "Provisioning storage claim "+spec.PVCName(uid))
	if err := m.ensurePVC(ctx, ws); err != nil {
		fail(pipeline.StepProvisioning, err)
		return
	}
	m.tracker.UpdateStep(uid, pipeline.StepProvisioning, pipeline.StatusCompleted)
	observability.CreationStepDuration.WithLabelValues(string(pipeline.StepProvisioning)).Observe(time.Since(stepStart).Seconds())

	stepStart = time.Now()
	m.tracker.UpdateStep(uid, pipeline.StepCloning, pipeline.StatusInProgress)
	m.tracker.AppendLog(uid, "Creating compute unit "+spec.PodName(uid))
	pod, err := spec.BuildPod(ws, m.defaults)
	if err != nil {
		fail(pipeline.StepCloning, err)
		return
	}
	if _, err := m.gw.CreatePod(ctx, pod); err != nil {
		fail(pipeline.StepCloning, err)
		return
	}
	m.tracker.AppendLog(uid, "Cloning "+ws.Repo)
	m.tracker.AppendLog(uid, "Creating network endpoint "+spec.ServiceName(uid))
	if err := m.ensureService(ctx, ws); err != nil {
		fail(pipeline.StepCloning, err)
		return
	}
	m.tracker.UpdateStep(uid, pipeline.StepCloning, pipeline.StatusCompleted)
	observability.CreationStepDuration.WithLabelValues(string(pipeline.StepCloning)).Observe(time.Since(stepStart).Seconds())

	m.tracker.UpdateStep(uid, pipeline.StepFeatures, pipeline.StatusInProgress)
	m.tracker.AppendLog(uid, "Applying features")
	m.tracker.UpdateStep(uid, pipeline.StepFeatures, pipeline.StatusCompleted)

	m.tracker.UpdateStep(uid, pipeline.StepPostCreate, pipeline.StatusInProgress)
	m.tracker.AppendLog(uid, "Running post-create commands")

	// The submitted pod spec is snapshotted so a later start recreates
	// the pod identically even if global defaults have changed.
	if err := m.store.SavePodSpec(ctx, uid, pod); err != nil {
		fail(pipeline.StepPostCreate, err)
		return
	}
	ws.Running = true
	if err := m.store.SaveWorkspace(ctx, ws); err != nil {
		fail(pipeline.StepPostCreate, err)
		return
	}
	m.tracker.UpdateStep(uid, pipeline.StepPostCreate, pipeline.StatusCompleted)

	m.tracker.AppendLog(uid, "Workspace "+ws.Name+" ready")
	m.tracker.Finish(uid, pipeline.RunCompleted)
	m.recorder.Complete(taskID, nil)
	observability.CreationRunsTotal.WithLabelValues(string(pipeline.RunCompleted)).Inc()
	observability.LifecycleOpDuration.WithLabelValues(string(core.ActionCreate)).Observe(time.Since(start).Seconds())
	log.Info("workspace created", zap.Duration("took", time.Since(start)))
}

// ensurePVC creates the storage claim unless it already exists, which
// makes rebuild share the create path.
func (m *Manager) ensurePVC(ctx context.Context, ws core.Workspace) error {
	existing, err := m.gw.GetPVC(ctx, spec.PVCName(ws.UID))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	pvc, err := spec.BuildPVC(ws, m.defaults)
	if err != nil {
		return err
	}
	_, err = m.gw.CreatePVC(ctx, pvc)
	return err
}

func (m *Manager) ensureService(ctx context.Context, ws core.Workspace) error {
	existing, err := m.gw.GetService(ctx, spec.ServiceName(ws.UID))
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	_, err = m.gw.CreateService(ctx, spec.BuildService(ws))
	return err
}
