package lifecycle

import (
	"context"
	"sort"

	corev1 "k8s.io/api/core/v1"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/spec"
)

// List merges stored workspace metadata with live compute-unit state:
// Running reflects an existing, ready pod; Creating reflects an active
// pipeline run.
func (m *Manager) List(ctx context.Context) ([]core.Workspace, error) {
	workspaces, err := m.store.ListWorkspaces(ctx)
	if err != nil {
		return nil, upstream(err)
	}
	pods, err := m.gw.ListPods(ctx, spec.LabelManagedBy+"="+spec.ManagedByValue)
	if err != nil {
		return nil, upstream(err)
	}
	byUID := make(map[string]*corev1.Pod, len(pods))
	for i := range pods {
		byUID[pods[i].Labels[spec.LabelWorkspaceUID]] = &pods[i]
	}

	for i := range workspaces {
		pod := byUID[workspaces[i].UID]
		workspaces[i].Running = podReady(pod)
		workspaces[i].Creating = m.tracker.Active(workspaces[i].UID)
	}
	sort.Slice(workspaces, func(i, j int) bool { return workspaces[i].Name < workspaces[j].Name })
	return workspaces, nil
}

// Get returns one workspace by name with live state merged in.
// Returns (nil, nil) when no such workspace exists.
func (m *Manager) Get(ctx context.Context, name string) (*core.Workspace, error) {
	ws, err := m.store.FindWorkspaceByName(ctx, name)
	if err != nil {
		return nil, upstream(err)
	}
	if ws == nil {
		return nil, nil
	}
	pod, err := m.gw.GetPod(ctx, spec.PodName(ws.UID))
	if err != nil {
		return nil, upstream(err)
	}
	ws.Running = podReady(pod)
	ws.Creating = m.tracker.Active(ws.UID)
	return ws, nil
}

func podReady(pod *corev1.Pod) bool {
	if pod == nil || pod.Status.Phase != corev1.PodRunning {
		return false
	}
	for _, cond := range pod.Status.Conditions {
		if cond.Type == corev1.PodReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}
