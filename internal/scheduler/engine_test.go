package scheduler

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/kube"
	"github.com/lzjever/mbos-wso/internal/lifecycle"
	"github.com/lzjever/mbos-wso/internal/meta"
	"github.com/lzjever/mbos-wso/internal/pipeline"
	"github.com/lzjever/mbos-wso/internal/spec"
)

func newEngine(t *testing.T) (*Engine, *meta.Store, *kube.Gateway) {
	t.Helper()
	client := fake.NewSimpleClientset()
	gw := kube.NewGateway(client, "workspaces")
	store := meta.NewStore(gw)
	manager := lifecycle.NewManager(gw, store, pipeline.NewTracker(),
		spec.Defaults{Image: "codercom/code-server:latest", DiskSize: "10Gi"}, zap.NewNop())
	return NewEngine(store, manager, time.Second, zap.NewNop()), store, gw
}

func TestTickFiresMatchingStopSchedule(t *testing.T) {
	e, store, gw := newEngine(t)
	ctx := context.Background()

	uid := "abc123def456"
	ws := core.Workspace{Name: "dev", UID: uid, Running: true}
	if err := store.SaveWorkspace(ctx, ws); err != nil {
		t.Fatal(err)
	}
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{
		Name:      spec.PodName(uid),
		Namespace: "workspaces",
	}}
	if _, err := gw.CreatePod(ctx, pod); err != nil {
		t.Fatal(err)
	}

	// Friday 2026-03-06 18:00.
	friday := time.Date(2026, 3, 6, 18, 0, 0, 0, time.Local)
	e.now = func() time.Time { return friday }

	sched := core.Schedule{Workspace: "dev", PodName: spec.PodName(uid),
		Action: core.ScheduleStop, Days: []int{5}, Hour: 18, Minute: 0}
	if err := store.SetSchedule(ctx, sched); err != nil {
		t.Fatal(err)
	}

	e.tick(ctx)

	if got, _ := gw.GetPod(ctx, spec.PodName(uid)); got != nil {
		t.Error("matching stop schedule did not delete the pod")
	}
}

func TestTickSkipsNonMatching(t *testing.T) {
	e, store, gw := newEngine(t)
	ctx := context.Background()

	uid := "abc123def456"
	if err := store.SaveWorkspace(ctx, core.Workspace{Name: "dev", UID: uid}); err != nil {
		t.Fatal(err)
	}
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: spec.PodName(uid), Namespace: "workspaces"}}
	if _, err := gw.CreatePod(ctx, pod); err != nil {
		t.Fatal(err)
	}

	friday := time.Date(2026, 3, 6, 18, 0, 0, 0, time.Local)
	e.now = func() time.Time { return friday }

	// Right day, wrong minute.
	sched := core.Schedule{Workspace: "dev", PodName: spec.PodName(uid),
		Action: core.ScheduleStop, Days: []int{5}, Hour: 18, Minute: 30}
	if err := store.SetSchedule(ctx, sched); err != nil {
		t.Fatal(err)
	}

	e.tick(ctx)

	if got, _ := gw.GetPod(ctx, spec.PodName(uid)); got == nil {
		t.Error("non-matching schedule fired")
	}
}

func TestDoubleFireWithinMinuteIsHarmless(t *testing.T) {
	e, store, gw := newEngine(t)
	ctx := context.Background()

	uid := "abc123def456"
	if err := store.SaveWorkspace(ctx, core.Workspace{Name: "dev", UID: uid}); err != nil {
		t.Fatal(err)
	}
	pod := &corev1.Pod{ObjectMeta: metav1.ObjectMeta{Name: spec.PodName(uid), Namespace: "workspaces"}}
	if _, err := gw.CreatePod(ctx, pod); err != nil {
		t.Fatal(err)
	}

	friday := time.Date(2026, 3, 6, 18, 0, 0, 0, time.Local)
	e.now = func() time.Time { return friday }
	sched := core.Schedule{Workspace: "dev", PodName: spec.PodName(uid),
		Action: core.ScheduleStop, Days: []int{5}, Hour: 18, Minute: 0}
	if err := store.SetSchedule(ctx, sched); err != nil {
		t.Fatal(err)
	}

	// Two ticks inside the same minute: the second stop hits an absent
	// pod, which the gateway treats as success.
	e.tick(ctx)
	e.tick(ctx)

	if got, _ := gw.GetPod(ctx, spec.PodName(uid)); got != nil {
		t.Error("pod still present after scheduled stop")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	e, _, _ := newEngine(t)
	e.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		e.Run(ctx)
		close(done)
	}()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("engine did not stop on cancel")
	}
}
