package meta

import (
	"context"
	"testing"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/kube"
	"github.com/lzjever/mbos-wso/internal/spec"
)

func newStore(objects ...runtime.Object) *Store {
	client := fake.NewSimpleClientset(objects...)
	return NewStore(kube.NewGateway(client, "workspaces"))
}

func TestSchedulesEmptyByDefault(t *testing.T) {
	s := newStore()
	schedules, err := s.Schedules(context.Background())
	if err != nil {
		t.Fatalf("Schedules on empty store: %v", err)
	}
	if len(schedules) != 0 {
		t.Errorf("expected no schedules, got %d", len(schedules))
	}
}

func TestSetScheduleReplacesSamePair(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	first := core.Schedule{Workspace: "w", PodName: "pod-abc", Action: core.ScheduleStart,
		Days: []int{1}, Hour: 9, Minute: 0}
	if err := s.SetSchedule(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := first
	second.Hour = 10
	second.Minute = 30
	if err := s.SetSchedule(ctx, second); err != nil {
		t.Fatal(err)
	}

	// A different action for the same workspace must coexist.
	stop := core.Schedule{Workspace: "w", PodName: "pod-abc", Action: core.ScheduleStop,
		Days: []int{5}, Hour: 18, Minute: 0}
	if err := s.SetSchedule(ctx, stop); err != nil {
		t.Fatal(err)
	}

	schedules, err := s.Schedules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(schedules) != 2 {
		t.Fatalf("expected 2 schedules, got %d", len(schedules))
	}
	var starts int
	for _, sched := range schedules {
		if sched.Action == core.ScheduleStart {
			starts++
			if sched.Hour != 10 || sched.Minute != 30 {
				t.Errorf("start schedule = %02d:%02d, want second call's 10:30", sched.Hour, sched.Minute)
			}
		}
	}
	if starts != 1 {
		t.Errorf("expected exactly one (w, start) schedule, got %d", starts)
	}
}

func TestRemoveSchedule(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	sched := core.Schedule{Workspace: "w", Action: core.ScheduleStop, Days: []int{0}, Hour: 1, Minute: 2}
	if err := s.SetSchedule(ctx, sched); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveSchedule(ctx, "w", core.ScheduleStop); err != nil {
		t.Fatal(err)
	}
	schedules, _ := s.Schedules(ctx)
	if len(schedules) != 0 {
		t.Errorf("schedule survived removal: %v", schedules)
	}
}

func TestExpiryDays(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	days, err := s.ExpiryDays(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if days != DefaultExpiryDays {
		t.Errorf("default expiry = %d, want %d", days, DefaultExpiryDays)
	}

	if err := s.SetExpiryDays(ctx, 14); err != nil {
		t.Fatal(err)
	}
	days, _ = s.ExpiryDays(ctx)
	if days != 14 {
		t.Errorf("expiry = %d after set, want 14", days)
	}

	if err := s.SetExpiryDays(ctx, 0); err == nil {
		t.Error("zero expiry days accepted")
	}
}

func TestPresetsRoundTrip(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	saved, err := s.SavePreset(ctx, core.Preset{Name: "small", Repo: "https://example.com/r.git",
		Sizing: core.Sizing{CPULimit: "1", MemoryLimit: "1Gi"}})
	if err != nil {
		t.Fatal(err)
	}
	if saved.ID == "" {
		t.Fatal("preset id not assigned")
	}

	presets, _ := s.Presets(ctx)
	if len(presets) != 1 || presets[0].Name != "small" {
		t.Fatalf("presets = %v", presets)
	}

	if err := s.DeletePreset(ctx, saved.ID); err != nil {
		t.Fatal(err)
	}
	presets, _ = s.Presets(ctx)
	if len(presets) != 0 {
		t.Errorf("preset survived deletion: %v", presets)
	}
}

func TestWorkspaceMetadataRoundTrip(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	ws := core.Workspace{Name: "dev", UID: "abc123def456", Repo: "https://example.com/r.git", Owner: "alice"}
	if err := s.SaveWorkspace(ctx, ws); err != nil {
		t.Fatal(err)
	}

	got, err := s.Workspace(ctx, "abc123def456")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Name != "dev" || got.Owner != "alice" {
		t.Fatalf("loaded workspace = %v", got)
	}

	byName, err := s.FindWorkspaceByName(ctx, "dev")
	if err != nil {
		t.Fatal(err)
	}
	if byName == nil || byName.UID != "abc123def456" {
		t.Fatalf("FindWorkspaceByName = %v", byName)
	}

	missing, err := s.Workspace(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("missing workspace = (%v, %v), want (nil, nil)", missing, err)
	}
}

func TestSavedPodSpecRoundTrip(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "pod-abc123def456"},
		Spec: corev1.PodSpec{Containers: []corev1.Container{
			{Name: "workspace", Image: "codercom/code-server:4.1"},
		}},
	}
	if err := s.SavePodSpec(ctx, "abc123def456", pod); err != nil {
		t.Fatal(err)
	}

	got, err := s.SavedPodSpec(ctx, "abc123def456")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Spec.Containers[0].Image != "codercom/code-server:4.1" {
		t.Fatalf("saved spec = %v", got)
	}

	none, err := s.SavedPodSpec(ctx, "other")
	if err != nil || none != nil {
		t.Errorf("absent saved spec = (%v, %v), want (nil, nil)", none, err)
	}
}

func TestMigrateMetaKeys(t *testing.T) {
	// A legacy record keyed by workspace name, carrying the uid label.
	legacy := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "dev",
			Namespace: "workspaces",
			Labels: map[string]string{
				spec.LabelManagedBy:     spec.ManagedByValue,
				spec.LabelRecordType:    "workspace-meta",
				spec.LabelWorkspaceName: "dev",
				spec.LabelWorkspaceUID:  "abc123def456",
			},
		},
		Data: map[string]string{"data": `{"name":"dev","uid":"abc123def456","owner":"alice"}`},
	}
	s := newStore(legacy)
	ctx := context.Background()
	log := zap.NewNop()

	if err := s.MigrateMetaKeys(ctx, log); err != nil {
		t.Fatalf("migration: %v", err)
	}

	migrated, err := s.gw.GetConfigMap(ctx, "meta-abc123def456")
	if err != nil || migrated == nil {
		t.Fatalf("uid-keyed record missing after migration: (%v, %v)", migrated, err)
	}
	if migrated.Data["data"] != legacy.Data["data"] {
		t.Error("migrated record data differs from original")
	}
	stale, _ := s.gw.GetConfigMap(ctx, "dev")
	if stale != nil {
		t.Error("name-keyed record still present after migration")
	}

	// Rerun must be a no-op.
	if err := s.MigrateMetaKeys(ctx, log); err != nil {
		t.Fatalf("rerun migration: %v", err)
	}
	again, _ := s.gw.GetConfigMap(ctx, "meta-abc123def456")
	if again == nil || again.Data["data"] != legacy.Data["data"] {
		t.Error("rerun disturbed the migrated record")
	}
}

func TestMigrateInterruptedAfterWrite(t *testing.T) {
	// Both the uid-keyed replacement and the stale name-keyed record
	// exist, as after a crash between write and delete.
	labels := map[string]string{
		spec.LabelManagedBy:     spec.ManagedByValue,
		spec.LabelRecordType:    "workspace-meta",
		spec.LabelWorkspaceName: "dev",
		spec.LabelWorkspaceUID:  "abc123def456",
	}
	data := map[string]string{"data": `{"name":"dev","uid":"abc123def456"}`}
	stale := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "dev", Namespace: "workspaces", Labels: labels},
		Data:       data,
	}
	written := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "meta-abc123def456", Namespace: "workspaces", Labels: labels},
		Data:       data,
	}
	s := newStore(stale, written)

	if err := s.MigrateMetaKeys(context.Background(), zap.NewNop()); err != nil {
		t.Fatalf("resumed migration: %v", err)
	}

	got, _ := s.gw.GetConfigMap(context.Background(), "meta-abc123def456")
	if got == nil || got.Data["data"] != data["data"] {
		t.Fatal("uid-keyed record lost on resumed migration")
	}
	leftover, _ := s.gw.GetConfigMap(context.Background(), "dev")
	if leftover != nil {
		t.Error("stale record not cleaned up on resumed migration")
	}
}
