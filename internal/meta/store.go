// Package meta persists the orchestrator's durable records as labeled
// config records in the cluster: schedules, expiry policy, presets,
// per-workspace metadata and saved compute specs. Reads of a missing
// record return the zero value, never an error.
package meta

import (
	"context"
	"encoding/json"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/lzjever/mbos-wso/internal/core"
	"github.com/lzjever/mbos-wso/internal/kube"
	"github.com/lzjever/mbos-wso/internal/spec"
)

const (
	schedulesRecord = "wso-schedules"
	expiryRecord    = "wso-expiry"
	presetsRecord   = "wso-presets"

	recordSchedules = "schedules"
	recordExpiry    = "expiry"
	recordPresets   = "presets"
	recordMeta      = "workspace-meta"
	recordSaved     = "saved-spec"

	dataKey = "data"

	// DefaultExpiryDays applies when no expiry record has been written.
	DefaultExpiryDays = 7
)

type Store struct {
	gw *kube.Gateway
}

func NewStore(gw *kube.Gateway) *Store {
	return &Store{gw: gw}
}

func recordLabels(recordType string) map[string]string {
	return map[string]string{
		spec.LabelManagedBy:  spec.ManagedByValue,
		spec.LabelRecordType: recordType,
	}
}

func (s *Store) write(ctx context.Context, name, recordType string, extraLabels map[string]string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", name, err)
	}
	labels := recordLabels(recordType)
	for k, val := range extraLabels {
		labels[k] = val
	}
	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name, Labels: labels},
		Data:       map[string]string{dataKey: string(payload)},
	}
	_, err = s.gw.UpsertConfigMap(ctx, cm)
	return err
}

// read decodes the record into v. Returns false with no error when the
// record is absent.
func (s *Store) read(ctx context.Context, name string, v any) (bool, error) {
	cm, err := s.gw.GetConfigMap(ctx, name)
	if err != nil {
		return false, err
	}
	if cm == nil {
		return false, nil
	}
	if err := json.Unmarshal([]byte(cm.Data[dataKey]), v); err != nil {
		return false, fmt.Errorf("decode record %s: %w", name, err)
	}
	return true, nil
}

// --- schedules ---

func (s *Store) Schedules(ctx context.Context) ([]core.Schedule, error) {
	var schedules []core.Schedule
	if _, err := s.read(ctx, schedulesRecord, &schedules); err != nil {
		return nil, err
	}
	return schedules, nil
}

// SetSchedule inserts the rule, replacing any existing rule for the same
// (workspace, action) pair.
func (s *Store) SetSchedule(ctx context.Context, sched core.Schedule) error {
	schedules, err := s.Schedules(ctx)
	if err != nil {
		return err
	}
	kept := schedules[:0]
	for _, existing := range schedules {
		if existing.Workspace == sched.Workspace && existing.Action == sched.Action {
			continue
		}
		kept = append(kept, existing)
	}
	kept = append(kept, sched)
	return s.write(ctx, schedulesRecord, recordSchedules, nil, kept)
}

func (s *Store) RemoveSchedule(ctx context.Context, workspace string, action core.ScheduleAction) error {
	schedules, err := s.Schedules(ctx)
	if err != nil {
		return err
	}
	kept := schedules[:0]
	for _, existing := range schedules {
		if existing.Workspace == workspace && existing.Action == action {
			continue
		}
		kept = append(kept, existing)
	}
	return s.write(ctx, schedulesRecord, recordSchedules, nil, kept)
}

// --- expiry policy ---

func (s *Store) ExpiryDays(ctx context.Context) (int, error) {
	var days int
	found, err := s.read(ctx, expiryRecord, &days)
	if err != nil {
		return 0, err
	}
	if !found {
		return DefaultExpiryDays, nil
	}
	return days, nil
}

func (s *Store) SetExpiryDays(ctx context.Context, days int) error {
	if days < 1 {
		return core.NewAppError(core.ErrBadRequest, "expiry days must be positive")
	}
	return s.write(ctx, expiryRecord, recordExpiry, nil, days)
}

// --- presets ---

func (s *Store) Presets(ctx context.Context) ([]core.Preset, error) {
	var presets []core.Preset
	if _, err := s.read(ctx, presetsRecord, &presets); err != nil {
		return nil, err
	}
	return presets, nil
}

// SavePreset stores the preset, assigning an id when absent.
func (s *Store) SavePreset(ctx context.Context, p core.Preset) (core.Preset, error) {
	if p.ID == "" {
		p.ID = core.NewID()
	}
	presets, err := s.Presets(ctx)
	if err != nil {
		return core.Preset{}, err
	}
	kept := presets[:0]
	for _, existing := range presets {
		if existing.ID == p.ID {
			continue
		}
		kept = append(kept, existing)
	}
	kept = append(kept, p)
	if err := s.write(ctx, presetsRecord, recordPresets, nil, kept); err != nil {
		return core.Preset{}, err
	}
	return p, nil
}

func (s *Store) DeletePreset(ctx context.Context, id string) error {
	presets, err := s.Presets(ctx)
	if err != nil {
		return err
	}
	kept := presets[:0]
	for _, existing := range presets {
		if existing.ID == id {
			continue
		}
		kept = append(kept, existing)
	}
	return s.write(ctx, presetsRecord, recordPresets, nil, kept)
}

// --- per-workspace metadata ---

// Workspace loads the metadata record for a uid. Returns (nil, nil) when
// no record exists.
func (s *Store) Workspace(ctx context.Context, uid string) (*core.Workspace, error) {
	var ws core.Workspace
	found, err := s.read(ctx, spec.MetaName(uid), &ws)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &ws, nil
}

func (s *Store) SaveWorkspace(ctx context.Context, ws core.Workspace) error {
	extra := map[string]string{
		spec.LabelWorkspaceName: ws.Name,
		spec.LabelWorkspaceUID:  ws.UID,
	}
	return s.write(ctx, spec.MetaName(ws.UID), recordMeta, extra, ws)
}

func (s *Store) DeleteWorkspace(ctx context.Context, uid string) error {
	return s.gw.DeleteConfigMap(ctx, spec.MetaName(uid))
}

// ListWorkspaces returns every stored workspace metadata record.
func (s *Store) ListWorkspaces(ctx context.Context) ([]core.Workspace, error) {
	records, err := s.gw.ListConfigMaps(ctx, metaSelector())
	if err != nil {
		return nil, err
	}
	out := make([]core.Workspace, 0, len(records))
	for _, cm := range records {
		var ws core.Workspace
		if err := json.Unmarshal([]byte(cm.Data[dataKey]), &ws); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", cm.Name, err)
		}
		out = append(out, ws)
	}
	return out, nil
}

// FindWorkspaceByName scans metadata records for a workspace name.
// Returns (nil, nil) when no workspace matches.
func (s *Store) FindWorkspaceByName(ctx context.Context, name string) (*core.Workspace, error) {
	records, err := s.gw.ListConfigMaps(ctx,
		metaSelector()+","+spec.LabelWorkspaceName+"="+name)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	var ws core.Workspace
	if err := json.Unmarshal([]byte(records[0].Data[dataKey]), &ws); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", records[0].Name, err)
	}
	return &ws, nil
}

// --- saved compute specs ---

// SavedPodSpec loads the last-submitted pod spec for a uid.
// Returns (nil, nil) when none was saved.
func (s *Store) SavedPodSpec(ctx context.Context, uid string) (*corev1.Pod, error) {
	var pod corev1.Pod
	found, err := s.read(ctx, spec.SavedName(uid), &pod)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &pod, nil
}

// SavePodSpec replaces the saved spec wholesale.
func (s *Store) SavePodSpec(ctx context.Context, uid string, pod *corev1.Pod) error {
	extra := map[string]string{spec.LabelWorkspaceUID: uid}
	return s.write(ctx, spec.SavedName(uid), recordSaved, extra, pod)
}

func (s *Store) DeletePodSpec(ctx context.Context, uid string) error {
	return s.gw.DeleteConfigMap(ctx, spec.SavedName(uid))
}

func metaSelector() string {
	return spec.LabelManagedBy + "=" + spec.ManagedByValue + "," +
		spec.LabelRecordType + "=" + recordMeta
}
