package meta

import (
	"context"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wso/internal/spec"
)

// MigrateMetaKeys renames workspace metadata records keyed by workspace
// name to the uid-keyed form (meta-<uid>). Early deployments wrote the
// name as the record key; the uid has been the join key ever since.
//
// The replacement record is written before the stale one is deleted, so
// a crash mid-migration loses nothing and a rerun is a no-op.
func (s *Store) MigrateMetaKeys(ctx context.Context, log *zap.Logger) error {
	records, err := s.gw.ListConfigMaps(ctx, metaSelector())
	if err != nil {
		return err
	}
	for _, cm := range records {
		uid := cm.Labels[spec.LabelWorkspaceUID]
		if uid == "" || cm.Name == spec.MetaName(uid) {
			continue
		}
		replacement := cm.DeepCopy()
		replacement.ObjectMeta.Name = spec.MetaName(uid)
		replacement.ObjectMeta.ResourceVersion = ""
		replacement.ObjectMeta.UID = ""
		if _, err := s.gw.UpsertConfigMap(ctx, replacement); err != nil {
			return err
		}
		if err := s.gw.DeleteConfigMap(ctx, cm.Name); err != nil {
			return err
		}
		log.Info("migrated workspace metadata record",
			zap.String("from", cm.Name),
			zap.String("to", replacement.Name),
			zap.String("uid", uid))
	}
	return nil
}
