package spec

// The uid is the join key across every resource derived from a workspace.
// All names below are deterministic functions of it.

func PodName(uid string) string     { return "pod-" + uid }
func ServiceName(uid string) string { return "svc-" + uid }
func PVCName(uid string) string     { return "pvc-" + uid }
func MetaName(uid string) string    { return "meta-" + uid }
func SavedName(uid string) string   { return "saved-" + uid }

// UIDFromPodName inverts PodName. Returns "" if the name is not one of ours.
func UIDFromPodName(name string) string {
	const prefix = "pod-"
	if len(name) <= len(prefix) || name[:len(prefix)] != prefix {
		return ""
	}
	return name[len(prefix):]
}
