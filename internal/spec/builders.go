// Package spec builds declarative cluster resource specifications from a
// workspace's logical attributes. Builders are pure: same workspace and
// defaults in, same spec out, no I/O.
package spec

import (
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/lzjever/mbos-wso/internal/core"
)

const (
	// ManagedByValue marks every resource this orchestrator owns.
	ManagedByValue = "mbos-wso"

	LabelManagedBy     = "managed-by"
	LabelWorkspaceName = "workspace-name"
	LabelWorkspaceUID  = "workspace-uid"
	LabelRecordType    = "record-type"

	// EditorPort is the fixed internal port the workspace editor listens on.
	EditorPort = 8443

	containerName = "workspace"
	projectMount  = "/home/coder/project"
)

// Defaults are the global fallbacks applied when a workspace leaves a
// field unset. They are read once per build; a Saved Spec snapshot makes
// later restarts immune to default changes.
type Defaults struct {
	Image    string
	DiskSize string
}

// Labels returns the discovery labels stamped on every derived resource.
func Labels(ws core.Workspace) map[string]string {
	return map[string]string{
		LabelManagedBy:     ManagedByValue,
		LabelWorkspaceName: ws.Name,
		LabelWorkspaceUID:  ws.UID,
	}
}

// BuildPod produces the compute-unit spec for a workspace.
func BuildPod(ws core.Workspace, defaults Defaults) (*corev1.Pod, error) {
	image := ws.Image
	if image == "" {
		image = defaults.Image
	}
	requirements, err := resourceRequirements(ws.Sizing)
	if err != nil {
		return nil, err
	}

	env := []corev1.EnvVar{
		{Name: "WS_REPO_URL", Value: ws.Repo},
	}
	if ws.Branch != "" {
		env = append(env, corev1.EnvVar{Name: "WS_REPO_BRANCH", Value: ws.Branch})
	}

	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name:   PodName(ws.UID),
			Labels: Labels(ws),
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyAlways,
			Containers: []corev1.Container{
				{
					Name:      containerName,
					Image:     image,
					Env:       env,
					Resources: requirements,
					Ports: []corev1.ContainerPort{
						{Name: "editor", ContainerPort: EditorPort, Protocol: corev1.ProtocolTCP},
					},
					VolumeMounts: []corev1.VolumeMount{
						{Name: "project", MountPath: projectMount},
					},
				},
			},
			Volumes: []corev1.Volume{
				{
					Name: "project",
					VolumeSource: corev1.VolumeSource{
						PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{
							ClaimName: PVCName(ws.UID),
						},
					},
				},
			},
		},
	}
	return pod, nil
}

// BuildService produces the network-endpoint spec. The editor port is
// exposed through an auto-assigned node port.
func BuildService(ws core.Workspace) *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:   ServiceName(ws.UID),
			Labels: Labels(ws),
		},
		Spec: corev1.ServiceSpec{
			Type:     corev1.ServiceTypeNodePort,
			Selector: map[string]string{LabelWorkspaceUID: ws.UID},
			Ports: []corev1.ServicePort{
				{
					Name:       "editor",
					Port:       EditorPort,
					TargetPort: intstr.FromInt32(EditorPort),
					Protocol:   corev1.ProtocolTCP,
				},
			},
		},
	}
}

// BuildPVC produces the storage-claim spec.
func BuildPVC(ws core.Workspace, defaults Defaults) (*corev1.PersistentVolumeClaim, error) {
	size, err := resource.ParseQuantity(defaults.DiskSize)
	if err != nil {
		return nil, core.NewAppError(core.ErrBadRequest, fmt.Sprintf("invalid disk size %q", defaults.DiskSize))
	}
	return &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{
			Name:   PVCName(ws.UID),
			Labels: Labels(ws),
		},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{corev1.ResourceStorage: size},
			},
		},
	}, nil
}

func resourceRequirements(s core.Sizing) (corev1.ResourceRequirements, error) {
	req := corev1.ResourceRequirements{
		Requests: corev1.ResourceList{},
		Limits:   corev1.ResourceList{},
	}
	for _, entry := range []struct {
		value string
		list  corev1.ResourceList
		name  corev1.ResourceName
	}{
		{s.CPURequest, req.Requests, corev1.ResourceCPU},
		{s.MemoryRequest, req.Requests, corev1.ResourceMemory},
		{s.CPULimit, req.Limits, corev1.ResourceCPU},
		{s.MemoryLimit, req.Limits, corev1.ResourceMemory},
	} {
		if entry.value == "" {
			continue
		}
		q, err := resource.ParseQuantity(entry.value)
		if err != nil {
			return corev1.ResourceRequirements{}, core.NewAppError(core.ErrBadRequest,
				fmt.Sprintf("invalid resource quantity %q", entry.value))
		}
		entry.list[entry.name] = q
	}
	return req, nil
}
