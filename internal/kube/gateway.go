package kube

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
)

// Gateway performs namespaced CRUD against the four resource kinds the
// orchestrator manages. Get returns (nil, nil) when the resource is
// absent. Delete of an absent resource succeeds silently.
type Gateway struct {
	client    kubernetes.Interface
	namespace string
}

func NewGateway(client kubernetes.Interface, namespace string) *Gateway {
	return &Gateway{client: client, namespace: namespace}
}

func (g *Gateway) Namespace() string { return g.namespace }

// Ping verifies the API server is reachable.
func (g *Gateway) Ping(ctx context.Context) error {
	_, err := g.client.CoreV1().ConfigMaps(g.namespace).List(ctx, metav1.ListOptions{Limit: 1})
	if err != nil {
		return fmt.Errorf("ping cluster: %w", err)
	}
	return nil
}

// --- compute units (pods) ---

func (g *Gateway) CreatePod(ctx context.Context, pod *corev1.Pod) (*corev1.Pod, error) {
	created, err := g.client.CoreV1().Pods(g.namespace).Create(ctx, pod, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("create pod %s: %w", pod.Name, err)
	}
	return created, nil
}

func (g *Gateway) GetPod(ctx context.Context, name string) (*corev1.Pod, error) {
	pod, err := g.client.CoreV1().Pods(g.namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pod %s: %w", name, err)
	}
	return pod, nil
}

// DeletePod removes a pod with the given grace period in seconds.
func (g *Gateway) DeletePod(ctx context.Context, name string, graceSeconds int64) error {
	opts := metav1.DeleteOptions{GracePeriodSeconds: &graceSeconds}
	err := g.client.CoreV1().Pods(g.namespace).Delete(ctx, name, opts)
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete pod %s: %w", name, err)
	}
	return nil
}

func (g *Gateway) ListPods(ctx context.Context, selector string) ([]corev1.Pod, error) {
	list, err := g.client.CoreV1().Pods(g.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("list pods: %w", err)
	}
	return list.Items, nil
}

// --- network endpoints (services) ---

func (g *Gateway) CreateService(ctx context.Context, svc *corev1.Service) (*corev1.Service, error) {
	created, err := g.client.CoreV1().Services(g.namespace).Create(ctx, svc, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("create service %s: %w", svc.Name, err)
	}
	return created, nil
}

func (g *Gateway) GetService(ctx context.Context, name string) (*corev1.Service, error) {
	svc, err := g.client.CoreV1().Services(g.namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get service %s: %w", name, err)
	}
	return svc, nil
}

func (g *Gateway) DeleteService(ctx context.Context, name string) error {
	err := g.client.CoreV1().Services(g.namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete service %s: %w", name, err)
	}
	return nil
}

// --- storage claims (PVCs) ---

func (g *Gateway) CreatePVC(ctx context.Context, pvc *corev1.PersistentVolumeClaim) (*corev1.PersistentVolumeClaim, error) {
	created, err := g.client.CoreV1().PersistentVolumeClaims(g.namespace).Create(ctx, pvc, metav1.CreateOptions{})
	if err != nil {
		return nil, fmt.Errorf("create pvc %s: %w", pvc.Name, err)
	}
	return created, nil
}

func (g *Gateway) GetPVC(ctx context.Context, name string) (*corev1.PersistentVolumeClaim, error) {
	pvc, err := g.client.CoreV1().PersistentVolumeClaims(g.namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get pvc %s: %w", name, err)
	}
	return pvc, nil
}

func (g *Gateway) DeletePVC(ctx context.Context, name string) error {
	err := g.client.CoreV1().PersistentVolumeClaims(g.namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete pvc %s: %w", name, err)
	}
	return nil
}

func (g *Gateway) ListPVCs(ctx context.Context, selector string) ([]corev1.PersistentVolumeClaim, error) {
	list, err := g.client.CoreV1().PersistentVolumeClaims(g.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("list pvcs: %w", err)
	}
	return list.Items, nil
}

// --- config records (configmaps) ---

// UpsertConfigMap creates the record, replacing it wholesale if it
// already exists. No merge: the latest payload wins.
func (g *Gateway) UpsertConfigMap(ctx context.Context, cm *corev1.ConfigMap) (*corev1.ConfigMap, error) {
	created, err := g.client.CoreV1().ConfigMaps(g.namespace).Create(ctx, cm, metav1.CreateOptions{})
	if apierrors.IsAlreadyExists(err) {
		updated, uerr := g.client.CoreV1().ConfigMaps(g.namespace).Update(ctx, cm, metav1.UpdateOptions{})
		if uerr != nil {
			return nil, fmt.Errorf("replace configmap %s: %w", cm.Name, uerr)
		}
		return updated, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create configmap %s: %w", cm.Name, err)
	}
	return created, nil
}

func (g *Gateway) GetConfigMap(ctx context.Context, name string) (*corev1.ConfigMap, error) {
	cm, err := g.client.CoreV1().ConfigMaps(g.namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get configmap %s: %w", name, err)
	}
	return cm, nil
}

func (g *Gateway) DeleteConfigMap(ctx context.Context, name string) error {
	err := g.client.CoreV1().ConfigMaps(g.namespace).Delete(ctx, name, metav1.DeleteOptions{})
	if err != nil && !apierrors.IsNotFound(err) {
		return fmt.Errorf("delete configmap %s: %w", name, err)
	}
	return nil
}

// ListConfigMaps is the secondary index over config records: callers
// select by the managed-by and record-type labels.
func (g *Gateway) ListConfigMaps(ctx context.Context, selector string) ([]corev1.ConfigMap, error) {
	list, err := g.client.CoreV1().ConfigMaps(g.namespace).List(ctx, metav1.ListOptions{LabelSelector: selector})
	if err != nil {
		return nil, fmt.Errorf("list configmaps: %w", err)
	}
	return list.Items, nil
}
