// Package kube is the thin, fail-fast gateway to the cluster API. It
// normalizes "not found" into a nil result, makes deletes idempotent, and
// upserts config records; everything else propagates with the original
// API status wrapped.
package kube

import (
	"fmt"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// NewClientset builds a clientset from the in-cluster service account,
// falling back to the given kubeconfig path when not running in-cluster.
func NewClientset(kubeconfigPath string) (kubernetes.Interface, error) {
	cfg, err := rest.InClusterConfig()
	if err != nil {
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
		if err != nil {
			return nil, fmt.Errorf("load kubeconfig: %w", err)
		}
	}
	client, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("build clientset: %w", err)
	}
	return client, nil
}
