package core

import (
	"fmt"
	"regexp"
	"time"

	"k8s.io/apimachinery/pkg/api/resource"
)

// Sizing is the declared resource envelope of a workspace, expressed as
// cluster-style quantity strings ("500m", "2Gi").
type Sizing struct {
	CPURequest    string `json:"cpu_request"`
	CPULimit      string `json:"cpu_limit"`
	MemoryRequest string `json:"memory_request"`
	MemoryLimit   string `json:"memory_limit"`
}

type Workspace struct {
	Name         string     `json:"name"`
	UID          string     `json:"uid"`
	Repo         string     `json:"repo"`
	Branch       string     `json:"branch,omitempty"`
	Sizing       Sizing     `json:"sizing"`
	Image        string     `json:"image,omitempty"`
	Owner        string     `json:"owner"`
	Running      bool       `json:"running"`
	Creating     bool       `json:"creating"`
	LastAccess   *time.Time `json:"last_access,omitempty"`
	ExpiryWarned bool       `json:"expiry_warned"`
	CreatedAt    time.Time  `json:"created_at"`
}

var dnsLabelRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateName checks that a workspace name is a valid DNS-1123 label.
// Workspace names become part of cluster resource names and label values.
func ValidateName(name string) error {
	if name == "" {
		return NewAppError(ErrBadRequest, "workspace name is required")
	}
	if len(name) > 63 {
		return NewAppError(ErrBadRequest, "workspace name must be at most 63 characters")
	}
	if !dnsLabelRe.MatchString(name) {
		return NewAppError(ErrBadRequest, fmt.Sprintf("invalid workspace name %q: must be lowercase alphanumeric or '-'", name))
	}
	return nil
}

// ValidateSizing checks every non-empty quantity string parses.
func ValidateSizing(s Sizing) error {
	for _, q := range []string{s.CPURequest, s.CPULimit, s.MemoryRequest, s.MemoryLimit} {
		if q == "" {
			continue
		}
		if _, err := resource.ParseQuantity(q); err != nil {
			return NewAppError(ErrBadRequest, fmt.Sprintf("invalid resource quantity %q", q))
		}
	}
	return nil
}
