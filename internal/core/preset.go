package core

// Preset is a reusable bundle of content-source and sizing values,
// independent of any workspace.
type Preset struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Repo   string `json:"repo"`
	Branch string `json:"branch,omitempty"`
	Sizing Sizing `json:"sizing"`
	Image  string `json:"image,omitempty"`
}
