package sync

import "encoding/json"

// BatchRequest carries the shared knobs of every batch endpoint. All
// fields are optional; zero values fall back to configured defaults.
type BatchRequest struct {
	DryRun    bool `json:"dry_run"`
	ForceAll  bool `json:"force_all"`
	Limit     int  `json:"limit" validate:"omitempty,min=1,max=1000"`
	BatchSize int  `json:"batch_size" validate:"omitempty,min=1,max=50"`
	Days      int  `json:"days" validate:"omitempty,min=1,max=30"`
}

// StatusResponse maps job names to their cached last-run summaries.
type StatusResponse struct {
	Jobs map[string]json.RawMessage `json:"jobs"`
}
