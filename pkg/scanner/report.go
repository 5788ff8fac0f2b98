package scanner

import (
	"encoding/json"
	"time"
)

// State is the final state of a scan.
type State string

const (
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// Report summarizes one scan over all roots.
type Report struct {
	ID         string    `json:"id"          yaml:"id"`
	State      State     `json:"state"       yaml:"state"`
	Roots      []string  `json:"roots"       yaml:"roots"`
	StartedAt  time.Time `json:"started_at"  yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Processed counts sidecars that synced successfully. Skipped counts
	// template names and duplicate codes.
	Processed    int      `json:"processed"               yaml:"processed"`
	Skipped      int      `json:"skipped"                 yaml:"skipped"`
	SkippedPaths []string `json:"skipped_paths,omitempty" yaml:"skipped_paths,omitempty"`

	Conflicts  []*ConflictError `json:"conflicts,omitempty"   yaml:"conflicts,omitempty"`
	Errors     []ItemError      `json:"errors,omitempty"      yaml:"errors,omitempty"`
	WalkErrors []*WalkError     `json:"walk_errors,omitempty" yaml:"walk_errors,omitempty"`
}

// Duration returns how long the scan ran.
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

type errorView struct {
	Root  string `json:"root,omitempty" yaml:"root,omitempty"`
	Code  string `json:"code,omitempty" yaml:"code,omitempty"`
	Path  string `json:"path"           yaml:"path"`
	Error string `json:"error"          yaml:"error"`
}

func marshalView(v errorView) ([]byte, error) {
	return json.Marshal(v)
}
