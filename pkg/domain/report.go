package domain

import "time"

// SegmentStatus is the terminal state of a segment's trial loop.
type SegmentStatus string

const (
	// StatusQuota means the requested number of models was accepted.
	StatusQuota SegmentStatus = "quota"
	// StatusExhausted means max_tries was reached before the quota.
	StatusExhausted SegmentStatus = "exhausted"
)

// ModelSummary is the persisted view of an accepted model.
type ModelSummary struct {
	Index   int    `json:"index"`
	TrialID string `json:"trial_id"`
	Scores  Scores `json:"scores,omitempty"`
}

// SegmentReport records the outcome of one segment's trial loop.
type SegmentReport struct {
	Identifier       string         `json:"identifier"`
	ChainName        string         `json:"chain_name"`
	FirstSeqID       int            `json:"first_seqid"`
	LastSeqID        int            `json:"last_seqid"`
	Attempts         int            `json:"attempts"`
	Accepted         int            `json:"accepted"`
	Failed           int            `json:"failed,omitempty"`
	Status           SegmentStatus  `json:"status"`
	ConsolidatedFile string         `json:"consolidated_file,omitempty"`
	Models           []ModelSummary `json:"models,omitempty"`
}

// SuccessRate returns accepted/attempts, or 0 when nothing was attempted.
func (r SegmentReport) SuccessRate() float64 {
	if r.Attempts == 0 {
		return 0
	}
	return float64(r.Accepted) / float64(r.Attempts)
}

// BuildReport summarizes a build run.
type BuildReport struct {
	RunID           string          `json:"run_id"`
	StructureFile   string          `json:"structure_file"`
	OutputDirectory string          `json:"output_directory"`
	N               int             `json:"n"`
	MaxTries        int             `json:"max_tries"`
	StartedAt       time.Time       `json:"started_at"`
	FinishedAt      time.Time       `json:"finished_at"`
	Segments        []SegmentReport `json:"segments"`
}

// Segment returns the report of the identified segment.
func (r *BuildReport) Segment(identifier string) (SegmentReport, bool) {
	for _, s := range r.Segments {
		if s.Identifier == identifier {
			return s, true
		}
	}
	return SegmentReport{}, false
}

// TotalAccepted returns the number of accepted models across all segments.
func (r *BuildReport) TotalAccepted() int {
	total := 0
	for _, s := range r.Segments {
		total += s.Accepted
	}
	return total
}
