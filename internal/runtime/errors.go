package runtime

import "fmt"

// CandidateError reports a trial whose candidate could not be produced: the
// generator failed or its output lacked the segment's residues.
type CandidateError struct {
	SegmentID string
	TrialID   string
	Err       error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("candidate for segment %s trial %s: %v", e.SegmentID, e.TrialID, e.Err)
}

func (e *CandidateError) Unwrap() error {
	return e.Err
}
