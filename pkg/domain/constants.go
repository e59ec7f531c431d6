package domain

// File naming conventions shared by the orchestrator and the adapters.
const (
	// StructureExt is the extension of every structural file written by a build.
	StructureExt = ".cif"

	// TrialSuffix marks a trial file that has been trimmed to its segment range.
	TrialSuffix = "_segment"

	// ErrorKeySuffix is appended to an evaluator identifier to form the score key
	// under which a scoring failure is recorded.
	ErrorKeySuffix = ".error"

	// WorkingDirectoryPerm is applied to the working directory so that independent
	// worker processes can share it.
	WorkingDirectoryPerm = 0o777
)

// CandidatePolicy decides what happens when a candidate cannot be produced for a
// trial (generator failure or a candidate lacking the segment's residues).
type CandidatePolicy string

const (
	// CandidateAbort propagates the failure and aborts the whole build.
	CandidateAbort CandidatePolicy = "abort"
	// CandidateSkip counts the trial as a failed attempt and continues the loop.
	CandidateSkip CandidatePolicy = "skip"
)

// Valid reports whether p is a known policy.
func (p CandidatePolicy) Valid() bool {
	return p == CandidateAbort || p == CandidateSkip
}
