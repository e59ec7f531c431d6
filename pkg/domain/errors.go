package domain

import "errors"

var (
	// ErrInvalidRequest is returned for degenerate build requests (n < 1, max_tries < 1)
	// and invalid configuration values.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound is returned when a structural document lacks the requested chain/residues.
	ErrNotFound = errors.New("not found")

	// ErrParse is returned when a structural file cannot be interpreted.
	ErrParse = errors.New("parse error")

	// ErrMalformedSpan is returned by strict range extraction when a row inside the
	// extracted span does not belong to the requested chain/residue range.
	ErrMalformedSpan = errors.New("malformed span")

	// ErrCollaborator wraps failures of external collaborators (generator, finder).
	ErrCollaborator = errors.New("collaborator failed")

	// ErrReportNotFound is returned when a build report cannot be found in a store.
	ErrReportNotFound = errors.New("report not found")
)
