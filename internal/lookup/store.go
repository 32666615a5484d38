package lookup

import "context"

// StudentQuery carries the caller-supplied identifying fields. All are
// optional, but a query with no usable field is rejected.
type StudentQuery struct {
	FirstName     string
	LastName      string
	Birthdate     string
	StreetAddress string
	City          string
	State         string
	Zip           string
}

// StudentRecord is the canonical stored identity as read from STU.
// The resolver never mutates records.
type StudentRecord struct {
	StudentID     int
	FirstName     string
	LastName      string
	Birthdate     string // YYYY-MM-DD, empty when unknown
	StreetAddress string
	City          string
	State         string
	Zip           string
	SchoolCode    int
}

// MatchResult is one resolver hit. Confidence is a heuristic score in
// [0,1]; MatchedFields lists the query fields that contributed.
type MatchResult struct {
	StudentID     int
	Tier          int
	Confidence    float64
	MatchedFields []string
	Record        StudentRecord
}

// Filters restricts a candidate fetch. Values are pre-normalized;
// empty fields are unconstrained.
type Filters struct {
	FirstName     string
	LastName      string
	Birthdate     string
	StreetAddress string
	City          string
	State         string
	Zip           string
}

// CandidateStore is the query capability handed to the resolver. A
// store may over-fetch: the resolver re-verifies every returned
// candidate against the normalized query, so coarse SQL pre-filtering
// (LOWER() equality, LIKE, first-letter buckets) is acceptable.
type CandidateStore interface {
	// FindExact returns candidates for the equality tiers.
	FindExact(ctx context.Context, f Filters) ([]StudentRecord, error)
	// FindPhonetic returns candidates whose name phonetic codes match.
	FindPhonetic(ctx context.Context, firstCode, lastCode string) ([]StudentRecord, error)
	// FindPartial returns candidates whose names contain (or are
	// contained in) the given normalized fragments.
	FindPartial(ctx context.Context, firstFrag, lastFrag string) ([]StudentRecord, error)
}
