package models

// StudentSearchRequest is the POST /students/lookup/ body. Every
// identifying field is optional; at least one must be present.
type StudentSearchRequest struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Birthdate     string `json:"birthdate"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Zip           string `json:"zip"`
	MaxResults    int    `json:"max_results"`
}

// StudentMatchResponse is one resolver hit. Confidence is a heuristic
// in [0,1], not a probability; tier 1 is strictest.
type StudentMatchResponse struct {
	StudentID     int      `json:"student_id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Birthdate     string   `json:"birthdate,omitempty"`
	Address       string   `json:"address,omitempty"`
	Tier          int      `json:"tier"`
	Confidence    float64  `json:"confidence"`
	MatchedFields []string `json:"matched_fields"`
}

// StudentLookupResponse wraps the ordered match list.
type StudentLookupResponse struct {
	Status       string                 `json:"status"`
	Message      string                 `json:"message"`
	TotalMatches int                    `json:"total_matches"`
	Matches      []StudentMatchResponse `json:"matches"`
}

// StudentDetails is the GET /students/{id}/details/ payload.
type StudentDetails struct {
	StudentID int    `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Birthdate string `json:"birthdate,omitempty"`
	Address   string `json:"address,omitempty"`
	Grade     int    `json:"grade"`
	School    int    `json:"school"`
}
