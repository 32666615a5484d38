package lookup

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/antzucaro/matchr"
)

// ErrInvalidQuery is returned when a query carries no usable field.
// It is raised before the store is touched.
var ErrInvalidQuery = errors.New("lookup: query has no usable fields")

// Config holds the tier confidence constants and fuzzy weights. The
// resolver treats it as immutable; pass a fresh copy per resolver.
type Config struct {
	MaxResults int

	Tier1Confidence float64
	Tier2Confidence float64
	Tier3Confidence float64
	Tier4Confidence float64

	PhoneticBase          float64
	PhoneticBirthdateBump float64
	PhoneticAddressBump   float64

	PartialBase          float64
	PartialBirthdateBump float64
	PartialAddressBump   float64
	SimilarityWeight     float64

	// Fuzzy results are clamped into [FuzzyFloor, FuzzyCeiling]. The
	// ceiling sits at the tier 4 confidence so tier ceilings stay
	// non-increasing.
	FuzzyFloor   float64
	FuzzyCeiling float64

	// SkipFuzzyOnExact skips tier 5 once tier 1 produced a hit.
	SkipFuzzyOnExact bool
}

// DefaultConfig returns the district's production constants.
func DefaultConfig() Config {
	return Config{
		MaxResults:            10,
		Tier1Confidence:       0.95,
		Tier2Confidence:       0.85,
		Tier3Confidence:       0.80,
		Tier4Confidence:       0.70,
		PhoneticBase:          0.65,
		PhoneticBirthdateBump: 0.10,
		PhoneticAddressBump:   0.08,
		PartialBase:           0.50,
		PartialBirthdateBump:  0.15,
		PartialAddressBump:    0.10,
		SimilarityWeight:      0.15,
		FuzzyFloor:            0.50,
		FuzzyCeiling:          0.70,
		SkipFuzzyOnExact:      true,
	}
}

// Resolver performs tiered progressive student matching. It is pure
// and read-only; concurrent Resolve calls need no coordination.
type Resolver struct {
	store CandidateStore
	cfg   Config
	jaro  *metrics.JaroWinkler
}

// NewResolver builds a resolver over the given store. A zero
// MaxResults falls back to the default.
func NewResolver(store CandidateStore, cfg Config) *Resolver {
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultConfig().MaxResults
	}
	return &Resolver{store: store, cfg: cfg, jaro: metrics.NewJaroWinkler()}
}

// normFields is the normalized view shared by queries and records.
type normFields struct {
	FirstName     string
	LastName      string
	Birthdate     string
	StreetAddress string
	City          string
	State         string
	Zip           string
}

func normalizeQuery(q StudentQuery) normFields {
	return normFields{
		FirstName:     NormalizeName(q.FirstName),
		LastName:      NormalizeName(q.LastName),
		Birthdate:     CanonicalDate(q.Birthdate),
		StreetAddress: NormalizeAddress(q.StreetAddress),
		City:          NormalizeName(q.City),
		State:         NormalizeName(q.State),
		Zip:           strings.TrimSpace(q.Zip),
	}
}

func normalizeRecord(rec StudentRecord) normFields {
	return normFields{
		FirstName:     NormalizeName(rec.FirstName),
		LastName:      NormalizeName(rec.LastName),
		Birthdate:     rec.Birthdate,
		StreetAddress: NormalizeAddress(rec.StreetAddress),
		City:          NormalizeName(rec.City),
		State:         NormalizeName(rec.State),
		Zip:           strings.TrimSpace(rec.Zip),
	}
}

func (f normFields) empty() bool {
	return f.FirstName == "" && f.LastName == "" && f.Birthdate == "" &&
		f.StreetAddress == "" && f.City == "" && f.State == "" && f.Zip == ""
}

func (f normFields) get(name string) string {
	switch name {
	case "first_name":
		return f.FirstName
	case "last_name":
		return f.LastName
	case "birthdate":
		return f.Birthdate
	case "street_address":
		return f.StreetAddress
	case "city":
		return f.City
	case "state":
		return f.State
	case "zip":
		return f.Zip
	}
	return ""
}

var allFields = []string{
	"first_name", "last_name", "birthdate", "street_address", "city", "state", "zip",
}

// Resolve runs the tiers in order and returns a merged, deduplicated
// list ordered by confidence descending, student id ascending,
// truncated to MaxResults. A caller deadline bounds how many tiers are
// attempted; once at least one tier completed, expiry yields the
// partial result instead of an error.
func (r *Resolver) Resolve(ctx context.Context, q StudentQuery) ([]MatchResult, error) {
	nq := normalizeQuery(q)
	if nq.empty() {
		return nil, ErrInvalidQuery
	}

	hasName := nq.FirstName != "" && nq.LastName != ""
	hasBirthdate := nq.Birthdate != ""
	hasAddress := nq.StreetAddress != ""

	best := make(map[int]MatchResult)
	tier1Hit := false
	ranAny := false

	merge := func(results []MatchResult) {
		for _, m := range results {
			prev, ok := best[m.StudentID]
			if !ok || m.Confidence > prev.Confidence {
				best[m.StudentID] = m
			}
		}
	}

	type tier struct {
		enabled bool
		run     func(context.Context) ([]MatchResult, error)
	}

	tiers := []tier{
		{hasName && hasBirthdate && hasAddress, func(ctx context.Context) ([]MatchResult, error) {
			res, err := r.exactTier(ctx, nq, 1, r.cfg.Tier1Confidence, providedFields(nq))
			tier1Hit = tier1Hit || len(res) > 0
			return res, err
		}},
		{hasName && hasBirthdate, func(ctx context.Context) ([]MatchResult, error) {
			return r.exactTier(ctx, nq, 2, r.cfg.Tier2Confidence,
				[]string{"first_name", "last_name", "birthdate"})
		}},
		{hasName && hasAddress, func(ctx context.Context) ([]MatchResult, error) {
			fields := []string{"first_name", "last_name", "street_address"}
			for _, extra := range []string{"city", "state", "zip"} {
				if nq.get(extra) != "" {
					fields = append(fields, extra)
				}
			}
			return r.exactTier(ctx, nq, 3, r.cfg.Tier3Confidence, fields)
		}},
		{hasName, func(ctx context.Context) ([]MatchResult, error) {
			return r.exactTier(ctx, nq, 4, r.cfg.Tier4Confidence,
				[]string{"first_name", "last_name"})
		}},
		{hasName, func(ctx context.Context) ([]MatchResult, error) {
			if r.cfg.SkipFuzzyOnExact && tier1Hit {
				return nil, nil
			}
			return r.fuzzyTier(ctx, nq)
		}},
	}

	for _, t := range tiers {
		if !t.enabled {
			continue
		}
		if err := ctx.Err(); err != nil {
			if ranAny {
				break
			}
			return nil, err
		}
		res, err := t.run(ctx)
		if err != nil {
			// store failures propagate unchanged
			return nil, err
		}
		ranAny = true
		merge(res)
	}

	out := make([]MatchResult, 0, len(best))
	for _, m := range best {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].StudentID < out[j].StudentID
	})
	if len(out) > r.cfg.MaxResults {
		out = out[:r.cfg.MaxResults]
	}
	return out, nil
}

// providedFields lists the non-empty query fields in canonical order.
func providedFields(nq normFields) []string {
	var fields []string
	for _, name := range allFields {
		if nq.get(name) != "" {
			fields = append(fields, name)
		}
	}
	return fields
}

// exactTier fetches candidates for the given field set and keeps those
// where every required field matches the query after normalization.
// Stores may over-fetch; this check is authoritative.
func (r *Resolver) exactTier(ctx context.Context, nq normFields, tierNum int, confidence float64, fields []string) ([]MatchResult, error) {
	var f Filters
	for _, name := range fields {
		switch name {
		case "first_name":
			f.FirstName = nq.FirstName
		case "last_name":
			f.LastName = nq.LastName
		case "birthdate":
			f.Birthdate = nq.Birthdate
		case "street_address":
			f.StreetAddress = nq.StreetAddress
		case "city":
			f.City = nq.City
		case "state":
			f.State = nq.State
		case "zip":
			f.Zip = nq.Zip
		}
	}

	cands, err := r.store.FindExact(ctx, f)
	if err != nil {
		return nil, err
	}

	var results []MatchResult
	for _, rec := range cands {
		nr := normalizeRecord(rec)
		ok := true
		for _, name := range fields {
			if nq.get(name) == "" || nq.get(name) != nr.get(name) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		results = append(results, MatchResult{
			StudentID:     rec.StudentID,
			Tier:          tierNum,
			Confidence:    confidence,
			MatchedFields: append([]string(nil), fields...),
			Record:        rec,
		})
	}
	return results, nil
}

// fuzzyTier combines phonetic equivalence and partial name matching.
// Scores land in [FuzzyFloor, FuzzyCeiling].
func (r *Resolver) fuzzyTier(ctx context.Context, nq normFields) ([]MatchResult, error) {
	phonetic, err := r.phoneticMatches(ctx, nq)
	if err != nil {
		return nil, err
	}
	partial, err := r.partialMatches(ctx, nq)
	if err != nil {
		return nil, err
	}
	return append(phonetic, partial...), nil
}

func (r *Resolver) phoneticMatches(ctx context.Context, nq normFields) ([]MatchResult, error) {
	firstCode := soundex(nq.FirstName)
	lastCode := soundex(nq.LastName)
	if firstCode == "" || lastCode == "" {
		return nil, nil
	}

	cands, err := r.store.FindPhonetic(ctx, firstCode, lastCode)
	if err != nil {
		return nil, err
	}

	var results []MatchResult
	for _, rec := range cands {
		nr := normalizeRecord(rec)
		if soundex(nr.FirstName) != firstCode || soundex(nr.LastName) != lastCode {
			continue
		}
		confidence := r.cfg.PhoneticBase
		matched := []string{"first_name", "last_name"}
		if nq.Birthdate != "" && nq.Birthdate == nr.Birthdate {
			confidence += r.cfg.PhoneticBirthdateBump
			matched = append(matched, "birthdate")
		}
		if nq.StreetAddress != "" && nq.StreetAddress == nr.StreetAddress {
			confidence += r.cfg.PhoneticAddressBump
			matched = append(matched, "street_address")
		}
		results = append(results, MatchResult{
			StudentID:     rec.StudentID,
			Tier:          5,
			Confidence:    r.clampFuzzy(confidence),
			MatchedFields: matched,
			Record:        rec,
		})
	}
	return results, nil
}

func (r *Resolver) partialMatches(ctx context.Context, nq normFields) ([]MatchResult, error) {
	cands, err := r.store.FindPartial(ctx, nq.FirstName, nq.LastName)
	if err != nil {
		return nil, err
	}

	var results []MatchResult
	for _, rec := range cands {
		nr := normalizeRecord(rec)
		if !containsEither(nr.FirstName, nq.FirstName) || !containsEither(nr.LastName, nq.LastName) {
			continue
		}
		confidence := r.cfg.PartialBase
		matched := []string{"first_name", "last_name"}
		if nq.Birthdate != "" && nq.Birthdate == nr.Birthdate {
			confidence += r.cfg.PartialBirthdateBump
			matched = append(matched, "birthdate")
		}
		if nq.StreetAddress != "" && nr.StreetAddress != "" &&
			strings.Contains(nr.StreetAddress, nq.StreetAddress) {
			confidence += r.cfg.PartialAddressBump
			matched = append(matched, "street_address")
		}

		similarity := (strutil.Similarity(nq.FirstName, nr.FirstName, r.jaro) +
			strutil.Similarity(nq.LastName, nr.LastName, r.jaro)) / 2
		confidence += similarity * r.cfg.SimilarityWeight

		results = append(results, MatchResult{
			StudentID:     rec.StudentID,
			Tier:          5,
			Confidence:    r.clampFuzzy(confidence),
			MatchedFields: matched,
			Record:        rec,
		})
	}
	return results, nil
}

func (r *Resolver) clampFuzzy(confidence float64) float64 {
	if confidence < r.cfg.FuzzyFloor {
		return r.cfg.FuzzyFloor
	}
	if confidence > r.cfg.FuzzyCeiling {
		return r.cfg.FuzzyCeiling
	}
	return confidence
}

// soundex returns the phonetic code for a normalized name, or "" when
// the name has no encodable characters.
func soundex(name string) string {
	if name == "" {
		return ""
	}
	return matchr.Soundex(name)
}

// containsEither reports substring containment in either direction, so
// "jon" matches "jonathan" and vice versa.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
