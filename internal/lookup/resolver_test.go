package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore returns every record for every fetch; the resolver's own
// verification is authoritative, so over-fetching is legal.
type memStore struct {
	records []StudentRecord
	calls   int
}

func (m *memStore) FindExact(ctx context.Context, f Filters) ([]StudentRecord, error) {
	m.calls++
	return m.records, nil
}

func (m *memStore) FindPhonetic(ctx context.Context, firstCode, lastCode string) ([]StudentRecord, error) {
	m.calls++
	return m.records, nil
}

func (m *memStore) FindPartial(ctx context.Context, firstFrag, lastFrag string) ([]StudentRecord, error) {
	m.calls++
	return m.records, nil
}

func testRecords() []StudentRecord {
	return []StudentRecord{
		{StudentID: 1001, FirstName: "John", LastName: "Smith", Birthdate: "2010-05-01",
			StreetAddress: "123 Oak St", City: "San Leandro", State: "CA", Zip: "94577", SchoolCode: 2},
		{StudentID: 1002, FirstName: "Jane", LastName: "Smith", Birthdate: "2011-07-09",
			StreetAddress: "456 Elm St", City: "San Leandro", State: "CA", Zip: "94577", SchoolCode: 2},
		{StudentID: 1003, FirstName: "Juan", LastName: "Smith", Birthdate: "2009-01-20",
			StreetAddress: "789 Pine Ave", City: "San Leandro", State: "CA", Zip: "94578", SchoolCode: 5},
		{StudentID: 1004, FirstName: "Johnny", LastName: "Smith", Birthdate: "2012-11-30",
			StreetAddress: "12 Birch Rd", City: "Oakland", State: "CA", Zip: "94601", SchoolCode: 5},
		{StudentID: 1005, FirstName: "Maria", LastName: "Garcia", Birthdate: "2010-05-01",
			StreetAddress: "55 Cedar Ct", City: "San Leandro", State: "CA", Zip: "94577", SchoolCode: 2},
	}
}

func newTestResolver() (*Resolver, *memStore) {
	store := &memStore{records: testRecords()}
	return NewResolver(store, DefaultConfig()), store
}

func TestResolveExactAllFields(t *testing.T) {
	r, _ := newTestResolver()

	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName:     "John",
		LastName:      "Smith",
		Birthdate:     "2010-05-01",
		StreetAddress: "123 Oak St.",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	m := results[0]
	assert.Equal(t, 1001, m.StudentID)
	assert.Equal(t, 1, m.Tier)
	assert.Equal(t, 0.95, m.Confidence)
	assert.Contains(t, m.MatchedFields, "first_name")
	assert.Contains(t, m.MatchedFields, "birthdate")
	assert.Contains(t, m.MatchedFields, "street_address")
}

func TestResolvePhoneticFuzzy(t *testing.T) {
	r, _ := newTestResolver()

	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName: "Jon",
		LastName:  "Smyth",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	var hit *MatchResult
	for i := range results {
		if results[i].StudentID == 1001 {
			hit = &results[i]
		}
	}
	require.NotNil(t, hit, "phonetically similar John Smith should match")
	assert.Equal(t, 5, hit.Tier)
	assert.GreaterOrEqual(t, hit.Confidence, 0.50)
	assert.LessOrEqual(t, hit.Confidence, 0.75)
}

func TestResolveNameOnlyNeverBelowTier4(t *testing.T) {
	r, _ := newTestResolver()

	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName: "John",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, m := range results {
		assert.GreaterOrEqual(t, m.Tier, 4,
			"query without birthdate/address cannot produce tier %d", m.Tier)
	}
}

func TestResolvePartialContainmentBothDirections(t *testing.T) {
	store := &memStore{records: []StudentRecord{
		{StudentID: 2001, FirstName: "Jon", LastName: "Smith", Birthdate: "2010-05-01",
			StreetAddress: "9 Fir Ln", City: "San Leandro", State: "CA", Zip: "94577", SchoolCode: 2},
	}}
	r := NewResolver(store, DefaultConfig())

	// Stored name contained in the query fragment.
	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName: "Jonathan",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 2001, results[0].StudentID)
	assert.Equal(t, 5, results[0].Tier)

	// Query fragment contained in the stored name.
	store.records[0].FirstName = "Jonathan"
	results, err = r.Resolve(context.Background(), StudentQuery{
		FirstName: "Jon",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 2001, results[0].StudentID)
}

func TestResolveOrderingAndDeduplication(t *testing.T) {
	r, _ := newTestResolver()

	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName: "John",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)

	seen := make(map[int]bool)
	for i, m := range results {
		assert.False(t, seen[m.StudentID], "student %d returned twice", m.StudentID)
		seen[m.StudentID] = true
		if i > 0 {
			assert.LessOrEqual(t, m.Confidence, results[i-1].Confidence)
			if m.Confidence == results[i-1].Confidence {
				assert.Greater(t, m.StudentID, results[i-1].StudentID)
			}
		}
	}

	// 1001 qualifies at tier 4 and again at tier 5; the exact-name hit
	// must win.
	assert.Equal(t, 1001, results[0].StudentID)
	assert.Equal(t, 4, results[0].Tier)
	assert.Equal(t, 0.70, results[0].Confidence)
}

func TestResolveIdempotent(t *testing.T) {
	r, _ := newTestResolver()
	q := StudentQuery{FirstName: "John", LastName: "Smith", Birthdate: "2010-05-01"}

	first, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestResolveEmptyQuery(t *testing.T) {
	r, store := newTestResolver()

	_, err := r.Resolve(context.Background(), StudentQuery{})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Zero(t, store.calls, "store must not be touched for an invalid query")
}

func TestResolveWhitespaceOnlyQueryIsInvalid(t *testing.T) {
	r, store := newTestResolver()

	_, err := r.Resolve(context.Background(), StudentQuery{FirstName: "   "})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Zero(t, store.calls)
}

func TestResolveNoMatchIsNotAnError(t *testing.T) {
	r, _ := newTestResolver()

	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName: "Zyx",
		LastName:  "Qwerty",
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestResolveMaxResults(t *testing.T) {
	store := &memStore{records: testRecords()}
	cfg := DefaultConfig()
	cfg.MaxResults = 1
	r := NewResolver(store, cfg)

	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName: "John",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestResolveStoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	r := NewResolver(&failingStore{err: boom}, DefaultConfig())

	_, err := r.Resolve(context.Background(), StudentQuery{
		FirstName: "John",
		LastName:  "Smith",
	})
	assert.ErrorIs(t, err, boom)
}

type failingStore struct{ err error }

func (f *failingStore) FindExact(context.Context, Filters) ([]StudentRecord, error) {
	return nil, f.err
}
func (f *failingStore) FindPhonetic(context.Context, string, string) ([]StudentRecord, error) {
	return nil, f.err
}
func (f *failingStore) FindPartial(context.Context, string, string) ([]StudentRecord, error) {
	return nil, f.err
}

// cancellingStore cancels the context during its first fetch, modeling
// a caller deadline expiring mid-resolution.
type cancellingStore struct {
	inner  CandidateStore
	cancel context.CancelFunc
	fired  bool
}

func (c *cancellingStore) FindExact(ctx context.Context, f Filters) ([]StudentRecord, error) {
	defer c.fire()
	return c.inner.FindExact(ctx, f)
}
func (c *cancellingStore) FindPhonetic(ctx context.Context, a, b string) ([]StudentRecord, error) {
	defer c.fire()
	return c.inner.FindPhonetic(ctx, a, b)
}
func (c *cancellingStore) FindPartial(ctx context.Context, a, b string) ([]StudentRecord, error) {
	defer c.fire()
	return c.inner.FindPartial(ctx, a, b)
}
func (c *cancellingStore) fire() {
	if !c.fired {
		c.fired = true
		c.cancel()
	}
}

func TestResolveDeadlineReturnsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &cancellingStore{inner: &memStore{records: testRecords()}, cancel: cancel}
	r := NewResolver(store, DefaultConfig())

	// Tier 2 is the first applicable tier; the deadline fires right
	// after it, so only tier 2 results come back.
	results, err := r.Resolve(ctx, StudentQuery{
		FirstName: "Jane",
		LastName:  "Smith",
		Birthdate: "2011-07-09",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1002, results[0].StudentID)
	assert.Equal(t, 2, results[0].Tier)
}

func TestResolveCancelledBeforeAnyTier(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, _ := newTestResolver()

	_, err := r.Resolve(ctx, StudentQuery{FirstName: "John", LastName: "Smith"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveTier2NameBirthdate(t *testing.T) {
	r, _ := newTestResolver()

	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName: "jane",
		LastName:  "SMITH",
		Birthdate: "7/9/2011",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 1002, results[0].StudentID)
	assert.Equal(t, 2, results[0].Tier)
	assert.Equal(t, 0.85, results[0].Confidence)
}

func TestResolveTier3NameAddress(t *testing.T) {
	r, _ := newTestResolver()

	results, err := r.Resolve(context.Background(), StudentQuery{
		FirstName:     "Juan",
		LastName:      "Smith",
		StreetAddress: "789 Pine Ave.",
	})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, 1003, results[0].StudentID)
	assert.Equal(t, 3, results[0].Tier)
	assert.Equal(t, 0.80, results[0].Confidence)
}
