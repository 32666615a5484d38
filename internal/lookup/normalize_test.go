package lookup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  John ", "john"},
		{"MARY   ANN", "mary ann"},
		{"", ""},
		{"   ", ""},
		{"O'Brien", "o'brien"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeName(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123 Oak St.", "123 oak st"},
		{"123  Oak   St", "123 oak st"},
		{"Apt. #4, 99 Main Blvd.", "apt 4 99 main blvd"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeAddress(tt.in), "input %q", tt.in)
	}
}

func TestCanonicalDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2010-05-01", "2010-05-01"},
		{"5/1/2010", "2010-05-01"},
		{"05/01/2010", "2010-05-01"},
		{"5/15/2000", "2000-05-15"},
		{"2010-05-01T00:00:00", "2010-05-01"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalDate(tt.in), "input %q", tt.in)
	}
}

func TestCanonicalDateFromTime(t *testing.T) {
	bd := time.Date(2010, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2010-05-01", CanonicalDateFromTime(&bd))
	assert.Equal(t, "", CanonicalDateFromTime(nil))

	var zero time.Time
	assert.Equal(t, "", CanonicalDateFromTime(&zero))
}

func TestSoundexEquivalence(t *testing.T) {
	assert.Equal(t, soundex("john"), soundex("jon"))
	assert.Equal(t, soundex("smith"), soundex("smyth"))
	assert.NotEqual(t, soundex("garcia"), soundex("smith"))
	assert.Equal(t, "", soundex(""))
}
