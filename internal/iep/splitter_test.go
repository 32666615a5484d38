package iep

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const district = "MID ALAMEDA COUNTY SELPA"

func headerPage(id, date string) string {
	return district + "  IEP AT A GLANCE\nStudent Name: Test Student\nDistrict ID: " + id + "\nIEP Date: " + date + "\n"
}

func TestDetectSegmentsSingleDocument(t *testing.T) {
	pages := []string{
		headerPage("123456", "3/15/2026"),
		"Goals and accommodations...",
		"Services page...",
	}

	segments, problems := DetectSegments(context.Background(), pages, district, nil)
	require.Len(t, segments, 1)
	assert.Empty(t, problems)
	assert.Equal(t, 123456, segments[0].StudentID)
	assert.Equal(t, "2026-03-15", segments[0].IEPDate)
	assert.Equal(t, 1, segments[0].StartPage)
	assert.Equal(t, 3, segments[0].EndPage)
}

func TestDetectSegmentsMultipleStudents(t *testing.T) {
	pages := []string{
		headerPage("100001", "1/5/2026"),
		"body...",
		headerPage("100002", "2/6/2026"),
		headerPage("100003", "3/7/2026"),
		"body...",
		"body...",
	}

	segments, problems := DetectSegments(context.Background(), pages, district, nil)
	require.Len(t, segments, 3)
	assert.Empty(t, problems)

	assert.Equal(t, 100001, segments[0].StudentID)
	assert.Equal(t, 1, segments[0].StartPage)
	assert.Equal(t, 2, segments[0].EndPage)

	assert.Equal(t, 100002, segments[1].StudentID)
	assert.Equal(t, 3, segments[1].StartPage)
	assert.Equal(t, 3, segments[1].EndPage)

	assert.Equal(t, 100003, segments[2].StudentID)
	assert.Equal(t, 4, segments[2].StartPage)
	assert.Equal(t, 6, segments[2].EndPage)
}

func TestDetectSegmentsSkipsLeadingPages(t *testing.T) {
	pages := []string{
		"Fax cover sheet",
		headerPage("100001", "1/5/2026"),
		"body...",
	}

	segments, problems := DetectSegments(context.Background(), pages, district, nil)
	require.Len(t, segments, 1)
	assert.Equal(t, 2, segments[0].StartPage)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "precede the first document header")
}

func TestDetectSegmentsNoHeaders(t *testing.T) {
	pages := []string{"just text", "more text"}

	segments, problems := DetectSegments(context.Background(), pages, district, nil)
	assert.Empty(t, segments)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "no document headers")
}

type fakeHeaderParser struct {
	info  HeaderInfo
	err   error
	calls int
}

func (f *fakeHeaderParser) ParseHeader(_ context.Context, _ string) (HeaderInfo, error) {
	f.calls++
	return f.info, f.err
}

func TestDetectSegmentsFallbackParser(t *testing.T) {
	// Header line present but the ID label is mangled, as OCR output
	// sometimes is.
	pages := []string{
		district + " IEP AT A GLANCE\nDistr1ct 1D 100009\nIEP Date: 4/1/2026",
		"body...",
	}

	parser := &fakeHeaderParser{info: HeaderInfo{DistrictID: "100009", IEPDate: "4/1/2026"}}
	segments, problems := DetectSegments(context.Background(), pages, district, parser)
	require.Len(t, segments, 1)
	assert.Empty(t, problems)
	assert.Equal(t, 1, parser.calls)
	assert.Equal(t, 100009, segments[0].StudentID)
	assert.Equal(t, "2026-04-01", segments[0].IEPDate)
}

func TestDetectSegmentsFallbackFailureIsReported(t *testing.T) {
	pages := []string{
		district + " IEP AT A GLANCE\nno id here",
		headerPage("100002", "2/6/2026"),
	}

	parser := &fakeHeaderParser{err: errors.New("nothing found")}
	segments, problems := DetectSegments(context.Background(), pages, district, parser)
	require.Len(t, segments, 1)
	assert.Equal(t, 100002, segments[0].StudentID)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], "pages 1-1")
}

func TestDetectSegmentsRegexPrimaryNoFallbackCall(t *testing.T) {
	parser := &fakeHeaderParser{info: HeaderInfo{DistrictID: "999999"}}
	pages := []string{headerPage("123456", "3/15/2026")}

	segments, _ := DetectSegments(context.Background(), pages, district, parser)
	require.Len(t, segments, 1)
	assert.Equal(t, 123456, segments[0].StudentID)
	assert.Zero(t, parser.calls)
}

func TestMostlyEmpty(t *testing.T) {
	assert.True(t, mostlyEmpty(nil))
	assert.True(t, mostlyEmpty([]string{"", " ", "x"}))
	assert.False(t, mostlyEmpty([]string{
		"a page with a real amount of extracted text on it",
		"another page with a real amount of extracted text",
		"",
	}))
}
