package iep

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"aeriesbridge/internal/lookup"
)

// Segment is one student's IEP At A Glance inside a batch packet.
// Pages are 1-based and inclusive.
type Segment struct {
	StudentID int
	IEPDate   string
	StartPage int
	EndPage   int
}

var (
	districtIDPattern = regexp.MustCompile(`District ID:\s*(\d+)`)
	iepDatePattern    = regexp.MustCompile(`IEP Date:\s*(\d{1,2}/\d{1,2}/\d{4})`)
)

// headerPattern matches the SELPA cover line that starts each
// student's section.
func headerPattern(districtName string) *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(districtName) + `\s+IEP AT A GLANCE`)
}

// DetectSegments walks the page texts of a batch packet and finds the
// boundaries between students. A page matching the district header
// opens a new segment; the previous one ends on the page before.
//
// When the header is present but the regexes cannot pull a district
// ID, the fallback parser (if any) gets one chance at the page text.
// Segments that still have no ID are dropped and reported.
func DetectSegments(ctx context.Context, pages []string, districtName string, fallback HeaderParser) ([]Segment, []string) {
	header := headerPattern(districtName)

	var segments []Segment
	var problems []string
	open := -1

	closeSegment := func(endPage int) {
		if open == -1 {
			return
		}
		seg, err := readHeader(ctx, pages[open], fallback)
		if err != nil {
			problems = append(problems,
				fmt.Sprintf("pages %d-%d: %v", open+1, endPage+1, err))
		} else {
			seg.StartPage = open + 1
			seg.EndPage = endPage + 1
			segments = append(segments, seg)
		}
		open = -1
	}

	for i, text := range pages {
		if !header.MatchString(text) {
			continue
		}
		if open == -1 && i > 0 && len(segments) == 0 && len(problems) == 0 {
			problems = append(problems,
				fmt.Sprintf("pages 1-%d precede the first document header and were skipped", i))
		}
		closeSegment(i - 1)
		open = i
	}
	closeSegment(len(pages) - 1)

	if len(segments) == 0 && len(problems) == 0 {
		problems = append(problems, "no document headers found in packet")
	}
	return segments, problems
}

// readHeader extracts the student identity from a header page, regex
// first, Gemini second.
func readHeader(ctx context.Context, pageText string, fallback HeaderParser) (Segment, error) {
	var seg Segment

	idMatch := districtIDPattern.FindStringSubmatch(pageText)
	dateMatch := iepDatePattern.FindStringSubmatch(pageText)
	if idMatch != nil {
		seg.StudentID, _ = strconv.Atoi(idMatch[1])
		if dateMatch != nil {
			seg.IEPDate = lookup.CanonicalDate(dateMatch[1])
		}
		return seg, nil
	}

	if fallback == nil {
		return seg, fmt.Errorf("district ID not found on header page")
	}
	info, err := fallback.ParseHeader(ctx, pageText)
	if err != nil {
		return seg, fmt.Errorf("district ID not found on header page: %w", err)
	}
	seg.StudentID, err = strconv.Atoi(info.DistrictID)
	if err != nil || seg.StudentID == 0 {
		return seg, fmt.Errorf("fallback parser returned invalid district ID %q", info.DistrictID)
	}
	seg.IEPDate = lookup.CanonicalDate(info.IEPDate)
	return seg, nil
}
