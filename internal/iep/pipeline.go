package iep

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"aeriesbridge/internal/config"
)

// SplitDocument is one per-student PDF written by the pipeline.
type SplitDocument struct {
	Segment
	Path  string
	Pages int
}

// Result reports what a packet produced.
type Result struct {
	Documents []SplitDocument
	Problems  []string
}

// Pipeline turns a batch IEP At A Glance packet into one PDF per
// student: text layer first, OCR for scanned packets, Gemini for
// headers the regexes cannot read.
type Pipeline struct {
	Extractor    PageExtractor
	OCR          PageExtractor
	Fallback     HeaderParser
	DistrictName string
	OutputDir    string
}

// NewPipeline builds the production pipeline from settings. OCR and
// the Gemini fallback are skipped when their credentials are absent.
func NewPipeline(settings config.Settings) *Pipeline {
	p := &Pipeline{
		Extractor:    TextLayerExtractor{},
		DistrictName: settings.IEPHeaderDistrictName,
		OutputDir:    settings.SplitIEPFolder,
	}
	if settings.GoogleCredentialsFile != "" {
		p.OCR = OCRExtractor{}
	}
	if settings.GeminiAPIKey != "" {
		p.Fallback = GeminiHeaderParser{APIKey: settings.GeminiAPIKey}
	}
	return p
}

// Process splits one packet. Per-segment failures land in
// Result.Problems; only packet-level failures return an error.
func (p *Pipeline) Process(ctx context.Context, path string) (Result, error) {
	var res Result

	pages, err := p.Extractor.ExtractPages(ctx, path)
	if err != nil {
		return res, err
	}
	if mostlyEmpty(pages) && p.OCR != nil {
		log.Printf("iep: %s has no usable text layer, running OCR", filepath.Base(path))
		ocrPages, err := p.OCR.ExtractPages(ctx, path)
		if err != nil {
			return res, fmt.Errorf("ocr fallback: %w", err)
		}
		pages = ocrPages
	}

	segments, problems := DetectSegments(ctx, pages, p.DistrictName, p.Fallback)
	res.Problems = problems

	if len(segments) > 0 {
		if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
			return res, fmt.Errorf("create output dir: %w", err)
		}
	}
	for _, seg := range segments {
		outPath := filepath.Join(p.OutputDir,
			fmt.Sprintf("%d_IEP_At_A_Glance.pdf", seg.StudentID))
		if err := WriteSegment(path, outPath, seg); err != nil {
			res.Problems = append(res.Problems, err.Error())
			continue
		}
		res.Documents = append(res.Documents, SplitDocument{
			Segment: seg,
			Path:    outPath,
			Pages:   seg.EndPage - seg.StartPage + 1,
		})
	}
	return res, nil
}
