package iep

import (
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func pdfPageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("page count %s: %w", path, err)
	}
	return n, nil
}

// WriteSegment copies one segment's page range out of the batch packet
// into its own PDF.
func WriteSegment(srcPath, outPath string, seg Segment) error {
	pageRange := []string{fmt.Sprintf("%d-%d", seg.StartPage, seg.EndPage)}
	if err := api.TrimFile(srcPath, outPath, pageRange, nil); err != nil {
		return fmt.Errorf("split pages %d-%d of %s: %w", seg.StartPage, seg.EndPage, srcPath, err)
	}
	return nil
}
