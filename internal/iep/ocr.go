package iep

import (
	"context"
	"fmt"
	"os"

	vision "cloud.google.com/go/vision/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"
)

// visionBatchLimit is the page cap per synchronous file annotation
// request.
const visionBatchLimit = 5

// OCRExtractor runs Google Vision document text detection over a
// scanned PDF, page by page.
type OCRExtractor struct{}

func (OCRExtractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf %s: %w", path, err)
	}

	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create vision client: %w", err)
	}
	defer client.Close()

	pageCount, err := pdfPageCount(path)
	if err != nil {
		return nil, err
	}

	pages := make([]string, pageCount)
	for start := 1; start <= pageCount; start += visionBatchLimit {
		end := start + visionBatchLimit - 1
		if end > pageCount {
			end = pageCount
		}
		batch := make([]int32, 0, visionBatchLimit)
		for p := start; p <= end; p++ {
			batch = append(batch, int32(p))
		}

		resp, err := client.BatchAnnotateFiles(ctx, &visionpb.BatchAnnotateFilesRequest{
			Requests: []*visionpb.AnnotateFileRequest{{
				InputConfig: &visionpb.InputConfig{
					Content:  content,
					MimeType: "application/pdf",
				},
				Features: []*visionpb.Feature{{
					Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION,
				}},
				Pages: batch,
			}},
		})
		if err != nil {
			return nil, fmt.Errorf("vision annotate pages %d-%d: %w", start, end, err)
		}
		if len(resp.Responses) == 0 {
			continue
		}
		for _, pageResp := range resp.Responses[0].Responses {
			idx := int(pageResp.GetContext().GetPageNumber()) - 1
			if idx < 0 || idx >= pageCount {
				continue
			}
			if ann := pageResp.GetFullTextAnnotation(); ann != nil {
				pages[idx] = ann.Text
			}
		}
	}
	return pages, nil
}
