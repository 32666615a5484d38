package iep

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// HeaderParser extracts the student identity from the first page of an
// IEP At A Glance when the regex pass fails.
type HeaderParser interface {
	ParseHeader(ctx context.Context, pageText string) (HeaderInfo, error)
}

// HeaderInfo is the identity block printed on an IEP cover page.
type HeaderInfo struct {
	DistrictID string `json:"district_id"`
	IEPDate    string `json:"iep_date"`
}

// GeminiHeaderParser asks Gemini to read a header the regexes could
// not. Used only as a fallback; the regex pass stays primary.
type GeminiHeaderParser struct {
	APIKey string
	Model  string
}

func (g GeminiHeaderParser) ParseHeader(ctx context.Context, pageText string) (HeaderInfo, error) {
	var out HeaderInfo

	if strings.TrimSpace(g.APIKey) == "" {
		return out, errors.New("missing GEMINI_API_KEY")
	}
	model := g.Model
	if model == "" {
		model = "gemini-2.0-flash-lite"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return out, fmt.Errorf("failed to init Gemini client: %w", err)
	}
	defer client.Close()

	gm := client.GenerativeModel(model)
	gm.GenerationConfig = genai.GenerationConfig{ResponseMIMEType: "application/json"}

	prompt := `You are an expert data extraction assistant. The following text is the cover page of a special-education "IEP At A Glance" document. Extract two fields and return clean JSON.

Rules:
1. The required fields are: "district_id" (the student's numeric district ID) and "iep_date" (the IEP meeting date, formatted MM/DD/YYYY).
2. If a field cannot be found, its value must be null.
3. Your entire response must be ONLY the JSON object.

Here is the page text:
"""
` + pageText + `
"""`

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return out, fmt.Errorf("gemini generation failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return out, errors.New("empty response from Gemini")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		} else {
			sb.WriteString(fmt.Sprint(part))
		}
	}
	jsonStr := stripCodeFences(strings.TrimSpace(sb.String()))
	if candidate, ok := extractFirstJSON(jsonStr); ok {
		jsonStr = candidate
	}
	if jsonStr == "" {
		return out, errors.New("no text in Gemini response")
	}

	var tmp map[string]any
	if err := json.Unmarshal([]byte(jsonStr), &tmp); err != nil {
		return out, fmt.Errorf("failed to parse Gemini JSON: %w", err)
	}
	get := func(k string) string {
		v, ok := tmp[k]
		if !ok || v == nil {
			return ""
		}
		switch t := v.(type) {
		case string:
			return strings.TrimSpace(t)
		default:
			b, _ := json.Marshal(t)
			return strings.Trim(strings.TrimSpace(string(b)), `"`)
		}
	}

	out.DistrictID = get("district_id")
	out.IEPDate = get("iep_date")
	if out.DistrictID == "" {
		return out, errors.New("district id not found")
	}
	return out, nil
}

// stripCodeFences removes surrounding Markdown code fences like ```json ... ```.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
		if i := strings.IndexByte(s, '\n'); i != -1 {
			first := strings.TrimSpace(s[:i])
			if len(first) > 0 && len(first) < 20 {
				s = s[i+1:]
			}
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// extractFirstJSON attempts to extract the first balanced JSON object or array.
func extractFirstJSON(s string) (string, bool) {
	if obj, ok := extractBalanced(s, '{', '}'); ok {
		return obj, true
	}
	if arr, ok := extractBalanced(s, '[', ']'); ok {
		return arr, true
	}
	return "", false
}

func extractBalanced(s string, open, close rune) (string, bool) {
	start := -1
	depth := 0
	for i, r := range s {
		if r == open {
			if depth == 0 {
				start = i
			}
			depth++
		} else if r == close {
			if depth > 0 {
				depth--
				if depth == 0 && start != -1 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}
