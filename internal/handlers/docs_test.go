package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aeriesbridge/internal/models"
)

func multipartFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/docs/uploadGeneral/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(64<<20))
	return req.MultipartForm.File[field][0]
}

func TestReadUploadPreservesContent(t *testing.T) {
	content := bytes.Repeat([]byte("pdf"), 1024)
	fh := multipartFileHeader(t, "file", "report.pdf", content)

	got, err := readUpload(fh)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestReadUploadRejectsOversizedFile(t *testing.T) {
	// The declared part size alone must reject the upload; nothing may
	// be read, stored or truncated.
	fh := &multipart.FileHeader{Filename: "huge.pdf", Size: maxUploadBytes + 1}

	got, err := readUpload(fh)
	require.ErrorIs(t, err, errUploadTooLarge)
	assert.Nil(t, got)
}

func TestReclassFilePattern(t *testing.T) {
	cases := []struct {
		filename string
		id       string
	}{
		{"123456_RFEP.pdf", "123456"},
		{"54321_reclass_letter.pdf", "54321"},
		{"1234_too_short.pdf", ""},
		{"RFEP_123456.pdf", ""},
		{"nodigits.pdf", ""},
	}
	for _, tc := range cases {
		m := reclassFilePattern.FindStringSubmatch(tc.filename)
		if tc.id == "" {
			assert.Nil(t, m, tc.filename)
			continue
		}
		require.NotNil(t, m, tc.filename)
		assert.Equal(t, tc.id, m[1], tc.filename)
	}
}

func TestSplitExt(t *testing.T) {
	base, ext := splitExt("123456_RFEP.PDF")
	assert.Equal(t, "123456_RFEP", base)
	assert.Equal(t, "pdf", ext)

	base, ext = splitExt("/tmp/upload/report.docx")
	assert.Equal(t, "report", base)
	assert.Equal(t, "docx", ext)

	base, ext = splitExt("noextension")
	assert.Equal(t, "noextension", base)
	assert.Equal(t, "", ext)
}

func TestUploadStatus(t *testing.T) {
	assert.Equal(t, "SUCCESS", uploadStatus(3, 0))
	assert.Equal(t, "PARTIAL_SUCCESS", uploadStatus(2, 1))
	assert.Equal(t, "ERROR", uploadStatus(0, 2))
	assert.Equal(t, "WARNING", uploadStatus(0, 0))
}

func TestSuiaUpdatesPartial(t *testing.T) {
	sd := "3/15/2026"
	inv := "TUPE"
	adsq := 2

	updates, err := suiaUpdates(models.SUIAUpdateBody{ID: 1, SQ: 1, StartDate: &sd, Involvement: &inv, ADSQ: &adsq})
	require.NoError(t, err)
	assert.Contains(t, updates, "sd")
	assert.Equal(t, "TUPE", updates["inv"])
	assert.Equal(t, 2, updates["adsq"])
	assert.Contains(t, updates, "dts")

	updates, err = suiaUpdates(models.SUIAUpdateBody{ID: 1, SQ: 1})
	require.NoError(t, err)
	assert.Empty(t, updates)
}

func TestSuiaUpdatesRejectsBadValues(t *testing.T) {
	bad := "not-a-date"
	_, err := suiaUpdates(models.SUIAUpdateBody{ID: 1, SQ: 1, StartDate: &bad})
	assert.Error(t, err)

	badInv := "XXXX"
	_, err = suiaUpdates(models.SUIAUpdateBody{ID: 1, SQ: 1, Involvement: &badInv})
	assert.Error(t, err)
}
