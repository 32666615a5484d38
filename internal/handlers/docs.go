package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"aeriesbridge/internal/db"
	"aeriesbridge/internal/middleware"
	"aeriesbridge/internal/models"
)

const (
	maxUploadBytes  = 32 << 20
	docListCacheTTL = time.Minute
)

func docListCacheKey(studentID int) string {
	return fmt.Sprintf("docs:student:%d", studentID)
}

// Reclassification filenames start with the student ID, e.g. 123456_RFEP.pdf.
var reclassFilePattern = regexp.MustCompile(`^(\d{5,6})_`)

var allowedUploadExts = map[string]bool{
	"pdf": true, "doc": true, "docx": true,
	"jpg": true, "jpeg": true, "png": true,
}

var docCategoryNames = map[string]string{
	models.DocCategoryReclass: "Reclassification",
	models.DocCategoryIEP:     "IEP At A Glance",
	models.DocCategoryGeneral: "General",
}

// DocumentCategories: GET /docs/categories/
func DocumentCategories(w http.ResponseWriter, r *http.Request) {
	writeJSONResp(w, http.StatusOK, map[string]any{
		"status":     "SUCCESS",
		"categories": docCategoryNames,
	})
}

// errUploadTooLarge marks rejections the handlers map to 413.
var errUploadTooLarge = fmt.Errorf("file exceeds the %d MB upload limit", maxUploadBytes>>20)

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadBytes {
		return nil, errUploadTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Read one byte past the cap so an oversized part fails instead of
	// storing a truncated document.
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxUploadBytes {
		return nil, errUploadTooLarge
	}
	return data, nil
}

// UploadGeneralDocument: POST /docs/uploadGeneral/ (protected)
// Multipart form: stu_id + file. Files into DOC under the general category.
func UploadGeneralDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid multipart form")
		return
	}
	studentID, err := strconv.Atoi(r.FormValue("stu_id"))
	if err != nil {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "stu_id is required")
		return
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "file is required")
		return
	}

	base, ext := splitExt(fh.Filename)
	if !allowedUploadExts[ext] {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR",
			fmt.Sprintf("File type %q is not accepted", ext))
		return
	}

	student, err := activeStudent(studentID)
	if err != nil {
		writeStatusMessage(w, http.StatusNotFound, "ERROR", err.Error())
		return
	}

	content, err := readUpload(fh)
	if errors.Is(err, errUploadTooLarge) {
		writeStatusMessage(w, http.StatusRequestEntityTooLarge, "ERROR", err.Error())
		return
	} else if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error reading upload: %v", err))
		return
	}

	username, _ := middleware.UsernameFromContext(r.Context())
	doc := models.Document{
		ID:         studentID,
		Grade:      student.Grade,
		Category:   models.DocCategoryGeneral,
		Name:       base,
		Extension:  ext,
		Content:    content,
		Source:     "API Upload",
		UploadedBy: username,
	}
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		return insertDoc(tx, &doc)
	})
	if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error storing document: %v", err))
		return
	}
	appCache.Invalidate(r.Context(), docListCacheKey(studentID))

	writeJSONResp(w, http.StatusOK, models.DocumentUploadResponse{
		Status:         "SUCCESS",
		Message:        fmt.Sprintf("Document filed for student %d", studentID),
		TotalDocuments: 1,
		ExtractedDocs: []models.DocumentInfo{{
			File:        fh.Filename,
			StudentID:   strconv.Itoa(studentID),
			StudentName: student.FirstName + " " + student.LastName,
			UploadDate:  time.Now().Format("2006-01-02"),
		}},
		Errors: []models.UploadError{},
	})
}

// UploadReclassification: POST /docs/uploadReclassification/ (protected)
// Batch upload. Each filename must start with the student ID; files
// whose student cannot be resolved are reported, not fatal.
func UploadReclassification(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid multipart form")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "at least one file is required")
		return
	}

	username, _ := middleware.UsernameFromContext(r.Context())
	extracted := []models.DocumentInfo{}
	uploadErrs := []models.UploadError{}

	for _, fh := range files {
		m := reclassFilePattern.FindStringSubmatch(fh.Filename)
		if m == nil {
			uploadErrs = append(uploadErrs, models.UploadError{
				Message:   fmt.Sprintf("Filename %q does not start with a student ID", fh.Filename),
				StudentID: "",
			})
			continue
		}
		studentID, _ := strconv.Atoi(m[1])

		student, err := activeStudent(studentID)
		if err != nil {
			uploadErrs = append(uploadErrs, models.UploadError{
				Message:   err.Error(),
				StudentID: m[1],
			})
			continue
		}

		content, err := readUpload(fh)
		if err != nil {
			uploadErrs = append(uploadErrs, models.UploadError{
				Message:     fmt.Sprintf("Error reading %q: %v", fh.Filename, err),
				StudentID:   m[1],
				StudentName: student.FirstName + " " + student.LastName,
			})
			continue
		}

		base, ext := splitExt(fh.Filename)
		doc := models.Document{
			ID:         studentID,
			Grade:      student.Grade,
			Category:   models.DocCategoryReclass,
			Name:       base,
			Extension:  ext,
			Content:    content,
			Source:     "Reclassification Upload",
			UploadedBy: username,
		}
		err = db.DB.Transaction(func(tx *gorm.DB) error {
			// A new reclassification letter supersedes the old one.
			if _, derr := softDeleteDocs(tx, studentID, models.DocCategoryReclass); derr != nil {
				return derr
			}
			return insertDoc(tx, &doc)
		})
		if err != nil {
			uploadErrs = append(uploadErrs, models.UploadError{
				Message:     fmt.Sprintf("Error storing %q: %v", fh.Filename, err),
				StudentID:   m[1],
				StudentName: student.FirstName + " " + student.LastName,
			})
			continue
		}

		appCache.Invalidate(r.Context(), docListCacheKey(studentID))
		extracted = append(extracted, models.DocumentInfo{
			File:         fh.Filename,
			StudentID:    m[1],
			StudentName:  student.FirstName + " " + student.LastName,
			DocumentType: docCategoryNames[models.DocCategoryReclass],
			UploadDate:   time.Now().Format("2006-01-02"),
		})
	}

	writeJSONResp(w, http.StatusOK, models.DocumentUploadResponse{
		Status:         uploadStatus(len(extracted), len(uploadErrs)),
		Message:        fmt.Sprintf("Processed %d of %d files", len(extracted), len(files)),
		TotalDocuments: len(extracted),
		ExtractedDocs:  extracted,
		Errors:         uploadErrs,
	})
}

// StudentDocuments: GET /docs/student/{id}/documents/
// Listing only; file bytes come through the download endpoint.
func StudentDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid student id")
		return
	}

	category := r.URL.Query().Get("category")

	cacheKey := docListCacheKey(id)
	if category != "" {
		cacheKey = fmt.Sprintf("%s:ct:%s", cacheKey, category)
	}
	var docs []models.Document
	if !appCache.Get(r.Context(), cacheKey, &docs) {
		q := db.DB.Select("id, sq, dt, gr, ct, nm, xt, sz, lk, src, sct, ty, un, idt, del").
			Where("id = ? AND del = 0", id)
		if category != "" {
			q = q.Where("ct = ?", category)
		}
		if err := q.Order("sq").Find(&docs).Error; err != nil {
			writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
				fmt.Sprintf("Error retrieving documents: %v", err))
			return
		}
		appCache.Set(r.Context(), cacheKey, docs, docListCacheTTL)
	}
	writeJSONResp(w, http.StatusOK, map[string]any{
		"status":    "SUCCESS",
		"total":     len(docs),
		"documents": docs,
	})
}

// DownloadDocument: GET /docs/{id}/{sq}/ (protected)
func DownloadDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid student id")
		return
	}
	sq, err := strconv.Atoi(chi.URLParam(r, "sq"))
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid document sequence")
		return
	}

	doc, err := fetchDocument(id, sq)
	if err != nil {
		writeStatusMessage(w, http.StatusNotFound, "ERROR", err.Error())
		return
	}
	serveDocument(w, doc)
}

func fetchDocument(id, sq int) (*models.Document, error) {
	var doc models.Document
	err := db.DB.Where("id = ? AND sq = ? AND del = 0", id, sq).First(&doc).Error
	if err != nil {
		return nil, fmt.Errorf("document (%d, %d) not found", id, sq)
	}
	return &doc, nil
}

func serveDocument(w http.ResponseWriter, doc *models.Document) {
	contentType := "application/octet-stream"
	if doc.Extension == "pdf" {
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename=%q", doc.Name+"."+doc.Extension))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Content)
}
