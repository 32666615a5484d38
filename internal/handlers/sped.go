package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"aeriesbridge/internal/config"
	"aeriesbridge/internal/db"
	"aeriesbridge/internal/iep"
	"aeriesbridge/internal/middleware"
	"aeriesbridge/internal/models"
)

// UploadIepAtAGlance: POST /sped/uploadIepAtAGlance/ (protected)
// Accepts a batch packet holding many students' IEP At A Glance
// documents, splits it per student and files each into DOC.
func UploadIepAtAGlance(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid multipart form")
		return
	}
	_, fh, err := r.FormFile("file")
	if err != nil {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "file is required")
		return
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "only PDF packets are accepted")
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

	tmp, err := os.CreateTemp("", "iep-packet-*.pdf")
	if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR", "failed to stage packet")
		return
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR", "failed to stage packet")
		return
	}
	tmp.Close()

	username, _ := middleware.UsernameFromContext(r.Context())
	resp := processIepPacket(r, tmp.Name(), fh.Filename, username)
	writeJSONResp(w, http.StatusOK, resp)
}

// ProcessIepFromFolder: POST /sped/processIepFromFolder/ (protected)
// Batch mode: every PDF dropped in the input folder gets the same
// treatment as an uploaded packet.
func ProcessIepFromFolder(w http.ResponseWriter, r *http.Request) {
	settings := config.Load()
	entries, err := os.ReadDir(settings.InputDirectoryPath)
	if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error reading input folder %s: %v", settings.InputDirectoryPath, err))
		return
	}

	username, _ := middleware.UsernameFromContext(r.Context())
	combined := models.DocumentUploadResponse{
		ExtractedDocs: []models.DocumentInfo{},
		Errors:        []models.UploadError{},
	}
	packets := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		packets++
		path := filepath.Join(settings.InputDirectoryPath, entry.Name())
		resp := processIepPacket(r, path, entry.Name(), username)
		combined.ExtractedDocs = append(combined.ExtractedDocs, resp.ExtractedDocs...)
		combined.Errors = append(combined.Errors, resp.Errors...)
	}

	if packets == 0 {
		writeJSONResp(w, http.StatusOK, models.DocumentUploadResponse{
			Status:        "WARNING",
			Message:       fmt.Sprintf("No PDF packets found in %s", settings.InputDirectoryPath),
			ExtractedDocs: []models.DocumentInfo{},
			Errors:        []models.UploadError{},
		})
		return
	}

	combined.TotalDocuments = len(combined.ExtractedDocs)
	combined.Status = uploadStatus(len(combined.ExtractedDocs), len(combined.Errors))
	combined.Message = fmt.Sprintf("Processed %d packets: %d documents filed, %d problems",
		packets, len(combined.ExtractedDocs), len(combined.Errors))
	writeJSONResp(w, http.StatusOK, combined)
}

func uploadStatus(filed, problems int) string {
	switch {
	case filed == 0 && problems > 0:
		return "ERROR"
	case problems > 0:
		return "PARTIAL_SUCCESS"
	case filed == 0:
		return "WARNING"
	}
	return "SUCCESS"
}

// processIepPacket splits one packet and files the pieces.
func processIepPacket(r *http.Request, path, label, username string) models.DocumentUploadResponse {
	settings := config.Load()
	pipeline := iep.NewPipeline(settings)

	resp := models.DocumentUploadResponse{
		ExtractedDocs: []models.DocumentInfo{},
		Errors:        []models.UploadError{},
	}

	result, err := pipeline.Process(r.Context(), path)
	if err != nil {
		resp.Status = "ERROR"
		resp.Message = fmt.Sprintf("Failed to process %s: %v", label, err)
		resp.Errors = append(resp.Errors, models.UploadError{Message: resp.Message})
		return resp
	}
	for _, problem := range result.Problems {
		resp.Errors = append(resp.Errors, models.UploadError{
			Message: fmt.Sprintf("%s: %s", label, problem),
		})
	}

	for _, split := range result.Documents {
		if settings.TestRun {
			resp.ExtractedDocs = append(resp.ExtractedDocs, models.DocumentInfo{
				File:         filepath.Base(split.Path),
				StudentID:    strconv.Itoa(split.StudentID),
				DocumentType: "IEP At A Glance (dry run)",
				Pages:        split.Pages,
			})
			continue
		}
		info, uerr := fileIepDocument(split, username, settings.IEPAtAGlanceDocCode)
		if uerr != nil {
			resp.Errors = append(resp.Errors, *uerr)
			continue
		}
		appCache.Invalidate(r.Context(), docListCacheKey(split.StudentID))
		resp.ExtractedDocs = append(resp.ExtractedDocs, *info)
	}

	resp.TotalDocuments = len(resp.ExtractedDocs)
	resp.Status = uploadStatus(len(resp.ExtractedDocs), len(resp.Errors))
	resp.Message = fmt.Sprintf("Filed %d of %d documents from %s",
		len(resp.ExtractedDocs), len(result.Documents), label)
	return resp
}

// fileIepDocument stores one split PDF in DOC, superseding the
// student's previous IEP At A Glance.
func fileIepDocument(split iep.SplitDocument, username, docCode string) (*models.DocumentInfo, *models.UploadError) {
	studentID := strconv.Itoa(split.StudentID)

	student, err := activeStudent(split.StudentID)
	if err != nil {
		return nil, &models.UploadError{Message: err.Error(), StudentID: studentID}
	}

	content, err := os.ReadFile(split.Path)
	if err != nil {
		return nil, &models.UploadError{
			Message:     fmt.Sprintf("Error reading split PDF: %v", err),
			StudentID:   studentID,
			StudentName: student.FirstName + " " + student.LastName,
		}
	}

	name := fmt.Sprintf("IEP At A Glance #%d", split.StudentID)
	doc := models.Document{
		ID:         split.StudentID,
		Grade:      student.Grade,
		Category:   docCode,
		Extension:  "pdf",
		Content:    content,
		Source:     "SPED Upload",
		UploadedBy: username,
	}
	if split.IEPDate != "" {
		if dt, perr := time.Parse("2006-01-02", split.IEPDate); perr == nil {
			doc.Date = dt
			name = fmt.Sprintf("IEP At A Glance %s #%d", dt.Format("01/02/2006"), split.StudentID)
		}
	}
	doc.Name = name

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		superseded, derr := softDeleteDocs(tx, split.StudentID, docCode)
		if derr != nil {
			return derr
		}
		if superseded > 0 {
			log.Printf("sped: superseded %d older IEP documents for student %d",
				superseded, split.StudentID)
		}
		return insertDoc(tx, &doc)
	})
	if err != nil {
		return nil, &models.UploadError{
			Message:     fmt.Sprintf("Error storing document: %v", err),
			StudentID:   studentID,
			StudentName: student.FirstName + " " + student.LastName,
		}
	}

	return &models.DocumentInfo{
		File:         filepath.Base(split.Path),
		StudentID:    studentID,
		StudentName:  student.FirstName + " " + student.LastName,
		DocumentType: "IEP At A Glance",
		Pages:        split.Pages,
		UploadDate:   time.Now().Format("2006-01-02"),
	}, nil
}
