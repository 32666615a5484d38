package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"aeriesbridge/internal/db"
	"aeriesbridge/internal/lookup"
	"aeriesbridge/internal/models"
)

const studentCacheTTL = 2 * time.Minute

// GetStudent: GET /students/{id}/
func GetStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONResp(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}

	cacheKey := fmt.Sprintf("students:%d", id)
	var student models.Student
	if appCache.Get(r.Context(), cacheKey, &student) {
		writeJSONResp(w, http.StatusOK, student)
		return
	}

	err = db.DB.Where("id = ? AND tg = '' AND del = 0", id).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSONResp(w, http.StatusNotFound,
			map[string]string{"error": fmt.Sprintf("Student with ID %d not found", id)})
		return
	} else if err != nil {
		writeJSONResp(w, http.StatusInternalServerError,
			map[string]string{"error": fmt.Sprintf("Error retrieving student: %v", err)})
		return
	}
	appCache.Set(r.Context(), cacheKey, student, studentCacheTTL)
	writeJSONResp(w, http.StatusOK, student)
}

// SearchStudents: POST /students/lookup/
//
// Progressive tiered matching with confidence scoring:
//   - Tier 1: exact match on all provided fields (95%)
//   - Tier 2: exact name + birthdate (85%)
//   - Tier 3: exact name + address (80%)
//   - Tier 4: exact name only (70%)
//   - Tier 5: phonetic and partial matches (50-70%)
func SearchStudents(w http.ResponseWriter, r *http.Request) {
	var req models.StudentSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResp(w, http.StatusBadRequest, models.StudentLookupResponse{
			Status:  "ERROR",
			Message: "invalid JSON body",
			Matches: []models.StudentMatchResponse{},
		})
		return
	}

	cfg := lookup.DefaultConfig()
	if req.MaxResults > 0 {
		cfg.MaxResults = req.MaxResults
	}
	res := lookup.NewResolver(lookup.NewGormStore(db.DB), cfg)

	matches, err := res.Resolve(r.Context(), lookup.StudentQuery{
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Birthdate:     req.Birthdate,
		StreetAddress: req.StreetAddress,
		City:          req.City,
		State:         req.State,
		Zip:           req.Zip,
	})
	if errors.Is(err, lookup.ErrInvalidQuery) {
		writeJSONResp(w, http.StatusBadRequest, models.StudentLookupResponse{
			Status:  "ERROR",
			Message: "at least one search field is required",
			Matches: []models.StudentMatchResponse{},
		})
		return
	} else if err != nil {
		writeJSONResp(w, http.StatusInternalServerError, models.StudentLookupResponse{
			Status:  "ERROR",
			Message: fmt.Sprintf("Error during student lookup: %v", err),
			Matches: []models.StudentMatchResponse{},
		})
		return
	}

	out := make([]models.StudentMatchResponse, 0, len(matches))
	for _, m := range matches {
		out = append(out, models.StudentMatchResponse{
			StudentID:     m.StudentID,
			FirstName:     m.Record.FirstName,
			LastName:      m.Record.LastName,
			Birthdate:     m.Record.Birthdate,
			Address:       m.Record.StreetAddress,
			Tier:          m.Tier,
			Confidence:    m.Confidence,
			MatchedFields: m.MatchedFields,
		})
	}

	message := fmt.Sprintf("Found %d potential matches", len(out))
	if len(out) == 0 {
		message = "No matches found"
	}
	writeJSONResp(w, http.StatusOK, models.StudentLookupResponse{
		Status:       "SUCCESS",
		Message:      message,
		TotalMatches: len(out),
		Matches:      out,
	})
}

// StudentDetails: GET /students/{id}/details/
func StudentDetails(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONResp(w, http.StatusBadRequest, map[string]string{"error": "invalid student id"})
		return
	}

	var student models.Student
	err = db.DB.Where("id = ? AND tg = '' AND del = 0", id).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSONResp(w, http.StatusNotFound, map[string]any{
			"status":  "NOT_FOUND",
			"message": fmt.Sprintf("No student found with ID %d", id),
			"student": nil,
		})
		return
	} else if err != nil {
		writeJSONResp(w, http.StatusInternalServerError, map[string]any{
			"status":  "ERROR",
			"message": fmt.Sprintf("Error retrieving student details: %v", err),
			"student": nil,
		})
		return
	}

	details := models.StudentDetails{
		StudentID: student.ID,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Birthdate: lookup.CanonicalDateFromTime(student.Birthdate),
		Address:   student.Address,
		Grade:     student.Grade,
		School:    student.SchoolCode,
	}
	writeJSONResp(w, http.StatusOK, map[string]any{
		"status":  "SUCCESS",
		"message": fmt.Sprintf("Found details for student ID %d", id),
		"student": details,
	})
}
