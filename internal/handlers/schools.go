package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"aeriesbridge/internal/db"
	"aeriesbridge/internal/models"
)

const schoolCacheTTL = 5 * time.Minute

// AllSchools: GET /schools/
func AllSchools(w http.ResponseWriter, r *http.Request) {
	var schools []models.School
	if appCache.Get(r.Context(), "schools:all", &schools) {
		writeJSONResp(w, http.StatusOK, schools)
		return
	}

	if err := db.DB.Where("del = 0").Order("cd").Find(&schools).Error; err != nil {
		writeJSONResp(w, http.StatusInternalServerError,
			map[string]string{"error": fmt.Sprintf("Error retrieving schools: %v", err)})
		return
	}
	appCache.Set(r.Context(), "schools:all", schools, schoolCacheTTL)
	writeJSONResp(w, http.StatusOK, schools)
}

// SingleSchool: GET /schools/{sc}/
func SingleSchool(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(chi.URLParam(r, "sc"))
	if err != nil {
		writeJSONResp(w, http.StatusBadRequest, map[string]string{"error": "invalid school code"})
		return
	}

	cacheKey := fmt.Sprintf("schools:%d", code)
	var school models.School
	if appCache.Get(r.Context(), cacheKey, &school) {
		writeJSONResp(w, http.StatusOK, school)
		return
	}

	err = db.DB.Where("cd = ? AND del = 0", code).First(&school).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeJSONResp(w, http.StatusNotFound,
			map[string]string{"error": fmt.Sprintf("School with code %d not found", code)})
		return
	} else if err != nil {
		writeJSONResp(w, http.StatusInternalServerError,
			map[string]string{"error": fmt.Sprintf("Error retrieving school: %v", err)})
		return
	}
	appCache.Set(r.Context(), cacheKey, school, schoolCacheTTL)
	writeJSONResp(w, http.StatusOK, school)
}
