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
	"aeriesbridge/internal/models"
)

// Incident IDs live in a district-reserved band.
const (
	iidRangeStart = 500000
	iidRangeEnd   = 968159
)

// nextIID returns the next unused incident ID inside the reserved band.
func nextIID(tx *gorm.DB) (int, error) {
	var maxIID int
	err := tx.Model(&models.ADSRecord{}).
		Where("iid >= ? AND iid <= ?", iidRangeStart, iidRangeEnd).
		Select("COALESCE(MAX(iid), 0)").Scan(&maxIID).Error
	if err != nil {
		return 0, err
	}
	if maxIID < iidRangeStart {
		return iidRangeStart, nil
	}
	if maxIID >= iidRangeEnd {
		return 0, fmt.Errorf("incident ID range exhausted")
	}
	return maxIID + 1, nil
}

// NextADSIID: GET /discipline/ADS_next_IID/
func NextADSIID(w http.ResponseWriter, r *http.Request) {
	iid, err := nextIID(db.DB)
	if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error computing next incident ID: %v", err))
		return
	}
	writeJSONResp(w, http.StatusOK, map[string]any{"status": "SUCCESS", "IID": iid})
}

// StudentADS: GET /discipline/ADS/{id}/
func StudentADS(w http.ResponseWriter, r *http.Request) {
	pid, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid student id")
		return
	}

	var rows []models.ADSRecord
	if err := db.DB.Where("pid = ? AND del = 0", pid).Order("sq").Find(&rows).Error; err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error retrieving discipline records: %v", err))
		return
	}
	writeJSONResp(w, http.StatusOK, rows)
}

// CreateADS: POST /discipline/ADS/
// Assigns the per-student SQ and a fresh incident ID in one
// transaction. The (PID, SQ) primary key makes a concurrent insert for
// the same student fail rather than collide; the IID scan carries no
// such guarantee.
func CreateADS(w http.ResponseWriter, r *http.Request) {
	var body models.ADSCreateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid JSON body")
		return
	}
	if body.PID == 0 || body.Code == "" {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "PID and CD are required")
		return
	}
	incidentDate, err := parseBodyDate(body.Date)
	if err != nil {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR",
			"DT must be a valid date (YYYY-MM-DD or MM/DD/YYYY)")
		return
	}

	var student models.Student
	err = db.DB.Where("id = ? AND tg = '' AND del = 0", body.PID).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeStatusMessage(w, http.StatusNotFound, "ERROR",
			fmt.Sprintf("Student with ID %d not found", body.PID))
		return
	} else if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error looking up student: %v", err))
		return
	}

	row := models.ADSRecord{
		PID:          body.PID,
		Grade:        body.Grade,
		SchoolCode:   body.SchoolCode,
		Code:         body.Code,
		Comment:      body.Comment,
		Date:         incidentDate,
		LocationCode: body.LocationCode,
		ReferrerName: body.ReferrerName,
		StaffRef:     body.StaffRef,
		Stamp:        time.Now(),
	}
	if row.Grade == 0 {
		row.Grade = student.Grade
	}
	if row.SchoolCode == 0 {
		row.SchoolCode = student.SchoolCode
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var maxSQ int
		if err := tx.Model(&models.ADSRecord{}).
			Where("pid = ?", body.PID).
			Select("COALESCE(MAX(sq), 0)").Scan(&maxSQ).Error; err != nil {
			return err
		}
		row.SQ = maxSQ + 1

		iid, err := nextIID(tx)
		if err != nil {
			return err
		}
		row.IID = iid
		return tx.Create(&row).Error
	})
	if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error inserting discipline record: %v", err))
		return
	}

	writeJSONResp(w, http.StatusOK, models.ADSCreateResponse{
		Status:  "SUCCESS",
		Message: fmt.Sprintf("Discipline record created for student %d", body.PID),
		ID:      row.PID,
		SQ:      row.SQ,
		IID:     row.IID,
	})
}

// CreateDSP: POST /discipline/DSP/
// Dispositions hang off an existing ADS row and get their own SQ1.
func CreateDSP(w http.ResponseWriter, r *http.Request) {
	var body models.DSPCreateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid JSON body")
		return
	}
	if body.PID == 0 || body.SQ == 0 || body.Disposition == "" {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "PID, SQ and DS are required")
		return
	}

	var incident models.ADSRecord
	err := db.DB.Where("pid = ? AND sq = ? AND del = 0", body.PID, body.SQ).First(&incident).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeStatusMessage(w, http.StatusNotFound, "ERROR",
			fmt.Sprintf("Discipline record (%d, %d) not found", body.PID, body.SQ))
		return
	} else if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error looking up discipline record: %v", err))
		return
	}

	row := models.DSPRecord{
		PID:         body.PID,
		SQ:          body.SQ,
		Disposition: body.Disposition,
		Stamp:       time.Now(),
	}
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var maxSQ1 int
		if err := tx.Model(&models.DSPRecord{}).
			Where("pid = ? AND sq = ?", body.PID, body.SQ).
			Select("COALESCE(MAX(sq1), 0)").Scan(&maxSQ1).Error; err != nil {
			return err
		}
		row.SQ1 = maxSQ1 + 1
		return tx.Create(&row).Error
	})
	if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error inserting disposition: %v", err))
		return
	}

	writeJSONResp(w, http.StatusOK, map[string]any{
		"status":  "SUCCESS",
		"message": fmt.Sprintf("Disposition created for incident (%d, %d)", body.PID, body.SQ),
		"PID":     row.PID,
		"SQ":      row.SQ,
		"SQ1":     row.SQ1,
	})
}
