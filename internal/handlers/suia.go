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

func parseBodyDate(s string) (time.Time, error) {
	canon := lookup.CanonicalDate(s)
	if canon == "" {
		return time.Time{}, fmt.Errorf("unrecognized date %q", s)
	}
	return time.Parse("2006-01-02", canon)
}

// AllSUIA: GET /suia/
func AllSUIA(w http.ResponseWriter, r *http.Request) {
	var rows []models.SUIARecord
	if err := db.DB.Where("del = 0").Order("id, sq").Find(&rows).Error; err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error retrieving SUIA records: %v", err))
		return
	}
	writeJSONResp(w, http.StatusOK, rows)
}

// StudentSUIA: GET /suia/{id}/
func StudentSUIA(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid student id")
		return
	}

	var rows []models.SUIARecord
	if err := db.DB.Where("id = ? AND del = 0", id).Order("sq").Find(&rows).Error; err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error retrieving SUIA records: %v", err))
		return
	}
	writeJSONResp(w, http.StatusOK, rows)
}

// CreateSUIA: POST /suia/
// SQ is assigned server side as max(SQ)+1 for the student.
func CreateSUIA(w http.ResponseWriter, r *http.Request) {
	var body models.SUIACreateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid JSON body")
		return
	}
	if body.ID == 0 {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "ID is required")
		return
	}
	if !models.SUIAInvolvementCodes[body.Involvement] {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR",
			fmt.Sprintf("Invalid involvement code %q", body.Involvement))
		return
	}
	startDate, err := parseBodyDate(body.StartDate)
	if err != nil {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR",
			"SD must be a valid date (YYYY-MM-DD or MM/DD/YYYY)")
		return
	}

	var student models.Student
	err = db.DB.Where("id = ? AND tg = '' AND del = 0", body.ID).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		writeStatusMessage(w, http.StatusNotFound, "ERROR",
			fmt.Sprintf("Student with ID %d not found", body.ID))
		return
	} else if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error looking up student: %v", err))
		return
	}

	row := models.SUIARecord{
		ID:          body.ID,
		ADSQ:        body.ADSQ,
		Involvement: body.Involvement,
		StartDate:   startDate,
		Stamp:       time.Now(),
	}
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var maxSQ int
		if err := tx.Model(&models.SUIARecord{}).
			Where("id = ?", body.ID).
			Select("COALESCE(MAX(sq), 0)").Scan(&maxSQ).Error; err != nil {
			return err
		}
		row.SQ = maxSQ + 1
		return tx.Create(&row).Error
	})
	if err != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error inserting SUIA record: %v", err))
		return
	}

	writeJSONResp(w, http.StatusOK, map[string]any{
		"status":  "SUCCESS",
		"message": fmt.Sprintf("SUIA record created for student %d", body.ID),
		"ID":      row.ID,
		"SQ":      row.SQ,
	})
}

// UpdateSUIA: PUT /suia/
// Only the fields present in the body change.
func UpdateSUIA(w http.ResponseWriter, r *http.Request) {
	var body models.SUIAUpdateBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid JSON body")
		return
	}
	if body.ID == 0 || body.SQ == 0 {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "ID and SQ are required")
		return
	}

	updates, err := suiaUpdates(body)
	if err != nil {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", err.Error())
		return
	}
	if len(updates) == 0 {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "no fields to update")
		return
	}

	res := db.DB.Model(&models.SUIARecord{}).
		Where("id = ? AND sq = ? AND del = 0", body.ID, body.SQ).
		Updates(updates)
	if res.Error != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error updating SUIA record: %v", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		writeStatusMessage(w, http.StatusNotFound, "ERROR",
			fmt.Sprintf("SUIA record (%d, %d) not found", body.ID, body.SQ))
		return
	}
	writeStatusMessage(w, http.StatusOK, "SUCCESS",
		fmt.Sprintf("SUIA record (%d, %d) updated", body.ID, body.SQ))
}

// suiaUpdates builds the column map for a partial SUIA update.
func suiaUpdates(body models.SUIAUpdateBody) (map[string]any, error) {
	updates := map[string]any{}
	if body.StartDate != nil {
		sd, err := parseBodyDate(*body.StartDate)
		if err != nil {
			return nil, fmt.Errorf("SD must be a valid date (YYYY-MM-DD or MM/DD/YYYY)")
		}
		updates["sd"] = sd
	}
	if body.ADSQ != nil {
		updates["adsq"] = *body.ADSQ
	}
	if body.Involvement != nil {
		if !models.SUIAInvolvementCodes[*body.Involvement] {
			return nil, fmt.Errorf("Invalid involvement code %q", *body.Involvement)
		}
		updates["inv"] = *body.Involvement
	}
	if len(updates) > 0 {
		updates["dts"] = time.Now()
	}
	return updates, nil
}

// DeleteSUIA: DELETE /suia/
// Soft delete: flips DEL, the row stays in the table.
func DeleteSUIA(w http.ResponseWriter, r *http.Request) {
	var body models.SUIADeleteBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeStatusMessage(w, http.StatusBadRequest, "ERROR", "invalid JSON body")
		return
	}
	if body.ID == 0 || body.SQ == 0 {
		writeStatusMessage(w, http.StatusUnprocessableEntity, "ERROR", "ID and SQ are required")
		return
	}

	res := db.DB.Model(&models.SUIARecord{}).
		Where("id = ? AND sq = ? AND del = 0", body.ID, body.SQ).
		Updates(map[string]any{"del": 1, "dts": time.Now()})
	if res.Error != nil {
		writeStatusMessage(w, http.StatusInternalServerError, "ERROR",
			fmt.Sprintf("Error deleting SUIA record: %v", res.Error))
		return
	}
	if res.RowsAffected == 0 {
		writeStatusMessage(w, http.StatusNotFound, "ERROR",
			fmt.Sprintf("SUIA record (%d, %d) not found", body.ID, body.SQ))
		return
	}
	writeStatusMessage(w, http.StatusOK, "SUCCESS",
		fmt.Sprintf("SUIA record (%d, %d) deleted", body.ID, body.SQ))
}
