package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/gorm"

	"aeriesbridge/internal/db"
	"aeriesbridge/internal/models"
)

// activeStudent fetches a student that is enrolled and not deleted.
func activeStudent(id int) (*models.Student, error) {
	var student models.Student
	err := db.DB.Where("id = ? AND tg = '' AND del = 0", id).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("student with ID %d not found", id)
	} else if err != nil {
		return nil, err
	}
	return &student, nil
}

// nextDocSQ returns max(SQ)+1 for the student's DOC rows.
func nextDocSQ(tx *gorm.DB, studentID int) (int, error) {
	var maxSQ int
	err := tx.Model(&models.Document{}).
		Where("id = ?", studentID).
		Select("COALESCE(MAX(sq), 0)").Scan(&maxSQ).Error
	if err != nil {
		return 0, err
	}
	return maxSQ + 1, nil
}

// softDeleteDocs flips DEL on the student's existing documents in a
// category. Used when a new IEP supersedes the old one.
func softDeleteDocs(tx *gorm.DB, studentID int, category string) (int64, error) {
	res := tx.Model(&models.Document{}).
		Where("id = ? AND ct = ? AND del = 0", studentID, category).
		Update("del", 1)
	return res.RowsAffected, res.Error
}

// insertDoc files a document row for a student, assigning the SQ
// inside the caller's transaction.
func insertDoc(tx *gorm.DB, doc *models.Document) error {
	sq, err := nextDocSQ(tx, doc.ID)
	if err != nil {
		return err
	}
	doc.SQ = sq
	if doc.Date.IsZero() {
		doc.Date = time.Now()
	}
	doc.InsertDate = time.Now()
	doc.Size = len(doc.Content)
	return tx.Create(doc).Error
}

// splitExt separates a filename into a base name and the extension
// Aeries stores (no leading dot).
func splitExt(filename string) (base, ext string) {
	ext = strings.TrimPrefix(filepath.Ext(filename), ".")
	base = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	return base, strings.ToLower(ext)
}
