package lookup

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"aeriesbridge/internal/models"
)

// candidateLimit bounds how many rows a fuzzy fetch may pull for
// in-memory scoring.
const candidateLimit = 200

// GormStore implements CandidateStore over the STU table. Equality
// tiers push name and birthdate filters into SQL; fuzzy tiers fetch a
// bounded candidate set and let the resolver score it.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Student{}).
		Where("tg = '' AND del = 0")
}

func (s *GormStore) FindExact(ctx context.Context, f Filters) ([]StudentRecord, error) {
	q := s.active(ctx)
	if f.FirstName != "" {
		q = q.Where("LOWER(fn) = ?", f.FirstName)
	}
	if f.LastName != "" {
		q = q.Where("LOWER(ln) = ?", f.LastName)
	}
	if f.Birthdate != "" {
		q = q.Where("bd = ?", f.Birthdate)
	}
	// Address fields are compared in the resolver after punctuation
	// stripping; SQL equality would miss reformatted addresses.

	var rows []models.Student
	if err := q.Limit(candidateLimit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("lookup: exact fetch: %w", err)
	}
	return recordsFromStudents(rows), nil
}

func (s *GormStore) FindPhonetic(ctx context.Context, firstCode, lastCode string) ([]StudentRecord, error) {
	if firstCode == "" || lastCode == "" {
		return nil, nil
	}
	// Soundex preserves the leading letter, so a first-letter bucket is
	// a safe superset of the phonetic matches.
	var rows []models.Student
	err := s.active(ctx).
		Where("LOWER(LEFT(fn, 1)) = ? AND LOWER(LEFT(ln, 1)) = ?",
			strings.ToLower(firstCode[:1]), strings.ToLower(lastCode[:1])).
		Limit(candidateLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lookup: phonetic fetch: %w", err)
	}
	return recordsFromStudents(rows), nil
}

func (s *GormStore) FindPartial(ctx context.Context, firstFrag, lastFrag string) ([]StudentRecord, error) {
	if firstFrag == "" || lastFrag == "" {
		return nil, nil
	}
	firstPattern := "%" + firstFrag + "%"
	lastPattern := "%" + lastFrag + "%"

	// Containment runs both ways per name, matching the resolver's
	// verification: stored "jon" is a candidate for query "jonathan"
	// and vice versa.
	var rows []models.Student
	err := s.active(ctx).
		Where("(fn ILIKE ? OR ? ILIKE '%' || fn || '%') AND (ln ILIKE ? OR ? ILIKE '%' || ln || '%')",
			firstPattern, firstFrag,
			lastPattern, lastFrag).
		Limit(candidateLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("lookup: partial fetch: %w", err)
	}
	return recordsFromStudents(rows), nil
}

func recordsFromStudents(rows []models.Student) []StudentRecord {
	records := make([]StudentRecord, 0, len(rows))
	for _, stu := range rows {
		records = append(records, StudentRecord{
			StudentID:     stu.ID,
			FirstName:     stu.FirstName,
			LastName:      stu.LastName,
			Birthdate:     CanonicalDateFromTime(stu.Birthdate),
			StreetAddress: stu.Address,
			City:          stu.City,
			State:         stu.State,
			Zip:           stu.ZipCode,
			SchoolCode:    stu.SchoolCode,
		})
	}
	return records
}
