package models

import "time"

// Document category codes used by the district when filing into DOC.
const (
	DocCategoryReclass = "12"
	DocCategoryIEP     = "11"
	DocCategoryGeneral = "99"
)

// Document mirrors the Aeries DOC table. The file bytes live in the
// row (RB), as Aeries stores them.
type Document struct {
	ID         int       `gorm:"column:id;primaryKey" json:"ID"`
	SQ         int       `gorm:"column:sq;primaryKey" json:"SQ"`
	Date       time.Time `gorm:"column:dt" json:"DT"`
	Grade      int       `gorm:"column:gr" json:"GR"`
	Category   string    `gorm:"column:ct" json:"CT"`
	Name       string    `gorm:"column:nm" json:"NM"`
	Extension  string    `gorm:"column:xt" json:"XT"`
	Content    []byte    `gorm:"column:rb" json:"-"`
	Size       int       `gorm:"column:sz" json:"SZ"`
	Locked     int       `gorm:"column:lk" json:"LK"`
	Source     string    `gorm:"column:src" json:"SRC"`
	SubCat     string    `gorm:"column:sct" json:"SCT"`
	LockTable  string    `gorm:"column:ty" json:"TY"`
	UploadedBy string    `gorm:"column:un" json:"UN"`
	InsertDate time.Time `gorm:"column:idt" json:"IDT"`
	Deleted    int       `gorm:"column:del" json:"DEL"`
}

func (Document) TableName() string { return "doc" }

// DocumentInfo describes one processed document in an upload response.
type DocumentInfo struct {
	File         string `json:"file"`
	StudentID    string `json:"stu_id"`
	StudentName  string `json:"student_name,omitempty"`
	DocumentType string `json:"document_type,omitempty"`
	Pages        int    `json:"pages"`
	UploadDate   string `json:"upload_date,omitempty"`
}

// UploadError reports a per-document failure inside a batch upload.
type UploadError struct {
	Message     string `json:"message"`
	StudentID   string `json:"stu_id"`
	StudentName string `json:"student_name,omitempty"`
}

// DocumentUploadResponse is the envelope for every document upload
// operation. Status is SUCCESS, PARTIAL_SUCCESS, WARNING or ERROR.
type DocumentUploadResponse struct {
	Status         string         `json:"status"`
	Message        string         `json:"message"`
	TotalDocuments int            `json:"total_documents"`
	ExtractedDocs  []DocumentInfo `json:"extracted_docs"`
	Errors         []UploadError  `json:"errors"`
}
