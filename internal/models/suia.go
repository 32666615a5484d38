package models

import "time"

// SUIA involvement codes accepted by the district.
var SUIAInvolvementCodes = map[string]bool{
	"ACAD": true,
	"RESO": true,
	"TUPE": true,
}

// SUIARecord mirrors the Aeries SUIA table. Rows are addressed by
// (ID, SQ) where SQ is a per-student sequence.
type SUIARecord struct {
	ID          int       `gorm:"column:id;primaryKey" json:"ID"`
	SQ          int       `gorm:"column:sq;primaryKey" json:"SQ"`
	ADSQ        int       `gorm:"column:adsq" json:"ADSQ"`
	Involvement string    `gorm:"column:inv" json:"INV"`
	StartDate   time.Time `gorm:"column:sd" json:"SD"`
	Deleted     int       `gorm:"column:del" json:"DEL"`
	Stamp       time.Time `gorm:"column:dts" json:"DTS"`
}

func (SUIARecord) TableName() string { return "suia" }

// SUIACreateBody is the POST body for a new SUIA row. SQ is assigned
// server side.
type SUIACreateBody struct {
	ID          int    `json:"ID"`
	StartDate   string `json:"SD"`
	ADSQ        int    `json:"ADSQ"`
	Involvement string `json:"INV"`
}

// SUIAUpdateBody carries a partial update; nil fields are left alone.
type SUIAUpdateBody struct {
	ID          int     `json:"ID"`
	SQ          int     `json:"SQ"`
	StartDate   *string `json:"SD"`
	ADSQ        *int    `json:"ADSQ"`
	Involvement *string `json:"INV"`
}

// SUIADeleteBody addresses the row to remove.
type SUIADeleteBody struct {
	ID int `json:"ID"`
	SQ int `json:"SQ"`
}
