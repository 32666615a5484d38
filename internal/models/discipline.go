package models

import "time"

// ADSRecord mirrors the Aeries ADS (discipline incident) table.
type ADSRecord struct {
	PID          int       `gorm:"column:pid;primaryKey" json:"PID"`
	SQ           int       `gorm:"column:sq;primaryKey" json:"SQ"`
	Grade        int       `gorm:"column:gr" json:"GR"`
	SchoolCode   int       `gorm:"column:scl" json:"SCL"`
	Code         string    `gorm:"column:cd" json:"CD"`
	Comment      string    `gorm:"column:co" json:"CO"`
	Date         time.Time `gorm:"column:dt" json:"DT"`
	LocationCode int       `gorm:"column:lcn" json:"LCN"`
	ReferrerName string    `gorm:"column:rf" json:"RF"`
	StaffRef     int       `gorm:"column:srf" json:"SRF"`
	IID          int       `gorm:"column:iid" json:"IID"`
	Deleted      int       `gorm:"column:del" json:"DEL"`
	Stamp        time.Time `gorm:"column:dts" json:"DTS"`
}

func (ADSRecord) TableName() string { return "ads" }

// DSPRecord mirrors the Aeries DSP (disposition) table; rows hang off
// an ADS row via (PID, SQ) with their own SQ1 sequence.
type DSPRecord struct {
	PID         int       `gorm:"column:pid;primaryKey" json:"PID"`
	SQ          int       `gorm:"column:sq;primaryKey" json:"SQ"`
	SQ1         int       `gorm:"column:sq1;primaryKey" json:"SQ1"`
	Disposition string    `gorm:"column:ds" json:"DS"`
	Deleted     int       `gorm:"column:del" json:"DEL"`
	Stamp       time.Time `gorm:"column:dts" json:"DTS"`
}

func (DSPRecord) TableName() string { return "dsp" }

// ADSCreateBody is the POST body for a new discipline incident.
type ADSCreateBody struct {
	PID          int    `json:"PID"`
	SchoolCode   int    `json:"SCL"`
	Code         string `json:"CD"`
	Grade        int    `json:"GR"`
	Comment      string `json:"CO"`
	Date         string `json:"DT"`
	LocationCode int    `json:"LCN"`
	StaffRef     int    `json:"SRF"`
	ReferrerName string `json:"RF"`
}

// DSPCreateBody is the POST body for a new disposition under an
// existing ADS row.
type DSPCreateBody struct {
	PID         int    `json:"PID"`
	SQ          int    `json:"SQ"`
	Disposition string `json:"DS"`
}

// ADSCreateResponse reports where the inserted incident landed.
type ADSCreateResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      int    `json:"ID"`
	SQ      int    `json:"SQ"`
	IID     int    `json:"IID"`
}
