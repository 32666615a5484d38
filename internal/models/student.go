package models

import "time"

// Student mirrors the subset of the Aeries STU table this service
// reads. Rows are owned by the student-information system; the API
// never creates or mutates them.
type Student struct {
	ID         int        `gorm:"column:id;primaryKey" json:"id"`
	SchoolCode int        `gorm:"column:sc" json:"sc"`
	StudentNum int        `gorm:"column:sn" json:"sn"`
	FirstName  string     `gorm:"column:fn" json:"fn"`
	LastName   string     `gorm:"column:ln" json:"ln"`
	MiddleName string     `gorm:"column:mn" json:"mn"`
	Sex        string     `gorm:"column:sx" json:"sx"`
	Grade      int        `gorm:"column:gr" json:"gr"`
	Birthdate  *time.Time `gorm:"column:bd" json:"bd"`
	Guardian   string     `gorm:"column:pg" json:"pg"`
	Address    string     `gorm:"column:ad" json:"ad"`
	City       string     `gorm:"column:cy" json:"cy"`
	State      string     `gorm:"column:st" json:"st"`
	ZipCode    string     `gorm:"column:zc" json:"zc"`
	Phone      string     `gorm:"column:tl" json:"tl"`
	Email      string     `gorm:"column:sem" json:"sem"`
	StatusTag  string     `gorm:"column:tg" json:"tg"`
	Deleted    int        `gorm:"column:del" json:"del"`
	Stamp      *time.Time `gorm:"column:dts" json:"dts"`
}

func (Student) TableName() string { return "stu" }

// Active reports whether the row is a live student record. Aeries
// marks inactive students with a status tag and soft-deletes with DEL.
func (s Student) Active() bool {
	return s.StatusTag == "" && s.Deleted == 0
}
