package models

// School mirrors the Aeries LOC table.
type School struct {
	Code      int    `gorm:"column:cd;primaryKey" json:"cd"`
	Name      string `gorm:"column:nm" json:"nm"`
	Address   string `gorm:"column:ad" json:"ad"`
	City      string `gorm:"column:cy" json:"cy"`
	State     string `gorm:"column:st" json:"st"`
	ZipCode   string `gorm:"column:zc" json:"zc"`
	Phone     string `gorm:"column:tl" json:"tl"`
	Principal string `gorm:"column:pr" json:"pr"`
	Deleted   int    `gorm:"column:del" json:"del"`
}

func (School) TableName() string { return "loc" }
