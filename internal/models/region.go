package models

import "time"

// Region is an administrative district tracked by the upstream dataset.
type Region struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"size:16;uniqueIndex;not null" json:"code"`
	NameEn    string    `json:"nameEn"`
	NameHi    string    `json:"nameHi"`
	State     string    `gorm:"index" json:"state"`
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
