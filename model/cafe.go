package model

import "time"

type Cafe struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	Location    string    `json:"location" gorm:"index"`
	Logo        string    `json:"logo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName pins the table name; the default pluralisation yields "caves".
func (Cafe) TableName() string {
	return "cafes"
}
