package model

import "time"

type Employee struct {
	ID        string    `json:"id" gorm:"primaryKey;size:9"`
	Name      string    `json:"name" gorm:"not null"`
	Email     string    `json:"email" gorm:"column:email_address;not null"`
	Phone     string    `json:"phone" gorm:"column:phone_number;not null"`
	Gender    string    `json:"gender" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmployeeCafeAssignment links an employee to the cafe they currently work at.
// The unique index on EmployeeID keeps it at most one per employee.
type EmployeeCafeAssignment struct {
	ID         uint       `json:"-" gorm:"primaryKey"`
	EmployeeID string     `json:"employee_id" gorm:"size:9;not null;uniqueIndex"`
	CafeID     string     `json:"cafe_id" gorm:"size:36;not null;index"`
	StartDate  *time.Time `json:"start_date"`
}

// All lists every table the service migrates.
func All() []interface{} {
	return []interface{}{
		&Cafe{},
		&Employee{},
		&EmployeeCafeAssignment{},
	}
}
