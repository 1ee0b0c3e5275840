package service

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"cafestaff/apperr"
	"cafestaff/model"
)

// AssignmentService keeps the employee -> cafe assignment consistent. Every method
// runs on a transaction handle owned by the caller.
type AssignmentService struct {
	now func() time.Time
}

func NewAssignmentService(now func() time.Time) *AssignmentService {
	if now == nil {
		now = time.Now
	}
	return &AssignmentService{now: now}
}

// Current returns the employee's assignment, or nil when there is none.
func (s *AssignmentService) Current(tx *gorm.DB, employeeID string) (*model.EmployeeCafeAssignment, error) {
	var a model.EmployeeCafeAssignment
	res := tx.Where("employee_id = ?", employeeID).Limit(1).Find(&a)
	if res.Error != nil {
		return nil, storeErr("assignment.current", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &a, nil
}

// CreateOrAssign gives an unassigned employee a fresh assignment starting now. An
// empty cafeID, or an employee that is already assigned, is a no-op.
func (s *AssignmentService) CreateOrAssign(tx *gorm.DB, employeeID, cafeID string) error {
	const op = "assignment.create"
	if cafeID == "" {
		return nil
	}
	if err := requireCafe(tx, op, cafeID); err != nil {
		return err
	}
	existing, err := s.Current(tx, employeeID)
	if err != nil || existing != nil {
		return err
	}
	start := s.now()
	a := model.EmployeeCafeAssignment{EmployeeID: employeeID, CafeID: cafeID, StartDate: &start}
	if err := tx.Create(&a).Error; err != nil {
		return storeErr(op, err)
	}
	return nil
}

// Reassign points the employee at newCafeID. The start date is reset only when the
// cafe actually changes. An empty newCafeID removes the assignment.
func (s *AssignmentService) Reassign(tx *gorm.DB, employeeID, newCafeID string) (*model.EmployeeCafeAssignment, error) {
	const op = "assignment.reassign"
	var count int64
	if err := tx.Model(&model.Employee{}).Where("id = ?", employeeID).Count(&count).Error; err != nil {
		return nil, storeErr(op, err)
	}
	if count == 0 {
		return nil, apperr.NotFound(op, "employee not found")
	}
	if newCafeID == "" {
		return nil, s.Unassign(tx, employeeID)
	}
	if err := requireCafe(tx, op, newCafeID); err != nil {
		return nil, err
	}

	existing, err := s.Current(tx, employeeID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		start := s.now()
		a := model.EmployeeCafeAssignment{EmployeeID: employeeID, CafeID: newCafeID, StartDate: &start}
		if err := tx.Create(&a).Error; err != nil {
			return nil, storeErr(op, err)
		}
		return &a, nil
	}
	if existing.CafeID == newCafeID {
		return existing, nil
	}

	start := s.now()
	if err := tx.Model(existing).Updates(map[string]interface{}{
		"cafe_id":    newCafeID,
		"start_date": start,
	}).Error; err != nil {
		return nil, storeErr(op, err)
	}
	existing.CafeID = newCafeID
	existing.StartDate = &start
	return existing, nil
}

func (s *AssignmentService) Unassign(tx *gorm.DB, employeeID string) error {
	if err := tx.Where("employee_id = ?", employeeID).Delete(&model.EmployeeCafeAssignment{}).Error; err != nil {
		return storeErr("assignment.unassign", err)
	}
	return nil
}

func requireCafe(tx *gorm.DB, op, cafeID string) error {
	var cafe model.Cafe
	if err := tx.Select("id").Where("id = ?", cafeID).First(&cafe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound(op, "cafe not found")
		}
		return storeErr(op, err)
	}
	return nil
}
