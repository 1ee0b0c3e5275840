package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"cafestaff/apperr"
	"cafestaff/database"
	"cafestaff/logger"
	"cafestaff/metrics"
	"cafestaff/model"
)

const maxIDAttempts = 5

type EmployeeInput struct {
	Name   string `json:"name" form:"name" validate:"required,max=100"`
	Email  string `json:"email" form:"email" validate:"required,email"`
	Phone  string `json:"phone" form:"phone" validate:"required,max=32"`
	Gender string `json:"gender" form:"gender" validate:"required,max=32"`
	CafeID string `json:"cafe_id" form:"cafe_id"`
}

// EmployeePatch updates the non-empty fields. CafeID is tri-state: nil leaves the
// assignment alone, an empty string unassigns, anything else reassigns.
type EmployeePatch struct {
	Name   string  `json:"name" form:"name" validate:"max=100"`
	Email  string  `json:"email" form:"email" validate:"omitempty,email"`
	Phone  string  `json:"phone" form:"phone" validate:"max=32"`
	Gender string  `json:"gender" form:"gender" validate:"max=32"`
	CafeID *string `json:"cafe_id" form:"cafe_id"`
}

type EmployeeOption func(*EmployeeService)

// WithIDGenerator replaces GenerateEmployeeID.
func WithIDGenerator(gen func() string) EmployeeOption {
	return func(s *EmployeeService) {
		s.newID = gen
	}
}

type EmployeeService struct {
	db          *gorm.DB
	assignments *AssignmentService
	reports     *ReportService
	log         *logger.Logger
	newID       func() string
}

func NewEmployeeService(db *gorm.DB, assignments *AssignmentService, reports *ReportService, log *logger.Logger, opts ...EmployeeOption) *EmployeeService {
	s := &EmployeeService{
		db:          db,
		assignments: assignments,
		reports:     reports,
		log:         log.With("service", "EmployeeService"),
		newID:       GenerateEmployeeID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EmployeeService) List(ctx context.Context, cafeName string) ([]EmployeeView, error) {
	return s.reports.EmployeesWithTenure(ctx, cafeName)
}

// Create inserts the employee and its optional assignment atomically. A uniqueness
// conflict retries the whole transaction with a freshly generated identifier.
func (s *EmployeeService) Create(ctx context.Context, in EmployeeInput) (*model.Employee, error) {
	const op = "employee.create"
	in = trimInput(in)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		emp := model.Employee{
			ID:     s.newID(),
			Name:   in.Name,
			Email:  in.Email,
			Phone:  in.Phone,
			Gender: in.Gender,
		}
		err := database.InTx(ctx, s.db, func(tx *gorm.DB) error {
			if err := tx.Create(&emp).Error; err != nil {
				return err
			}
			return s.assignments.CreateOrAssign(tx, emp.ID, in.CafeID)
		})
		if err == nil {
			s.log.Info("Employee created", "employee_id", emp.ID, "cafe_id", in.CafeID)
			return &emp, nil
		}
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		metrics.RecordTxAbort(op)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if attempt < maxIDAttempts {
				s.log.Warn("Employee id collision, retrying", "employee_id", emp.ID, "attempt", attempt)
				continue
			}
			return nil, apperr.Conflict(op, "could not allocate a unique employee id", err)
		}
		return nil, storeErr(op, err)
	}
}

// Update changes the employee record and its cafe assignment in one transaction.
func (s *EmployeeService) Update(ctx context.Context, id string, p EmployeePatch) (*model.Employee, error) {
	const op = "employee.update"
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Gender = strings.TrimSpace(p.Gender)
	if err := validateInput(op, p); err != nil {
		return nil, err
	}

	var emp model.Employee
	err := database.InTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&emp).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(op, "employee not found")
			}
			return err
		}
		if p.Name != "" {
			emp.Name = p.Name
		}
		if p.Email != "" {
			emp.Email = p.Email
		}
		if p.Phone != "" {
			emp.Phone = p.Phone
		}
		if p.Gender != "" {
			emp.Gender = p.Gender
		}
		if err := tx.Save(&emp).Error; err != nil {
			return err
		}
		if p.CafeID == nil {
			return nil
		}
		_, err := s.assignments.Reassign(tx, id, strings.TrimSpace(*p.CafeID))
		return err
	})
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			metrics.RecordTxAbort(op)
		}
		return nil, storeErr(op, err)
	}
	s.log.Info("Employee updated", "employee_id", id)
	return &emp, nil
}

// Delete removes the employee together with its assignment.
func (s *EmployeeService) Delete(ctx context.Context, id string) error {
	const op = "employee.delete"
	err := database.InTx(ctx, s.db, func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&model.Employee{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound(op, "employee not found")
		}
		return s.assignments.Unassign(tx, id)
	})
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			metrics.RecordTxAbort(op)
		}
		return storeErr(op, err)
	}
	s.log.Info("Employee deleted", "employee_id", id)
	return nil
}

func trimInput(in EmployeeInput) EmployeeInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Gender = strings.TrimSpace(in.Gender)
	in.CafeID = strings.TrimSpace(in.CafeID)
	return in
}
