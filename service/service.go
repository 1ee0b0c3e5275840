package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"cafestaff/apperr"
	"cafestaff/logger"
	"cafestaff/storage"
)

// Services bundles every component wired against one store handle and one asset
// store. Construct it once at startup.
type Services struct {
	Assignments *AssignmentService
	Reports     *ReportService
	Cafes       *CafeService
	Employees   *EmployeeService
}

type Options struct {
	Now          func() time.Time
	MaxLogoBytes int64
	Employee     []EmployeeOption
}

func New(db *gorm.DB, assets storage.AssetStore, log *logger.Logger, opts Options) *Services {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	assignments := NewAssignmentService(now)
	reports := NewReportService(db, now)
	return &Services{
		Assignments: assignments,
		Reports:     reports,
		Cafes:       NewCafeService(db, assets, reports, log, opts.MaxLogoBytes),
		Employees:   NewEmployeeService(db, assignments, reports, log, opts.Employee...),
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func validateInput(op string, in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(op, "invalid input", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return apperr.Validation(op, strings.Join(msgs, "; "), nil)
}

// storeErr maps store failures onto the structured error kinds. Errors that already
// carry a kind pass through untouched.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.New(apperr.KindNotFound, op, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(op, "uniqueness violation", err)
	}
	return apperr.Storage(op, err)
}
