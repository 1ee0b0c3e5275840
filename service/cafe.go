package service

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"cafestaff/apperr"
	"cafestaff/database"
	"cafestaff/logger"
	"cafestaff/metrics"
	"cafestaff/model"
	"cafestaff/storage"
)

type CafeInput struct {
	Name        string `json:"name" form:"name" validate:"required,max=100"`
	Description string `json:"description" form:"description" validate:"max=1000"`
	Location    string `json:"location" form:"location" validate:"required,max=200"`
}

// CafePatch holds the fields of a partial update; nil fields are left alone.
type CafePatch struct {
	Name        *string `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
	Location    *string `json:"location" form:"location"`
}

type CafeResult struct {
	Cafe    *model.Cafe
	Warning *apperr.Error
}

type DeleteCafeResult struct {
	CafeID      string
	EmployeeIDs []string
	Warning     *apperr.Error
}

type Logo struct {
	Body        io.ReadCloser
	ContentType string
}

type CafeService struct {
	db           *gorm.DB
	assets       storage.AssetStore
	reports      *ReportService
	log          *logger.Logger
	maxLogoBytes int64
}

func NewCafeService(db *gorm.DB, assets storage.AssetStore, reports *ReportService, log *logger.Logger, maxLogoBytes int64) *CafeService {
	if maxLogoBytes <= 0 {
		maxLogoBytes = DefaultMaxLogoBytes
	}
	return &CafeService{
		db:           db,
		assets:       assets,
		reports:      reports,
		log:          log.With("service", "CafeService"),
		maxLogoBytes: maxLogoBytes,
	}
}

func (s *CafeService) List(ctx context.Context, location string) ([]CafeView, error) {
	return s.reports.CafesByPopularity(ctx, location)
}

func (s *CafeService) Get(ctx context.Context, id string) (*model.Cafe, error) {
	var cafe model.Cafe
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&cafe).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("cafe.get", "cafe not found")
		}
		return nil, storeErr("cafe.get", err)
	}
	return &cafe, nil
}

// Create stores the optional logo first and then the cafe row. If the row cannot be
// written the freshly stored logo is removed again.
func (s *CafeService) Create(ctx context.Context, in CafeInput, logo *Upload) (*model.Cafe, error) {
	const op = "cafe.create"
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	prepared, err := prepareLogo(op, logo, s.maxLogoBytes)
	if err != nil {
		return nil, err
	}

	cafe := model.Cafe{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Location:    in.Location,
	}
	if prepared != nil {
		ref, err := s.assets.Store(ctx, prepared.filename, prepared.reader())
		if err != nil {
			return nil, apperr.Asset(op, "failed to store logo", err)
		}
		cafe.Logo = ref
	}

	if err := s.db.WithContext(ctx).Create(&cafe).Error; err != nil {
		if w := s.reclaim(ctx, op, cafe.Logo); w != nil {
			s.log.Error("Orphaned logo after failed insert", "cafe_id", cafe.ID, "logo", cafe.Logo, "error", w)
		}
		return nil, storeErr(op, err)
	}
	s.log.Info("Cafe created", "cafe_id", cafe.ID, "name", cafe.Name)
	return &cafe, nil
}

// Update applies patch and, when logo is set, swaps the logo. The previous logo is
// only deleted after the new reference has been committed; a failed commit removes
// the new asset instead.
func (s *CafeService) Update(ctx context.Context, id string, patch CafePatch, logo *Upload) (*CafeResult, error) {
	const op = "cafe.update"
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperr.Validation(op, "name cannot be empty", nil)
	}
	if patch.Location != nil && strings.TrimSpace(*patch.Location) == "" {
		return nil, apperr.Validation(op, "location cannot be empty", nil)
	}
	prepared, err := prepareLogo(op, logo, s.maxLogoBytes)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	newRef := ""
	if prepared != nil {
		newRef, err = s.assets.Store(ctx, prepared.filename, prepared.reader())
		if err != nil {
			return nil, apperr.Asset(op, "failed to store logo", err)
		}
	}

	var cafe model.Cafe
	var oldRef string
	err = database.InTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&cafe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(op, "cafe not found")
			}
			return err
		}
		oldRef = cafe.Logo
		if patch.Name != nil {
			cafe.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			cafe.Description = *patch.Description
		}
		if patch.Location != nil {
			cafe.Location = strings.TrimSpace(*patch.Location)
		}
		if newRef != "" {
			cafe.Logo = newRef
		}
		return tx.Save(&cafe).Error
	})
	if err != nil {
		metrics.RecordTxAbort(op)
		if w := s.reclaim(ctx, op, newRef); w != nil {
			s.log.Error("Orphaned logo after failed update", "cafe_id", id, "logo", newRef, "error", w)
		}
		return nil, storeErr(op, err)
	}

	res := &CafeResult{Cafe: &cafe}
	if newRef != "" && oldRef != "" && oldRef != newRef {
		res.Warning = s.reclaim(ctx, op, oldRef)
	}
	s.log.Info("Cafe updated", "cafe_id", id, "logo_replaced", newRef != "")
	return res, nil
}

// Delete removes the cafe, every employee assigned to it and their assignments in a
// single transaction, then reclaims the logo once the transaction has committed.
func (s *CafeService) Delete(ctx context.Context, id string) (*DeleteCafeResult, error) {
	const op = "cafe.delete"
	var cafe model.Cafe
	var employeeIDs []string
	err := database.InTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&cafe).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound(op, "cafe not found")
			}
			return err
		}
		if err := tx.Where("id = ?", id).Delete(&model.Cafe{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.EmployeeCafeAssignment{}).
			Where("cafe_id = ?", id).
			Pluck("employee_id", &employeeIDs).Error; err != nil {
			return err
		}
		if len(employeeIDs) == 0 {
			return nil
		}
		if err := tx.Where("id IN ?", employeeIDs).Delete(&model.Employee{}).Error; err != nil {
			return err
		}
		return tx.Where("employee_id IN ?", employeeIDs).Delete(&model.EmployeeCafeAssignment{}).Error
	})
	if err != nil {
		if !apperr.Is(err, apperr.KindNotFound) {
			metrics.RecordTxAbort(op)
			s.log.Error("Cafe delete rolled back", "cafe_id", id, "error", err)
		}
		return nil, storeErr(op, err)
	}

	if employeeIDs == nil {
		employeeIDs = []string{}
	}
	res := &DeleteCafeResult{CafeID: id, EmployeeIDs: employeeIDs}
	res.Warning = s.reclaim(ctx, op, cafe.Logo)
	s.log.Info("Cafe deleted", "cafe_id", id, "employees_removed", len(employeeIDs))
	return res, nil
}

// Logo opens the stored asset and sniffs its content type.
func (s *CafeService) Logo(ctx context.Context, ref string) (*Logo, error) {
	const op = "cafe.logo"
	rc, err := s.assets.Fetch(ctx, ref)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.NotFound(op, "image not found")
		}
		return nil, apperr.Asset(op, "failed to fetch image", err)
	}
	br := bufio.NewReaderSize(rc, 3072)
	head, _ := br.Peek(3072)
	return &Logo{
		Body:        readCloser{Reader: br, Closer: rc},
		ContentType: mimetype.Detect(head).String(),
	}, nil
}

// reclaim deletes an asset that is no longer referenced. An already missing asset is
// not an error. The delete is not bound to the caller's cancellation.
func (s *CafeService) reclaim(ctx context.Context, op, ref string) *apperr.Error {
	if ref == "" {
		return nil
	}
	err := s.assets.Delete(context.WithoutCancel(ctx), ref)
	if err == nil || errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	metrics.RecordAssetCleanupFailure(op)
	s.log.Warn("Asset cleanup failed", "op", op, "logo", ref, "error", err)
	return apperr.Asset(op, "failed to delete logo "+ref, err)
}

type readCloser struct {
	io.Reader
	io.Closer
}
