package service

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"cafestaff/model"
)

type CafeView struct {
	model.Cafe
	EmployeeCount int64 `json:"employee_count"`
}

type EmployeeView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Gender     string      `json:"gender"`
	Cafe       *model.Cafe `json:"cafe"`
	StartDate  *time.Time  `json:"start_date"`
	DaysWorked *int        `json:"days_worked"`
}

type cafeCount struct {
	CafeID        string
	EmployeeCount int64
}

// ReportService builds the read-only views over cafes, employees and assignments.
type ReportService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewReportService(db *gorm.DB, now func() time.Time) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{db: db, now: now}
}

// CafesByPopularity lists cafes whose location contains location (case-insensitive;
// all cafes when empty) ordered by headcount, busiest first. Equal headcounts keep
// creation order.
func (s *ReportService) CafesByPopularity(ctx context.Context, location string) ([]CafeView, error) {
	const op = "report.cafes"
	q := s.db.WithContext(ctx).Model(&model.Cafe{})
	if location = strings.TrimSpace(location); location != "" {
		q = q.Where(`LOWER(location) LIKE ? ESCAPE '\'`, containsPattern(location))
	}
	var cafes []model.Cafe
	if err := q.Order("created_at ASC").Order("id ASC").Find(&cafes).Error; err != nil {
		return nil, storeErr(op, err)
	}
	if len(cafes) == 0 {
		return []CafeView{}, nil
	}

	ids := make([]string, len(cafes))
	for i, c := range cafes {
		ids[i] = c.ID
	}
	var counts []cafeCount
	if err := s.db.WithContext(ctx).
		Model(&model.EmployeeCafeAssignment{}).
		Select("cafe_id, COUNT(*) AS employee_count").
		Where("cafe_id IN ?", ids).
		Group("cafe_id").
		Scan(&counts).Error; err != nil {
		return nil, storeErr(op, err)
	}
	byCafe := make(map[string]int64, len(counts))
	for _, c := range counts {
		byCafe[c.CafeID] = c.EmployeeCount
	}

	views := make([]CafeView, len(cafes))
	for i, c := range cafes {
		views[i] = CafeView{Cafe: c, EmployeeCount: byCafe[c.ID]}
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].EmployeeCount > views[j].EmployeeCount
	})
	return views, nil
}

// EmployeesWithTenure joins every employee to its assignment and cafe. With a
// non-empty cafeName only employees of cafes whose name contains it are kept.
// Longest tenure comes first; employees without a tenure come last.
func (s *ReportService) EmployeesWithTenure(ctx context.Context, cafeName string) ([]EmployeeView, error) {
	const op = "report.employees"
	db := s.db.WithContext(ctx)

	var employees []model.Employee
	if err := db.Order("created_at ASC").Order("id ASC").Find(&employees).Error; err != nil {
		return nil, storeErr(op, err)
	}
	if len(employees) == 0 {
		return []EmployeeView{}, nil
	}

	var assignments []model.EmployeeCafeAssignment
	if err := db.Find(&assignments).Error; err != nil {
		return nil, storeErr(op, err)
	}
	byEmployee := make(map[string]model.EmployeeCafeAssignment, len(assignments))
	cafeIDs := make([]string, 0, len(assignments))
	seen := make(map[string]bool)
	for _, a := range assignments {
		byEmployee[a.EmployeeID] = a
		if !seen[a.CafeID] {
			seen[a.CafeID] = true
			cafeIDs = append(cafeIDs, a.CafeID)
		}
	}

	cafes := make(map[string]model.Cafe, len(cafeIDs))
	if len(cafeIDs) > 0 {
		var rows []model.Cafe
		if err := db.Where("id IN ?", cafeIDs).Find(&rows).Error; err != nil {
			return nil, storeErr(op, err)
		}
		for _, c := range rows {
			cafes[c.ID] = c
		}
	}

	now := s.now()
	filter := strings.ToLower(strings.TrimSpace(cafeName))
	views := make([]EmployeeView, 0, len(employees))
	for _, e := range employees {
		v := EmployeeView{ID: e.ID, Name: e.Name, Email: e.Email, Phone: e.Phone, Gender: e.Gender}
		if a, ok := byEmployee[e.ID]; ok {
			if c, ok := cafes[a.CafeID]; ok {
				cafe := c
				v.Cafe = &cafe
			}
			if a.StartDate != nil {
				start := *a.StartDate
				days := DaysBetween(start, now)
				v.StartDate = &start
				v.DaysWorked = &days
			}
		}
		if filter != "" && (v.Cafe == nil || !strings.Contains(strings.ToLower(v.Cafe.Name), filter)) {
			continue
		}
		views = append(views, v)
	}

	sort.SliceStable(views, func(i, j int) bool {
		a, b := views[i].DaysWorked, views[j].DaysWorked
		return a != nil && (b == nil || *a > *b)
	})
	return views, nil
}

// DaysBetween is the number of whole days elapsed from start to now.
func DaysBetween(start, now time.Time) int {
	return int(math.Floor(now.Sub(start).Hours() / 24))
}

func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(s)) + "%"
}
