package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cafestaff/database"
	"cafestaff/model"
)

type Summary struct {
	Cafes       int
	Employees   int
	Assignments int
}

var cafes = []model.Cafe{
	{Name: "Cafe Lahore", Description: "Cozy cafe in Lahore.", Location: "Lahore"},
	{Name: "Tea House Karachi", Description: "A tranquil spot in Karachi for tea lovers.", Location: "Karachi"},
	{Name: "Brewed Awakening", Description: "Your local coffee shop in Karachi.", Location: "Karachi"},
	{Name: "Cafe Islamabad", Description: "A beautiful cafe with a view in Islamabad.", Location: "Islamabad"},
	{Name: "Coffee Corner", Description: "A favorite hangout in Lahore.", Location: "Lahore"},
}

var employees = []model.Employee{
	{ID: "UI1234567", Name: "John Wed", Email: "john@example.com", Phone: "123-456-7890", Gender: "Male"},
	{ID: "UI7654321", Name: "Jane Smith", Email: "jane@example.com", Phone: "098-765-4321", Gender: "Female"},
	{ID: "UI1357924", Name: "Emily Johnson", Email: "emily@example.com", Phone: "555-555-5555", Gender: "Female"},
	{ID: "UI2468013", Name: "Michael Brown", Email: "michael@example.com", Phone: "777-777-7777", Gender: "Male"},
	{ID: "UI3692581", Name: "Linda Green", Email: "linda@example.com", Phone: "444-444-4444", Gender: "Female"},
	{ID: "UI1239874", Name: "David Wilson", Email: "david@example.com", Phone: "888-888-8888", Gender: "Male"},
	{ID: "UI4561237", Name: "Sarah Taylor", Email: "sarah@example.com", Phone: "222-222-2222", Gender: "Female"},
	{ID: "UI7894561", Name: "James Moore", Email: "james@example.com", Phone: "666-666-6666", Gender: "Male"},
	{ID: "UI3216548", Name: "Jessica Lee", Email: "jessica@example.com", Phone: "333-333-3333", Gender: "Female"},
	{ID: "UI6541237", Name: "Daniel Harris", Email: "daniel@example.com", Phone: "999-999-9999", Gender: "Male"},
	{ID: "UI1597538", Name: "Sophia Clark", Email: "sophia@example.com", Phone: "111-111-1111", Gender: "Female"},
	{ID: "UI7539514", Name: "William Lewis", Email: "william@example.com", Phone: "222-333-4444", Gender: "Male"},
	{ID: "UI9876543", Name: "Mia Young", Email: "mia@example.com", Phone: "555-666-7777", Gender: "Female"},
	{ID: "UI6549872", Name: "Ava Walker", Email: "ava@example.com", Phone: "888-999-0000", Gender: "Female"},
	{ID: "UI8529634", Name: "Lucas Hall", Email: "lucas@example.com", Phone: "111-222-3333", Gender: "Male"},
	{ID: "UI3691475", Name: "Ethan Allen", Email: "ethan@example.com", Phone: "444-555-6666", Gender: "Male"},
	{ID: "UI9517536", Name: "Charlotte Wright", Email: "charlotte@example.com", Phone: "777-888-9999", Gender: "Female"},
	{ID: "UI3214569", Name: "Benjamin King", Email: "benjamin@example.com", Phone: "222-333-4444", Gender: "Male"},
	{ID: "UI4569873", Name: "Zoe Scott", Email: "zoe@example.com", Phone: "444-555-8888", Gender: "Female"},
	{ID: "UI7891236", Name: "Chloe Adams", Email: "chloe@example.com", Phone: "333-666-9999", Gender: "Female"},
	{ID: "UI1472583", Name: "Henry Baker", Email: "henry@example.com", Phone: "555-444-3333", Gender: "Male"},
	{ID: "UI2589631", Name: "Oliver Perez", Email: "oliver@example.com", Phone: "888-777-6666", Gender: "Male"},
	{ID: "UI6543119", Name: "Emma Stone", Email: "emma@example.com", Phone: "222-111-0000", Gender: "Female"},
	{ID: "UI2589234", Name: "Noah Reed", Email: "noah@example.com", Phone: "888-777-5555", Gender: "Male"},
	{ID: "UI6543219", Name: "Grace Hill", Email: "grace@example.com", Phone: "222-111-9999", Gender: "Female"},
}

// headcount is how many consecutive employees go to each cafe, in order.
var headcount = []int{10, 5, 4, 4, 2}

// Run wipes all three tables and loads the demo data set in one transaction.
func Run(ctx context.Context, db *gorm.DB, now func() time.Time) (Summary, error) {
	if now == nil {
		now = time.Now
	}
	var sum Summary
	err := database.InTx(ctx, db, func(tx *gorm.DB) error {
		for _, m := range []interface{}{&model.EmployeeCafeAssignment{}, &model.Employee{}, &model.Cafe{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return fmt.Errorf("clear: %w", err)
			}
		}

		rows := make([]model.Cafe, len(cafes))
		copy(rows, cafes)
		base := now()
		for i := range rows {
			rows[i].ID = uuid.NewString()
			// distinct creation times keep the listing order stable
			rows[i].CreatedAt = base.Add(time.Duration(i) * time.Millisecond)
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("insert cafes: %w", err)
		}

		emps := make([]model.Employee, len(employees))
		copy(emps, employees)
		if err := tx.Create(&emps).Error; err != nil {
			return fmt.Errorf("insert employees: %w", err)
		}

		var assignments []model.EmployeeCafeAssignment
		next := 0
		for i, n := range headcount {
			for j := 0; j < n && next < len(emps); j++ {
				start := base
				assignments = append(assignments, model.EmployeeCafeAssignment{
					EmployeeID: emps[next].ID,
					CafeID:     rows[i].ID,
					StartDate:  &start,
				})
				next++
			}
		}
		if err := tx.Create(&assignments).Error; err != nil {
			return fmt.Errorf("insert assignments: %w", err)
		}

		sum = Summary{Cafes: len(rows), Employees: len(emps), Assignments: len(assignments)}
		return nil
	})
	return sum, err
}
