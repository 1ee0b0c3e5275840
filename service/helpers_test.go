package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cafestaff/logger"
	"cafestaff/model"
	"cafestaff/service"
	"cafestaff/testutil"
)

var epoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	db     *gorm.DB
	svcs   *service.Services
	clock  *testutil.Clock
	assets *testutil.Assets
}

func newEnv(t *testing.T, opts ...service.EmployeeOption) *env {
	t.Helper()
	db := testutil.DB(t)
	clock := testutil.NewClock(epoch)
	assets := testutil.NewAssets()
	svcs := service.New(db, assets, logger.Nop(), service.Options{
		Now:      clock.Now,
		Employee: opts,
	})
	return &env{db: db, svcs: svcs, clock: clock, assets: assets}
}

func (e *env) cafe(t *testing.T, name, location string) *model.Cafe {
	t.Helper()
	c := testutil.SeedCafe(t, e.db, name, location, e.clock.Now())
	// keep creation order strictly increasing
	e.clock.Advance(time.Second)
	return c
}

func (e *env) employee(t *testing.T, name, cafeID string) *model.Employee {
	t.Helper()
	emp, err := e.svcs.Employees.Create(context.Background(), service.EmployeeInput{
		Name:   name,
		Email:  "staff@example.com",
		Phone:  "555-0100",
		Gender: "Female",
		CafeID: cafeID,
	})
	require.NoError(t, err)
	return emp
}

func (e *env) assignment(t *testing.T, employeeID string) *model.EmployeeCafeAssignment {
	t.Helper()
	a, err := e.svcs.Assignments.Current(e.db, employeeID)
	require.NoError(t, err)
	return a
}

func (e *env) count(t *testing.T, m interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(m).Count(&n).Error)
	return n
}

func ptr(s string) *string { return &s }
