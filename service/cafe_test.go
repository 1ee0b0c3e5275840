package service_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafestaff/apperr"
	"cafestaff/model"
	"cafestaff/service"
	"cafestaff/testutil"
)

func pngUpload(t *testing.T, name string) *service.Upload {
	data := testutil.PNG(t)
	return &service.Upload{Filename: name, Size: int64(len(data)), Content: bytes.NewReader(data)}
}

func TestCreateCafeWithLogo(t *testing.T) {
	e := newEnv(t)
	cafe, err := e.svcs.Cafes.Create(context.Background(), service.CafeInput{
		Name:        "Cafe A",
		Description: "Cozy",
		Location:    "Lahore",
	}, pngUpload(t, "logo.PNG"))
	require.NoError(t, err)
	assert.NotEmpty(t, cafe.ID)
	require.NotEmpty(t, cafe.Logo)
	assert.True(t, e.assets.Has(cafe.Logo))

	logo, err := e.svcs.Cafes.Logo(context.Background(), cafe.Logo)
	require.NoError(t, err)
	defer logo.Body.Close()
	assert.Equal(t, "image/png", logo.ContentType)
	body, err := io.ReadAll(logo.Body)
	require.NoError(t, err)
	assert.Equal(t, testutil.PNG(t), body)
}

func TestCreateCafeRejectsBadUploads(t *testing.T) {
	e := newEnv(t)
	in := service.CafeInput{Name: "Cafe A", Location: "Lahore"}

	_, err := e.svcs.Cafes.Create(context.Background(), in, &service.Upload{
		Filename: "logo.gif", Size: 3, Content: bytes.NewReader([]byte("GIF")),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = e.svcs.Cafes.Create(context.Background(), in, &service.Upload{
		Filename: "logo.png", Size: 11, Content: bytes.NewReader([]byte("hello world")),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = e.svcs.Cafes.Create(context.Background(), in, &service.Upload{
		Filename: "logo.png", Size: service.DefaultMaxLogoBytes + 1, Content: bytes.NewReader(nil),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Zero(t, e.assets.Len())
	assert.Zero(t, e.count(t, &model.Cafe{}))
}

func TestCreateCafeRequiresName(t *testing.T) {
	e := newEnv(t)
	_, err := e.svcs.Cafes.Create(context.Background(), service.CafeInput{Location: "Lahore"}, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, apperr.Message(err), "name is required")
}

func TestUpdateCafeReplacesLogoAfterCommit(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cafe, err := e.svcs.Cafes.Create(ctx, service.CafeInput{Name: "Cafe A", Location: "Lahore"}, pngUpload(t, "old.png"))
	require.NoError(t, err)
	oldRef := cafe.Logo

	res, err := e.svcs.Cafes.Update(ctx, cafe.ID, service.CafePatch{Name: ptr("Cafe B")}, pngUpload(t, "new.png"))
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.Equal(t, "Cafe B", res.Cafe.Name)
	assert.Equal(t, "Lahore", res.Cafe.Location)
	assert.NotEqual(t, oldRef, res.Cafe.Logo)
	assert.True(t, e.assets.Has(res.Cafe.Logo))
	assert.False(t, e.assets.Has(oldRef))
}

func TestUpdateCafeOldLogoCleanupFailureIsWarning(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cafe, err := e.svcs.Cafes.Create(ctx, service.CafeInput{Name: "Cafe A", Location: "Lahore"}, pngUpload(t, "old.png"))
	require.NoError(t, err)

	e.assets.FailDeletes = true
	res, err := e.svcs.Cafes.Update(ctx, cafe.ID, service.CafePatch{}, pngUpload(t, "new.png"))
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, apperr.KindAsset, res.Warning.Kind)

	var stored model.Cafe
	require.NoError(t, e.db.Where("id = ?", cafe.ID).First(&stored).Error)
	assert.Equal(t, res.Cafe.Logo, stored.Logo)
}

func TestUpdateCafeNotFoundStoresNothing(t *testing.T) {
	e := newEnv(t)
	_, err := e.svcs.Cafes.Update(context.Background(), "missing", service.CafePatch{}, pngUpload(t, "new.png"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.Zero(t, e.assets.Len())
}

func TestUpdateCafeAssetStoreFailureKeepsOldLogo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cafe, err := e.svcs.Cafes.Create(ctx, service.CafeInput{Name: "Cafe A", Location: "Lahore"}, pngUpload(t, "old.png"))
	require.NoError(t, err)

	e.assets.FailStore = true
	_, err = e.svcs.Cafes.Update(ctx, cafe.ID, service.CafePatch{}, pngUpload(t, "new.png"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindAsset))
	assert.True(t, e.assets.Has(cafe.Logo))
	assert.Empty(t, e.assets.Deletes())
}

func TestUpdateCafePersistFailureReclaimsNewLogo(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cafe, err := e.svcs.Cafes.Create(ctx, service.CafeInput{Name: "Cafe A", Location: "Lahore"}, pngUpload(t, "old.png"))
	require.NoError(t, err)

	testutil.FailUpdatesOn(t, e.db, "cafes")

	_, err = e.svcs.Cafes.Update(ctx, cafe.ID, service.CafePatch{Name: ptr("Cafe B")}, pngUpload(t, "new.png"))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.True(t, e.assets.Has(cafe.Logo))
	assert.Equal(t, 1, e.assets.Len())
	require.Len(t, e.assets.Deletes(), 1)
	assert.NotEqual(t, cafe.Logo, e.assets.Deletes()[0])

	var stored model.Cafe
	require.NoError(t, e.db.Where("id = ?", cafe.ID).First(&stored).Error)
	assert.Equal(t, "Cafe A", stored.Name)
	assert.Equal(t, cafe.Logo, stored.Logo)
}

func TestDeleteCafeCascades(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cafe, err := e.svcs.Cafes.Create(ctx, service.CafeInput{Name: "Cafe A", Location: "Lahore"}, pngUpload(t, "logo.png"))
	require.NoError(t, err)
	other := e.cafe(t, "Cafe B", "Karachi")

	var staff []string
	for _, name := range []string{"A", "B", "C"} {
		staff = append(staff, e.employee(t, name, cafe.ID).ID)
	}
	keeper := e.employee(t, "Keeper", other.ID)

	views, err := e.svcs.Cafes.List(ctx, "")
	require.NoError(t, err)
	require.NotEmpty(t, views)
	assert.Equal(t, "Cafe A", views[0].Name)
	assert.EqualValues(t, 3, views[0].EmployeeCount)

	res, err := e.svcs.Cafes.Delete(ctx, cafe.ID)
	require.NoError(t, err)
	assert.Nil(t, res.Warning)
	assert.ElementsMatch(t, staff, res.EmployeeIDs)
	assert.Equal(t, []string{cafe.Logo}, e.assets.Deletes())
	assert.False(t, e.assets.Has(cafe.Logo))

	employees, err := e.svcs.Employees.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, employees, 1)
	assert.Equal(t, keeper.ID, employees[0].ID)
	assert.EqualValues(t, 1, e.count(t, &model.EmployeeCafeAssignment{}))
	assert.EqualValues(t, 1, e.count(t, &model.Cafe{}))
}

func TestDeleteCafeWithoutEmployees(t *testing.T) {
	e := newEnv(t)
	cafe := e.cafe(t, "Cafe A", "Lahore")
	loose := e.employee(t, "Loose", "")

	res, err := e.svcs.Cafes.Delete(context.Background(), cafe.ID)
	require.NoError(t, err)
	assert.Empty(t, res.EmployeeIDs)
	assert.Empty(t, e.assets.Deletes())
	assert.Zero(t, e.count(t, &model.Cafe{}))

	var n int64
	require.NoError(t, e.db.Model(&model.Employee{}).Where("id = ?", loose.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestDeleteCafeNotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.svcs.Cafes.Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteCafeIsAllOrNothing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cafe, err := e.svcs.Cafes.Create(ctx, service.CafeInput{Name: "Cafe A", Location: "Lahore"}, pngUpload(t, "logo.png"))
	require.NoError(t, err)
	e.employee(t, "A", cafe.ID)
	e.employee(t, "B", cafe.ID)

	testutil.FailDeletesOn(t, e.db, "employees")

	_, err = e.svcs.Cafes.Delete(ctx, cafe.ID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStorage))

	assert.EqualValues(t, 1, e.count(t, &model.Cafe{}))
	assert.EqualValues(t, 2, e.count(t, &model.Employee{}))
	assert.EqualValues(t, 2, e.count(t, &model.EmployeeCafeAssignment{}))
	assert.True(t, e.assets.Has(cafe.Logo))
	assert.Empty(t, e.assets.Deletes())
}

func TestDeleteCafeLogoFailureIsWarning(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cafe, err := e.svcs.Cafes.Create(ctx, service.CafeInput{Name: "Cafe A", Location: "Lahore"}, pngUpload(t, "logo.png"))
	require.NoError(t, err)
	e.employee(t, "A", cafe.ID)

	e.assets.FailDeletes = true
	res, err := e.svcs.Cafes.Delete(ctx, cafe.ID)
	require.NoError(t, err)
	require.NotNil(t, res.Warning)
	assert.Equal(t, apperr.KindAsset, res.Warning.Kind)
	assert.Len(t, e.assets.Deletes(), 1)
	assert.Zero(t, e.count(t, &model.Cafe{}))
	assert.Zero(t, e.count(t, &model.Employee{}))
}

func TestLogoNotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.svcs.Cafes.Logo(context.Background(), "nothing.png")
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
