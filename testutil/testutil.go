package testutil

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"cafestaff/config"
	"cafestaff/database"
	"cafestaff/logger"
	"cafestaff/model"
	"cafestaff/storage"
)

// DB opens a private in-memory SQLite database with the schema migrated. It is
// closed when the test ends.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := "file:" + strings.ReplaceAll(uuid.NewString(), "-", "") + "?mode=memory&cache=shared"
	db, err := database.Open(config.DatabaseOptions{Driver: config.DriverSQLite, DSN: dsn}, logger.Nop(), gormLogger.Silent)
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	tb.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(t time.Time) *Clock {
	return &Clock{now: t}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func SeedCafe(tb testing.TB, db *gorm.DB, name, location string, createdAt time.Time) *model.Cafe {
	tb.Helper()
	c := &model.Cafe{
		ID:        uuid.NewString(),
		Name:      name,
		Location:  location,
		CreatedAt: createdAt,
	}
	if err := db.Create(c).Error; err != nil {
		tb.Fatalf("seed cafe: %v", err)
	}
	return c
}

// PNG returns the bytes of a tiny valid PNG image.
func PNG(tb testing.TB) []byte {
	tb.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		tb.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

var ErrInjected = errors.New("injected failure")

// Assets is an in-memory storage.AssetStore that can be told to fail. Like a
// network-backed store it gives up on a cancelled context.
type Assets struct {
	mu          sync.Mutex
	objects     map[string][]byte
	deletes     []string
	FailStore   bool
	FailDeletes bool
}

func NewAssets() *Assets {
	return &Assets{objects: map[string][]byte{}}
}

func (a *Assets) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.FailStore {
		return "", ErrInjected
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	ref := storage.NewRef(filename)
	a.objects[ref] = data
	return ref, nil
}

func (a *Assets) Fetch(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	data, ok := a.objects[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (a *Assets) Delete(ctx context.Context, ref string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deletes = append(a.deletes, ref)
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.FailDeletes {
		return ErrInjected
	}
	if _, ok := a.objects[ref]; !ok {
		return storage.ErrNotFound
	}
	delete(a.objects, ref)
	return nil
}

func (a *Assets) Put(ref string, data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.objects[ref] = data
}

func (a *Assets) Has(ref string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.objects[ref]
	return ok
}

func (a *Assets) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.objects)
}

// Deletes lists every ref Delete was called with, in order.
func (a *Assets) Deletes() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.deletes...)
}

// FailDeletesOn makes every delete against table fail inside the store.
func FailDeletesOn(tb testing.TB, db *gorm.DB, table string) {
	tb.Helper()
	name := "testutil:fail_delete_" + table
	if err := db.Callback().Delete().Before("gorm:delete").Register(name, failOn(table)); err != nil {
		tb.Fatalf("register callback: %v", err)
	}
	tb.Cleanup(func() {
		_ = db.Callback().Delete().Remove(name)
	})
}

// FailUpdatesOn makes every update against table fail inside the store.
func FailUpdatesOn(tb testing.TB, db *gorm.DB, table string) {
	tb.Helper()
	name := "testutil:fail_update_" + table
	if err := db.Callback().Update().Before("gorm:update").Register(name, failOn(table)); err != nil {
		tb.Fatalf("register callback: %v", err)
	}
	tb.Cleanup(func() {
		_ = db.Callback().Update().Remove(name)
	})
}

func failOn(table string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Statement.Table == table {
			_ = tx.AddError(ErrInjected)
		}
	}
}
