package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("disk full")
	assert.Equal(t, "cafe.delete: storage failure: disk full", Storage("cafe.delete", cause).Error())
	assert.Equal(t, "cafe.get: cafe not found", NotFound("cafe.get", "cafe not found").Error())
	assert.Equal(t, "conflict", New(KindConflict, "", "", nil).Error())
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", Validation("employee.create", "email is required", nil))
	assert.Equal(t, KindValidation, KindOf(err))
	assert.True(t, Is(err, KindValidation))
	assert.False(t, Is(err, KindNotFound))
	assert.Equal(t, "email is required", Message(err))
}

func TestForeignErrorsAreStorage(t *testing.T) {
	err := errors.New("boom")
	assert.Equal(t, KindStorage, KindOf(err))
	assert.Equal(t, "boom", Message(err))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := Asset("cafe.logo", "failed to fetch image", cause)
	assert.ErrorIs(t, err, cause)
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:   http.StatusNotFound,
		KindValidation: http.StatusBadRequest,
		KindConflict:   http.StatusConflict,
		KindAsset:      http.StatusBadGateway,
		KindStorage:    http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), string(kind))
	}
}
