package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/Pranathi-N-47/timeweaver-engine/internal/dto"
	"github.com/Pranathi-N-47/timeweaver-engine/internal/models"
	appErrors "github.com/Pranathi-N-47/timeweaver-engine/pkg/errors"
)

type preferenceStub struct {
	grid *dto.PreferenceGridResponse
	err  error
	got  *dto.ReplacePreferencesRequest
}

func (s *preferenceStub) Get(_ context.Context, _ string) (*dto.PreferenceGridResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.grid, nil
}

func (s *preferenceStub) Replace(_ context.Context, _ string, req dto.ReplacePreferencesRequest) (*dto.PreferenceGridResponse, error) {
	s.got = &req
	if s.err != nil {
		return nil, s.err
	}
	return s.grid, nil
}

func TestPreferenceHandlerGet(t *testing.T) {
	stub := &preferenceStub{grid: &dto.PreferenceGridResponse{
		FacultyID: "f1",
		Cells:     []dto.PreferenceCell{{Day: 1, Slot: 2, Kind: models.PreferencePreferred}},
	}}
	h := NewPreferenceHandler(stub)

	c, w := testContext(t, http.MethodGet, "/faculty/f1/preferences", nil)
	c.Params = gin.Params{{Key: "id", Value: "f1"}}
	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"facultyId":"f1"`)
}

func TestPreferenceHandlerGetUnknownFaculty(t *testing.T) {
	stub := &preferenceStub{err: appErrors.Clone(appErrors.ErrNotFound, "faculty not found")}
	h := NewPreferenceHandler(stub)

	c, w := testContext(t, http.MethodGet, "/faculty/ghost/preferences", nil)
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}
	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreferenceHandlerReplace(t *testing.T) {
	stub := &preferenceStub{grid: &dto.PreferenceGridResponse{FacultyID: "f1"}}
	h := NewPreferenceHandler(stub)

	c, w := testContext(t, http.MethodPut, "/faculty/f1/preferences",
		[]byte(`{"cells":[{"dayOfWeek":1,"timeSlot":2,"kind":"preferred"}]}`))
	c.Params = gin.Params{{Key: "id", Value: "f1"}}
	h.Replace(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotNil(t, stub.got)
	assert.Len(t, stub.got.Cells, 1)
}

func TestPreferenceHandlerReplaceInvalidJSON(t *testing.T) {
	h := NewPreferenceHandler(&preferenceStub{})

	c, w := testContext(t, http.MethodPut, "/faculty/f1/preferences", []byte(`{"cells":`))
	c.Params = gin.Params{{Key: "id", Value: "f1"}}
	h.Replace(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
