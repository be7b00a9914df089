package settings

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/cod-storefront/internal/apperror"
)

type failingRepo struct{ getErr, saveErr error }

func (f failingRepo) Get(context.Context) (Settings, error) { return Settings{}, f.getErr }
func (f failingRepo) Save(context.Context, Settings) error  { return f.saveErr }

func TestInit_DefaultsWhenNothingStored(t *testing.T) {
	s := NewService(NewInMemoryRepository(), time.Second)
	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, Default(), s.Current())
}

func TestInit_LoadsStored(t *testing.T) {
	repo := NewInMemoryRepository()
	stored := Default()
	stored.SiteName = "Baan Craft"
	require.NoError(t, repo.Save(context.Background(), stored))

	s := NewService(repo, time.Second)
	require.NoError(t, s.Init(context.Background()))
	assert.Equal(t, "Baan Craft", s.Current().SiteName)
}

func TestInit_StoreFailure(t *testing.T) {
	s := NewService(failingRepo{getErr: errors.New("boom")}, time.Second)
	var se *apperror.StoreError
	require.ErrorAs(t, s.Init(context.Background()), &se)
}

func TestUpdate(t *testing.T) {
	s := NewService(NewInMemoryRepository(), time.Second)

	next := Default()
	next.PrimaryColor = "red"
	next.SiteName = " "
	_, err := s.Update(context.Background(), next)
	var ve *apperror.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "primaryColor")
	assert.Contains(t, ve.Fields, "siteName")
	assert.Equal(t, Default(), s.Current())

	next = Default()
	next.HeroTitle = "Spring sale"
	updated, err := s.Update(context.Background(), next)
	require.NoError(t, err)
	assert.False(t, updated.UpdatedAt.IsZero())
	assert.Equal(t, "Spring sale", s.Current().HeroTitle)
}

func TestUpdate_StoreFailureKeepsCurrent(t *testing.T) {
	s := NewService(failingRepo{saveErr: context.DeadlineExceeded}, time.Second)

	next := Default()
	next.SiteName = "Other"
	_, err := s.Update(context.Background(), next)
	var se *apperror.StoreError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Timeout)
	assert.Equal(t, "COD Storefront", s.Current().SiteName)
}

func TestPostgresSave_Upserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, NewPostgresRepository(db).Save(context.Background(), Default()))

	mock.ExpectQuery("FROM site_settings").WithArgs(1).WillReturnError(errors.New("relation missing"))
	_, err = NewPostgresRepository(db).Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutes(t *testing.T) {
	s := NewService(NewInMemoryRepository(), time.Second)
	h := NewHandler(s)
	app := fiber.New()
	h.RegisterPublicRoutes(app)
	h.RegisterProtectedRoutes(app.Group("/api/v1/admin"))

	body := `{"siteName":"Baan Craft","primaryColor":"#000000","secondaryColor":"#FFFFFF"}`
	req := httptest.NewRequest(http.MethodPut, "/api/v1/admin/settings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, res.StatusCode)
	assert.Equal(t, "Baan Craft", s.Current().SiteName)
}
