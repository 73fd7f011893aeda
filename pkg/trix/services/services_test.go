package services_test

import (
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/trix-studio/trix/pkg/storage"
	"github.com/trix-studio/trix/pkg/trix/database"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/repositories"
	"github.com/trix-studio/trix/pkg/trix/services"
	"github.com/trix-studio/trix/pkg/trix/testutil"
	"gorm.io/gorm"
)

type env struct {
	db      *gorm.DB
	store   *storage.LocalStore
	users   repositories.UserRepository
	designs repositories.DesignRepository
	social  repositories.SocialRepository

	auth      *services.AuthService
	design    *services.DesignService
	profile   *services.ProfileService
	socialSvc *services.SocialService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	t.Setenv("TYPESENSE_ENDPOINT", "")
	t.Setenv("TYPESENSE_BASE_URL", "")

	db, err := database.Connect(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)

	e := &env{
		db:      db,
		store:   store,
		users:   repositories.NewUserRepository(db),
		designs: repositories.NewDesignRepository(db),
		social:  repositories.NewSocialRepository(db),
	}
	e.auth = services.NewAuthService(e.users, []byte("secret"), 0)
	e.design = services.NewDesignService(e.designs, store)
	e.profile = services.NewProfileService(e.users, e.designs, store)
	e.socialSvc = services.NewSocialService(e.social, e.designs, e.users)
	return e
}

func (e *env) user(t *testing.T, name string) *models.User {
	t.Helper()
	_, err := e.auth.Register(context.Background(), &models.RegisterInput{Username: name, Password: "password123"})
	require.NoError(t, err)
	u, err := e.users.GetByUsername(context.Background(), name)
	require.NoError(t, err)
	return u
}

func (e *env) newDesign(t *testing.T, owner *models.User, title, status string) *models.DesignDetail {
	t.Helper()
	d, err := e.design.Create(context.Background(), owner.ID, &models.CreateDesignInput{
		Title:  title,
		Status: status,
		Style:  "abstract",
		Tags:   "one, two",
	}, pngUpload(t, "art.png"))
	require.NoError(t, err)
	return d
}

func pngUpload(t *testing.T, name string) *services.Upload {
	data := testutil.PNG(t, 8, 8, color.White)
	return &services.Upload{Name: name, Size: int64(len(data)), ContentType: "image/png", Body: bytes.NewReader(data)}
}

func fileExists(store *storage.LocalStore, key string) bool {
	_, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(key)))
	return err == nil
}
