package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/config"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/dto"
	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory UsuarioRepository stub ──────────────────────────────────────────

type stubUsuarioRepo struct {
	users map[string]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: make(map[string]*model.Usuario)}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	u.ID = uuid.New()
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	u, ok := r.users[username]
	if !ok || !u.Activo {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *stubUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		if u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) ListAll(_ context.Context) ([]model.Usuario, error) {
	var out []model.Usuario
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	r.users[u.Username] = u
	return nil
}

func (r *stubUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Activo = false
			return nil
		}
	}
	return errors.New("not found")
}

func (r *stubUsuarioRepo) Reactivar(_ context.Context, id uuid.UUID) error {
	for _, u := range r.users {
		if u.ID == id {
			u.Activo = true
			return nil
		}
	}
	return errors.New("not found")
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func newAuthFixture(t *testing.T) (AuthService, *stubUsuarioRepo) {
	t.Helper()
	repo := newStubUsuarioRepo()
	cfg := &config.Config{
		JWTSecret:          "test_jwt_secret_32_chars_minimum!",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
	}
	return NewAuthService(repo, cfg), repo
}

func seedUsuario(t *testing.T, repo *stubUsuarioRepo, username, password, rol string) *model.Usuario {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 4)
	require.NoError(t, err)
	u := &model.Usuario{
		ID: uuid.New(), Username: username, Nombre: "Usuario Test",
		PasswordHash: string(hash), Rol: rol, Activo: true,
	}
	repo.users[username] = u
	return u
}

// ── Tests ─────────────────────────────────────────────────────────────────────

func TestLogin_OK(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "maria", "secreta123", "administrador")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "secreta123"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 8*3600, resp.ExpiresIn)
	assert.Equal(t, "administrador", resp.User.Rol)
}

func TestLogin_PasswordIncorrecta(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "maria", "secreta123", "vendedor")

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "otra"})
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestLogin_UsuarioInexistenteMismoError(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	svc, repo := newAuthFixture(t)
	u := seedUsuario(t, repo, "maria", "secreta123", "vendedor")
	u.Activo = false

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "secreta123"})
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestRefresh_OK(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "maria", "secreta123", "supervisor")

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "maria", Password: "secreta123"})
	require.NoError(t, err)

	resp, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "maria", resp.User.Username)
}

func TestRefresh_TokenBasura(t *testing.T) {
	svc, _ := newAuthFixture(t)
	_, err := svc.Refresh(context.Background(), "no-es-un-jwt")
	assert.Error(t, err)
}

func TestCrearUsuario_UsernameDuplicado(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "maria", "secreta123", "vendedor")

	_, err := svc.CrearUsuario(context.Background(), dto.CrearUsuarioRequest{
		Username: "maria", Nombre: "Maria Dos", Password: "otraclave123", Rol: "vendedor",
	})
	assert.ErrorIs(t, err, ErrConflicto)
}

func TestListarUsuarios_FiltraInactivos(t *testing.T) {
	svc, repo := newAuthFixture(t)
	seedUsuario(t, repo, "activa", "secreta123", "vendedor")
	inactivo := seedUsuario(t, repo, "baja", "secreta123", "vendedor")
	inactivo.Activo = false

	activos, err := svc.ListarUsuarios(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, activos, 1)

	todos, err := svc.ListarUsuarios(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, todos, 2)
}

func TestDesactivarYReactivarUsuario(t *testing.T) {
	svc, repo := newAuthFixture(t)
	u := seedUsuario(t, repo, "maria", "secreta123", "vendedor")

	require.NoError(t, svc.DesactivarUsuario(context.Background(), u.ID))
	assert.False(t, u.Activo)

	require.NoError(t, svc.ReactivarUsuario(context.Background(), u.ID))
	assert.True(t, u.Activo)
}
