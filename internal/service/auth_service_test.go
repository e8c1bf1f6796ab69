package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"fleamarket/internal/config"
	"fleamarket/internal/dto"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type stubUsuarioRepo struct {
	users map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{users: map[uuid.UUID]*model.Usuario{}}
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	for _, o := range r.users {
		if strings.EqualFold(o.Email, u.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) FindByEmail(_ context.Context, email string) (*model.Usuario, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *stubUsuarioRepo) List(_ context.Context, incluirInactivos bool) ([]model.Usuario, error) {
	out := []model.Usuario{}
	for _, u := range r.users {
		if incluirInactivos || u.Activo {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *stubUsuarioRepo) SetActivo(_ context.Context, id uuid.UUID, activo bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = activo
	return nil
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

type authFixture struct {
	svc    AuthService
	repo   *stubUsuarioRepo
	cfg    *config.Config
	tienda *model.Tienda
	admin  *model.Usuario
	seller *model.Usuario
	pass   string
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		repo:   newStubUsuarioRepo(),
		cfg:    &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 1, JWTRefreshHours: 2},
		tienda: &model.Tienda{ID: uuid.New(), Nombre: "Tienda Centro", Activo: true},
		pass:   "secreto123",
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(f.pass), bcrypt.MinCost)
	require.NoError(t, err)

	f.admin = &model.Usuario{Nombre: "Admin", Email: "admin@fleamarket.mx", PasswordHash: string(hash), Rol: model.RolAdmin, Activo: true}
	f.seller = &model.Usuario{Nombre: "Lucia", Email: "lucia@fleamarket.mx", PasswordHash: string(hash), Rol: model.RolVendedor, TiendaID: &f.tienda.ID, Activo: true}
	require.NoError(t, f.repo.Create(context.Background(), f.admin))
	require.NoError(t, f.repo.Create(context.Background(), f.seller))

	tiendas := &stubTiendaRepo{tiendas: map[uuid.UUID]*model.Tienda{f.tienda.ID: f.tienda}}
	f.svc = NewAuthService(f.repo, tiendas, f.cfg)
	return f
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Login(ctx, dto.LoginRequest{Email: " Lucia@FleaMarket.mx ", Password: f.pass})
	require.NoError(t, err)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, model.RolVendedor, resp.User.Rol)

	claims, err := ParseToken(resp.AccessToken, f.cfg.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, TokenAccess, claims["typ"])
	assert.Equal(t, f.tienda.ID.String(), claims["tienda_id"])

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "lucia@fleamarket.mx", Password: "incorrecta"})
	assert.ErrorIs(t, err, ErrCredenciales)

	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "nadie@fleamarket.mx", Password: f.pass})
	assert.ErrorIs(t, err, ErrCredenciales)

	require.NoError(t, f.repo.SetActivo(ctx, f.seller.ID, false))
	_, err = f.svc.Login(ctx, dto.LoginRequest{Email: "lucia@fleamarket.mx", Password: f.pass})
	assert.ErrorIs(t, err, ErrCredenciales)
}

func TestRefresh_SoloConRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	login, err := f.svc.Login(ctx, dto.LoginRequest{Email: f.admin.Email, Password: f.pass})
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, login.AccessToken)
	assert.ErrorIs(t, err, ErrNoAutenticado)

	nuevo, err := f.svc.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, nuevo.AccessToken)

	_, err = f.svc.Refresh(ctx, login.RefreshToken+"x")
	assert.ErrorIs(t, err, ErrNoAutenticado)
}

func TestParseToken_RechazaOtraFirmaYExpirado(t *testing.T) {
	claims := jwt.MapClaims{"user_id": uuid.NewString(), "typ": TokenAccess, "exp": time.Now().Add(time.Hour).Unix()}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("otra"))
	require.NoError(t, err)
	_, err = ParseToken(raw, "test-secret")
	assert.Error(t, err)

	claims["exp"] = time.Now().Add(-time.Minute).Unix()
	raw, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = ParseToken(raw, "test-secret")
	assert.Error(t, err)
}

func TestCrearUsuario_Permisos(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	req := dto.CrearUsuarioRequest{Email: "nuevo@fleamarket.mx", Password: "secreto", Nombre: "Nuevo", Rol: model.RolAdmin}

	_, err := f.svc.CrearUsuario(ctx, uuid.Nil, req)
	assert.ErrorIs(t, err, ErrNoAutenticado)

	_, err = f.svc.CrearUsuario(ctx, uuid.New(), req)
	assert.ErrorIs(t, err, ErrNoAutenticado)

	_, err = f.svc.CrearUsuario(ctx, f.seller.ID, req)
	assert.ErrorIs(t, err, ErrSinPermiso)

	require.NoError(t, f.repo.SetActivo(ctx, f.admin.ID, false))
	_, err = f.svc.CrearUsuario(ctx, f.admin.ID, req)
	assert.ErrorIs(t, err, ErrSinPermiso)
}

func TestCrearUsuario_Validaciones(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CrearUsuarioRequest
		want error
	}{
		{"sin password", dto.CrearUsuarioRequest{Email: "a@b.mx", Nombre: "A", Rol: model.RolAdmin}, ErrDatoInvalido},
		{"password de mas de 72 bytes", dto.CrearUsuarioRequest{Email: "a@b.mx", Password: strings.Repeat("x", 73), Nombre: "A", Rol: model.RolAdmin}, ErrDatoInvalido},
		{"rol desconocido", dto.CrearUsuarioRequest{Email: "a@b.mx", Password: "secreto", Nombre: "A", Rol: "gerente"}, ErrDatoInvalido},
		{"vendedor sin tienda", dto.CrearUsuarioRequest{Email: "a@b.mx", Password: "secreto", Nombre: "A", Rol: model.RolVendedor}, ErrDatoInvalido},
		{"tienda inexistente", dto.CrearUsuarioRequest{Email: "a@b.mx", Password: "secreto", Nombre: "A", Rol: model.RolVendedor, TiendaID: strPtr(uuid.NewString())}, ErrDatoInvalido},
		{"email repetido", dto.CrearUsuarioRequest{Email: "LUCIA@fleamarket.mx", Password: "secreto", Nombre: "A", Rol: model.RolAdmin}, ErrUsuarioExiste},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CrearUsuario(ctx, f.admin.ID, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCrearUsuario_Vendedor(t *testing.T) {
	f := newAuthFixture(t)
	resp, err := f.svc.CrearUsuario(context.Background(), f.admin.ID, dto.CrearUsuarioRequest{
		Email:    " Pedro@FleaMarket.mx",
		Password: "secreto",
		Nombre:   "Pedro",
		Rol:      model.RolVendedor,
		TiendaID: strPtr(f.tienda.ID.String()),
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)

	u := f.repo.users[uuid.MustParse(resp.UID)]
	require.NotNil(t, u)
	assert.Equal(t, "pedro@fleamarket.mx", u.Email)
	assert.Equal(t, model.HorarioSemana, u.TipoHorario)
	assert.Equal(t, f.tienda.ID, *u.TiendaID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secreto")))
}

func TestCambiarActivo_NoASiMismo(t *testing.T) {
	f := newAuthFixture(t)
	actor := Actor{UsuarioID: f.admin.ID, Rol: model.RolAdmin}

	err := f.svc.CambiarActivo(context.Background(), actor, f.admin.ID, false)
	assert.ErrorIs(t, err, ErrDatoInvalido)

	require.NoError(t, f.svc.CambiarActivo(context.Background(), actor, f.seller.ID, false))
	assert.False(t, f.repo.users[f.seller.ID].Activo)

	err = f.svc.CambiarActivo(context.Background(), actor, uuid.New(), true)
	assert.ErrorIs(t, err, ErrNoEncontrado)
}
