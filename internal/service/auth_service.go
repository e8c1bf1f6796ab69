package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fleamarket/internal/config"
	"fleamarket/internal/dto"
	"fleamarket/internal/model"
	"fleamarket/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 12

// maxPasswordBytes is the longest input bcrypt accepts.
const maxPasswordBytes = 72

// Token kinds carried in the "typ" claim. Only access tokens open protected routes.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Me(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error)
	// CrearUsuario re-reads the caller from storage: only an active admin may create accounts.
	CrearUsuario(ctx context.Context, callerID uuid.UUID, req dto.CrearUsuarioRequest) (*dto.CrearUsuarioResponse, error)
	ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error)
	ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error)
	CambiarActivo(ctx context.Context, actor Actor, id uuid.UUID, activo bool) error
}

type authService struct {
	repo    repository.UsuarioRepository
	tiendas repository.TiendaRepository
	cfg     *config.Config
}

func NewAuthService(repo repository.UsuarioRepository, tiendas repository.TiendaRepository, cfg *config.Config) AuthService {
	return &authService{repo: repo, tiendas: tiendas, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		return nil, ErrCredenciales
	}
	if !user.Activo {
		return nil, ErrCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrCredenciales
	}
	return s.tokens(user)
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := ParseToken(refreshToken, s.cfg.JWTSecret)
	if err != nil || claims["typ"] != TokenRefresh {
		return nil, fmt.Errorf("%w: refresh token invalido o expirado", ErrNoAutenticado)
	}
	userIDStr, _ := claims["user_id"].(string)
	uid, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("%w: token mal formado", ErrNoAutenticado)
	}
	user, err := s.repo.FindByID(ctx, uid)
	if err != nil || !user.Activo {
		return nil, fmt.Errorf("%w: usuario no encontrado o inactivo", ErrNoAutenticado)
	}
	return s.tokens(user)
}

func (s *authService) Me(ctx context.Context, id uuid.UUID) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "usuario")
	}
	resp := usuarioResponse(user)
	return &resp, nil
}

// ── Usuarios ─────────────────────────────────────────────────────────────────

func (s *authService) CrearUsuario(ctx context.Context, callerID uuid.UUID, req dto.CrearUsuarioRequest) (*dto.CrearUsuarioResponse, error) {
	if callerID == uuid.Nil {
		return nil, ErrNoAutenticado
	}
	caller, err := s.repo.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoAutenticado
		}
		return nil, err
	}
	if !caller.Activo || caller.Rol != model.RolAdmin {
		return nil, ErrSinPermiso
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" || strings.TrimSpace(req.Nombre) == "" {
		return nil, fmt.Errorf("%w: email, password y nombre son obligatorios", ErrDatoInvalido)
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password de maximo %d bytes", ErrDatoInvalido, maxPasswordBytes)
	}
	if req.Rol != model.RolAdmin && req.Rol != model.RolVendedor {
		return nil, fmt.Errorf("%w: rol debe ser admin o vendedor", ErrDatoInvalido)
	}
	tiendaID, err := s.tiendaAsignada(ctx, req.Rol, req.TiendaID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, ErrUsuarioExiste
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	horario := req.TipoHorario
	if horario == "" {
		horario = model.HorarioSemana
	}
	user := &model.Usuario{
		Nombre:       strings.TrimSpace(req.Nombre),
		Email:        email,
		PasswordHash: string(hash),
		Rol:          req.Rol,
		TipoHorario:  horario,
		TiendaID:     tiendaID,
		PIN:          req.PIN,
		Activo:       true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsuarioExiste
		}
		return nil, err
	}
	log.Info().Str("uid", user.ID.String()).Str("rol", user.Rol).Str("por", caller.Email).Msg("usuario creado")
	return &dto.CrearUsuarioResponse{Success: true, UID: user.ID.String()}, nil
}

// tiendaAsignada validates the store of a new or updated account. Sellers need one.
func (s *authService) tiendaAsignada(ctx context.Context, rol string, raw *string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		if rol == model.RolVendedor {
			return nil, fmt.Errorf("%w: un vendedor requiere tienda_id", ErrDatoInvalido)
		}
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, fmt.Errorf("%w: tienda_id", ErrDatoInvalido)
	}
	if _, err := s.tiendas.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: la tienda no existe", ErrDatoInvalido)
		}
		return nil, err
	}
	return &id, nil
}

func (s *authService) ListarUsuarios(ctx context.Context, incluirInactivos bool) ([]dto.UsuarioResponse, error) {
	users, err := s.repo.List(ctx, incluirInactivos)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.UsuarioResponse, len(users))
	for i := range users {
		resp[i] = usuarioResponse(&users[i])
	}
	return resp, nil
}

func (s *authService) ActualizarUsuario(ctx context.Context, id uuid.UUID, req dto.ActualizarUsuarioRequest) (*dto.UsuarioResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, noEncontrado(err, "usuario")
	}
	if req.Nombre != "" {
		user.Nombre = req.Nombre
	}
	if req.Rol != "" {
		user.Rol = req.Rol
	}
	if req.TipoHorario != "" {
		user.TipoHorario = req.TipoHorario
	}
	if req.TiendaID != nil {
		if user.TiendaID, err = s.tiendaAsignada(ctx, user.Rol, req.TiendaID); err != nil {
			return nil, err
		}
	} else if user.Rol == model.RolVendedor && user.TiendaID == nil {
		return nil, fmt.Errorf("%w: un vendedor requiere tienda_id", ErrDatoInvalido)
	}
	if req.PIN != nil {
		user.PIN = *req.PIN
	}
	if len(req.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%w: password de maximo %d bytes", ErrDatoInvalido, maxPasswordBytes)
	}
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	resp := usuarioResponse(user)
	return &resp, nil
}

func (s *authService) CambiarActivo(ctx context.Context, actor Actor, id uuid.UUID, activo bool) error {
	if !activo && actor.UsuarioID == id {
		return fmt.Errorf("%w: no puede desactivar su propia cuenta", ErrDatoInvalido)
	}
	if err := s.repo.SetActivo(ctx, id, activo); err != nil {
		return noEncontrado(err, "usuario")
	}
	return nil
}

// ── Tokens ───────────────────────────────────────────────────────────────────

func (s *authService) tokens(user *model.Usuario) (*dto.LoginResponse, error) {
	accessToken, err := s.generateToken(user, TokenAccess, time.Duration(s.cfg.JWTExpirationHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.generateToken(user, TokenRefresh, time.Duration(s.cfg.JWTRefreshHours)*time.Hour)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    s.cfg.JWTExpirationHours * 3600,
		User:         usuarioResponse(user),
	}, nil
}

func (s *authService) generateToken(user *model.Usuario, typ string, duration time.Duration) (string, error) {
	tienda := ""
	if user.TiendaID != nil {
		tienda = user.TiendaID.String()
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":      user.ID.String(),
		"email":        user.Email,
		"nombre":       user.Nombre,
		"rol":          user.Rol,
		"tienda_id":    tienda,
		"tipo_horario": user.TipoHorario,
		"typ":          typ,
		"exp":          now.Add(duration).Unix(),
		"iat":          now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// ParseToken verifies an HS256 token and returns its claims.
func ParseToken(raw, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
