package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/eventmanager/internal/apperr"
	"github.com/geocoder89/eventmanager/internal/auth"
	"github.com/geocoder89/eventmanager/internal/domain/user"
	"github.com/geocoder89/eventmanager/internal/security"
)

type UsersStore interface {
	Create(ctx context.Context, u user.User) error
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID, username string) (string, error)
	GenerateRefreshToken(userID, username string) (raw string, jti string, expiresAt time.Time, err error)
	VerifyRefreshToken(tokenStr string) (*auth.Claims, error)
	HashRefreshToken(raw string) string
}

type RefreshSessions interface {
	Save(ctx context.Context, jti string, sess auth.RefreshSession, ttl time.Duration) error
	Consume(ctx context.Context, jti string) (auth.RefreshSession, error)
	Revoke(ctx context.Context, jti string) error
}

type UsersHandler struct {
	users    UsersStore
	tokens   TokenIssuer
	sessions RefreshSessions
	log      *slog.Logger
	now      func() time.Time
}

func NewUsersHandler(users UsersStore, tokens TokenIssuer, sessions RefreshSessions, log *slog.Logger) *UsersHandler {
	return &UsersHandler{users: users, tokens: tokens, sessions: sessions, log: log, now: time.Now}
}

type profile struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	DateJoined time.Time `json:"date_joined"`
}

func toProfile(u user.User) profile {
	return profile{ID: u.ID, Username: u.Username, Email: u.Email, DateJoined: u.DateJoined}
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (h *UsersHandler) Register(ctx *gin.Context) {
	var req user.SignUpRequest
	if !BindJSON(ctx, &req) {
		return
	}

	if req.Password != req.PasswordConfirm {
		RespondAppError(ctx, apperr.ErrPasswordMismatch)
		return
	}

	if problems := security.PasswordProblems(req.Password, req.Username); len(problems) > 0 {
		fields := make([]FieldError, 0, len(problems))
		for _, p := range problems {
			fields = append(fields, FieldError{Field: "password", Rule: "password", Message: p})
		}
		RespondValidation(ctx, fields)
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := h.users.EmailExists(cctx, email)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	if taken {
		RespondAppError(ctx, apperr.ErrEmailAlreadyExists)
		return
	}

	taken, err = h.users.UsernameExists(cctx, strings.TrimSpace(req.Username))
	if err != nil {
		RespondAppError(ctx, err)
		return
	}
	if taken {
		RespondAppError(ctx, apperr.ErrUsernameAlreadyExists)
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	u := user.New(req, hash, h.now())

	if err := h.users.Create(cctx, u); err != nil {
		// lost a race against a concurrent sign up
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			RespondAppError(ctx, apperr.ErrEmailAlreadyExists)
		case errors.Is(err, user.ErrUsernameTaken):
			RespondAppError(ctx, apperr.ErrUsernameAlreadyExists)
		default:
			RespondAppError(ctx, err)
		}
		return
	}

	h.log.InfoContext(cctx, "user.registered", "user_id", u.ID)

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user":    toProfile(u),
	})
}

func (h *UsersHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	found, err := h.users.GetByUsername(cctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondAppError(ctx, apperr.ErrInvalidCredentials)
			return
		}
		RespondAppError(ctx, err)
		return
	}

	if err := security.CheckPassword(found.PasswordHash, req.Password); err != nil {
		RespondAppError(ctx, apperr.ErrInvalidCredentials)
		return
	}

	pair, err := h.issue(cctx, found)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, pair)
}

// Refresh rotates a refresh token: the presented token is consumed and a
// new pair is issued. Replaying a consumed token fails.
func (h *UsersHandler) Refresh(ctx *gin.Context) {
	var req user.RefreshRequest
	if !BindJSON(ctx, &req) {
		return
	}

	claims, err := h.tokens.VerifyRefreshToken(req.Refresh)
	if err != nil {
		RespondAppError(ctx, apperr.WithDetail(apperr.KindInvalidToken, "Token is invalid or expired"))
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	sess, err := h.sessions.Consume(cctx, claims.JTI)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshNotFound) {
			h.log.WarnContext(cctx, "auth.refresh_replay", "user_id", claims.UserID, "jti", claims.JTI)
			RespondAppError(ctx, apperr.WithDetail(apperr.KindInvalidToken, "Token is blacklisted"))
			return
		}
		RespondAppError(ctx, err)
		return
	}

	if sess.UserID != claims.UserID || sess.TokenHash != h.tokens.HashRefreshToken(req.Refresh) {
		RespondAppError(ctx, apperr.WithDetail(apperr.KindInvalidToken, "Token is invalid or expired"))
		return
	}

	u, err := h.users.GetByID(cctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondAppError(ctx, apperr.WithDetail(apperr.KindInvalidToken, "User not found."))
			return
		}
		RespondAppError(ctx, err)
		return
	}

	pair, err := h.issue(cctx, u)
	if err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, pair)
}

func (h *UsersHandler) Logout(ctx *gin.Context) {
	var req user.RefreshRequest
	if !BindJSON(ctx, &req) {
		return
	}

	claims, err := h.tokens.VerifyRefreshToken(req.Refresh)
	if err != nil {
		RespondAppError(ctx, apperr.WithDetail(apperr.KindInvalidToken, "Token is invalid or expired"))
		return
	}

	cctx, cancel := requestContext(ctx)
	defer cancel()

	if err := h.sessions.Revoke(cctx, claims.JTI); err != nil {
		RespondAppError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *UsersHandler) Me(ctx *gin.Context) {
	cctx, cancel := requestContext(ctx)
	defer cancel()

	u, ok := loadActor(ctx, cctx, h.users)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, toProfile(u))
}

func (h *UsersHandler) issue(ctx context.Context, u user.User) (tokenPair, error) {
	access, err := h.tokens.GenerateAccessToken(u.ID, u.Username)
	if err != nil {
		return tokenPair{}, err
	}

	refresh, jti, expiresAt, err := h.tokens.GenerateRefreshToken(u.ID, u.Username)
	if err != nil {
		return tokenPair{}, err
	}

	sess := auth.RefreshSession{UserID: u.ID, TokenHash: h.tokens.HashRefreshToken(refresh)}
	if err := h.sessions.Save(ctx, jti, sess, time.Until(expiresAt)); err != nil {
		return tokenPair{}, err
	}

	return tokenPair{Access: access, Refresh: refresh}, nil
}
