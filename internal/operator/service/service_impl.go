package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/aquaflow/internal/clock"
	"github.com/smallbiznis/aquaflow/internal/operator/domain"
	"github.com/smallbiznis/aquaflow/internal/operator/password"
	"github.com/smallbiznis/aquaflow/internal/operator/token"
	"github.com/smallbiznis/aquaflow/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Issuer *token.Issuer
	Repo   domain.Repository
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	issuer *token.Issuer
	repo   domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("operator.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		issuer: p.Issuer,
		repo:   p.Repo,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	username := normalizeUsername(req.Username)
	if username == "" || req.Password == "" {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	op, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return domain.LoginResponse{}, err
	}
	if op == nil || !op.IsActive || !password.Verify(req.Password, op.PasswordHash) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	signed, expiresAt, err := s.issuer.Issue(op.ID, op.Username, string(op.Role))
	if err != nil {
		return domain.LoginResponse{}, err
	}

	s.log.Info("operator logged in", zap.String("username", op.Username), zap.String("role", string(op.Role)))
	return domain.LoginResponse{Token: signed, ExpiresAt: expiresAt, Operator: *op}, nil
}

func (s *Service) Authenticate(ctx context.Context, raw string) (domain.Operator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.Operator{}, domain.ErrInvalidToken
	}

	claims, err := s.issuer.Parse(raw)
	if err != nil {
		return domain.Operator{}, domain.ErrInvalidToken
	}
	id, err := claims.OperatorID()
	if err != nil {
		return domain.Operator{}, domain.ErrInvalidToken
	}

	op, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Operator{}, err
	}
	if op == nil || !op.IsActive {
		return domain.Operator{}, domain.ErrInvalidToken
	}
	return *op, nil
}

func (s *Service) Create(ctx context.Context, req domain.CreateOperatorRequest) (domain.Operator, error) {
	username := normalizeUsername(req.Username)
	if username == "" || strings.ContainsAny(username, " \t\n") {
		return domain.Operator{}, domain.ErrInvalidUsername
	}
	if !req.Role.Valid() {
		return domain.Operator{}, domain.ErrInvalidRole
	}
	if len(req.Password) < domain.MinPasswordLength {
		return domain.Operator{}, domain.ErrInvalidPassword
	}

	existing, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return domain.Operator{}, err
	}
	if existing != nil {
		return domain.Operator{}, domain.ErrUsernameTaken
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return domain.Operator{}, err
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = username
	}

	now := s.clock.Now()
	op := domain.Operator{
		ID:           s.genID.Generate(),
		Username:     username,
		DisplayName:  displayName,
		Role:         req.Role,
		PasswordHash: hash,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, s.db, &op); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Operator{}, domain.ErrUsernameTaken
		}
		return domain.Operator{}, err
	}
	return op, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Operator, error) {
	items, err := s.repo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}
	ops := make([]domain.Operator, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		ops = append(ops, *item)
	}
	return ops, nil
}

func (s *Service) EnsureAdmin(ctx context.Context, username, pass string) error {
	username = normalizeUsername(username)
	if username == "" || pass == "" {
		s.log.Info("admin bootstrap skipped, ADMIN_USERNAME or ADMIN_PASSWORD not set")
		return nil
	}

	existing, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	_, err = s.Create(ctx, domain.CreateOperatorRequest{
		Username:    username,
		DisplayName: "Administrator",
		Role:        domain.RoleAdmin,
		Password:    pass,
	})
	if errors.Is(err, domain.ErrUsernameTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	s.log.Info("bootstrap admin created", zap.String("username", username))
	return nil
}

func normalizeUsername(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
