package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"chatbot-be/internal/dto"
	"chatbot-be/internal/entity"
	"chatbot-be/internal/repository/specification"
	"chatbot-be/internal/repository/unitofwork"
	"chatbot-be/pkg/events"
	pktNats "chatbot-be/pkg/nats"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type IAuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error)
	LookupUser(ctx context.Context, userId uuid.UUID) (*entity.User, error)
}

type authService struct {
	uowFactory     unitofwork.RepositoryFactory
	tokenTTL       time.Duration
	eventPublisher *pktNats.Publisher
}

func NewAuthService(uowFactory unitofwork.RepositoryFactory, tokenTTLDays int, eventPublisher *pktNats.Publisher) IAuthService {
	return &authService{
		uowFactory:     uowFactory,
		tokenTTL:       time.Duration(tokenTTLDays) * 24 * time.Hour,
		eventPublisher: eventPublisher,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Id:           uuid.New(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := uow.UserRepository().Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewUserRegisteredEvent(user.Id, user.Username))

	return &dto.AuthResponse{
		Message: "Registered successfully!",
		Token:   token,
		User:    userResponse(user),
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByUsername{Username: req.Username})
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Unknown username surfaces as 404, a bad password as 400.
		return nil, ErrNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrBadCredentials
	}

	token, err := s.signToken(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.NewUserLoginEvent(user.Id, user.Username))

	return &dto.AuthResponse{
		Message: "Logged-In successfully!",
		Token:   token,
		User:    userResponse(user),
	}, nil
}

func (s *authService) LookupUser(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *authService) signToken(user *entity.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id": user.Id.String(),
		"exp":     time.Now().Add(s.tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "default_secret"
	}
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signedToken, nil
}

func (s *authService) publish(ctx context.Context, event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		log.Printf("[WARN] Failed to publish %s event: %v", event.EventType(), err)
	}
}

func userResponse(user *entity.User) dto.UserResponse {
	return dto.UserResponse{
		Id:       user.Id,
		Username: user.Username,
		Email:    user.Email,
	}
}
