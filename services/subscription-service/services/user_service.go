package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/devhours/backend/services/common/auth"
	apperrors "github.com/devhours/backend/services/common/errors"
	"github.com/devhours/backend/services/subscription-service/models"
	"github.com/devhours/backend/services/subscription-service/repository"
)

// FreePlanName is the catalog plan every new user is enrolled on. It carries
// no charge, so the implicit subscription starts active with paymentStatus
// success.
const FreePlanName = "Free"

type RegisterInput struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type UserService struct {
	Users  repository.UserRepository
	Plans  repository.PlanRepository
	Subs   repository.SubscriptionRepository
	Logger *zap.Logger
	Now    func() time.Time
}

func NewUserService(users repository.UserRepository, plans repository.PlanRepository, subs repository.SubscriptionRepository, logger *zap.Logger) *UserService {
	return &UserService{Users: users, Plans: plans, Subs: subs, Logger: logger, Now: time.Now}
}

// Register creates the user and the implicit Free-plan subscription, then
// issues an access token.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if _, err := s.Users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:        uuid.New(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  string(hashed),
	}
	if err := s.Users.Create(ctx, user); err != nil {
		return nil, err
	}

	freePlan, err := s.Plans.FindByName(ctx, FreePlanName)
	if err != nil {
		s.Logger.Error("Free plan missing; seed default plans", zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	startDate := s.Now()
	sub := &models.Subscription{
		ID:            uuid.New(),
		UserID:        user.ID,
		PlanID:        freePlan.ID,
		PlanManHours:  freePlan.ManHours,
		Status:        models.SubscriptionActive,
		StartDate:     startDate,
		EndDate:       endDateForPlan(freePlan, startDate),
		ManHoursUsed:  0,
		TotalCost:     0,
		PaymentStatus: models.PaymentSuccess,
		PaymentID:     nil,
		PendingChange: nil,
	}
	if err := s.Subs.Create(ctx, sub); err != nil {
		return nil, err
	}

	token, err := auth.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.Users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func endDateForPlan(plan *models.Plan, startDate time.Time) *time.Time {
	var end time.Time
	switch plan.BillingCycle {
	case models.BillingMonthly:
		end = startDate.AddDate(0, 1, 0)
	case models.BillingYearly:
		end = startDate.AddDate(1, 0, 0)
	default:
		// free and custom cycles never expire on their own
		return nil
	}
	return &end
}
