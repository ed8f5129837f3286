package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	apperrors "github.com/devhours/backend/services/common/errors"
	"github.com/devhours/backend/services/subscription-service/models"
	"github.com/devhours/backend/services/subscription-service/repository"
)

// PaymentUnreachable is the soft error code returned to the client when the
// charging service cannot be reached. It is a degraded result, not a request
// failure.
const PaymentUnreachable = "payment_service_unreachable"

type CreateSubscriptionInput struct {
	PlanID       string              `json:"planId" binding:"required,uuid"`
	ManHours     int                 `json:"manHours" binding:"required,min=1"`
	BillingCycle models.BillingCycle `json:"billingCycle" binding:"required,oneof=monthly yearly"`
}

type UpgradeSubscriptionInput struct {
	NewPlanID   string `json:"newPlanId" binding:"required,uuid"`
	NewManHours int    `json:"newManHours" binding:"required,min=1"`
}

type DowngradeSubscriptionInput struct {
	NewPlanID   string         `json:"newPlanId" binding:"required,uuid"`
	NewManHours int            `json:"newManHours" binding:"required,min=1"`
	ApplyAt     models.ApplyAt `json:"applyAt" binding:"required,oneof=next_billing_period immediate"`
}

type CancelSubscriptionInput struct {
	CancelAt string `json:"cancelAt" binding:"omitempty,oneof=period_end immediate"`
}

// PaymentDispatch reports what happened when the payment service was asked to
// charge. Either TransactionID/Status or Error is set.
type PaymentDispatch struct {
	TransactionID string `json:"transactionId,omitempty"`
	Status        string `json:"status,omitempty"`
	Error         string `json:"error,omitempty"`
}

type SubscriptionResult struct {
	Subscription *models.Subscription `json:"subscription"`
	Payment      *PaymentDispatch     `json:"payment,omitempty"`
}

type OverviewResult struct {
	CurrentPlan       string `json:"currentPlan"`
	ManhoursTotal     int    `json:"manhoursTotal"`
	ManhoursUsed      int    `json:"manhoursUsed"`
	ManhoursRemaining int    `json:"manhoursRemaining"`
}

// WebhookResult is the protocol-level reply to an inbound payment webhook.
// ok:false is a negative acknowledgment, never an HTTP error.
type WebhookResult struct {
	OK                 bool                      `json:"ok"`
	Error              string                    `json:"error,omitempty"`
	AlreadyProcessed   bool                      `json:"alreadyProcessed,omitempty"`
	SubscriptionID     string                    `json:"subscriptionId,omitempty"`
	PaymentStatus      models.PaymentStatus      `json:"paymentStatus,omitempty"`
	SubscriptionStatus models.SubscriptionStatus `json:"subscriptionStatus,omitempty"`
}

type WebhookInput struct {
	TransactionID  string  `json:"transactionId"`
	SubscriptionID string  `json:"subscriptionId"`
	Status         string  `json:"status"`
	Amount         float64 `json:"amount"`
	Timestamp      string  `json:"timestamp"`
}

// SubscriptionService owns every subscription state transition.
type SubscriptionService struct {
	Subs    repository.SubscriptionRepository
	Plans   repository.PlanRepository
	Users   repository.UserRepository
	Payment PaymentClient
	Logger  *zap.Logger
	Now     func() time.Time
}

func NewSubscriptionService(
	subs repository.SubscriptionRepository,
	plans repository.PlanRepository,
	users repository.UserRepository,
	payment PaymentClient,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		Subs:    subs,
		Plans:   plans,
		Users:   users,
		Payment: payment,
		Logger:  logger,
		Now:     time.Now,
	}
}

// planAmount prices a man-hour block on a plan: hours × price, ×12 for a
// yearly cycle, minus the plan discount, rounded to cents.
func planAmount(manHours int, plan *models.Plan, cycle models.BillingCycle) float64 {
	amount := float64(manHours) * plan.PricePerManHour
	if cycle == models.BillingYearly {
		amount *= 12
	}
	if plan.DiscountPercent > 0 {
		amount *= 1 - plan.DiscountPercent/100
	}
	return math.Round(amount*100) / 100
}

func (s *SubscriptionService) Create(ctx context.Context, userID uuid.UUID, in CreateSubscriptionInput) (*SubscriptionResult, error) {
	if _, err := s.Users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	planID, err := uuid.Parse(in.PlanID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	plan, err := s.Plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, err
	}

	amount := planAmount(in.ManHours, plan, in.BillingCycle)
	now := s.Now()

	// Reuse the user's latest subscription row rather than creating a new one
	// per purchase.
	sub, err := s.Subs.FindLatestByUser(ctx, userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	isNew := sub == nil
	if isNew {
		sub = &models.Subscription{
			ID:     uuid.New(),
			UserID: userID,
		}
	}

	sub.PlanID = plan.ID
	sub.Plan = *plan
	sub.PlanManHours = in.ManHours
	sub.StartDate = now
	sub.EndDate = nil
	sub.Status = models.SubscriptionPendingPayment
	sub.PaymentStatus = models.PaymentPending
	sub.TotalCost = amount
	sub.ManHoursUsed = 0
	sub.PaymentID = nil
	sub.PendingChange = nil

	if isNew {
		err = s.Subs.Create(ctx, sub)
	} else {
		err = s.Subs.Save(ctx, sub)
	}
	if err != nil {
		return nil, err
	}

	return s.dispatchPayment(ctx, sub, userID.String(), amount)
}

func (s *SubscriptionService) Upgrade(ctx context.Context, userID, subscriptionID uuid.UUID, in UpgradeSubscriptionInput) (*SubscriptionResult, error) {
	sub, err := s.ownedSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive {
		return nil, apperrors.ErrSubscriptionInactive
	}

	newPlanID, err := uuid.Parse(in.NewPlanID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	newPlan, err := s.Plans.FindByID(ctx, newPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, err
	}

	// The upgrade is priced on the new plan's terms; hours are cumulative on
	// the current allocation.
	amount := planAmount(in.NewManHours, newPlan, newPlan.BillingCycle)
	now := s.Now()

	sub.PlanManHours += in.NewManHours
	sub.PendingChange = &models.PendingChange{
		Type:          models.ChangeUpgrade,
		NewPlanID:     newPlan.ID.String(),
		NewManHours:   in.NewManHours,
		EffectiveDate: &now,
	}
	sub.PaymentStatus = models.PaymentPending
	sub.PaymentID = nil

	if err := s.Subs.Save(ctx, sub); err != nil {
		return nil, err
	}

	return s.dispatchPayment(ctx, sub, userID.String(), amount)
}

func (s *SubscriptionService) Downgrade(ctx context.Context, userID, subscriptionID uuid.UUID, in DowngradeSubscriptionInput) (*SubscriptionResult, error) {
	sub, err := s.ownedSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionActive {
		return nil, apperrors.ErrSubscriptionInactive
	}

	newPlanID, err := uuid.Parse(in.NewPlanID)
	if err != nil {
		return nil, apperrors.ErrInvalidInput
	}
	newPlan, err := s.Plans.FindByID(ctx, newPlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, err
	}

	// Downgrades are deferred, never charged up front.
	var effectiveDate *time.Time
	if in.ApplyAt == models.ApplyImmediate {
		now := s.Now()
		effectiveDate = &now
	}

	sub.PendingChange = &models.PendingChange{
		Type:          models.ChangeDowngrade,
		NewPlanID:     newPlan.ID.String(),
		NewManHours:   in.NewManHours,
		ApplyAt:       in.ApplyAt,
		EffectiveDate: effectiveDate,
	}

	if err := s.Subs.Save(ctx, sub); err != nil {
		return nil, err
	}

	return &SubscriptionResult{Subscription: sub}, nil
}

func (s *SubscriptionService) Cancel(ctx context.Context, userID, subscriptionID uuid.UUID, in CancelSubscriptionInput) (*SubscriptionResult, error) {
	sub, err := s.ownedSubscription(ctx, userID, subscriptionID)
	if err != nil {
		return nil, err
	}

	cancelAt := in.CancelAt
	if cancelAt == "" {
		cancelAt = "immediate"
	}

	if cancelAt == "immediate" {
		now := s.Now()
		sub.Status = models.SubscriptionCanceled
		sub.EndDate = &now
		sub.PendingChange = nil
	} else {
		sub.PendingChange = &models.PendingChange{
			Type:          models.ChangeCancel,
			EffectiveDate: nil,
		}
	}

	if err := s.Subs.Save(ctx, sub); err != nil {
		return nil, err
	}

	return &SubscriptionResult{Subscription: sub}, nil
}

func (s *SubscriptionService) GetUserSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	return s.Subs.FindAllByUser(ctx, userID)
}

func (s *SubscriptionService) GetUserSubscriptionByID(ctx context.Context, userID, subscriptionID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.Subs.FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.UserID != userID {
		return nil, apperrors.ErrSubscriptionNotFound
	}
	return sub, nil
}

// Overview reports the active subscription with the most recent start date.
func (s *SubscriptionService) Overview(ctx context.Context, userID uuid.UUID) (*OverviewResult, error) {
	subs, err := s.Subs.FindAllByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, apperrors.ErrSubscriptionNotFound
	}

	var active *models.Subscription
	for i := range subs {
		if subs[i].Status != models.SubscriptionActive {
			continue
		}
		if active == nil || subs[i].StartDate.After(active.StartDate) {
			active = &subs[i]
		}
	}

	if active == nil {
		return &OverviewResult{CurrentPlan: "Free"}, nil
	}

	total := active.PlanManHours
	used := active.ManHoursUsed
	remaining := total - used
	if remaining < 0 {
		remaining = 0
	}

	return &OverviewResult{
		CurrentPlan:       active.Plan.Name,
		ManhoursTotal:     total,
		ManhoursUsed:      used,
		ManhoursRemaining: remaining,
	}, nil
}

// HandlePaymentWebhook applies a signed settlement outcome. Consumption is
// idempotent: re-delivery of an outcome already applied is acknowledged
// without touching storage, and paymentStatus/status always move as a pair.
func (s *SubscriptionService) HandlePaymentWebhook(ctx context.Context, in WebhookInput) (*WebhookResult, error) {
	subscriptionID, err := uuid.Parse(in.SubscriptionID)
	if err != nil {
		return &WebhookResult{OK: false, Error: "Subscription not found"}, nil
	}

	sub, err := s.Subs.FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &WebhookResult{OK: false, Error: "Subscription not found"}, nil
		}
		return nil, err
	}

	var incomingPayment models.PaymentStatus
	var incomingStatus models.SubscriptionStatus

	switch in.Status {
	case "success":
		incomingPayment = models.PaymentSuccess
		incomingStatus = models.SubscriptionActive
	case "failed":
		incomingPayment = models.PaymentFailed
		incomingStatus = models.SubscriptionFailed
	default:
		return &WebhookResult{OK: false, Error: fmt.Sprintf("Unsupported status: %s", in.Status)}, nil
	}

	if sub.PaymentStatus == incomingPayment {
		return &WebhookResult{
			OK:                 true,
			AlreadyProcessed:   true,
			SubscriptionID:     sub.ID.String(),
			PaymentStatus:      sub.PaymentStatus,
			SubscriptionStatus: sub.Status,
		}, nil
	}

	if sub.TotalCost != in.Amount {
		s.Logger.Warn("Webhook amount mismatch",
			zap.String("subscription_id", in.SubscriptionID),
			zap.Float64("expected", sub.TotalCost),
			zap.Float64("got", in.Amount),
		)
	}

	sub.PaymentStatus = incomingPayment
	sub.Status = incomingStatus
	sub.PaymentID = &in.TransactionID
	if incomingPayment == models.PaymentSuccess {
		sub.StartDate = s.Now()
	}

	if err := s.Subs.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.Logger.Info("Payment webhook applied",
		zap.String("subscription_id", sub.ID.String()),
		zap.String("transaction_id", in.TransactionID),
		zap.String("payment_status", string(sub.PaymentStatus)),
		zap.String("subscription_status", string(sub.Status)),
	)

	return &WebhookResult{
		OK:                 true,
		SubscriptionID:     sub.ID.String(),
		PaymentStatus:      sub.PaymentStatus,
		SubscriptionStatus: sub.Status,
	}, nil
}

func (s *SubscriptionService) ownedSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.Subs.FindByID(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSubscriptionNotFound
		}
		return nil, err
	}
	if sub.UserID != userID {
		return nil, apperrors.ErrNotYourSubscription
	}
	return sub, nil
}

// dispatchPayment asks the charging service to collect amount. A transport
// failure degrades to paymentStatus=failed with a soft error; it never fails
// the request.
func (s *SubscriptionService) dispatchPayment(ctx context.Context, sub *models.Subscription, userID string, amount float64) (*SubscriptionResult, error) {
	result, err := s.Payment.SendPaymentRequest(ctx, sub.ID.String(), userID, amount)
	if err != nil {
		sub.PaymentStatus = models.PaymentFailed
		if saveErr := s.Subs.Save(ctx, sub); saveErr != nil {
			return nil, saveErr
		}
		return &SubscriptionResult{
			Subscription: sub,
			Payment:      &PaymentDispatch{Error: PaymentUnreachable},
		}, nil
	}

	sub.PaymentID = &result.TransactionID
	sub.PaymentStatus = models.PaymentPending
	if err := s.Subs.Save(ctx, sub); err != nil {
		return nil, err
	}

	return &SubscriptionResult{
		Subscription: sub,
		Payment: &PaymentDispatch{
			TransactionID: result.TransactionID,
			Status:        result.Status,
		},
	}, nil
}
