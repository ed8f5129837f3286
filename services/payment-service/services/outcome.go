package services

import (
	"math/rand"

	"github.com/devhours/backend/services/payment-service/models"
)

// OutcomePolicy decides how a pending transaction settles. Keeping this an
// interface makes the settlement path deterministic under test.
type OutcomePolicy interface {
	Decide(txn *models.Transaction) models.TransactionStatus
}

// FixedOutcome settles every transaction with the same status.
type FixedOutcome struct {
	Status models.TransactionStatus
}

func (f FixedOutcome) Decide(*models.Transaction) models.TransactionStatus {
	return f.Status
}

// RandomOutcome settles successfully with probability SuccessRate.
type RandomOutcome struct {
	SuccessRate float64
}

func (r RandomOutcome) Decide(*models.Transaction) models.TransactionStatus {
	if rand.Float64() < r.SuccessRate {
		return models.TransactionSuccess
	}
	return models.TransactionFailed
}

// PolicyForSuccessRate maps a configured rate onto a policy. A rate of 1
// settles deterministically.
func PolicyForSuccessRate(rate float64) OutcomePolicy {
	if rate >= 1 {
		return FixedOutcome{Status: models.TransactionSuccess}
	}
	return RandomOutcome{SuccessRate: rate}
}
