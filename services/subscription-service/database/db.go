package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/devhours/backend/services/subscription-service/config"
	"github.com/devhours/backend/services/subscription-service/models"
	"github.com/devhours/backend/services/subscription-service/repository"
)

// ConnectPostgres opens the subscription database and runs AutoMigrate for the
// given models, retrying while postgres comes up.
func ConnectPostgres(cfg *config.Config, autoMigrateModels ...interface{}) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresUser, cfg.PostgresPassword,
		cfg.PostgresDB, cfg.PostgresPort, cfg.PostgresSSLMode,
	)

	var db *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			if len(autoMigrateModels) > 0 {
				if err := db.AutoMigrate(autoMigrateModels...); err != nil {
					return nil, fmt.Errorf("AutoMigrate failed: %w", err)
				}
			}
			return db, nil
		}
		log.Printf("postgres connection failed (%d/10): %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
}

// SeedPlans inserts the catalog the service ships with. Registration depends
// on the Free plan existing, so seeding failures are fatal to startup.
func SeedPlans(ctx context.Context, plans repository.PlanRepository) error {
	defaults := []models.Plan{
		{
			Name:            "Free",
			ManHours:        0,
			PricePerManHour: 0,
			BillingCycle:    models.BillingFree,
			Features:        []string{"Community support"},
		},
		{
			Name:            "Starter",
			ManHours:        10,
			PricePerManHour: 2.5,
			BillingCycle:    models.BillingMonthly,
			DiscountPercent: 0,
			Features:        []string{"Email support", "Monthly usage report"},
		},
		{
			Name:            "Business",
			ManHours:        40,
			PricePerManHour: 3.0,
			BillingCycle:    models.BillingMonthly,
			DiscountPercent: 10,
			Features:        []string{"Priority support", "Dedicated account manager"},
		},
		{
			Name:            "Enterprise",
			ManHours:        160,
			PricePerManHour: 2.75,
			BillingCycle:    models.BillingYearly,
			DiscountPercent: 20,
			Features:        []string{"24/7 support", "Custom SLAs", "On-site reviews"},
		},
	}

	for i := range defaults {
		if err := plans.FirstOrCreate(ctx, &defaults[i]); err != nil {
			return fmt.Errorf("seeding plan %q: %w", defaults[i].Name, err)
		}
	}
	return nil
}
