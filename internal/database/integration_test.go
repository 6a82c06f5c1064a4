//go:build integration
// +build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	billingModel "github.com/playreply/playreply/internal/billing/model"
	billingRepository "github.com/playreply/playreply/internal/billing/repository"
)

// startPostgres spins up a throwaway PostgreSQL container and returns a
// connected gorm handle.
func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:12-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := NewWithConfig(ctx, Config{
		Host:     host,
		User:     "testuser",
		Password: "testpass",
		DBName:   "testdb",
		Port:     port.Port(),
		SSLMode:  "disable",
		TimeZone: "UTC",
	})
	require.NoError(t, err, "failed to connect to database")
	t.Cleanup(func() { _ = Close(db) })

	return db
}

func TestAutoMigrate_Integration(t *testing.T) {
	db := startPostgres(t)

	require.NoError(t, AutoMigrate(db))

	tables := []string{
		"apps", "app_settings", "ios_credentials",
		"reviews", "replies",
		"organizations", "billing_events",
	}
	for _, table := range tables {
		var exists bool
		err := db.Raw(`
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_schema = 'public' AND table_name = ?
			)`, table).Scan(&exists).Error
		require.NoError(t, err)
		assert.True(t, exists, "table %s should exist after migration", table)
	}

	// Safe to run twice.
	require.NoError(t, AutoMigrate(db))

	require.NoError(t, HealthCheck(context.Background(), db))
}

// Conflict clauses behave differently across engines, so the billing
// dedup path gets exercised against real PostgreSQL.
func TestBillingEventDedup_Integration(t *testing.T) {
	db := startPostgres(t)
	require.NoError(t, AutoMigrate(db))

	repo := billingRepository.New(db)
	ctx := context.Background()

	event := &billingModel.BillingEvent{
		ID:             "be-1",
		OrganizationID: "org-1",
		EventID:        "evt_12345",
		EventType:      billingModel.EventSubscriptionCreated,
	}
	inserted, err := repo.AppendEvent(ctx, event)
	require.NoError(t, err)
	assert.True(t, inserted)

	// Redelivery of the same provider event is dropped, not duplicated.
	redelivery := &billingModel.BillingEvent{
		ID:             "be-2",
		OrganizationID: "org-1",
		EventID:        "evt_12345",
		EventType:      billingModel.EventSubscriptionCreated,
	}
	inserted, err = repo.AppendEvent(ctx, redelivery)
	require.NoError(t, err)
	assert.False(t, inserted)

	var count int64
	require.NoError(t, db.Model(&billingModel.BillingEvent{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
