package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/souqly/backend/internal/domain/onboarding"
	"github.com/souqly/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockLedgerRepository creates a repository backed by a mocked SQL connection
func newMockLedgerRepository(t *testing.T) (*GormLedgerRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLedgerRepository(gormDB), mock, mockDB
}

func ledgerColumns() []string {
	return []string{
		"id", "created_at", "updated_at",
		"application_id", "vendor_id", "transaction_id",
		"amount", "currency", "confirmation_ref", "verified_at",
	}
}

func newLedgerEntry() *onboarding.PaymentLedgerEntry {
	return &onboarding.PaymentLedgerEntry{
		BaseEntity:      shared.NewBaseEntity(),
		ApplicationID:   uuid.New(),
		VendorID:        uuid.New(),
		TransactionID:   "IPN-20260830-001",
		Amount:          decimal.RequireFromString("499.00"),
		Currency:        "EGP",
		ConfirmationRef: "CONF-7781",
		VerifiedAt:      time.Now(),
	}
}

func TestGormLedgerRepository_FindByTransactionID(t *testing.T) {
	t.Run("returns entry when found", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		appID := uuid.New()
		vendorID := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT \* FROM "payment_ledger" WHERE transaction_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("IPN-20260830-001", 1).
			WillReturnRows(sqlmock.NewRows(ledgerColumns()).
				AddRow(id, now, now, appID, vendorID, "IPN-20260830-001",
					"499.00", "EGP", "CONF-7781", now))

		entry, err := repo.FindByTransactionID(context.Background(), "IPN-20260830-001")
		require.NoError(t, err)
		assert.Equal(t, "IPN-20260830-001", entry.TransactionID)
		assert.Equal(t, vendorID, entry.VendorID)
		assert.True(t, entry.Amount.Equal(decimal.RequireFromString("499.00")))
		assert.Equal(t, "CONF-7781", entry.ConfirmationRef)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when missing", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "payment_ledger" WHERE transaction_id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs("IPN-UNKNOWN", 1).
			WillReturnRows(sqlmock.NewRows(ledgerColumns()))

		entry, err := repo.FindByTransactionID(context.Background(), "IPN-UNKNOWN")
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_Save(t *testing.T) {
	t.Run("inserts a new entry", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "payment_ledger"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), newLedgerEntry())
		assert.NoError(t, err)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate transaction ID fails with ErrAlreadyExists", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "payment_ledger"`).
			WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "idx_payment_ledger_transaction_id"`))

		err := repo.Save(context.Background(), newLedgerEntry())
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other insert errors pass through", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "payment_ledger"`).
			WillReturnError(errors.New("connection refused"))

		err := repo.Save(context.Background(), newLedgerEntry())
		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrAlreadyExists)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerRepository_CountByVendor(t *testing.T) {
	t.Run("counts entries for a vendor", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		vendorID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "payment_ledger" WHERE vendor_id = \$1`).
			WithArgs(vendorID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		count, err := repo.CountByVendor(context.Background(), vendorID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
