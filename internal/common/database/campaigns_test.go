package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"campaign-orchestrator/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestCampaignArchive_EnsureSchema(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS campaigns`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS campaigns_status_created_idx`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewCampaignArchive(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignArchive_Save(t *testing.T) {
	db, mock := setupMockDB(t)
	doc := &models.CampaignDocument{Product: models.ProductSummary{Description: "EcoSmart Bottle keeps drinks cold"}}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO campaigns`)).
		WithArgs("p-1", "corr-1", "EcoSmart Bottle", "completed", "tier2_synthesis", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := NewCampaignArchive(db).Save(context.Background(), ArchivedCampaign{
		ProductID:        "p-1",
		CorrelationID:    "corr-1",
		ProductName:      "EcoSmart Bottle",
		Status:           models.StatusCompleted,
		GenerationMethod: models.MethodTier2Synthesis,
		Document:         doc,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignArchive_SaveError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO campaigns`)).
		WillReturnError(errors.New("postgres: connection refused"))

	err := NewCampaignArchive(db).Save(context.Background(), ArchivedCampaign{ProductID: "p-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p-2")
}

func TestCampaignArchive_Get(t *testing.T) {
	db, mock := setupMockDB(t)
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT product_id, correlation_id, product_name, status, generation_method, document, created_at`).
		WithArgs("p-3").
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "correlation_id", "product_name", "status", "generation_method", "document", "created_at"}).
			AddRow("p-3", "corr-3", "Desk Lamp", "completed", "tier1_agent", []byte(`{"product":{"description":"A warm desk lamp for late nights"}}`), created))

	got, err := NewCampaignArchive(db).Get(context.Background(), "p-3")
	require.NoError(t, err)
	assert.Equal(t, models.MethodTier1Agent, got.GenerationMethod)
	assert.Equal(t, "A warm desk lamp for late nights", got.Document.Product.Description)
	assert.Equal(t, created, got.CreatedAt)
}

func TestCampaignArchive_GetNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT product_id`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := NewCampaignArchive(db).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestCampaignArchive_List(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	columns := []string{"product_id", "correlation_id", "product_name", "status", "generation_method", "created_at"}

	tests := []struct {
		name      string
		status    string
		limit     int
		wantQuery string
		wantArgs  []driver.Value
	}{
		{
			name:      "filtered by status",
			status:    "completed",
			limit:     5,
			wantQuery: `FROM campaigns WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2`,
			wantArgs:  []driver.Value{"completed", 5},
		},
		{
			name:      "default limit",
			wantQuery: `FROM campaigns ORDER BY created_at DESC LIMIT \$1`,
			wantArgs:  []driver.Value{DefaultListLimit},
		},
		{
			name:      "limit clamped",
			limit:     10000,
			wantQuery: `FROM campaigns ORDER BY created_at DESC LIMIT \$1`,
			wantArgs:  []driver.Value{MaxListLimit},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			mock.ExpectQuery(tt.wantQuery).WithArgs(tt.wantArgs...).
				WillReturnRows(sqlmock.NewRows(columns).
					AddRow("p-1", "corr-1", "EcoSmart Bottle", "completed", "tier2_fallback", created))

			got, err := NewCampaignArchive(db).List(context.Background(), tt.status, tt.limit)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, 100, got[0].Progress)
			assert.Equal(t, models.MethodTier2Fallback, got[0].GenerationMethod)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
