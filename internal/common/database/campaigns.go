// internal/common/database/campaigns.go
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"campaign-orchestrator/internal/models"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

var ErrCampaignNotFound = errors.New("CAMPAIGN_NOT_FOUND")

const createCampaignsTable = `CREATE TABLE IF NOT EXISTS campaigns (
	product_id        TEXT PRIMARY KEY,
	correlation_id    TEXT NOT NULL,
	product_name      TEXT NOT NULL,
	status            TEXT NOT NULL,
	generation_method TEXT NOT NULL,
	document          JSONB NOT NULL,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const createCampaignsStatusIndex = `CREATE INDEX IF NOT EXISTS campaigns_status_created_idx ON campaigns (status, created_at DESC)`

// ArchivedCampaign is one finished generation.
type ArchivedCampaign struct {
	ProductID        string
	CorrelationID    string
	ProductName      string
	Status           models.CampaignStatusValue
	GenerationMethod models.GenerationMethod
	Document         *models.CampaignDocument
	CreatedAt        time.Time
}

// CampaignArchive stores finished campaign documents in Postgres.
type CampaignArchive struct {
	db *sql.DB
}

func NewCampaignArchive(db *sql.DB) *CampaignArchive {
	return &CampaignArchive{db: db}
}

// EnsureSchema creates the campaigns table if it does not exist.
func (a *CampaignArchive) EnsureSchema(ctx context.Context) error {
	for _, stmt := range []string{createCampaignsTable, createCampaignsStatusIndex} {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure campaigns schema: %w", err)
		}
	}
	return nil
}

func (a *CampaignArchive) Save(ctx context.Context, c ArchivedCampaign) error {
	doc, err := json.Marshal(c.Document)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO campaigns (product_id, correlation_id, product_name, status, generation_method, document)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (product_id) DO UPDATE
		SET status = EXCLUDED.status, generation_method = EXCLUDED.generation_method, document = EXCLUDED.document`,
		c.ProductID, c.CorrelationID, c.ProductName, string(c.Status), string(c.GenerationMethod), doc,
	)
	if err != nil {
		return fmt.Errorf("insert campaign %s: %w", c.ProductID, err)
	}
	return nil
}

func (a *CampaignArchive) Get(ctx context.Context, productID string) (*ArchivedCampaign, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT product_id, correlation_id, product_name, status, generation_method, document, created_at
		FROM campaigns WHERE product_id = $1`, productID)

	var (
		c      ArchivedCampaign
		status string
		method string
		raw    []byte
	)
	if err := row.Scan(&c.ProductID, &c.CorrelationID, &c.ProductName, &status, &method, &raw, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCampaignNotFound
		}
		return nil, fmt.Errorf("get campaign %s: %w", productID, err)
	}
	c.Status = models.CampaignStatusValue(status)
	c.GenerationMethod = models.GenerationMethod(method)

	var doc models.CampaignDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode campaign %s: %w", productID, err)
	}
	c.Document = &doc
	return &c, nil
}

// List returns the newest campaigns, optionally filtered by status.
func (a *CampaignArchive) List(ctx context.Context, status string, limit int) ([]models.CampaignSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `SELECT product_id, correlation_id, product_name, status, generation_method, created_at FROM campaigns`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	out := []models.CampaignSummary{}
	for rows.Next() {
		var (
			s      models.CampaignSummary
			st     string
			method string
		)
		if err := rows.Scan(&s.ProductID, &s.CorrelationID, &s.ProductName, &st, &method, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan campaign: %w", err)
		}
		s.Status = models.CampaignStatusValue(st)
		s.Progress = models.Progress(s.Status)
		s.GenerationMethod = models.GenerationMethod(method)
		out = append(out, s)
	}
	return out, rows.Err()
}
