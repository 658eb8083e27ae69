package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/azhar1598/xplore-be/internal/domain"
	"github.com/azhar1598/xplore-be/pkg/errors"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Repository is the permanent per-owner insight store.
type Repository struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

func NewRepository(db *sql.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
		now:    time.Now,
		newID:  uuid.New,
	}
}

// FindLatest returns the newest record for (ownerID, businessName), or nil when
// none exists.
func (r *Repository) FindLatest(ctx context.Context, ownerID, businessName string) (*domain.InsightRecord, error) {
	query := `
		SELECT id, user_id, business_name, insights, created_at
		FROM business_insights
		WHERE user_id = $1 AND business_name = $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	record, err := scanRecord(r.db.QueryRowContext(ctx, query, ownerID, businessName))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewStoreError("failed to query latest insight", "find_latest", err)
	}
	return record, nil
}

// Insert stores record, assigning an ID and timestamp when they are unset.
func (r *Repository) Insert(ctx context.Context, record domain.InsightRecord) (*domain.InsightRecord, error) {
	if record.ID == uuid.Nil {
		record.ID = r.newID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = r.now().UTC()
	}

	payload, err := json.Marshal(record.Insight)
	if err != nil {
		return nil, fmt.Errorf("marshal insight: %w", err)
	}

	query := `
		INSERT INTO business_insights (id, user_id, business_name, insights, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query,
		record.ID, record.OwnerID, record.BusinessName, payload, record.CreatedAt,
	); err != nil {
		return nil, errors.NewStoreError("failed to insert insight", "insert", err)
	}

	r.logger.Debug("Insight record stored",
		zap.String("id", record.ID.String()),
		zap.String("owner", record.OwnerID),
		zap.String("business", record.BusinessName),
	)
	return &record, nil
}

// ListHistory returns records matching filter, newest first.
func (r *Repository) ListHistory(ctx context.Context, filter domain.HistoryFilter) ([]domain.InsightRecord, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.BusinessName != "" {
		args = append(args, filter.BusinessName)
		conditions = append(conditions, fmt.Sprintf("business_name = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	args = append(args, limit)

	var sb strings.Builder
	sb.WriteString("SELECT id, user_id, business_name, insights, created_at FROM business_insights")
	if len(conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conditions, " AND "))
	}
	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, errors.NewStoreError("failed to list insight history", "list_history", err)
	}
	defer rows.Close()

	records := make([]domain.InsightRecord, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, errors.NewStoreError("failed to scan insight history", "list_history", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStoreError("failed to iterate insight history", "list_history", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.InsightRecord, error) {
	var (
		record  domain.InsightRecord
		payload []byte
	)
	if err := row.Scan(&record.ID, &record.OwnerID, &record.BusinessName, &payload, &record.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &record.Insight); err != nil {
		return nil, fmt.Errorf("decode stored insight %s: %w", record.ID, err)
	}
	return &record, nil
}
