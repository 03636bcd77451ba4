// Package mongo provides MongoDB implementations of the archive
// repositories. Alerts and cycle closures are written once and never
// mutated.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/savings-group-ledger/internal/domain/alert"
)

const (
	// AlertCollectionName is the name of the alert collection in MongoDB
	AlertCollectionName = "delinquency_alerts"
)

// AlertRepository implements the alert.Repository interface for MongoDB
type AlertRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewAlertRepository creates a new MongoDB alert repository
func NewAlertRepository(logger *slog.Logger, db *mongo.Database) alert.Repository {
	return &AlertRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new alert after checking for duplicates. Returns
// ErrDuplicateAlert if an alert with the same ID exists, which makes outbox
// redelivery idempotent.
func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	collection := r.db.Collection(AlertCollectionName)

	existing, err := r.GetByID(ctx, a.ID)
	if err != nil && !errors.Is(err, alert.ErrAlertNotFound{}) {
		r.logger.Error("Failed to check for existing alert",
			"alert_id", a.ID.String(),
			"error", err)
		return fmt.Errorf("failed to check for existing alert: %w", err)
	}

	if existing != nil {
		return alert.ErrDuplicateAlert{AlertID: a.ID}
	}

	if _, err := collection.InsertOne(ctx, a); err != nil {
		r.logger.Error("Failed to create alert",
			"alert_id", a.ID.String(),
			"error", err)
		return fmt.Errorf("failed to create alert: %w", err)
	}

	return nil
}

// GetByID retrieves an alert by its ID
func (r *AlertRepository) GetByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	collection := r.db.Collection(AlertCollectionName)

	filter := bson.M{"id": id}
	var a alert.Alert
	err := collection.FindOne(ctx, filter).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, alert.ErrAlertNotFound{AlertID: id}
		}
		r.logger.Error("Failed to get alert",
			"alert_id", id.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return &a, nil
}

// GetByGroupID retrieves paginated alerts for a group, newest first
func (r *AlertRepository) GetByGroupID(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*alert.Alert, error) {
	collection := r.db.Collection(AlertCollectionName)

	filter := bson.M{"group_id": groupID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to find alerts",
			"group_id", groupID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to find alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []*alert.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}

	return alerts, nil
}

// CountByGroupID counts the group's alerts for pagination metadata
func (r *AlertRepository) CountByGroupID(ctx context.Context, groupID uuid.UUID) (int64, error) {
	collection := r.db.Collection(AlertCollectionName)

	count, err := collection.CountDocuments(ctx, bson.M{"group_id": groupID})
	if err != nil {
		r.logger.Error("Failed to count alerts",
			"group_id", groupID.String(),
			"error", err)
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	return count, nil
}

// GetByLoanID retrieves the alert history of one loan, newest first
func (r *AlertRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*alert.Alert, error) {
	collection := r.db.Collection(AlertCollectionName)

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := collection.Find(ctx, bson.M{"loan_id": loanID}, opts)
	if err != nil {
		r.logger.Error("Failed to find alerts for loan",
			"loan_id", loanID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to find alerts for loan: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []*alert.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("failed to decode alerts: %w", err)
	}

	return alerts, nil
}
