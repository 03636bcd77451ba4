package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/savings-group-ledger/internal/domain/cycle"
)

const (
	// ClosureCollectionName is the name of the cycle closure collection in MongoDB
	ClosureCollectionName = "cycle_closures"
)

// closureDoc mirrors cycle.Closure with decimal amounts stored as strings,
// since the BSON codec has no native decimal.Decimal support
type closureDoc struct {
	ID                uuid.UUID   `bson:"id"`
	GroupID           uuid.UUID   `bson:"group_id"`
	CycleNumber       int         `bson:"cycle_number"`
	CycleStart        time.Time   `bson:"cycle_start"`
	CycleEnd          time.Time   `bson:"cycle_end"`
	TotalSavings      string      `bson:"total_savings"`
	InterestCollected string      `bson:"interest_collected"`
	FinesCollected    string      `bson:"fines_collected"`
	OperatingExpenses string      `bson:"operating_expenses"`
	NetProfit         string      `bson:"net_profit"`
	Details           []detailDoc `bson:"details"`
	CorrelationID     string      `bson:"correlation_id,omitempty"`
	ClosedAt          time.Time   `bson:"closed_at"`
}

type detailDoc struct {
	MemberID        uuid.UUID `bson:"member_id"`
	MemberName      string    `bson:"member_name"`
	Savings         string    `bson:"savings"`
	ProfitShare     string    `bson:"profit_share"`
	TotalWithdrawal string    `bson:"total_withdrawal"`
}

func toClosureDoc(c *cycle.Closure) closureDoc {
	details := make([]detailDoc, 0, len(c.Details))
	for _, d := range c.Details {
		details = append(details, detailDoc{
			MemberID:        d.MemberID,
			MemberName:      d.MemberName,
			Savings:         d.Savings.String(),
			ProfitShare:     d.ProfitShare.String(),
			TotalWithdrawal: d.TotalWithdrawal.String(),
		})
	}
	return closureDoc{
		ID:                c.ID,
		GroupID:           c.GroupID,
		CycleNumber:       c.CycleNumber,
		CycleStart:        c.CycleStart,
		CycleEnd:          c.CycleEnd,
		TotalSavings:      c.TotalSavings.String(),
		InterestCollected: c.InterestCollected.String(),
		FinesCollected:    c.FinesCollected.String(),
		OperatingExpenses: c.OperatingExpenses.String(),
		NetProfit:         c.NetProfit.String(),
		Details:           details,
		CorrelationID:     c.CorrelationID,
		ClosedAt:          c.ClosedAt,
	}
}

func fromClosureDoc(doc closureDoc) (*cycle.Closure, error) {
	parse := func(s string) (decimal.Decimal, error) {
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	}

	c := &cycle.Closure{
		ID:            doc.ID,
		GroupID:       doc.GroupID,
		CycleNumber:   doc.CycleNumber,
		CycleStart:    doc.CycleStart,
		CycleEnd:      doc.CycleEnd,
		CorrelationID: doc.CorrelationID,
		ClosedAt:      doc.ClosedAt,
	}

	var err error
	if c.TotalSavings, err = parse(doc.TotalSavings); err != nil {
		return nil, fmt.Errorf("invalid total_savings: %w", err)
	}
	if c.InterestCollected, err = parse(doc.InterestCollected); err != nil {
		return nil, fmt.Errorf("invalid interest_collected: %w", err)
	}
	if c.FinesCollected, err = parse(doc.FinesCollected); err != nil {
		return nil, fmt.Errorf("invalid fines_collected: %w", err)
	}
	if c.OperatingExpenses, err = parse(doc.OperatingExpenses); err != nil {
		return nil, fmt.Errorf("invalid operating_expenses: %w", err)
	}
	if c.NetProfit, err = parse(doc.NetProfit); err != nil {
		return nil, fmt.Errorf("invalid net_profit: %w", err)
	}

	c.Details = make([]cycle.Detail, 0, len(doc.Details))
	for _, d := range doc.Details {
		detail := cycle.Detail{MemberID: d.MemberID, MemberName: d.MemberName}
		if detail.Savings, err = parse(d.Savings); err != nil {
			return nil, fmt.Errorf("invalid detail savings: %w", err)
		}
		if detail.ProfitShare, err = parse(d.ProfitShare); err != nil {
			return nil, fmt.Errorf("invalid detail profit_share: %w", err)
		}
		if detail.TotalWithdrawal, err = parse(d.TotalWithdrawal); err != nil {
			return nil, fmt.Errorf("invalid detail total_withdrawal: %w", err)
		}
		c.Details = append(c.Details, detail)
	}

	return c, nil
}

// ClosureRepository implements the cycle.Repository interface for MongoDB
type ClosureRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewClosureRepository creates a new MongoDB cycle closure repository
func NewClosureRepository(logger *slog.Logger, db *mongo.Database) cycle.Repository {
	return &ClosureRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a closure after checking the cycle was not already closed
func (r *ClosureRepository) Create(ctx context.Context, c *cycle.Closure) error {
	collection := r.db.Collection(ClosureCollectionName)

	existing, err := r.GetByGroupAndCycle(ctx, c.GroupID, c.CycleNumber)
	if err != nil && !errors.Is(err, cycle.ErrClosureNotFound{}) {
		r.logger.Error("Failed to check for existing closure",
			"group_id", c.GroupID.String(),
			"cycle", c.CycleNumber,
			"error", err)
		return fmt.Errorf("failed to check for existing closure: %w", err)
	}

	if existing != nil {
		return cycle.ErrDuplicateClosure{GroupID: c.GroupID, CycleNumber: c.CycleNumber}
	}

	if _, err := collection.InsertOne(ctx, toClosureDoc(c)); err != nil {
		r.logger.Error("Failed to create closure",
			"group_id", c.GroupID.String(),
			"cycle", c.CycleNumber,
			"error", err)
		return fmt.Errorf("failed to create closure: %w", err)
	}

	return nil
}

// GetByGroupAndCycle retrieves one closure record
func (r *ClosureRepository) GetByGroupAndCycle(ctx context.Context, groupID uuid.UUID, cycleNumber int) (*cycle.Closure, error) {
	collection := r.db.Collection(ClosureCollectionName)

	filter := bson.M{"group_id": groupID, "cycle_number": cycleNumber}
	var doc closureDoc
	err := collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cycle.ErrClosureNotFound{GroupID: groupID, CycleNumber: cycleNumber}
		}
		r.logger.Error("Failed to get closure",
			"group_id", groupID.String(),
			"cycle", cycleNumber,
			"error", err)
		return nil, fmt.Errorf("failed to get closure: %w", err)
	}

	return fromClosureDoc(doc)
}

// ListByGroup retrieves paginated closures for a group, newest cycle first
func (r *ClosureRepository) ListByGroup(ctx context.Context, groupID uuid.UUID, limit, offset int) ([]*cycle.Closure, error) {
	collection := r.db.Collection(ClosureCollectionName)

	opts := options.Find().
		SetSort(bson.D{{Key: "cycle_number", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := collection.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		r.logger.Error("Failed to find closures",
			"group_id", groupID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to find closures: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []closureDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode closures: %w", err)
	}

	closures := make([]*cycle.Closure, 0, len(docs))
	for _, doc := range docs {
		c, err := fromClosureDoc(doc)
		if err != nil {
			return nil, err
		}
		closures = append(closures, c)
	}

	return closures, nil
}
