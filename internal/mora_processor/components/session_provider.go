package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/savings-group-ledger/internal/domain/group"
	"github.com/savings-group-ledger/internal/domain/shared"
	"github.com/savings-group-ledger/internal/mora_processor/service"
)

// SessionProviderImpl implements the SessionProvider interface
type SessionProviderImpl struct {
	groupRepo group.Repository
	logger    *slog.Logger
}

// NewSessionProvider creates a new SessionProviderImpl
func NewSessionProvider(groupRepo group.Repository, logger *slog.Logger) service.SessionProvider {
	return &SessionProviderImpl{
		groupRepo: groupRepo,
		logger:    logger,
	}
}

// EnsureSession returns the session that fines issued by this scan attach
// to. The latest session is reused when it falls on the scan date; otherwise
// a synthetic session is opened, since scans run on a schedule rather than
// at meetings.
func (p *SessionProviderImpl) EnsureSession(ctx context.Context, tx pgx.Tx, request *shared.ScanRequest) (*group.Session, error) {
	repoTx := p.groupRepo.WithTx(tx)

	latest, err := repoTx.LatestSession(ctx, request.GroupID)
	if err != nil && !errors.Is(err, group.ErrNoSessions{GroupID: request.GroupID}) {
		return nil, fmt.Errorf("failed to load latest session for group %s: %w", request.GroupID.String(), err)
	}

	if latest != nil {
		ly, lm, ld := latest.Date.Date()
		ry, rm, rd := request.AsOf.Date()
		if ly == ry && lm == rm && ld == rd {
			return latest, nil
		}
	}

	session := group.NewSyntheticSession(request.GroupID, request.AsOf)
	if err := repoTx.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create synthetic session for group %s: %w", request.GroupID.String(), err)
	}

	p.logger.Info("Opened synthetic session for delinquency scan",
		"group_id", request.GroupID.String(),
		"session_id", session.ID.String(),
		"date", session.Date,
	)
	return session, nil
}
