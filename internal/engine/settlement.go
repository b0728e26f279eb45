package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

// Propose records each transfer as a pending settlement. The caller must be
// the debtor of every transfer; the whole batch is rejected otherwise.
func (e *Engine) Propose(ctx context.Context, groupID, callerID string, transfers []models.Transfer) (settlements []*models.Settlement, err error) {
	defer func() { e.metrics.SettlementTransition(string(models.SettlementPending), err) }()

	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	if err := validateProposal(group, callerID, transfers); err != nil {
		return nil, err
	}

	settlements, err = e.store.InsertPendingSettlements(ctx, groupID, transfers)
	if err != nil {
		return nil, apperrors.Store(err)
	}

	slog.Info("Settlements proposed",
		"group_id", groupID,
		"caller_id", callerID,
		"count", len(settlements),
	)
	return settlements, nil
}

func validateProposal(group *models.Group, callerID string, transfers []models.Transfer) error {
	if len(transfers) == 0 {
		return fmt.Errorf("no transfers to propose: %w", apperrors.ErrValidation)
	}
	for i, t := range transfers {
		if t.From != callerID {
			return fmt.Errorf("transfer %d is owed by %s, not the caller: %w", i, t.From, apperrors.ErrPermissionDenied)
		}
		if t.Amount <= 0 {
			return fmt.Errorf("transfer %d: amount must be positive: %w", i, apperrors.ErrValidation)
		}
		if t.To == t.From {
			return fmt.Errorf("transfer %d: cannot settle with yourself: %w", i, apperrors.ErrValidation)
		}
		if !group.HasMember(t.To) {
			return fmt.Errorf("transfer %d: %s is not a member of the group: %w", i, t.To, apperrors.ErrValidation)
		}
	}
	return nil
}

// ProposeAll proposes every transfer in the current plan that the caller owes.
func (e *Engine) ProposeAll(ctx context.Context, groupID, callerID string) ([]*models.Settlement, error) {
	w, err := e.load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var owed []models.Transfer
	for _, t := range calculator.SimplifyDebts(w.balances) {
		if t.From == callerID {
			owed = append(owed, t)
		}
	}
	if len(owed) == 0 {
		return nil, fmt.Errorf("member %s owes nothing in group %s: %w", callerID, groupID, apperrors.ErrValidation)
	}

	return e.Propose(ctx, groupID, callerID, owed)
}

// Approve confirms a pending settlement addressed to callerID. The status
// change, settled_at and the debtor's shares in the current window are
// written in one store transaction, so of two concurrent approvals exactly
// one succeeds.
func (e *Engine) Approve(ctx context.Context, settlementID, callerID string) (settlement *models.Settlement, err error) {
	defer func() { e.metrics.SettlementTransition(string(models.SettlementApproved), err) }()

	settlement, err = e.store.ApproveSettlementAtomic(ctx, settlementID, callerID, e.now())
	if err != nil {
		slog.Warn("Approve failed", "settlement_id", settlementID, "caller_id", callerID, "error", err)
		return nil, apperrors.Store(err)
	}

	slog.Info("Settlement approved",
		"settlement_id", settlement.ID,
		"group_id", settlement.GroupID,
		"from", settlement.FromMemberID,
		"to", settlement.ToMemberID,
		"amount", settlement.Amount,
	)
	return settlement, nil
}

// Reject declines a pending settlement addressed to callerID. Shares and the
// checkpoint are unaffected.
func (e *Engine) Reject(ctx context.Context, settlementID, callerID string) (settlement *models.Settlement, err error) {
	defer func() { e.metrics.SettlementTransition(string(models.SettlementRejected), err) }()

	settlement, err = e.store.RejectSettlement(ctx, settlementID, callerID)
	if err != nil {
		slog.Warn("Reject failed", "settlement_id", settlementID, "caller_id", callerID, "error", err)
		return nil, apperrors.Store(err)
	}

	slog.Info("Settlement rejected", "settlement_id", settlement.ID, "group_id", settlement.GroupID)
	return settlement, nil
}

// GetSettlement returns a settlement by ID.
func (e *Engine) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	settlement, err := e.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return settlement, nil
}

// ListPending returns the pending settlements awaiting memberID's decision.
func (e *Engine) ListPending(ctx context.Context, memberID string) ([]*models.Settlement, error) {
	settlements, err := e.store.ListPendingSettlementsFor(ctx, memberID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return settlements, nil
}

// ListSettlements returns every settlement of a group, newest first.
func (e *Engine) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	if _, err := e.store.GetGroup(ctx, groupID); err != nil {
		return nil, apperrors.Store(err)
	}
	settlements, err := e.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return nil, apperrors.Store(err)
	}
	return settlements, nil
}
