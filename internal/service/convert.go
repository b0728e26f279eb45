package service

import (
	"time"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/engine"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/pkg/api"
)

func toAPIUser(u *models.User) api.User {
	return api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func toAPIGroup(g *models.Group) api.Group {
	members := make([]api.Member, len(g.Members))
	for i, m := range g.Members {
		members[i] = api.Member{ID: m.ID, DisplayName: m.DisplayName}
	}
	return api.Group{
		ID:        g.ID,
		Name:      g.Name,
		Members:   members,
		CreatedAt: g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) api.Expense {
	shares := make([]api.Share, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = api.Share{MemberID: s.MemberID, ShareAmount: s.Amount, Paid: s.Paid}
	}
	return api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		PayerID:     e.PayerID,
		Description: e.Description,
		Amount:      e.Amount,
		Shares:      shares,
		CreatedAt:   e.CreatedAt,
	}
}

func toAPIExpenses(expenses []*models.Expense) []api.Expense {
	out := make([]api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPIBalances(balances []calculator.MemberBalance) []api.MemberBalance {
	out := make([]api.MemberBalance, len(balances))
	for i, b := range balances {
		out[i] = api.MemberBalance{
			MemberID:    b.MemberID,
			DisplayName: b.DisplayName,
			NetBalance:  b.NetBalance,
			TotalPaid:   b.TotalPaid,
			TotalOwed:   b.TotalOwed,
		}
	}
	return out
}

func toAPITransfers(transfers []models.Transfer) []api.Transfer {
	out := make([]api.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = api.Transfer{From: t.From, To: t.To, Amount: t.Amount}
	}
	return out
}

func fromAPITransfers(transfers []api.Transfer) []models.Transfer {
	out := make([]models.Transfer, len(transfers))
	for i, t := range transfers {
		out[i] = models.Transfer{From: t.From, To: t.To, Amount: t.Amount}
	}
	return out
}

func toAPISettlement(s *models.Settlement) api.Settlement {
	return api.Settlement{
		ID:           s.ID,
		GroupID:      s.GroupID,
		FromMemberID: s.FromMemberID,
		ToMemberID:   s.ToMemberID,
		Amount:       s.Amount,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
		SettledAt:    s.SettledAt,
	}
}

func toAPISettlements(settlements []*models.Settlement) []api.Settlement {
	out := make([]api.Settlement, len(settlements))
	for i, s := range settlements {
		out[i] = toAPISettlement(s)
	}
	return out
}

func toAPISummary(s *engine.Summary) api.GroupSummary {
	return api.GroupSummary{
		GroupID:        s.GroupID,
		Checkpoint:     s.Checkpoint,
		UnsettledCount: s.UnsettledCount,
		UnsettledTotal: s.UnsettledTotal,
		Balances:       toAPIBalances(s.Balances),
		Transfers:      toAPITransfers(s.Transfers),
		ComputedAt:     s.ComputedAt,
	}
}

func toAPIPosition(p *engine.Position) api.MemberPosition {
	return api.MemberPosition{
		MemberID:    p.MemberID,
		DisplayName: p.DisplayName,
		NetBalance:  p.NetBalance,
		Pays:        toAPITransfers(p.Pays),
		Receives:    toAPITransfers(p.Receives),
	}
}
