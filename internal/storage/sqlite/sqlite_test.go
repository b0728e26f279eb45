package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/settleup/internal/apperrors"
	"github.com/mmynk/settleup/internal/models"
)

// tickingClock returns a clock that advances one second per call.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath, WithClock(tickingClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))))
	require.NoError(t, err, "Failed to create store")
	t.Cleanup(func() { store.Close() })
	return store
}

// seedGroup creates users and a group containing all of them.
func seedGroup(t *testing.T, store *SQLiteStore, names ...string) *models.Group {
	t.Helper()
	ctx := context.Background()

	group := &models.Group{Name: "Roommates"}
	for _, name := range names {
		user := models.NewUser(name+"@example.com", name, "hash")
		user.ID = name
		require.NoError(t, store.CreateUser(ctx, user))
		group.Members = append(group.Members, models.Member{ID: name, DisplayName: name})
	}
	require.NoError(t, store.CreateGroup(ctx, group))
	return group
}

func addExpense(t *testing.T, store *SQLiteStore, groupID, payer string, amount float64, shares map[string]float64) *models.Expense {
	t.Helper()

	expense := &models.Expense{GroupID: groupID, PayerID: payer, Description: "dinner", Amount: amount}
	for member, amt := range shares {
		expense.Shares = append(expense.Shares, models.Share{MemberID: member, Amount: amt})
	}
	require.NoError(t, store.CreateExpense(context.Background(), expense))
	return expense
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "twice.db")

	first, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, second.Ping(context.Background()))
	require.NoError(t, second.Close())
}

func TestGroups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	group := seedGroup(t, store, "alice", "bob")
	assert.NotEmpty(t, group.ID)
	assert.False(t, group.CreatedAt.IsZero())

	t.Run("GetGroup returns roster in join order", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Equal(t, "Roommates", got.Name)
		assert.Equal(t, []string{"alice", "bob"}, got.MemberIDs())
	})

	t.Run("AddGroupMember appends and ignores duplicates", func(t *testing.T) {
		carol := models.NewUser("carol@example.com", "Carol", "hash")
		require.NoError(t, store.CreateUser(ctx, carol))

		require.NoError(t, store.AddGroupMember(ctx, group.ID, carol.ID))
		require.NoError(t, store.AddGroupMember(ctx, group.ID, carol.ID))

		got, err := store.GetGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, got.Members, 3)
		assert.True(t, got.HasMember(carol.ID))
		assert.Equal(t, "Carol", got.DisplayNames()[carol.ID])
	})

	t.Run("unknown group and user are NotFound", func(t *testing.T) {
		_, err := store.GetGroup(ctx, "nonexistent-id")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		assert.ErrorIs(t, store.AddGroupMember(ctx, "nonexistent-id", "alice"), apperrors.ErrNotFound)
		assert.ErrorIs(t, store.AddGroupMember(ctx, group.ID, "nobody"), apperrors.ErrNotFound)
	})
}

func TestUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Dana@Example.com", "Dana", "hash")
	require.NoError(t, store.CreateUser(ctx, user))

	byEmail, err := store.GetUserByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana", byID.DisplayName)

	missing, err := store.GetUserByID(ctx, "nobody")
	assert.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, store.CreateUser(ctx, models.NewUser("dana@example.com", "Dup", "hash")), "email is unique")
}

func TestExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := seedGroup(t, store, "alice", "bob")

	expense := addExpense(t, store, group.ID, "alice", 100, map[string]float64{"alice": 40, "bob": 60})
	assert.NotEmpty(t, expense.ID)

	t.Run("GetExpense returns shares", func(t *testing.T) {
		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", got.PayerID)
		assert.Equal(t, 100.0, got.Amount)
		require.Len(t, got.Shares, 2)
		assert.Equal(t, "alice", got.Shares[0].MemberID)
		assert.Equal(t, 60.0, got.Shares[1].Amount)
		assert.False(t, got.Shares[1].Paid)
		assert.True(t, got.CreatedAt.Equal(expense.CreatedAt))
	})

	t.Run("ListExpensesSince is strict", func(t *testing.T) {
		all, err := store.ListExpensesSince(ctx, group.ID, time.Time{})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Len(t, all[0].Shares, 2)

		none, err := store.ListExpensesSince(ctx, group.ID, expense.CreatedAt)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("UpdateExpense changes description and amount", func(t *testing.T) {
		require.NoError(t, store.UpdateExpense(ctx, expense.ID, "groceries", 120))
		got, err := store.GetExpense(ctx, expense.ID)
		require.NoError(t, err)
		assert.Equal(t, "groceries", got.Description)
		assert.Equal(t, 120.0, got.Amount)
		assert.Len(t, got.Shares, 2, "shares are untouched")
	})

	t.Run("DeleteExpense cascades shares", func(t *testing.T) {
		other := addExpense(t, store, group.ID, "bob", 10, map[string]float64{"alice": 5})
		require.NoError(t, store.DeleteExpense(ctx, other.ID))

		_, err := store.GetExpense(ctx, other.ID)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
		assert.ErrorIs(t, store.DeleteExpense(ctx, other.ID), apperrors.ErrNotFound)

		list, err := store.ListExpenses(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("non-positive amount is rejected by the schema", func(t *testing.T) {
		bad := &models.Expense{GroupID: group.ID, PayerID: "alice", Description: "bad", Amount: 0}
		assert.Error(t, store.CreateExpense(ctx, bad))
	})
}

func TestSettlementLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := seedGroup(t, store, "alice", "bob", "carol")

	first := addExpense(t, store, group.ID, "alice", 90, map[string]float64{"alice": 30, "bob": 30, "carol": 30})
	second := addExpense(t, store, group.ID, "carol", 20, map[string]float64{"bob": 20})

	checkpoint, err := store.LatestApprovedSettlement(ctx, group.ID)
	require.NoError(t, err)
	assert.Nil(t, checkpoint, "no approved settlement yet")

	created, err := store.InsertPendingSettlements(ctx, group.ID, []models.Transfer{
		{From: "bob", To: "alice", Amount: 30},
		{From: "carol", To: "alice", Amount: 30},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, s := range created {
		assert.Equal(t, models.SettlementPending, s.Status)
		assert.Nil(t, s.SettledAt)
	}
	bobToAlice, carolToAlice := created[0], created[1]

	t.Run("pending inbox lists settlements for the creditor", func(t *testing.T) {
		inbox, err := store.ListPendingSettlementsFor(ctx, "alice")
		require.NoError(t, err)
		assert.Len(t, inbox, 2)

		empty, err := store.ListPendingSettlementsFor(ctx, "bob")
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("only the creditor may approve", func(t *testing.T) {
		_, err := store.ApproveSettlementAtomic(ctx, bobToAlice.ID, "bob", time.Now())
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		_, err = store.ApproveSettlementAtomic(ctx, "nonexistent-id", "alice", time.Now())
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	settledAt := second.CreatedAt.Add(time.Minute)
	approved, err := store.ApproveSettlementAtomic(ctx, bobToAlice.ID, "alice", settledAt)
	require.NoError(t, err)
	assert.Equal(t, models.SettlementApproved, approved.Status)
	require.NotNil(t, approved.SettledAt)

	t.Run("approval marks every debtor share in the window", func(t *testing.T) {
		for _, id := range []string{first.ID, second.ID} {
			e, err := store.GetExpense(ctx, id)
			require.NoError(t, err)
			for _, s := range e.Shares {
				assert.Equal(t, s.MemberID == "bob", s.Paid, "expense %s share %s", id, s.MemberID)
			}
		}
	})

	t.Run("approval advances the checkpoint", func(t *testing.T) {
		checkpoint, err := store.LatestApprovedSettlement(ctx, group.ID)
		require.NoError(t, err)
		require.NotNil(t, checkpoint)
		assert.True(t, checkpoint.Equal(settledAt.Truncate(time.Microsecond)))
	})

	t.Run("second approval fails and changes nothing", func(t *testing.T) {
		_, err := store.ApproveSettlementAtomic(ctx, bobToAlice.ID, "alice", settledAt.Add(time.Hour))
		assert.ErrorIs(t, err, apperrors.ErrInvalidState)

		got, err := store.GetSettlement(ctx, bobToAlice.ID)
		require.NoError(t, err)
		assert.True(t, got.SettledAt.Equal(*approved.SettledAt))
	})

	t.Run("reject leaves shares unpaid", func(t *testing.T) {
		_, err := store.RejectSettlement(ctx, carolToAlice.ID, "carol")
		assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)

		rejected, err := store.RejectSettlement(ctx, carolToAlice.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.SettlementRejected, rejected.Status)
		assert.Nil(t, rejected.SettledAt)

		e, err := store.GetExpense(ctx, first.ID)
		require.NoError(t, err)
		for _, s := range e.Shares {
			if s.MemberID == "carol" {
				assert.False(t, s.Paid)
			}
		}

		_, err = store.ApproveSettlementAtomic(ctx, carolToAlice.ID, "alice", time.Now())
		assert.ErrorIs(t, err, apperrors.ErrInvalidState, "rejected is terminal")
	})

	t.Run("group history lists every settlement", func(t *testing.T) {
		all, err := store.ListSettlementsByGroup(ctx, group.ID)
		require.NoError(t, err)
		assert.Len(t, all, 2)
	})
}

func TestApproveSettlementAtomic_ConcurrentApprovals(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := seedGroup(t, store, "alice", "bob")
	addExpense(t, store, group.ID, "alice", 100, map[string]float64{"bob": 60})

	created, err := store.InsertPendingSettlements(ctx, group.ID, []models.Transfer{{From: "bob", To: "alice", Amount: 60}})
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.ApproveSettlementAtomic(ctx, created[0].ID, "alice", time.Now())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, invalid int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case assert.ErrorIs(t, err, apperrors.ErrInvalidState):
			invalid++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, invalid)

	before := paidFlags(t, store, group.ID)
	later := addExpense(t, store, group.ID, "alice", 20, map[string]float64{"bob": 20})
	_, err = store.ApproveSettlementAtomic(ctx, created[0].ID, "alice", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	after := paidFlags(t, store, group.ID)
	for key, paid := range before {
		assert.Equal(t, paid, after[key], "share %s", key)
	}
	assert.False(t, after[later.ID+"/bob"])
}

// paidFlags maps "expenseID/memberID" to the share's paid flag.
func paidFlags(t *testing.T, store *SQLiteStore, groupID string) map[string]bool {
	t.Helper()
	expenses, err := store.ListExpenses(context.Background(), groupID)
	require.NoError(t, err)

	flags := make(map[string]bool)
	for _, e := range expenses {
		for _, s := range e.Shares {
			flags[e.ID+"/"+s.MemberID] = s.Paid
		}
	}
	return flags
}

func TestApproveSettlementAtomic_WindowEndsAtSettledAt(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	group := seedGroup(t, store, "alice", "bob")

	first := addExpense(t, store, group.ID, "alice", 100, map[string]float64{"bob": 60})
	created, err := store.InsertPendingSettlements(ctx, group.ID, []models.Transfer{{From: "bob", To: "alice", Amount: 60}})
	require.NoError(t, err)
	second := addExpense(t, store, group.ID, "alice", 50, map[string]float64{"bob": 50})

	settledAt := second.CreatedAt.Add(-time.Millisecond)
	_, err = store.ApproveSettlementAtomic(ctx, created[0].ID, "alice", settledAt)
	require.NoError(t, err)

	flags := paidFlags(t, store, group.ID)
	assert.True(t, flags[first.ID+"/bob"], "share before settled_at is paid")
	assert.False(t, flags[second.ID+"/bob"], "share after settled_at stays unpaid")

	next, err := store.ListExpensesSince(ctx, group.ID, settledAt)
	require.NoError(t, err)
	require.Len(t, next, 1)
	assert.Equal(t, second.ID, next[0].ID)
	assert.False(t, next[0].Shares[0].Paid)
}
