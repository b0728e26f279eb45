package api

import "time"

// User is a registered account.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member is a user on a group roster.
type Member struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Group is a roster of members sharing expenses.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Members   []Member  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// Share is one member's portion of an expense.
type Share struct {
	MemberID    string  `json:"member_id" validate:"required"`
	ShareAmount float64 `json:"share_amount" validate:"gte=0"`
	Paid        bool    `json:"paid,omitempty"`
}

// Expense is an amount paid by one member on behalf of the group.
type Expense struct {
	ID          string    `json:"id"`
	GroupID     string    `json:"group_id"`
	PayerID     string    `json:"payer_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Shares      []Share   `json:"shares"`
	CreatedAt   time.Time `json:"created_at"`
}

// MemberBalance is a member's net position in the unsettled window.
type MemberBalance struct {
	MemberID    string  `json:"member_id"`
	DisplayName string  `json:"display_name"`
	NetBalance  float64 `json:"net_balance"`
	TotalPaid   float64 `json:"total_paid"`
	TotalOwed   float64 `json:"total_owed"`
}

// Transfer is a payment from a debtor to a creditor.
type Transfer struct {
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

// Settlement is a proposed or decided transfer.
type Settlement struct {
	ID           string     `json:"id"`
	GroupID      string     `json:"group_id"`
	FromMemberID string     `json:"from_member"`
	ToMemberID   string     `json:"to_member"`
	Amount       float64    `json:"amount"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

// GroupSummary is a group's unsettled window.
type GroupSummary struct {
	GroupID        string          `json:"group_id"`
	Checkpoint     time.Time       `json:"checkpoint"`
	UnsettledCount int             `json:"unsettled_count"`
	UnsettledTotal float64         `json:"unsettled_total"`
	Balances       []MemberBalance `json:"balances"`
	Transfers      []Transfer      `json:"transfers"`
	ComputedAt     time.Time       `json:"computed_at"`
}

// MemberPosition is one member's balance and their part of the plan.
type MemberPosition struct {
	MemberID    string     `json:"member_id"`
	DisplayName string     `json:"display_name"`
	NetBalance  float64    `json:"net_balance"`
	Pays        []Transfer `json:"pays"`
	Receives    []Transfer `json:"receives"`
}

// AuthService messages.

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
	Password    string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User User `json:"user"`
}

// LedgerService messages.

type CreateGroupRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type AddMemberRequest struct {
	GroupID string `json:"group_id" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
}

type AddMemberResponse struct {
	Group Group `json:"group"`
}

// CreateExpenseRequest records an expense paid by the caller. Without shares
// the amount is split equally over the roster.
type CreateExpenseRequest struct {
	GroupID     string  `json:"group_id" validate:"required"`
	Description string  `json:"description" validate:"max=200"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Shares      []Share `json:"shares,omitempty" validate:"dive"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type GetExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID   string  `json:"expense_id" validate:"required"`
	Description string  `json:"description" validate:"max=200"`
	Amount      float64 `json:"amount" validate:"gt=0"`
}

type UpdateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expense_id" validate:"required"`
}

type DeleteExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

// SettlementService messages.

type GetBalancesRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetBalancesResponse struct {
	Balances []MemberBalance `json:"balances"`
}

type GetTransfersRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetTransfersResponse struct {
	Transfers []Transfer `json:"transfers"`
}

type GetGroupSummaryRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type GetGroupSummaryResponse struct {
	Summary GroupSummary `json:"summary"`
}

// GetMemberPositionRequest defaults MemberID to the caller.
type GetMemberPositionRequest struct {
	GroupID  string `json:"group_id" validate:"required"`
	MemberID string `json:"member_id,omitempty"`
}

type GetMemberPositionResponse struct {
	Position MemberPosition `json:"position"`
}

type ProposeSettlementsRequest struct {
	GroupID   string     `json:"group_id" validate:"required"`
	Transfers []Transfer `json:"transfers" validate:"required,min=1,dive"`
}

type ProposeSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type ProposeAllRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ProposeAllResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type ApproveSettlementRequest struct {
	SettlementID string `json:"settlement_id" validate:"required"`
}

type ApproveSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

type RejectSettlementRequest struct {
	SettlementID string `json:"settlement_id" validate:"required"`
}

type RejectSettlementResponse struct {
	Settlement Settlement `json:"settlement"`
}

type ListPendingSettlementsRequest struct{}

type ListPendingSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"group_id" validate:"required"`
}

type ListSettlementsResponse struct {
	Settlements []Settlement `json:"settlements"`
}
