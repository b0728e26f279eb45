package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/engine"
	"github.com/mmynk/settleup/internal/events"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/recompute"
	"github.com/mmynk/settleup/internal/storage/sqlite"
	"github.com/mmynk/settleup/pkg/api"
)

type testClients struct {
	auth       *api.AuthServiceClient
	ledger     *api.LedgerServiceClient
	settlement *api.SettlementServiceClient
}

// setupTestServer wires every service against a temp SQLite database, an
// in-process event bus and a running recompute worker.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	bus := events.NewLocalBus()
	eng := engine.New(store)
	cache, err := recompute.NewCache(16)
	if err != nil {
		t.Fatalf("failed to create cache: %v", err)
	}
	worker := recompute.NewWorker(bus, eng, cache, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(ctx)
	}()

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	interceptors := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.RequireAuth(jwtManager, api.PublicProcedures),
	)

	mux := http.NewServeMux()
	mux.Handle(api.NewAuthServiceHandler(
		NewAuthService(auth.NewPasswordAuthenticator(store, bcrypt.MinCost), jwtManager, store),
		interceptors,
	))
	mux.Handle(api.NewLedgerServiceHandler(NewLedgerService(store, bus, nil), interceptors))
	mux.Handle(api.NewSettlementServiceHandler(NewSettlementService(store, eng, worker, bus, nil), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
		bus.Close()
		store.Close()
	})

	return &testClients{
		auth:       api.NewAuthServiceClient(http.DefaultClient, server.URL),
		ledger:     api.NewLedgerServiceClient(http.DefaultClient, server.URL),
		settlement: api.NewSettlementServiceClient(http.DefaultClient, server.URL),
	}
}

// account is a registered user and their bearer token.
type account struct {
	id    string
	email string
	token string
}

func (c *testClients) register(t *testing.T, name string) account {
	t.Helper()
	email := name + "@example.com"
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&api.RegisterRequest{
		Email:       email,
		DisplayName: name,
		Password:    "password123",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", name, err)
	}
	return account{id: resp.Msg.User.ID, email: email, token: resp.Msg.Token}
}

// as builds a request authenticated as a.
func as[T any](a account, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+a.token)
	return req
}

// newGroup creates a group owned by the first account and adds the rest.
func (c *testClients) newGroup(t *testing.T, owner account, others ...account) string {
	t.Helper()
	ctx := context.Background()

	resp, err := c.ledger.CreateGroup(ctx, as(owner, &api.CreateGroupRequest{Name: "Trip"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := resp.Msg.Group.ID

	for _, other := range others {
		if _, err := c.ledger.AddMember(ctx, as(owner, &api.AddMemberRequest{GroupID: groupID, Email: other.email})); err != nil {
			t.Fatalf("AddMember(%s) failed: %v", other.email, err)
		}
	}
	return groupID
}

func (c *testClients) pay(t *testing.T, payer account, groupID string, amount float64, shares ...api.Share) api.Expense {
	t.Helper()
	resp, err := c.ledger.CreateExpense(context.Background(), as(payer, &api.CreateExpenseRequest{
		GroupID:     groupID,
		Description: "expense",
		Amount:      amount,
		Shares:      shares,
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	return resp.Msg.Expense
}

func wantCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil error", code)
	}
	if got := connect.CodeOf(err); got != code {
		t.Fatalf("expected %v, got %v (%v)", code, got, err)
	}
}
