package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/pkg/api"
)

func TestRegisterLoginAndCurrentUser(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	alice := c.register(t, "alice")
	if alice.id == "" || alice.token == "" {
		t.Fatalf("expected id and token, got %+v", alice)
	}

	login, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "Alice@Example.com",
		Password: "password123",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.Msg.User.ID != alice.id {
		t.Errorf("login user: expected %s, got %s", alice.id, login.Msg.User.ID)
	}

	me, err := c.auth.GetCurrentUser(ctx, as(account{token: login.Msg.Token}, &api.GetCurrentUserRequest{}))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.DisplayName != "alice" {
		t.Errorf("display name: expected 'alice', got '%s'", me.Msg.User.DisplayName)
	}
}

func TestRegister_Errors(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	c.register(t, "alice")

	_, err := c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "alice@example.com", DisplayName: "Alice", Password: "password123",
	}))
	wantCode(t, err, connect.CodeAlreadyExists)

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Password: "short",
	}))
	wantCode(t, err, connect.CodeInvalidArgument)

	_, err = c.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "not-an-email", DisplayName: "Bob", Password: "password123",
	}))
	wantCode(t, err, connect.CodeInvalidArgument)
}

func TestLogin_WrongPassword(t *testing.T) {
	c := setupTestServer(t)
	c.register(t, "alice")

	_, err := c.auth.Login(context.Background(), connect.NewRequest(&api.LoginRequest{
		Email: "alice@example.com", Password: "wrong-password",
	}))
	wantCode(t, err, connect.CodeUnauthenticated)
}

func TestProtectedProcedures_RequireToken(t *testing.T) {
	c := setupTestServer(t)

	_, err := c.ledger.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{Name: "Trip"}))
	wantCode(t, err, connect.CodeUnauthenticated)

	_, err = c.auth.GetCurrentUser(context.Background(), as(account{token: "garbage"}, &api.GetCurrentUserRequest{}))
	wantCode(t, err, connect.CodeUnauthenticated)
}
