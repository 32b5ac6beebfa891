package store

import (
	"context"
	"testing"

	"github.com/laurenmk/stockdock/internal/db"
	"github.com/laurenmk/stockdock/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "lauren", "hash", model.RoleAdmin)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.Username != "lauren" || user.Role != model.RoleAdmin {
		t.Errorf("unexpected user: %+v", user)
	}

	got, err := GetUserByUsername(ctx, database, "lauren")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got == nil || got.ID != user.ID {
		t.Errorf("expected user %d, got %+v", user.ID, got)
	}

	got, err = GetUser(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got == nil || got.Username != "lauren" {
		t.Errorf("unexpected user by id: %+v", got)
	}
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if _, err := CreateUser(ctx, database, "lauren", "hash", model.RoleTruck); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := CreateUser(ctx, database, "lauren", "hash", model.RoleTruck); err == nil {
		t.Error("expected error for duplicate username")
	}
}

func TestDeleteUserSoftDeletes(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "lauren", "hash", model.RoleTruck)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	got, err := GetUserByUsername(ctx, database, "lauren")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got != nil {
		t.Error("expected deleted user to be invisible")
	}

	// Username is free again after deletion.
	if _, err := CreateUser(ctx, database, "lauren", "hash", model.RoleTruck); err != nil {
		t.Errorf("expected username reusable after delete, got %v", err)
	}
}

func TestListUsersExcludesDeleted(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "zed", "hash", model.RoleTruck)
	alex, _ := CreateUser(ctx, database, "alex", "hash", model.RoleAdmin)
	gone, _ := CreateUser(ctx, database, "gone", "hash", model.RoleTruck)
	DeleteUser(ctx, database, gone.ID)

	users, err := ListUsers(ctx, database)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].ID != alex.ID || users[1].Username != "zed" {
		t.Errorf("unexpected order: %+v", users)
	}
}

func TestUpdateUserPassword(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "lauren", "oldhash", model.RoleTruck)
	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}

	got, _ := GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected new hash, got %q", got.PasswordHash)
	}
}
