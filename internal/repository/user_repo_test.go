package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/onboardhq/onboard/internal/model"
)

func TestUserRepository_FirstUserBecomesAdmin(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	first := &model.User{Username: "alice", Email: "alice@corp.com", FullName: "Alice", PasswordHash: "x"}
	if err := repo.CreateWithInitialRole(ctx, first); err != nil {
		t.Fatalf("create first user: %v", err)
	}
	if first.Role != model.RoleAdmin {
		t.Fatalf("first user role = %q, want admin", first.Role)
	}
	if !first.IsActive {
		t.Fatal("first user not active")
	}

	second := &model.User{Username: "bob", Email: "bob@corp.com", FullName: "Bob", PasswordHash: "x"}
	if err := repo.CreateWithInitialRole(ctx, second); err != nil {
		t.Fatalf("create second user: %v", err)
	}
	if second.Role != model.RoleViewer {
		t.Fatalf("second user role = %q, want viewer", second.Role)
	}
}

func TestUserRepository_DuplicateSurfacesAsDuplicatedKey(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	u := &model.User{Username: "alice", Email: "alice@corp.com", FullName: "Alice", PasswordHash: "x"}
	if err := repo.CreateWithInitialRole(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := &model.User{Username: "alice", Email: "other@corp.com", FullName: "Alice 2", PasswordHash: "x"}
	if err := repo.CreateWithInitialRole(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("duplicate username error = %v, want ErrDuplicatedKey", err)
	}
}

func TestUserRepository_FindActiveByUsernameOrEmail(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &model.User{Username: "alice", Email: "alice@corp.com", FullName: "Alice", PasswordHash: "x"}
	if err := repo.CreateWithInitialRole(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	byUsername, err := repo.FindActiveByUsernameOrEmail(ctx, "alice")
	if err != nil || byUsername.ID != u.ID {
		t.Fatalf("lookup by username: %v %+v", err, byUsername)
	}
	byEmail, err := repo.FindActiveByUsernameOrEmail(ctx, "alice@corp.com")
	if err != nil || byEmail.ID != u.ID {
		t.Fatalf("lookup by email: %v %+v", err, byEmail)
	}
	// The email side tolerates whatever casing the user types.
	byCasedEmail, err := repo.FindActiveByUsernameOrEmail(ctx, "Alice@Corp.COM")
	if err != nil || byCasedEmail.ID != u.ID {
		t.Fatalf("lookup by cased email: %v %+v", err, byCasedEmail)
	}

	// Deactivated accounts must not resolve.
	if err := db.Model(&model.User{}).Where("id = ?", u.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := repo.FindActiveByUsernameOrEmail(ctx, "alice"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("inactive lookup error = %v, want ErrRecordNotFound", err)
	}
}

func TestUserRepository_ActiveStaffEmails(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	users := []model.User{
		{Username: "root", Email: "root@corp.com", FullName: "Root", PasswordHash: "x", Role: model.RoleAdmin, IsActive: true},
		{Username: "mgr", Email: "mgr@corp.com", FullName: "Manager", PasswordHash: "x", Role: model.RoleManager, IsActive: true},
		{Username: "viewer", Email: "viewer@corp.com", FullName: "Viewer", PasswordHash: "x", Role: model.RoleViewer, IsActive: true},
		{Username: "gone", Email: "gone@corp.com", FullName: "Gone", PasswordHash: "x", Role: model.RoleManager, IsActive: true},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			t.Fatalf("seed user %s: %v", users[i].Username, err)
		}
	}
	if err := db.Model(&model.User{}).Where("username = ?", "gone").Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	emails, err := repo.ActiveStaffEmails(ctx)
	if err != nil {
		t.Fatalf("staff emails: %v", err)
	}
	if len(emails) != 2 {
		t.Fatalf("staff emails = %v, want admin and manager only", emails)
	}
	for _, email := range emails {
		if email == "viewer@corp.com" || email == "gone@corp.com" {
			t.Fatalf("unexpected recipient %s", email)
		}
	}
}

func TestUserRepository_UpdatePasswordHashAndLastLogin(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	u := &model.User{Username: "alice", Email: "alice@corp.com", FullName: "Alice", PasswordHash: "old"}
	if err := repo.CreateWithInitialRole(ctx, u); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.UpdatePasswordHash(ctx, u.ID, "new"); err != nil {
		t.Fatalf("update hash: %v", err)
	}
	if err := repo.UpdateLastLogin(ctx, u.ID); err != nil {
		t.Fatalf("update last login: %v", err)
	}

	reloaded, err := repo.FindByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.PasswordHash != "new" {
		t.Fatalf("password hash = %q, want new", reloaded.PasswordHash)
	}
	if reloaded.LastLogin == nil {
		t.Fatal("last_login not stamped")
	}
}
