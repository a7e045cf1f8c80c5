package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/FSE-2025/helpdesk-service/internal/auth"
	"github.com/FSE-2025/helpdesk-service/internal/cache"
	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

func newUserFixture(t *testing.T) (*mockRepository, *events.MockEventPublisher, UserService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	service := NewUserService(repo, nil, nil, publisher, logger, validator.New())
	return repo, publisher, service
}

func TestUserService_GetByID(t *testing.T) {
	ctx := context.Background()
	repo, _, service := newUserFixture(t)
	user := repo.addUser(&models.User{UserName: "alice", Email: "alice@example.com"})

	got, err := service.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.UserName != "alice" {
		t.Errorf("GetByID = %+v, want alice", got)
	}

	t.Run("missing user is nil without error", func(t *testing.T) {
		got, err := service.GetByID(ctx, 9999)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if got != nil {
			t.Errorf("GetByID = %+v, want nil", got)
		}
	})
}

func TestUserService_GrantRevokeRole(t *testing.T) {
	ctx := context.Background()

	t.Run("grant requires admin", func(t *testing.T) {
		repo, _, service := newUserFixture(t)
		staff := repo.addUser(&models.User{UserName: "staff", Email: "staff@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleStaff})})
		target := repo.addUser(&models.User{UserName: "stud", Email: "stud@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleStudent})})

		err := service.GrantRole(ctx, staff, target.ID, models.RoleReviewer)
		if !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("grant and revoke round trip", func(t *testing.T) {
		repo, publisher, service := newUserFixture(t)
		admin := repo.addUser(&models.User{UserName: "root", Email: "root@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleAdmin})})
		target := repo.addUser(&models.User{UserName: "stud", Email: "stud@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleStudent})})

		if err := service.GrantRole(ctx, admin, target.ID, models.RoleReviewer); err != nil {
			t.Fatalf("GrantRole: %v", err)
		}
		user, _ := repo.User().GetByID(ctx, nil, target.ID)
		if !user.Roles.Has(models.RoleReviewer) {
			t.Error("target should hold the reviewer role")
		}
		if len(publisher.GetPublishedEvents()) != 1 {
			t.Errorf("expected 1 event, got %d", len(publisher.GetPublishedEvents()))
		}

		if err := service.RevokeRole(ctx, admin, target.ID, models.RoleReviewer); err != nil {
			t.Fatalf("RevokeRole: %v", err)
		}
		user, _ = repo.User().GetByID(ctx, nil, target.ID)
		if user.Roles.Has(models.RoleReviewer) {
			t.Error("role should be revoked")
		}
	})

	t.Run("granting a held role publishes nothing", func(t *testing.T) {
		repo, publisher, service := newUserFixture(t)
		admin := repo.addUser(&models.User{UserName: "root", Email: "root@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleAdmin})})
		target := repo.addUser(&models.User{UserName: "stud", Email: "stud@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleStudent})})

		if err := service.GrantRole(ctx, admin, target.ID, models.RoleStudent); err != nil {
			t.Fatalf("GrantRole: %v", err)
		}
		if len(publisher.GetPublishedEvents()) != 0 {
			t.Error("idempotent grant must not publish")
		}
	})

	t.Run("revoking admin from the last admin is refused", func(t *testing.T) {
		repo, _, service := newUserFixture(t)
		admin := repo.addUser(&models.User{UserName: "root", Email: "root@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleAdmin})})

		err := service.RevokeRole(ctx, admin, admin.ID, models.RoleAdmin)
		if !errors.Is(err, ErrLastAdmin) {
			t.Fatalf("expected ErrLastAdmin, got %v", err)
		}
		user, _ := repo.User().GetByID(ctx, nil, admin.ID)
		if !user.Roles.Has(models.RoleAdmin) {
			t.Error("last admin must keep the role")
		}
	})

	t.Run("revoking admin succeeds with a second admin", func(t *testing.T) {
		repo, _, service := newUserFixture(t)
		first := repo.addUser(&models.User{UserName: "root1", Email: "root1@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleAdmin})})
		second := repo.addUser(&models.User{UserName: "root2", Email: "root2@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleAdmin})})

		if err := service.RevokeRole(ctx, first, second.ID, models.RoleAdmin); err != nil {
			t.Fatalf("RevokeRole: %v", err)
		}
		user, _ := repo.User().GetByID(ctx, nil, second.ID)
		if user.Roles.Has(models.RoleAdmin) {
			t.Error("admin role should be revoked")
		}
	})
}

func TestUserService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("self deletion is allowed", func(t *testing.T) {
		repo, publisher, service := newUserFixture(t)
		user := repo.addUser(&models.User{UserName: "alice", Email: "alice@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleUser})})

		if err := service.Delete(ctx, user, user.ID); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, err := repo.User().GetByID(ctx, nil, user.ID); err == nil {
			t.Error("user should be gone")
		}
		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventUserDeleted {
			t.Errorf("expected one %s event", events.EventUserDeleted)
		}
	})

	t.Run("deleting another user requires admin", func(t *testing.T) {
		repo, _, service := newUserFixture(t)
		alice := repo.addUser(&models.User{UserName: "alice", Email: "alice@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleUser})})
		bob := repo.addUser(&models.User{UserName: "bob", Email: "bob@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleUser})})

		err := service.Delete(ctx, alice, bob.ID)
		if !IsPermissionError(err) {
			t.Fatalf("expected permission error, got %v", err)
		}
	})

	t.Run("last admin cannot delete their own account", func(t *testing.T) {
		repo, _, service := newUserFixture(t)
		admin := repo.addUser(&models.User{UserName: "root", Email: "root@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleAdmin})})

		err := service.Delete(ctx, admin, admin.ID)
		if !errors.Is(err, ErrLastAdmin) {
			t.Fatalf("expected ErrLastAdmin, got %v", err)
		}
		if _, err := repo.User().GetByID(ctx, nil, admin.ID); err != nil {
			t.Error("last admin must survive")
		}
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	repo, _, service := newUserFixture(t)

	hash, err := auth.HashPassword("old-password")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user := repo.addUser(&models.User{UserName: "alice", Email: "alice@example.com", PasswordHash: hash})

	t.Run("wrong old password", func(t *testing.T) {
		err := service.ChangePassword(ctx, user.ID, "not-the-password", "new-password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("new password too short", func(t *testing.T) {
		err := service.ChangePassword(ctx, user.ID, "old-password", "short")
		if _, ok := err.(validator.ValidationErrors); !ok {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		if err := service.ChangePassword(ctx, user.ID, "old-password", "new-password"); err != nil {
			t.Fatalf("ChangePassword: %v", err)
		}
		stored, _ := repo.User().GetByID(ctx, nil, user.ID)
		ok, err := auth.VerifyPassword("new-password", stored.PasswordHash)
		if err != nil || !ok {
			t.Errorf("new password should verify, ok=%v err=%v", ok, err)
		}
	})
}

func TestUserService_Caching(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	caches := cache.NewCacheManager(client)

	service := NewUserService(repo, nil, caches, publisher, logger, validator.New())
	admin := repo.addUser(&models.User{UserName: "root", Email: "root@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleAdmin})})

	t.Run("listings are cached until a mutation", func(t *testing.T) {
		first, err := service.List(ctx, UserListFilters{})
		if err != nil || first.Total != 1 {
			t.Fatalf("List = %d users, err %v", first.Total, err)
		}

		// A write that bypasses the service stays invisible while the
		// listing cache is warm.
		bob := repo.addUser(&models.User{UserName: "bob", Email: "bob@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleUser})})
		stale, err := service.List(ctx, UserListFilters{})
		if err != nil || stale.Total != 1 {
			t.Fatalf("warm List = %d users, err %v", stale.Total, err)
		}

		// A role change through the service drops the listing cache.
		if err := service.GrantRole(ctx, admin, bob.ID, models.RoleStaff); err != nil {
			t.Fatalf("GrantRole: %v", err)
		}
		fresh, err := service.List(ctx, UserListFilters{})
		if err != nil || fresh.Total != 2 {
			t.Fatalf("List after invalidation = %d users, err %v", fresh.Total, err)
		}
	})

	t.Run("profile reads are cached until a mutation", func(t *testing.T) {
		alice := repo.addUser(&models.User{UserName: "alice", Email: "alice@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleUser})})

		got, err := service.GetByID(ctx, alice.ID)
		if err != nil || got == nil || got.UserName != "alice" {
			t.Fatalf("GetByID = %+v, err %v", got, err)
		}
		waitForCacheKey(t, caches.User, fmt.Sprintf("id:%d", alice.ID))

		// The store mutation bypasses the service, so the cached profile
		// still wins.
		alice.UserName = "renamed"
		got, err = service.GetByID(ctx, alice.ID)
		if err != nil || got == nil || got.UserName != "alice" {
			t.Fatalf("warm GetByID = %+v, err %v", got, err)
		}

		if err := service.GrantRole(ctx, admin, alice.ID, models.RoleReviewer); err != nil {
			t.Fatalf("GrantRole: %v", err)
		}
		got, err = service.GetByID(ctx, alice.ID)
		if err != nil || got == nil || got.UserName != "renamed" {
			t.Fatalf("GetByID after invalidation = %+v, err %v", got, err)
		}
	})
}

// waitForCacheKey blocks until the key appears. Population happens off the
// request goroutine, so tests have to wait for it before asserting hits.
func waitForCacheKey(t *testing.T, helper *cache.CacheHelper, key string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		ok, err := helper.Exists(context.Background(), key)
		if err != nil {
			t.Fatalf("cache exists check: %v", err)
		}
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("cache key %q was never populated", key)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
