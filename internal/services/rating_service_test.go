package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

func newRatingFixture(t *testing.T) (*mockRepository, *events.MockEventPublisher, RatingService) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(logger)
	service := NewRatingService(repo, nil, nil, publisher, logger, validator.New())
	return repo, publisher, service
}

func addReview(repo *mockRepository, reviewerID, ownerID uint, rating int) {
	_ = repo.Review().Create(context.Background(), nil, &models.Review{
		ReviewerID: reviewerID,
		UserID:     ownerID,
		Rating:     rating,
	})
}

func TestRatingService_RecomputeRating(t *testing.T) {
	ctx := context.Background()
	const reviewerID = uint(10)

	t.Run("no placements yields zero", func(t *testing.T) {
		_, _, service := newRatingFixture(t)

		got, err := service.RecomputeRating(ctx, reviewerID)
		if err != nil {
			t.Fatalf("RecomputeRating: %v", err)
		}
		if got.Rating != 0 {
			t.Errorf("Rating = %d, want 0", got.Rating)
		}
		if got.ListCount != 0 {
			t.Errorf("ListCount = %d, want 0", got.ListCount)
		}
	})

	t.Run("single top placement is smoothed", func(t *testing.T) {
		repo, _, service := newRatingFixture(t)

		// Rank 1 in a list of 1: position score 1.0, padded with one
		// 0.5 pseudo list. Mean 0.75 scales to 3.75, rounded to 4.
		addReview(repo, reviewerID, 1, 1)

		got, err := service.RecomputeRating(ctx, reviewerID)
		if err != nil {
			t.Fatalf("RecomputeRating: %v", err)
		}
		if got.Rating != 4 {
			t.Errorf("Rating = %d, want 4", got.Rating)
		}
		if got.ListCount != 1 {
			t.Errorf("ListCount = %d, want 1", got.ListCount)
		}
	})

	t.Run("mixed placements with unranked entry", func(t *testing.T) {
		repo, _, service := newRatingFixture(t)

		// Owner 1 has a one-entry list: score 1.0.
		addReview(repo, reviewerID, 1, 1)
		// Owner 2 has a two-entry list with the reviewer last: score 0.5.
		addReview(repo, reviewerID, 2, 2)
		addReview(repo, 20, 2, 1)
		// Owner 3 added the reviewer without a rank; ignored.
		addReview(repo, reviewerID, 3, models.UnrankedRating)

		got, err := service.RecomputeRating(ctx, reviewerID)
		if err != nil {
			t.Fatalf("RecomputeRating: %v", err)
		}
		if got.ListCount != 2 {
			t.Errorf("ListCount = %d, want 2", got.ListCount)
		}
		// Mean (1.0 + 0.5) / 2 = 0.75 scales to 3.75, rounded to 4.
		if got.Rating != 4 {
			t.Errorf("Rating = %d, want 4", got.Rating)
		}
	})

	t.Run("rank beyond list size is ignored", func(t *testing.T) {
		repo, _, service := newRatingFixture(t)

		addReview(repo, reviewerID, 1, 7)

		got, err := service.RecomputeRating(ctx, reviewerID)
		if err != nil {
			t.Fatalf("RecomputeRating: %v", err)
		}
		if got.ListCount != 0 {
			t.Errorf("ListCount = %d, want 0", got.ListCount)
		}
		if got.Rating != 0 {
			t.Errorf("Rating = %d, want 0", got.Rating)
		}
	})

	t.Run("publishes recompute event", func(t *testing.T) {
		repo, publisher, service := newRatingFixture(t)
		addReview(repo, reviewerID, 1, 1)

		if _, err := service.RecomputeRating(ctx, reviewerID); err != nil {
			t.Fatalf("RecomputeRating: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.EventRatingRecomputed {
			t.Errorf("event type = %s, want %s", published[0].Type, events.EventRatingRecomputed)
		}
		data, ok := published[0].Data.(*events.RatingRecomputedEvent)
		if !ok {
			t.Fatalf("event data has unexpected type %T", published[0].Data)
		}
		if data.ReviewerID != reviewerID {
			t.Errorf("ReviewerID = %d, want %d", data.ReviewerID, reviewerID)
		}
	})
}

func TestRatingService_RankReviewer(t *testing.T) {
	ctx := context.Background()

	t.Run("creates and re-ranks an entry", func(t *testing.T) {
		repo, _, service := newRatingFixture(t)
		reviewer := repo.addUser(&models.User{UserName: "rev", Email: "rev@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleUser, models.RoleReviewer})})

		rank := 1
		if err := service.RankReviewer(ctx, 99, &RankReviewerRequest{ReviewerID: reviewer.ID, Rank: &rank}); err != nil {
			t.Fatalf("RankReviewer: %v", err)
		}

		entry, err := repo.Review().GetByKey(ctx, nil, reviewer.ID, 99)
		if err != nil {
			t.Fatalf("GetByKey: %v", err)
		}
		if entry.Rating != 1 {
			t.Errorf("Rating = %d, want 1", entry.Rating)
		}

		rank = 3
		if err := service.RankReviewer(ctx, 99, &RankReviewerRequest{ReviewerID: reviewer.ID, Rank: &rank}); err != nil {
			t.Fatalf("RankReviewer re-rank: %v", err)
		}
		entry, err = repo.Review().GetByKey(ctx, nil, reviewer.ID, 99)
		if err != nil {
			t.Fatalf("GetByKey after re-rank: %v", err)
		}
		if entry.Rating != 3 {
			t.Errorf("Rating = %d, want 3", entry.Rating)
		}
	})

	t.Run("nil rank stores the unranked sentinel", func(t *testing.T) {
		repo, _, service := newRatingFixture(t)
		reviewer := repo.addUser(&models.User{UserName: "rev", Email: "rev@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleReviewer})})

		if err := service.RankReviewer(ctx, 99, &RankReviewerRequest{ReviewerID: reviewer.ID}); err != nil {
			t.Fatalf("RankReviewer: %v", err)
		}

		entry, err := repo.Review().GetByKey(ctx, nil, reviewer.ID, 99)
		if err != nil {
			t.Fatalf("GetByKey: %v", err)
		}
		if entry.Ranked() {
			t.Errorf("entry should be unranked, got rating %d", entry.Rating)
		}
	})

	t.Run("rejects a target without the reviewer role", func(t *testing.T) {
		repo, _, service := newRatingFixture(t)
		target := repo.addUser(&models.User{UserName: "plain", Email: "plain@example.com", Roles: models.EncodeRoles([]models.Role{models.RoleUser})})

		err := service.RankReviewer(ctx, 99, &RankReviewerRequest{ReviewerID: target.ID})
		if _, ok := err.(validator.ValidationErrors); !ok {
			t.Fatalf("expected validation errors, got %v", err)
		}
	})
}

func TestRatingService_RemoveFromTrustedList(t *testing.T) {
	ctx := context.Background()
	repo, _, service := newRatingFixture(t)
	addReview(repo, 10, 99, 1)

	if err := service.RemoveFromTrustedList(ctx, 99, 10); err != nil {
		t.Fatalf("RemoveFromTrustedList: %v", err)
	}
	if _, err := repo.Review().GetByKey(ctx, nil, 10, 99); err == nil {
		t.Error("entry should be gone")
	}

	// Deleting by composite key is idempotent, matching the repository
	// contract; a second removal is a no-op.
	if err := service.RemoveFromTrustedList(ctx, 99, 10); err != nil {
		t.Errorf("removing a missing entry should be a no-op, got %v", err)
	}
}
