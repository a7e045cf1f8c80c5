package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/cache"
	"github.com/FSE-2025/helpdesk-service/internal/events"
	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
	"github.com/FSE-2025/helpdesk-service/internal/validator"
)

// RatingPolicy holds the smoothing parameters of the aggregation. A reviewer
// mentioned in fewer than MinLists lists is padded with PriorMean pseudo
// placements so a single enthusiastic list cannot produce a perfect score.
type RatingPolicy struct {
	MinLists  int
	PriorMean float64
}

// DefaultRatingPolicy is used unless a service is constructed with an
// explicit policy.
var DefaultRatingPolicy = RatingPolicy{
	MinLists:  2,
	PriorMean: 0.5,
}

type ratingService struct {
	repo           repositories.Repository
	db             *gorm.DB
	caches         *cache.CacheManager
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
	policy         RatingPolicy
}

func NewRatingService(repo repositories.Repository, db *gorm.DB, caches *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) RatingService {
	return NewRatingServiceWithPolicy(repo, db, caches, publisher, logger, v, DefaultRatingPolicy)
}

func NewRatingServiceWithPolicy(repo repositories.Repository, db *gorm.DB, caches *cache.CacheManager, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator, policy RatingPolicy) RatingService {
	if caches == nil {
		caches = cache.NewCacheManager(nil)
	}
	return &ratingService{
		repo:           repo,
		db:             db,
		caches:         caches,
		eventPublisher: publisher,
		logger:         logger,
		validator:      v,
		policy:         policy,
	}
}

// RankReviewer places a reviewer in the caller's trusted list. A nil rank
// adds the reviewer unranked; an existing entry is re-ranked in place.
func (s *ratingService) RankReviewer(ctx context.Context, ownerID uint, req *RankReviewerRequest) error {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return errs
	}

	reviewer, err := s.repo.User().GetByID(ctx, nil, req.ReviewerID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return repositories.ErrNotFound
		}
		return fmt.Errorf("failed to load reviewer: %w", err)
	}

	rating := models.UnrankedRating
	if req.Rank != nil {
		rating = *req.Rank
	}

	review := &models.Review{
		ReviewerID: req.ReviewerID,
		UserID:     ownerID,
		Rating:     rating,
	}
	if errs := s.validator.ValidateReview(review, reviewer); len(errs) > 0 {
		return errs
	}

	existing, err := s.repo.Review().GetByKey(ctx, nil, req.ReviewerID, ownerID)
	if err != nil && !repositories.IsNotFoundError(err) {
		return fmt.Errorf("failed to load trusted list entry: %w", err)
	}
	if existing != nil {
		existing.Rating = rating
		if err := s.repo.Review().Update(ctx, nil, existing); err != nil {
			return fmt.Errorf("failed to update trusted list entry: %w", err)
		}
	} else {
		if err := s.repo.Review().Create(ctx, nil, review); err != nil {
			return fmt.Errorf("failed to create trusted list entry: %w", err)
		}
	}

	cache.InvalidateRatingCache(ctx, s.caches, req.ReviewerID)
	s.logger.Info("Reviewer ranked",
		"owner_id", ownerID,
		"reviewer_id", req.ReviewerID,
		"rank", rating)

	if _, err := s.RecomputeRating(ctx, req.ReviewerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to recompute rating", "error", err, "reviewer_id", req.ReviewerID)
	}
	return nil
}

func (s *ratingService) RemoveFromTrustedList(ctx context.Context, ownerID, reviewerID uint) error {
	if err := s.repo.Review().DeleteByKey(ctx, nil, reviewerID, ownerID); err != nil {
		return fmt.Errorf("failed to remove trusted list entry: %w", err)
	}

	cache.InvalidateRatingCache(ctx, s.caches, reviewerID)
	s.logger.Info("Reviewer removed from trusted list", "owner_id", ownerID, "reviewer_id", reviewerID)

	if _, err := s.RecomputeRating(ctx, reviewerID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to recompute rating", "error", err, "reviewer_id", reviewerID)
	}
	return nil
}

func (s *ratingService) GetTrustedList(ctx context.Context, ownerID uint) ([]*models.Review, error) {
	reviews, err := s.repo.Review().GetByOwner(ctx, nil, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load trusted list: %w", err)
	}
	return reviews, nil
}

func (s *ratingService) GetRating(ctx context.Context, reviewerID uint) (*AggregatedRating, error) {
	key := fmt.Sprintf("reviewer:%d", reviewerID)
	var cached AggregatedRating
	if err := s.caches.Rating.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}
	return s.RecomputeRating(ctx, reviewerID)
}

// RecomputeRating derives the reviewer's aggregated score from every trusted
// list that mentions them. Each valid placement contributes a position score
// in (0, 1]: rank 1 of a list of n scores 1, rank n scores 1/n. Placements
// with a rank outside [1, listSize] are ignored, which also drops unranked
// entries. With fewer than MinLists placements the mean is padded with
// PriorMean pseudo lists, then scaled to 0..5 and rounded.
func (s *ratingService) RecomputeRating(ctx context.Context, reviewerID uint) (*AggregatedRating, error) {
	reviews, err := s.repo.Review().GetByReviewer(ctx, nil, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load reviews: %w", err)
	}

	var sum float64
	var valid int
	for _, review := range reviews {
		listSize, err := s.repo.Review().CountByOwner(ctx, nil, review.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to size trusted list: %w", err)
		}
		if listSize == 0 || review.Rating < 1 || int64(review.Rating) > listSize {
			continue
		}
		sum += float64(listSize-int64(review.Rating)+1) / float64(listSize)
		valid++
	}

	result := &AggregatedRating{ReviewerID: reviewerID, ListCount: valid}
	if valid > 0 {
		n := valid
		if n < s.policy.MinLists {
			sum += s.policy.PriorMean * float64(s.policy.MinLists-n)
			n = s.policy.MinLists
		}
		mean := sum / float64(n)
		score := int(math.Round(mean * 5))
		if score < 0 {
			score = 0
		}
		if score > 5 {
			score = 5
		}
		result.Rating = score
	}

	key := fmt.Sprintf("reviewer:%d", reviewerID)
	if err := s.caches.Rating.Set(ctx, key, result, cache.RatingCacheConfig.TTL); err != nil {
		s.logger.ErrorContext(ctx, "Failed to cache rating", "error", err, "reviewer_id", reviewerID)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventRatingRecomputed, &events.RatingRecomputedEvent{
		ReviewerID: reviewerID,
		Rating:     result.Rating,
		ListCount:  result.ListCount,
	}))
	return result, nil
}

func (s *ratingService) publishEvent(ctx context.Context, event *events.Event) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish event", "error", err, "event_type", event.Type)
	}
}
