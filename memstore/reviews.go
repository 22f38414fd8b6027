package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"agromart/db"
	"agromart/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Reviews struct {
	mu      sync.Mutex
	reviews []models.Review
}

func NewReviews(rs ...models.Review) *Reviews {
	return &Reviews{reviews: rs}
}

func (s *Reviews) FindByID(_ context.Context, id primitive.ObjectID) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reviews {
		if r.ID == id {
			found := r
			return &found, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *Reviews) SetFlag(_ context.Context, id primitive.ObjectID, flagged bool, reason string, at time.Time) (*models.Review, error) {
	return s.update(id, func(r *models.Review) {
		r.IsFlagged = flagged
		if flagged {
			r.FlagReason = reason
			r.FlaggedAt = &at
			return
		}
		r.FlagReason = ""
		r.FlaggedAt = nil
	})
}

func (s *Reviews) SetResponse(_ context.Context, id primitive.ObjectID, resp models.SellerResponse) (*models.Review, error) {
	return s.update(id, func(r *models.Review) { r.Response = &resp })
}

func (s *Reviews) List(_ context.Context, sellerID string, flaggedOnly bool, limit int) ([]models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Review{}
	for _, r := range s.reviews {
		if r.SellerID == sellerID && (!flaggedOnly || r.IsFlagged) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Reviews) update(id primitive.ObjectID, fn func(*models.Review)) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reviews {
		if s.reviews[i].ID == id {
			fn(&s.reviews[i])
			updated := s.reviews[i]
			return &updated, nil
		}
	}
	return nil, db.ErrNotFound
}
