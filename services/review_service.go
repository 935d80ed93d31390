// services/review_service.go
package services

import (
	"strings"

	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/apperr"
	"github.com/abdout/souq/repository"

	"go.uber.org/zap"
)

type ReviewService struct {
	Repo   *repository.ReviewRepository
	Items  *repository.ItemRepository
	Orders *repository.OrderRepository
	Log    *zap.Logger
}

func NewReviewService(repo *repository.ReviewRepository, items *repository.ItemRepository, orders *repository.OrderRepository, log *zap.Logger) *ReviewService {
	return &ReviewService{Repo: repo, Items: items, Orders: orders, Log: log}
}

type ReviewInput struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Submit: ต้องเคยซื้อ (order ที่ไม่ถูกยกเลิก) ถึงรีวิวได้, ส่งซ้ำ = แก้รีวิวเดิม
func (s *ReviewService) Submit(a access.Actor, itemID uint, in *ReviewInput) (*entity.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, apperr.BadRequestf("rating must be between 1 and 5")
	}
	if _, err := s.Items.FindByID(itemID); err != nil {
		return nil, apperr.FromDB(err, "Item not found")
	}
	ok, err := s.Orders.HasPurchased(a.UserID, itemID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	if !ok {
		return nil, apperr.BadRequestf("only customers who purchased this item can review it")
	}

	rv := &entity.Review{Rating: in.Rating, Comment: strings.TrimSpace(in.Comment), UserID: a.UserID, ItemID: itemID}
	if err := s.Repo.Upsert(rv); err != nil {
		return nil, apperr.FromDB(err, "")
	}
	saved, err := s.Repo.FindByUserAndItem(a.UserID, itemID)
	if err != nil {
		return nil, apperr.FromDB(err, "Review not found")
	}
	s.Log.Info("review saved", zap.Uint("item_id", itemID), zap.Uint("user_id", a.UserID), zap.Int("rating", in.Rating))
	return saved, nil
}

type ReviewList struct {
	Reviews []repository.ReviewRow `json:"reviews"`
	Stats   ReviewSummary          `json:"stats"`
}

func (s *ReviewService) List(itemID uint) (*ReviewList, error) {
	if _, err := s.Items.FindByID(itemID); err != nil {
		return nil, apperr.FromDB(err, "Item not found")
	}
	rows, err := s.Repo.ListForItem(itemID)
	if err != nil {
		return nil, apperr.FromDB(err, "")
	}
	var sum int
	for _, r := range rows {
		sum += r.Rating
	}
	stats := ReviewSummary{Count: int64(len(rows))}
	if len(rows) > 0 {
		stats.Average = roundOne(float64(sum) / float64(len(rows)))
	}
	return &ReviewList{Reviews: rows, Stats: stats}, nil
}
