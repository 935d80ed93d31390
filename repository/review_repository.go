package repository

import (
	"time"

	"github.com/abdout/souq/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	DB *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{DB: db}
}

// Upsert: รีวิวซ้ำ (user, item) = แก้ของเดิม
func (r *ReviewRepository) Upsert(rv *entity.Review) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "item_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"rating":     rv.Rating,
			"comment":    rv.Comment,
			"updated_at": time.Now(),
			"deleted_at": nil,
		}),
	}).Create(rv).Error
}

func (r *ReviewRepository) FindByUserAndItem(userID, itemID uint) (*entity.Review, error) {
	var rv entity.Review
	if err := r.DB.Where("user_id = ? AND item_id = ?", userID, itemID).First(&rv).Error; err != nil {
		return nil, err
	}
	return &rv, nil
}

// ReviewRow = รีวิว + ชื่อคนเขียน
type ReviewRow struct {
	ID        uint      `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UserID    uint      `json:"userId"`
	UserName  string    `json:"userName"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *ReviewRepository) ListForItem(itemID uint) ([]ReviewRow, error) {
	var rows []struct {
		ID        uint
		Rating    int
		Comment   string
		UserID    uint
		CreatedAt time.Time
		FirstName string
		LastName  string
	}
	err := r.DB.Table("reviews AS rv").
		Select("rv.id, rv.rating, rv.comment, rv.user_id, rv.created_at, u.first_name, u.last_name").
		Joins("JOIN users u ON u.id = rv.user_id").
		Where("rv.item_id = ? AND rv.deleted_at IS NULL", itemID).
		Order("rv.created_at DESC, rv.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ReviewRow, 0, len(rows))
	for _, row := range rows {
		u := entity.User{FirstName: row.FirstName, LastName: row.LastName}
		out = append(out, ReviewRow{
			ID: row.ID, Rating: row.Rating, Comment: row.Comment,
			UserID: row.UserID, UserName: u.FullName(), CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
