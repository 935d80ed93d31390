package repository

import (
	"github.com/abdout/souq/entity"

	"gorm.io/gorm"
)

// UserRepository รับผิดชอบการคุยกับตาราง users ใน DB เท่านั้น
type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

// หาผู้ใช้จาก email
func (r *UserRepository) FindByEmail(email string) (*entity.User, error) {
	var user entity.User
	if err := r.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// นับจำนวน user ที่มี email ซ้ำ
func (r *UserRepository) CountByEmail(email string) (int64, error) {
	var count int64
	if err := r.DB.Model(&entity.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// สร้าง user ใหม่
func (r *UserRepository) Create(user *entity.User) error {
	return r.DB.Create(user).Error
}

// โหลด user ตาม ID
func (r *UserRepository) FindByID(id uint) (*entity.User, error) {
	var user entity.User
	if err := r.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ผูก user เข้ากับร้าน (เฉพาะคนที่ยังไม่มีร้าน)
func (r *UserRepository) AttachTenant(tx *gorm.DB, userID, tenantID uint) (bool, error) {
	res := tx.Model(&entity.User{}).
		Where("id = ? AND tenant_id IS NULL", userID).
		Update("tenant_id", tenantID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// สมาชิกของร้าน (ใช้ส่ง email แจ้งร้าน)
func (r *UserRepository) MembersOf(tenantID uint) ([]entity.User, error) {
	var users []entity.User
	err := r.DB.Where("tenant_id = ?", tenantID).Order("id").Find(&users).Error
	return users, err
}

// ถอดสมาชิกออกตอนลบร้าน
func (r *UserRepository) DetachTenant(tx *gorm.DB, tenantID uint) error {
	return tx.Model(&entity.User{}).Where("tenant_id = ?", tenantID).Update("tenant_id", nil).Error
}
