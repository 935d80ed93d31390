package configs

import (
	"github.com/abdout/souq/entity"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin สร้าง superadmin ครั้งแรก
func SeedAdmin(db *gorm.DB, cfg AdminConfig, log *zap.Logger) error {
	if cfg.Email == "" || cfg.Password == "" {
		log.Warn("skip seeding admin: missing admin.email/admin.password")
		return nil
	}

	var count int64
	if err := db.Model(&entity.User{}).Where("email = ?", cfg.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Info("admin already exists", zap.String("email", cfg.Email))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := entity.User{
		Email:     cfg.Email,
		Password:  string(hash),
		FirstName: "Admin",
		LastName:  "Seed",
		Role:      entity.RoleSuperAdmin,
	}
	return db.Create(&admin).Error
}

type seedCategory struct {
	name, slug, businessType string
	children                 [][2]string
}

var globalCategories = []seedCategory{
	{"Meals", "meals", entity.BusinessRestaurant, [][2]string{{"Burgers", "burgers"}, {"Shawarma", "shawarma"}, {"Desserts", "desserts"}}},
	{"Drinks", "drinks", entity.BusinessRestaurant, nil},
	{"Medicines", "medicines", entity.BusinessPharmacy, [][2]string{{"Pain Relief", "pain-relief"}, {"Cold & Flu", "cold-flu"}}},
	{"Personal Care", "personal-care", entity.BusinessPharmacy, nil},
	{"Fresh Produce", "fresh-produce", entity.BusinessGrocery, [][2]string{{"Fruits", "fruits"}, {"Vegetables", "vegetables"}}},
	{"Pantry", "pantry", entity.BusinessGrocery, nil},
}

// SeedCategories: หมวดกลาง (tenant_id = NULL)
func SeedCategories(db *gorm.DB, log *zap.Logger) error {
	for _, sc := range globalCategories {
		parent := entity.Category{}
		if err := db.Where("slug = ? AND tenant_id IS NULL", sc.slug).
			Attrs(entity.Category{Name: sc.name, BusinessType: sc.businessType}).
			FirstOrCreate(&parent, entity.Category{Slug: sc.slug}).Error; err != nil {
			return err
		}
		for _, ch := range sc.children {
			child := entity.Category{}
			if err := db.Where("slug = ? AND tenant_id IS NULL", ch[1]).
				Attrs(entity.Category{Name: ch[0], BusinessType: sc.businessType, ParentID: &parent.ID}).
				FirstOrCreate(&child, entity.Category{Slug: ch[1]}).Error; err != nil {
				return err
			}
		}
	}
	log.Info("categories seeded", zap.Int("top_level", len(globalCategories)))
	return nil
}
