package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/FSE-2025/helpdesk-service/internal/models"
	"github.com/FSE-2025/helpdesk-service/internal/repositories"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(r.db, tx)
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	db := getDB(r.db, tx)
	var user models.User
	if err := db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, handleDBError(err, "get user by id")
	}
	return &user, nil
}

func (r *userRepository) GetByUserName(ctx context.Context, tx *gorm.DB, userName string) (*models.User, error) {
	db := getDB(r.db, tx)
	var user models.User
	if err := db.WithContext(ctx).Where("user_name = ?", userName).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by name")
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := getDB(r.db, tx)
	var user models.User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by email")
	}
	return &user, nil
}

func (r *userRepository) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.User, error) {
	db := getDB(r.db, tx)
	var users []*models.User
	if err := db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, handleDBError(err, "get all users")
	}
	return users, nil
}

func (r *userRepository) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := getDB(r.db, tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})

	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("user_name ILIKE ? OR email ILIKE ? OR full_name ILIKE ?", like, like, like)
	}
	if filters.Role != nil {
		// Bitwise membership test pushed into SQL so pagination stays correct.
		query = query.Where("roles & ? <> 0", int(*filters.Role))
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count users")
	}

	query = applyPaginationAndSort(query, "id", "ASC", filters.Limit, filters.Offset)

	if err := query.Find(&users).Error; err != nil {
		return nil, 0, handleDBError(err, "list users")
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := getDB(r.db, tx)
	result := db.WithContext(ctx).Save(user)
	if result.Error != nil {
		return handleDBError(result.Error, "update user")
	}
	if result.RowsAffected == 0 {
		return handleDBError(gorm.ErrRecordNotFound, "update user")
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(r.db, tx)
	// Deleting a missing id is a no-op, not an error.
	if err := db.WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return handleDBError(err, "delete user")
	}
	return nil
}

func (r *userRepository) CountWithRole(ctx context.Context, tx *gorm.DB, role models.Role) (int64, error) {
	db := getDB(r.db, tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("roles & ? <> 0", int(role)).
		Count(&count).Error
	if err != nil {
		return 0, handleDBError(err, "count users with role")
	}
	return count, nil
}
