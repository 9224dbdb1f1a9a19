package repository

import (
	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"gorm.io/gorm"
)

// FollowRepository lưu trữ quan hệ theo dõi
type FollowRepository interface {
	Create(follow *model.Follow) error
	Delete(followerID, followeeID uint) (bool, error)
	Exists(followerID, followeeID uint) (bool, error)
	FindFollowers(userID uint) ([]model.User, error)
	FindFollowing(userID uint) ([]model.User, error)
	CountFollowers(userID uint) (int64, error)
	CountFollowing(userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Create(follow *model.Follow) error {
	return r.db.Create(follow).Error
}

// Delete gỡ theo dõi; trả về false nếu quan hệ không tồn tại
func (r *followRepository) Delete(followerID, followeeID uint) (bool, error) {
	result := r.db.
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *followRepository) Exists(followerID, followeeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Count(&count).Error
	return count > 0, err
}

func (r *followRepository) FindFollowers(userID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.followee_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *followRepository) FindFollowing(userID uint) ([]model.User, error) {
	var users []model.User
	err := r.db.
		Joins("JOIN follows ON follows.followee_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *followRepository) CountFollowers(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("followee_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowing(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.Follow{}).
		Where("follower_id = ?", userID).
		Count(&count).Error
	return count, err
}
