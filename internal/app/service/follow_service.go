package service

import (
	"errors"

	"github.com/nongdanviet/nongdanviet-backend/internal/app/model"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/repository"
	"github.com/nongdanviet/nongdanviet-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrSelfFollow     = errors.New("cannot follow yourself")
	ErrAlreadyFollows = errors.New("already following this user")
	ErrNotFollowing   = errors.New("not following this user")
)

// FollowStats số người theo dõi / đang theo dõi của một người dùng
type FollowStats struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

type FollowService interface {
	Follow(followerID, followeeID uint) error
	Unfollow(followerID, followeeID uint) error
	IsFollowing(followerID, followeeID uint) (bool, error)
	GetFollowers(userID uint) ([]model.User, error)
	GetFollowing(userID uint) ([]model.User, error)
	GetStats(userID uint) (*FollowStats, error)
}

type followService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) FollowService {
	return &followService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

func (s *followService) Follow(followerID, followeeID uint) error {
	if followerID == followeeID {
		return ErrSelfFollow
	}

	// Người được theo dõi phải tồn tại
	if _, err := s.userRepo.FindByID(followeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	exists, err := s.followRepo.Exists(followerID, followeeID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyFollows
	}

	follow := &model.Follow{
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
	if err := s.followRepo.Create(follow); err != nil {
		logger.Error("Failed to create follow", err, map[string]interface{}{
			"follower_id": followerID,
			"followee_id": followeeID,
		})
		return err
	}

	logger.Info("User followed", map[string]interface{}{
		"follower_id": followerID,
		"followee_id": followeeID,
	})
	return nil
}

func (s *followService) Unfollow(followerID, followeeID uint) error {
	removed, err := s.followRepo.Delete(followerID, followeeID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFollowing
	}

	logger.Info("User unfollowed", map[string]interface{}{
		"follower_id": followerID,
		"followee_id": followeeID,
	})
	return nil
}

func (s *followService) IsFollowing(followerID, followeeID uint) (bool, error) {
	return s.followRepo.Exists(followerID, followeeID)
}

func (s *followService) GetFollowers(userID uint) ([]model.User, error) {
	return s.followRepo.FindFollowers(userID)
}

func (s *followService) GetFollowing(userID uint) ([]model.User, error) {
	return s.followRepo.FindFollowing(userID)
}

func (s *followService) GetStats(userID uint) (*FollowStats, error) {
	followers, err := s.followRepo.CountFollowers(userID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.CountFollowing(userID)
	if err != nil {
		return nil, err
	}
	return &FollowStats{Followers: followers, Following: following}, nil
}
