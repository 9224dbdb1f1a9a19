package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/service"
	apperrors "github.com/nongdanviet/nongdanviet-backend/internal/errors"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
)

type FollowController struct {
	followService service.FollowService
}

func NewFollowController(followService service.FollowService) *FollowController {
	return &FollowController{followService: followService}
}

// Follow theo dõi một người dùng
// POST /api/v1/users/:id/follow
func (ctrl *FollowController) Follow(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	followerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập")
		return
	}

	followeeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.followService.Follow(followerID, followeeID); err != nil {
		switch {
		case errors.Is(err, service.ErrSelfFollow):
			apperrors.BadRequest(c, apperrors.FollowSelfForbidden, "Bạn không thể tự theo dõi chính mình")
		case errors.Is(err, service.ErrAlreadyFollows):
			apperrors.Conflict(c, apperrors.FollowAlreadyExists, "Bạn đã theo dõi người này rồi")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Không tìm thấy người dùng")
		default:
			log.Error("Failed to follow user", err, map[string]interface{}{
				"follower_id": followerID,
				"followee_id": followeeID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "follow user")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Đã theo dõi",
	})
}

// Unfollow bỏ theo dõi
// DELETE /api/v1/users/:id/follow
func (ctrl *FollowController) Unfollow(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	followerID, exists := middleware.GetUserID(c)
	if !exists {
		apperrors.Unauthorized(c, "Vui lòng đăng nhập")
		return
	}

	followeeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.followService.Unfollow(followerID, followeeID); err != nil {
		if errors.Is(err, service.ErrNotFollowing) {
			apperrors.NotFound(c, apperrors.FollowNotFound, "Bạn chưa theo dõi người này")
			return
		}
		log.Error("Failed to unfollow user", err, map[string]interface{}{
			"follower_id": followerID,
			"followee_id": followeeID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "unfollow user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã bỏ theo dõi",
	})
}

// GetFollowers danh sách người theo dõi
// GET /api/v1/users/:id/followers
func (ctrl *FollowController) GetFollowers(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	followers, err := ctrl.followService.GetFollowers(userID)
	if err != nil {
		log.Error("Failed to get followers", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get followers")
		return
	}

	users := make([]gin.H, 0, len(followers))
	for i := range followers {
		users = append(users, userJSON(&followers[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

// GetFollowing danh sách đang theo dõi
// GET /api/v1/users/:id/following
func (ctrl *FollowController) GetFollowing(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	following, err := ctrl.followService.GetFollowing(userID)
	if err != nil {
		log.Error("Failed to get following list", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get following")
		return
	}

	users := make([]gin.H, 0, len(following))
	for i := range following {
		users = append(users, userJSON(&following[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": len(users),
	})
}

// GetStats số người theo dõi / đang theo dõi
// GET /api/v1/users/:id/follow-stats
func (ctrl *FollowController) GetStats(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	stats, err := ctrl.followService.GetStats(userID)
	if err != nil {
		log.Error("Failed to get follow stats", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get follow stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}
