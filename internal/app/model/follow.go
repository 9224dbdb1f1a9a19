package model

import (
	"time"
)

// Follow quan hệ theo dõi giữa hai người dùng (1 chiều)
type Follow struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	FollowerID uint `gorm:"not null;uniqueIndex:idx_follows_pair" json:"follower_id"` // người theo dõi
	FolloweeID uint `gorm:"not null;uniqueIndex:idx_follows_pair" json:"followee_id"` // người được theo dõi

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followee User `gorm:"foreignKey:FolloweeID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Follow) TableName() string {
	return "follows"
}
