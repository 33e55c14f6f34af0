package domain

import "time"

type User struct {
	ID           UserID    `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Username     string    `gorm:"type:text;not null;uniqueIndex:ux_users_username" db:"username" json:"username"`
	PasswordHash string    `gorm:"type:text;not null" db:"password_hash" json:"-"`
	CreatedAt    time.Time `gorm:"not null" db:"created_at" json:"createdAt"`
}

func (User) TableName() string { return "users" }
