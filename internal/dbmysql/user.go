package dbmysql

import (
	"time"
)

// User is a reviewer account. Login/session handling lives outside this
// service; accounts exist so human actions carry an acting-user reference.
type User struct {
	UserID       uint64    `gorm:"primaryKey;autoIncrement;column:user_id"`
	Username     string    `gorm:"type:varchar(64);column:username;uniqueIndex;not null"`
	Email        string    `gorm:"type:varchar(120);column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(256);column:password_hash"`
	IsAdmin      bool      `gorm:"column:is_admin;default:false"`
	CreatedAt    time.Time `gorm:"column:created_at"`

	Actions []ModerationAction `gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}
