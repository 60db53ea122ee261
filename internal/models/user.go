package models

import "time"

// LoginMaxLength is the widest login the users.login column holds.
const LoginMaxLength = 191

// User is the entity profile values attach to.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Login     string    `gorm:"size:191;not null;uniqueIndex" json:"login"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}
