package model

import "time"

// UserModel mirrors the 'users' table. The schema itself is owned by the goose migrations;
// the tags keep AutoMigrate (used against SQLite in tests) equivalent.
type UserModel struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"type:varchar(20);uniqueIndex;not null"`
	Email     string `gorm:"type:text;uniqueIndex;not null"`
	Password  string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}
