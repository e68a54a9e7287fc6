package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents the users table
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"uniqueIndex;size:50;not null" json:"username"`
	FirstName string         `gorm:"size:50" json:"first_name"`
	LastName  string         `gorm:"size:50" json:"last_name"`
	Email     string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Phone     string         `gorm:"size:20" json:"phone"`
	NIC       string         `gorm:"column:nic;uniqueIndex;size:20;not null" json:"nic"`
	Role      string         `gorm:"size:20;default:'USER'" json:"role"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// TokenTypeBearer is the only token kind issued
const TokenTypeBearer = "BEARER"

// AccessToken represents the access_tokens table: the ledger row that
// makes a self-contained token administratively revocable. Rows are
// flagged off rather than deleted; physical deletion happens only when
// the owning user is deleted.
type AccessToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Token     string    `gorm:"uniqueIndex;size:512;not null" json:"-"`
	TokenType string    `gorm:"size:20;not null;default:'BEARER'" json:"token_type"`
	Revoked   bool      `gorm:"not null;default:false" json:"revoked"`
	Expired   bool      `gorm:"not null;default:false" json:"expired"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

func (AccessToken) TableName() string {
	return "access_tokens"
}

// IsLive requires both flags to be unset. Either flag alone disables
// the token.
func (t *AccessToken) IsLive() bool {
	return !t.Revoked && !t.Expired
}

// ResetCode represents the reset_codes table
type ResetCode struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"index;size:100;not null" json:"email"`
	Code           string    `gorm:"size:6;not null" json:"-"`
	ExpirationTime time.Time `gorm:"not null" json:"expiration_time"`
	Expired        bool      `gorm:"not null;default:false" json:"expired"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ResetCode) TableName() string {
	return "reset_codes"
}

// IsUsable consults the explicit flag and the timestamp independently;
// a code is dead if either says so.
func (r *ResetCode) IsUsable(now time.Time) bool {
	return !r.Expired && now.Before(r.ExpirationTime)
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&AccessToken{},
		&ResetCode{},
	)
}
