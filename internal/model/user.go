// File: internal/model/user.go
package model

import "time"

type User struct {
	ID           int        `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsAdmin      bool       `db:"is_admin" json:"is_admin"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// TwoFactor 使用者的 TOTP 秘鑰與備援碼 (bcrypt 雜湊)
type TwoFactor struct {
	UserID      int        `db:"user_id"`
	Secret      string     `db:"secret"`
	Enabled     bool       `db:"enabled"`
	BackupCodes []string   `db:"backup_codes"`
	CreatedAt   time.Time  `db:"created_at"`
	EnabledAt   *time.Time `db:"enabled_at"`
}
