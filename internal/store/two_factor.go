package store

import (
	"context"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// GetTwoFactor 取得使用者的 2FA 設定；尚未設定時回傳 ErrNotFound
func GetTwoFactor(ctx context.Context, db database.DB, userID int) (*model.TwoFactor, error) {
	tf := &model.TwoFactor{}
	err := db.QueryRow(ctx,
		`SELECT user_id, secret, enabled, backup_codes, created_at, enabled_at
		 FROM two_factor_secrets WHERE user_id = $1`,
		userID,
	).Scan(&tf.UserID, &tf.Secret, &tf.Enabled, &tf.BackupCodes, &tf.CreatedAt, &tf.EnabledAt)
	if err != nil {
		return nil, wrap("GetTwoFactor", err)
	}
	return tf, nil
}

// UpsertTwoFactorSecret 寫入新的待驗證秘鑰，並停用既有設定
func UpsertTwoFactorSecret(ctx context.Context, db database.DB, userID int, secret string) error {
	_, err := db.Exec(ctx,
		`INSERT INTO two_factor_secrets (user_id, secret)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET
		     secret = EXCLUDED.secret,
		     enabled = FALSE,
		     backup_codes = '{}',
		     enabled_at = NULL,
		     created_at = now()`,
		userID,
		secret,
	)
	return wrap("UpsertTwoFactorSecret", err)
}

// EnableTwoFactor 啟用 2FA 並寫入備援碼雜湊
func EnableTwoFactor(ctx context.Context, db database.DB, userID int, hashedCodes []string) error {
	tag, err := db.Exec(ctx,
		`UPDATE two_factor_secrets
		 SET enabled = TRUE, backup_codes = $1, enabled_at = now()
		 WHERE user_id = $2`,
		hashedCodes,
		userID,
	)
	if err != nil {
		return wrap("EnableTwoFactor", err)
	}
	return mustAffect("EnableTwoFactor", tag)
}

func ReplaceBackupCodes(ctx context.Context, db database.DB, userID int, hashedCodes []string) error {
	tag, err := db.Exec(ctx,
		`UPDATE two_factor_secrets SET backup_codes = $1 WHERE user_id = $2`,
		hashedCodes,
		userID,
	)
	if err != nil {
		return wrap("ReplaceBackupCodes", err)
	}
	return mustAffect("ReplaceBackupCodes", tag)
}

func DeleteTwoFactor(ctx context.Context, db database.DB, userID int) error {
	_, err := db.Exec(ctx, `DELETE FROM two_factor_secrets WHERE user_id = $1`, userID)
	return wrap("DeleteTwoFactor", err)
}
