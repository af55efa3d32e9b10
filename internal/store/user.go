package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

const userColumns = `id, name, email, password_hash, is_admin, is_active, last_login_at, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.IsAdmin,
		&u.IsActive,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap("GetUserByID", err)
	}
	return u, nil
}

// GetUserByEmail 以 email (不分大小寫) 取得使用者
func GetUserByEmail(ctx context.Context, db database.DB, email string) (*model.User, error) {
	row := db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`,
		email,
	)
	u, err := scanUser(row)
	if err != nil {
		return nil, wrap("GetUserByEmail", err)
	}
	return u, nil
}

func ListUsers(ctx context.Context, db database.DB) ([]model.User, error) {
	rows, err := db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
	if err != nil {
		return nil, wrap("ListUsers", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, wrap("ListUsers", err)
		}
		users = append(users, *u)
	}
	return users, wrap("ListUsers", rows.Err())
}

func CreateUser(ctx context.Context, db database.DB, u *model.User) (*model.User, error) {
	row := db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, is_admin, is_active)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		u.Name,
		u.Email,
		u.PasswordHash,
		u.IsAdmin,
		u.IsActive,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, wrap("CreateUser", err)
	}
	return u, nil
}

// UpdateUser 更新帳號資料；降級或停用最後一位啟用中的管理員時回傳 ErrLastAdmin
func UpdateUser(ctx context.Context, db database.DB, u *model.User) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return wrap("UpdateUser", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if !u.IsAdmin || !u.IsActive {
		if err = guardLastAdmin(ctx, tx, "UpdateUser", u.ID); err != nil {
			return err
		}
	}
	tag, execErr := tx.Exec(ctx,
		`UPDATE users SET name = $1, email = $2, is_admin = $3, is_active = $4, updated_at = now()
		 WHERE id = $5`,
		u.Name,
		u.Email,
		u.IsAdmin,
		u.IsActive,
		u.ID,
	)
	if execErr != nil {
		return wrap("UpdateUser", execErr)
	}
	if err = mustAffect("UpdateUser", tag); err != nil {
		return err
	}
	return wrap("UpdateUser", tx.Commit(ctx))
}

// guardLastAdmin 鎖定所有啟用中的管理員列，userID 是其中唯一一位時回傳 ErrLastAdmin。
// 並行的降級/刪除會在鎖上排隊，第二筆看到的是第一筆提交後的結果
func guardLastAdmin(ctx context.Context, tx pgx.Tx, op string, userID int) error {
	var (
		n      int
		target bool
	)
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(bool_or(id = $1), FALSE)
		 FROM (SELECT id FROM users WHERE is_admin AND is_active ORDER BY id FOR UPDATE) admins`,
		userID,
	).Scan(&n, &target); err != nil {
		return wrap(op, err)
	}
	if target && n <= 1 {
		return fmt.Errorf("%s: %w", op, ErrLastAdmin)
	}
	return nil
}

// UpdateProfile 只更新姓名與 email，供使用者修改自己的資料
func UpdateProfile(ctx context.Context, db database.DB, userID int, name, email string) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET name = $1, email = $2, updated_at = now() WHERE id = $3`,
		name,
		email,
		userID,
	)
	if err != nil {
		return wrap("UpdateProfile", err)
	}
	return mustAffect("UpdateProfile", tag)
}

func UpdateUserPassword(ctx context.Context, db database.DB, userID int, passwordHash string) error {
	tag, err := db.Exec(ctx,
		`UPDATE users
		 SET password_hash = $1, updated_at = now()
		 WHERE id = $2`,
		passwordHash,
		userID,
	)
	if err != nil {
		return wrap("UpdateUserPassword", err)
	}
	return mustAffect("UpdateUserPassword", tag)
}

func TouchLastLogin(ctx context.Context, db database.DB, userID int) error {
	_, err := db.Exec(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, userID)
	return wrap("TouchLastLogin", err)
}

// DeleteUser 刪除帳號；不可刪除最後一位啟用中的管理員
func DeleteUser(ctx context.Context, db database.DB, id int) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return wrap("DeleteUser", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = guardLastAdmin(ctx, tx, "DeleteUser", id); err != nil {
		return err
	}
	tag, execErr := tx.Exec(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if execErr != nil {
		return wrap("DeleteUser", execErr)
	}
	if err = mustAffect("DeleteUser", tag); err != nil {
		return err
	}
	return wrap("DeleteUser", tx.Commit(ctx))
}
