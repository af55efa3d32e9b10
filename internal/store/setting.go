package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

const settingColumns = `key, value, group_name, is_public, updated_at`

// ListSettings 列出設定；group 為空時不過濾群組
func ListSettings(ctx context.Context, db database.DB, group string, publicOnly bool) ([]model.Setting, error) {
	sql, args := Select(settingColumns, "settings").
		WhereIf(group != "", "group_name = ?", group).
		WhereIf(publicOnly, "is_public = ?", true).
		OrderBy("group_name").
		OrderBy("key").
		Build()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap("ListSettings", err)
	}
	defer rows.Close()

	settings := []model.Setting{}
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.Key, &s.Value, &s.Group, &s.IsPublic, &s.UpdatedAt); err != nil {
			return nil, wrap("ListSettings", err)
		}
		settings = append(settings, s)
	}
	return settings, wrap("ListSettings", rows.Err())
}

// SettingsMap 將群組設定轉為 key → value
func SettingsMap(ctx context.Context, db database.DB, group string, publicOnly bool) (map[string]string, error) {
	settings, err := ListSettings(ctx, db, group, publicOnly)
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, len(settings))
	for _, s := range settings {
		m[s.Key] = s.Value
	}
	return m, nil
}

func GetSetting(ctx context.Context, db database.DB, key string) (*model.Setting, error) {
	s := &model.Setting{}
	err := db.QueryRow(ctx,
		`SELECT `+settingColumns+` FROM settings WHERE key = $1`,
		key,
	).Scan(&s.Key, &s.Value, &s.Group, &s.IsPublic, &s.UpdatedAt)
	if err != nil {
		return nil, wrap("GetSetting", err)
	}
	return s, nil
}

// UpdateSettings 在同一交易內更新多個既有設定；任何 key 不存在即整批回滾
func UpdateSettings(ctx context.Context, db database.DB, group string, values map[string]string) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return wrap("UpdateSettings", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		tag, execErr := tx.Exec(ctx,
			`UPDATE settings SET value = $1, updated_at = now() WHERE key = $2 AND group_name = $3`,
			values[k],
			k,
			group,
		)
		if execErr != nil {
			return wrap("UpdateSettings", execErr)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("UpdateSettings: %s: %w", k, ErrNotFound)
		}
	}

	return wrap("UpdateSettings", tx.Commit(ctx))
}
