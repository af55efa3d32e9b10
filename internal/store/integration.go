package store

import (
	"context"
	"encoding/json"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

const integrationColumns = `provider, kind, enabled, config, updated_at`

func scanIntegration(row interface{ Scan(...any) error }) (*model.Integration, error) {
	in := &model.Integration{}
	var raw []byte
	if err := row.Scan(&in.Provider, &in.Kind, &in.Enabled, &raw, &in.UpdatedAt); err != nil {
		return nil, err
	}
	in.Config = map[string]string{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &in.Config); err != nil {
			return nil, err
		}
	}
	return in, nil
}

// ListIntegrations 列出整合設定；kind 為空時列出全部
func ListIntegrations(ctx context.Context, db database.DB, kind string) ([]model.Integration, error) {
	sql, args := Select(integrationColumns, "integrations").
		WhereIf(kind != "", "kind = ?", kind).
		OrderBy("kind").
		OrderBy("provider").
		Build()

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrap("ListIntegrations", err)
	}
	defer rows.Close()

	out := []model.Integration{}
	for rows.Next() {
		in, err := scanIntegration(rows)
		if err != nil {
			return nil, wrap("ListIntegrations", err)
		}
		out = append(out, *in)
	}
	return out, wrap("ListIntegrations", rows.Err())
}

func GetIntegration(ctx context.Context, db database.DB, provider string) (*model.Integration, error) {
	in, err := scanIntegration(db.QueryRow(ctx,
		`SELECT `+integrationColumns+` FROM integrations WHERE provider = $1`,
		provider,
	))
	if err != nil {
		return nil, wrap("GetIntegration", err)
	}
	return in, nil
}

// UpdateIntegration 覆寫 enabled 與整份 config
func UpdateIntegration(ctx context.Context, db database.DB, in *model.Integration) error {
	if in.Config == nil {
		in.Config = map[string]string{}
	}
	raw, err := json.Marshal(in.Config)
	if err != nil {
		return wrap("UpdateIntegration", err)
	}
	err = db.QueryRow(ctx,
		`UPDATE integrations SET enabled = $1, config = $2, updated_at = now()
		 WHERE provider = $3
		 RETURNING kind, updated_at`,
		in.Enabled,
		raw,
		in.Provider,
	).Scan(&in.Kind, &in.UpdatedAt)
	return wrap("UpdateIntegration", err)
}
