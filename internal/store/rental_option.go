package store

import (
	"context"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

const rentalOptionColumns = `id, vehicle_id, contract_type, duration_months, annual_km,
	down_payment_cents, monthly_price_cents, final_payment_cents, created_at, updated_at`

func scanRentalOption(row interface{ Scan(...any) error }) (*model.RentalOption, error) {
	o := &model.RentalOption{}
	err := row.Scan(
		&o.ID, &o.VehicleID, &o.ContractType, &o.DurationMonths, &o.AnnualKM,
		&o.DownPaymentCents, &o.MonthlyPriceCents, &o.FinalPaymentCents, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// ListRentalOptions 取得一或多台車輛的租賃方案，依車輛、合約、期數、里程排序
func ListRentalOptions(ctx context.Context, db database.DB, vehicleIDs ...int) ([]model.RentalOption, error) {
	if len(vehicleIDs) == 0 {
		return []model.RentalOption{}, nil
	}
	rows, err := db.Query(ctx,
		`SELECT `+rentalOptionColumns+` FROM rental_options
		 WHERE vehicle_id = ANY($1)
		 ORDER BY vehicle_id, contract_type, duration_months, annual_km, id`,
		vehicleIDs,
	)
	if err != nil {
		return nil, wrap("ListRentalOptions", err)
	}
	defer rows.Close()

	options := []model.RentalOption{}
	for rows.Next() {
		o, err := scanRentalOption(rows)
		if err != nil {
			return nil, wrap("ListRentalOptions", err)
		}
		options = append(options, *o)
	}
	return options, wrap("ListRentalOptions", rows.Err())
}

// GetRentalOption 取得屬於指定車輛的租賃方案
func GetRentalOption(ctx context.Context, db database.DB, vehicleID, optionID int) (*model.RentalOption, error) {
	o, err := scanRentalOption(db.QueryRow(ctx,
		`SELECT `+rentalOptionColumns+` FROM rental_options WHERE id = $1 AND vehicle_id = $2`,
		optionID,
		vehicleID,
	))
	if err != nil {
		return nil, wrap("GetRentalOption", err)
	}
	return o, nil
}

func CreateRentalOption(ctx context.Context, db database.DB, o *model.RentalOption) error {
	err := db.QueryRow(ctx,
		`INSERT INTO rental_options (vehicle_id, contract_type, duration_months, annual_km,
		     down_payment_cents, monthly_price_cents, final_payment_cents)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		o.VehicleID, o.ContractType, o.DurationMonths, o.AnnualKM,
		o.DownPaymentCents, o.MonthlyPriceCents, o.FinalPaymentCents,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	return wrap("CreateRentalOption", err)
}

func UpdateRentalOption(ctx context.Context, db database.DB, o *model.RentalOption) error {
	err := db.QueryRow(ctx,
		`UPDATE rental_options SET contract_type = $1, duration_months = $2, annual_km = $3,
		     down_payment_cents = $4, monthly_price_cents = $5, final_payment_cents = $6, updated_at = now()
		 WHERE id = $7 AND vehicle_id = $8
		 RETURNING created_at, updated_at`,
		o.ContractType, o.DurationMonths, o.AnnualKM,
		o.DownPaymentCents, o.MonthlyPriceCents, o.FinalPaymentCents,
		o.ID, o.VehicleID,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	return wrap("UpdateRentalOption", err)
}

func DeleteRentalOption(ctx context.Context, db database.DB, vehicleID, optionID int) error {
	tag, err := db.Exec(ctx,
		`DELETE FROM rental_options WHERE id = $1 AND vehicle_id = $2`,
		optionID,
		vehicleID,
	)
	if err != nil {
		return wrap("DeleteRentalOption", err)
	}
	return mustAffect("DeleteRentalOption", tag)
}
