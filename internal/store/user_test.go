package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/A123lny/o2o-catalogo-sub002/internal/database"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

func userRow(id int, email string, admin bool) []any {
	now := time.Now()
	return []any{id, "Mario Rossi", email, "hash", admin, true, nil, now, now}
}

func TestGetUserByEmail(t *testing.T) {
	rec := &recorder{}
	db := &database.FakeDB{QueryRowFn: rec.queryRow(row(userRow(7, "mario@example.it", true)...))}

	u, err := GetUserByEmail(context.Background(), db, "Mario@Example.it")
	require.NoError(t, err)
	require.Equal(t, 7, u.ID)
	require.True(t, u.IsAdmin)
	require.Nil(t, u.LastLoginAt)
	require.Contains(t, rec.sql, "lower(email) = lower($1)")
	require.Equal(t, []any{"Mario@Example.it"}, rec.args)
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := &database.FakeDB{QueryRowFn: (&recorder{}).queryRow(errRow(pgx.ErrNoRows))}

	_, err := GetUserByID(context.Background(), db, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListUsers(t *testing.T) {
	rec := &recorder{}
	db := &database.FakeDB{QueryFn: rec.query(newRows(
		userRow(1, "a@example.it", true),
		userRow(2, "b@example.it", false),
	), nil)}

	users, err := ListUsers(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "b@example.it", users[1].Email)
}

func TestCreateUser(t *testing.T) {
	now := time.Now()
	rec := &recorder{}
	db := &database.FakeDB{QueryRowFn: rec.queryRow(row(3, now, now))}

	u, err := CreateUser(context.Background(), db, &model.User{Name: "Anna", Email: "anna@example.it", PasswordHash: "h", IsActive: true})
	require.NoError(t, err)
	require.Equal(t, 3, u.ID)
	require.Equal(t, []any{"Anna", "anna@example.it", "h", false, true}, rec.args)
}

// userTx 模擬交易：adminRow 為 guardLastAdmin 查詢的結果 (數量, 目標是否為管理員)
func userTx(adminRow pgx.Row, execTag string) (*database.FakeTx, *txLog) {
	log := &txLog{}
	tx := &database.FakeTx{
		QueryRowFn: func(_ context.Context, sql string, args ...any) pgx.Row {
			log.lockSQL, log.lockArgs = sql, args
			return adminRow
		},
		ExecFn: func(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
			log.execArgs = args
			return pgconn.NewCommandTag(execTag), nil
		},
		CommitFn:   func(context.Context) error { log.committed = true; return nil },
		RollbackFn: func(context.Context) error { log.rolledBack = true; return nil },
	}
	return tx, log
}

type txLog struct {
	lockSQL    string
	lockArgs   []any
	execArgs   []any
	committed  bool
	rolledBack bool
}

func txDB(tx pgx.Tx) *database.FakeDB {
	return &database.FakeDB{BeginFn: func(context.Context) (pgx.Tx, error) { return tx, nil }}
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps admin rights without locking", func(t *testing.T) {
		tx, log := userTx(nil, "UPDATE 1")
		tx.QueryRowFn = nil
		require.NoError(t, UpdateUser(ctx, txDB(tx), &model.User{ID: 2, Name: "A", Email: "a@b.it", IsAdmin: true, IsActive: true}))
		require.Equal(t, []any{"A", "a@b.it", true, true, 2}, log.execArgs)
		require.True(t, log.committed)
	})

	t.Run("demoting last admin", func(t *testing.T) {
		tx, log := userTx(row(1, true), "UPDATE 1")
		err := UpdateUser(ctx, txDB(tx), &model.User{ID: 2, IsAdmin: false, IsActive: true})
		require.ErrorIs(t, err, ErrLastAdmin)
		require.Contains(t, log.lockSQL, "FOR UPDATE")
		require.Equal(t, []any{2}, log.lockArgs)
		require.Nil(t, log.execArgs)
		require.False(t, log.committed)
		require.True(t, log.rolledBack)
	})

	t.Run("deactivating one of two admins", func(t *testing.T) {
		tx, log := userTx(row(2, true), "UPDATE 1")
		require.NoError(t, UpdateUser(ctx, txDB(tx), &model.User{ID: 2, IsAdmin: true, IsActive: false}))
		require.True(t, log.committed)
	})

	t.Run("deactivating a regular user while one admin remains", func(t *testing.T) {
		tx, log := userTx(row(1, false), "UPDATE 1")
		require.NoError(t, UpdateUser(ctx, txDB(tx), &model.User{ID: 9, IsActive: false}))
		require.True(t, log.committed)
	})

	t.Run("not found", func(t *testing.T) {
		tx, log := userTx(row(0, false), "UPDATE 0")
		err := UpdateUser(ctx, txDB(tx), &model.User{ID: 9})
		require.ErrorIs(t, err, ErrNotFound)
		require.True(t, log.rolledBack)
	})

	t.Run("lock error", func(t *testing.T) {
		boom := errors.New("boom")
		tx, log := userTx(errRow(boom), "UPDATE 1")
		require.ErrorIs(t, UpdateUser(ctx, txDB(tx), &model.User{ID: 9}), boom)
		require.True(t, log.rolledBack)
	})

	t.Run("begin error", func(t *testing.T) {
		boom := errors.New("boom")
		db := &database.FakeDB{BeginFn: func(context.Context) (pgx.Tx, error) { return nil, boom }}
		require.ErrorIs(t, UpdateUser(ctx, db, &model.User{ID: 9}), boom)
	})
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		tx, log := userTx(row(1, false), "DELETE 1")
		require.NoError(t, DeleteUser(ctx, txDB(tx), 4))
		require.Equal(t, []any{4}, log.execArgs)
		require.True(t, log.committed)
	})

	t.Run("last admin", func(t *testing.T) {
		tx, log := userTx(row(1, true), "DELETE 1")
		require.ErrorIs(t, DeleteUser(ctx, txDB(tx), 4), ErrLastAdmin)
		require.Nil(t, log.execArgs)
		require.True(t, log.rolledBack)
	})

	t.Run("not found", func(t *testing.T) {
		tx, log := userTx(row(1, false), "DELETE 0")
		require.ErrorIs(t, DeleteUser(ctx, txDB(tx), 4), ErrNotFound)
		require.False(t, log.committed)
	})
}

func TestTwoFactor(t *testing.T) {
	now := time.Now()
	db := &database.FakeDB{QueryRowFn: (&recorder{}).queryRow(row(5, "SECRET", true, []string{"h1", "h2"}, now, &now))}

	tf, err := GetTwoFactor(context.Background(), db, 5)
	require.NoError(t, err)
	require.True(t, tf.Enabled)
	require.Equal(t, []string{"h1", "h2"}, tf.BackupCodes)

	rec := &recorder{}
	db = &database.FakeDB{ExecFn: rec.exec("INSERT 0 1", nil)}
	require.NoError(t, UpsertTwoFactorSecret(context.Background(), db, 5, "NEW"))
	require.Contains(t, rec.sql, "ON CONFLICT (user_id)")
	require.Contains(t, rec.sql, "enabled = FALSE")

	db = &database.FakeDB{ExecFn: rec.exec("UPDATE 0", nil)}
	require.ErrorIs(t, EnableTwoFactor(context.Background(), db, 5, []string{"x"}), ErrNotFound)
}
