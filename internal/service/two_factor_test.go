package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
)

func TestGenerateTOTPSecret(t *testing.T) {
	t.Cleanup(restoreGlobals)
	setup, err := GenerateTOTPSecret("O2O Catalogo", "admin@example.it")
	require.NoError(t, err)
	require.NotEmpty(t, setup.Secret)
	require.True(t, strings.HasPrefix(setup.OTPAuthURL, "otpauth://totp/"))
	require.Contains(t, setup.OTPAuthURL, "issuer=O2O")
	require.True(t, strings.HasPrefix(setup.QRCode, "data:image/png;base64,"))

	totpGenerate = func(totp.GenerateOpts) (*otp.Key, error) { return nil, errors.New("gen") }
	_, err = GenerateTOTPSecret("x", "y")
	require.Error(t, err)
}

func TestVerifyTOTP(t *testing.T) {
	t.Cleanup(restoreGlobals)
	setup, err := GenerateTOTPSecret("O2O", "a@example.it")
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }

	code, err := totp.GenerateCode(setup.Secret, now)
	require.NoError(t, err)
	require.True(t, VerifyTOTP(setup.Secret, code))
	require.True(t, VerifyTOTP(setup.Secret, " "+code[:3]+" "+code[3:]+" "))

	previous, _ := totp.GenerateCode(setup.Secret, now.Add(-30*time.Second))
	require.True(t, VerifyTOTP(setup.Secret, previous))

	stale, _ := totp.GenerateCode(setup.Secret, now.Add(-2*time.Minute))
	require.False(t, VerifyTOTP(setup.Secret, stale))

	require.False(t, VerifyTOTP(setup.Secret, "abc"))
}

func TestBackupCodes(t *testing.T) {
	t.Cleanup(restoreGlobals)
	plain, hashed, err := GenerateBackupCodes(3)
	require.NoError(t, err)
	require.Len(t, plain, 3)
	require.Len(t, hashed, 3)
	for _, c := range plain {
		require.Regexp(t, `^[a-z0-9]{4}-[a-z0-9]{4}$`, c)
	}

	remaining, ok := ConsumeBackupCode(hashed, strings.ToUpper(plain[1]))
	require.True(t, ok)
	require.Equal(t, []string{hashed[0], hashed[2]}, remaining)

	// 已使用的備援碼不可再用
	_, ok = ConsumeBackupCode(remaining, plain[1])
	require.False(t, ok)
}

func TestTwoFactorChallenge(t *testing.T) {
	t.Cleanup(restoreGlobals)
	ctx := context.Background()
	newUUID = func() string { return "tok" }

	store := map[string]string{}
	c := &cache.FakeCache{
		SetFn: func(_ context.Context, key string, val any, ttl time.Duration) *redis.StatusCmd {
			require.Equal(t, ChallengeTTL, ttl)
			store[key] = val.(string)
			return redis.NewStatusResult("OK", nil)
		},
		GetFn: func(_ context.Context, key string) *redis.StringCmd {
			v, ok := store[key]
			if !ok {
				return redis.NewStringResult("", redis.Nil)
			}
			return redis.NewStringResult(v, nil)
		},
		DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
			for _, k := range keys {
				delete(store, k)
			}
			return redis.NewIntResult(1, nil)
		},
	}

	token, err := IssueTwoFactorChallenge(ctx, c, 42)
	require.NoError(t, err)
	require.Equal(t, "tok", token)

	id, err := ResolveTwoFactorChallenge(ctx, c, token)
	require.NoError(t, err)
	require.Equal(t, 42, id)

	require.NoError(t, DropTwoFactorChallenge(ctx, c, token))
	_, err = ResolveTwoFactorChallenge(ctx, c, token)
	require.ErrorIs(t, err, ErrChallengeExpired)

	_, err = ResolveTwoFactorChallenge(ctx, c, "")
	require.ErrorIs(t, err, ErrChallengeExpired)
}

func TestIsTOTPCode(t *testing.T) {
	require.True(t, IsTOTPCode("123456"))
	require.True(t, IsTOTPCode(" 123 456 "))
	require.False(t, IsTOTPCode("12345"))
	require.False(t, IsTOTPCode("12345a"))
	require.False(t, IsTOTPCode("abcd-efgh"))
}

func TestRegisterChallengeFailure(t *testing.T) {
	ctx := context.Background()
	counts := map[string]int64{}
	var expired []string
	c := &cache.FakeCache{
		IncrFn: func(_ context.Context, key string) *redis.IntCmd {
			counts[key]++
			return redis.NewIntResult(counts[key], nil)
		},
		ExpireFn: func(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
			require.Equal(t, ChallengeTTL, ttl)
			expired = append(expired, key)
			return redis.NewBoolResult(true, nil)
		},
	}

	for i := int64(1); i <= MaxChallengeFailures; i++ {
		n, err := RegisterChallengeFailure(ctx, c, "tok")
		require.NoError(t, err)
		require.Equal(t, i, n)
	}
	require.Equal(t, []string{"2fa_challenge_fail:tok"}, expired)

	c.IncrFn = func(context.Context, string) *redis.IntCmd { return redis.NewIntResult(0, errors.New("down")) }
	_, err := RegisterChallengeFailure(ctx, c, "tok")
	require.Error(t, err)
}

func TestDropTwoFactorChallengeClearsFailures(t *testing.T) {
	var deleted []string
	c := &cache.FakeCache{DelFn: func(_ context.Context, keys ...string) *redis.IntCmd {
		deleted = append(deleted, keys...)
		return redis.NewIntResult(int64(len(keys)), nil)
	}}
	require.NoError(t, DropTwoFactorChallenge(context.Background(), c, "tok"))
	require.Equal(t, []string{"2fa_challenge:tok", "2fa_challenge_fail:tok"}, deleted)
}

func TestMarkTOTPUsed(t *testing.T) {
	ctx := context.Background()
	used := map[string]bool{}
	c := &cache.FakeCache{SetNXFn: func(_ context.Context, key string, _ any, ttl time.Duration) *redis.BoolCmd {
		require.Equal(t, 90*time.Second, ttl)
		if used[key] {
			return redis.NewBoolResult(false, nil)
		}
		used[key] = true
		return redis.NewBoolResult(true, nil)
	}}

	fresh, err := MarkTOTPUsed(ctx, c, 7, "123456")
	require.NoError(t, err)
	require.True(t, fresh)

	// 同一碼在時間窗內重送
	fresh, err = MarkTOTPUsed(ctx, c, 7, "123 456")
	require.NoError(t, err)
	require.False(t, fresh)

	// 其他使用者不受影響
	fresh, err = MarkTOTPUsed(ctx, c, 8, "123456")
	require.NoError(t, err)
	require.True(t, fresh)
	require.True(t, used["2fa_used:7:123456"])
}
