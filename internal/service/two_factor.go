package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
)

const (
	totpPeriod  = 30
	totpSkew    = 1
	qrImageSize = 200

	// BackupCodeCount 每次產生的備援碼數量
	BackupCodeCount = 10

	// ChallengeTTL 密碼驗證通過後等待 TOTP 的時間
	ChallengeTTL = 5 * time.Minute

	// MaxChallengeFailures 同一個挑戰可輸入錯誤驗證碼的次數，超過即作廢
	MaxChallengeFailures = 5
)

var (
	// ErrInvalidTOTP 驗證碼錯誤或已過期
	ErrInvalidTOTP = errors.New("invalid two-factor code")
	// ErrChallengeExpired 2FA 挑戰不存在或已過期
	ErrChallengeExpired = errors.New("two-factor challenge expired")
)

// 測試可替換
var (
	totpGenerate = totp.Generate
	newUUID      = uuid.NewString
)

// TOTPSetup 新產生的秘鑰與 QR code
type TOTPSetup struct {
	Secret     string
	OTPAuthURL string
	// QRCode 為 data:image/png;base64,... 格式
	QRCode string
}

// GenerateTOTPSecret 產生 TOTP 秘鑰、otpauth URL 與 PNG QR code
func GenerateTOTPSecret(issuer, account string) (*TOTPSetup, error) {
	key, err := totpGenerate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("generate totp: %w", err)
	}

	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	return &TOTPSetup{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCode:     "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

func normalizeTOTP(code string) string {
	return strings.ReplaceAll(strings.TrimSpace(code), " ", "")
}

// IsTOTPCode 判斷輸入是否為 6 位數字 (可含空白)，否則視為備援碼
func IsTOTPCode(code string) bool {
	code = normalizeTOTP(code)
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// VerifyTOTP 驗證 6 位數驗證碼，容許前後各一個時間窗
func VerifyTOTP(secret, code string) bool {
	code = normalizeTOTP(code)
	ok, err := totp.ValidateCustom(code, secret, timeNow().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}

const backupAlphabet = "abcdefghjkmnpqrstuvwxyz23456789"

// GenerateBackupCodes 產生 n 組 xxxx-xxxx 備援碼，回傳明文與 bcrypt 雜湊
func GenerateBackupCodes(n int) (plain []string, hashed []string, err error) {
	plain = make([]string, 0, n)
	hashed = make([]string, 0, n)
	for i := 0; i < n; i++ {
		code, err := randomCode()
		if err != nil {
			return nil, nil, err
		}
		h, err := HashPassword(code)
		if err != nil {
			return nil, nil, err
		}
		plain = append(plain, code)
		hashed = append(hashed, h)
	}
	return plain, hashed, nil
}

func randomCode() (string, error) {
	var b strings.Builder
	for i := 0; i < 8; i++ {
		if i == 4 {
			b.WriteByte('-')
		}
		idx, err := randIndex(len(backupAlphabet))
		if err != nil {
			return "", err
		}
		b.WriteByte(backupAlphabet[idx])
	}
	return b.String(), nil
}

// ConsumeBackupCode 比對備援碼；成功時回傳移除該碼後的雜湊清單
func ConsumeBackupCode(hashes []string, code string) ([]string, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for i, h := range hashes {
		if ComparePassword(h, code) == nil {
			remaining := make([]string, 0, len(hashes)-1)
			remaining = append(remaining, hashes[:i]...)
			remaining = append(remaining, hashes[i+1:]...)
			return remaining, true
		}
	}
	return hashes, false
}

/* ---------- 登入挑戰 ---------- */

func challengeKey(token string) string { return "2fa_challenge:" + token }

// IssueTwoFactorChallenge 密碼驗證通過但需要 TOTP 時，發出一次性挑戰 token
func IssueTwoFactorChallenge(ctx context.Context, c cache.Cache, userID int) (string, error) {
	token := newUUID()
	if err := c.Set(ctx, challengeKey(token), strconv.Itoa(userID), ChallengeTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ResolveTwoFactorChallenge 取得挑戰對應的使用者 ID
func ResolveTwoFactorChallenge(ctx context.Context, c cache.Cache, token string) (int, error) {
	if token == "" {
		return 0, ErrChallengeExpired
	}
	id, err := c.Get(ctx, challengeKey(token)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrChallengeExpired
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func DropTwoFactorChallenge(ctx context.Context, c cache.Cache, token string) error {
	return c.Del(ctx, challengeKey(token), challengeFailKey(token)).Err()
}

func challengeFailKey(token string) string { return "2fa_challenge_fail:" + token }

// RegisterChallengeFailure 累加挑戰的錯誤次數，計數與挑戰同時過期
func RegisterChallengeFailure(ctx context.Context, c cache.Cache, token string) (int64, error) {
	key := challengeFailKey(token)
	n, err := c.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.Expire(ctx, key, ChallengeTTL).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// TOTPReplayWindow 涵蓋 VerifyTOTP 接受的所有時間窗
const TOTPReplayWindow = (2*totpSkew + 1) * totpPeriod * time.Second

// MarkTOTPUsed 記錄已使用的驗證碼；同一碼在有效時間窗內再次出現時回傳 false
func MarkTOTPUsed(ctx context.Context, c cache.Cache, userID int, code string) (bool, error) {
	key := fmt.Sprintf("2fa_used:%d:%s", userID, normalizeTOTP(code))
	return c.SetNX(ctx, key, 1, TOTPReplayWindow).Result()
}
