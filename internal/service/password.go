// File: internal/service/password.go
package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// 測試可替換
var (
	bcryptGenerateFromPassword   = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
	randInt                      = rand.Int
)

// ErrWeakPassword 密碼不符合安全設定
var ErrWeakPassword = errors.New("password does not meet policy")

// HashPassword 接收明文密碼，回傳 bcrypt 哈希字串
func HashPassword(password string) (string, error) {
	hashBytes, err := bcryptGenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// ComparePassword 比對明文密碼與 bcrypt 哈希，成功回傳 nil，失敗則回傳錯誤
func ComparePassword(hash, password string) error {
	return bcryptCompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePasswordPolicy 檢查長度，且至少包含一個字母與一個數字
func ValidatePasswordPolicy(password string, minLength int) error {
	if len([]rune(password)) < minLength {
		return fmt.Errorf("%w: at least %d characters", ErrWeakPassword, minLength)
	}
	var letter, digit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return fmt.Errorf("%w: must contain letters and digits", ErrWeakPassword)
	}
	return nil
}

const passwordAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GeneratePassword 產生長度 n 的隨機密碼，保證同時含有字母與數字
func GeneratePassword(n int) (string, error) {
	if n < 2 {
		n = 2
	}
	for {
		buf := make([]byte, n)
		for i := range buf {
			idx, err := randIndex(len(passwordAlphabet))
			if err != nil {
				return "", err
			}
			buf[i] = passwordAlphabet[idx]
		}
		pwd := string(buf)
		if ValidatePasswordPolicy(pwd, n) == nil {
			return pwd, nil
		}
	}
}

func randIndex(n int) (int, error) {
	idx, err := randInt(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(idx.Int64()), nil
}
