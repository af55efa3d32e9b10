package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cast"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/A123lny/o2o-catalogo-sub002/internal/cache"
	"github.com/A123lny/o2o-catalogo-sub002/internal/model"
)

// SocialStateTTL OAuth state 的有效時間
const SocialStateTTL = 10 * time.Minute

var (
	// ErrProviderDisabled 社群登入未啟用或設定不完整
	ErrProviderDisabled = errors.New("social provider disabled")
	// ErrInvalidState OAuth state 不存在、過期或不屬於此 provider
	ErrInvalidState = errors.New("invalid oauth state")
	// ErrEmailNotVerified provider 未確認使用者擁有此 email
	ErrEmailNotVerified = errors.New("email not verified by provider")
)

type socialEndpoint struct {
	endpoint    oauth2.Endpoint
	scopes      []string
	userInfoURL string
	// requireVerified 要求 userinfo 回傳 email_verified=true
	requireVerified bool
}

var socialEndpoints = map[string]socialEndpoint{
	model.ProviderGoogle: {
		endpoint:        endpoints.Google,
		scopes:          []string{"openid", "email", "profile"},
		userInfoURL:     "https://openidconnect.googleapis.com/v1/userinfo",
		requireVerified: true,
	},
	// Graph API 只回傳已確認的主要 email，沒有 email_verified 欄位
	model.ProviderFacebook: {
		endpoint:    endpoints.Facebook,
		scopes:      []string{"email"},
		userInfoURL: "https://graph.facebook.com/me?fields=email",
	},
}

// SocialProvider 以整合設定建立的 OAuth2 用戶端
type SocialProvider struct {
	Name            string
	config          *oauth2.Config
	userInfoURL     string
	requireVerified bool
}

// NewSocialProvider 由 integrations 資料列建立；停用或缺少 client id/secret 時回傳 ErrProviderDisabled
func NewSocialProvider(in model.Integration, publicBaseURL string) (*SocialProvider, error) {
	ep, ok := socialEndpoints[in.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported social provider %q", in.Provider)
	}
	if !in.Enabled || in.Config["client_id"] == "" || in.Config["client_secret"] == "" {
		return nil, ErrProviderDisabled
	}
	return &SocialProvider{
		Name: in.Provider,
		config: &oauth2.Config{
			ClientID:     in.Config["client_id"],
			ClientSecret: in.Config["client_secret"],
			Endpoint:     ep.endpoint,
			RedirectURL:  strings.TrimRight(publicBaseURL, "/") + "/api/auth/social/" + in.Provider + "/callback",
			Scopes:       ep.scopes,
		},
		userInfoURL:     ep.userInfoURL,
		requireVerified: ep.requireVerified,
	}, nil
}

func (p *SocialProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *SocialProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(ctx, code)
}

// FetchEmail 以 access token 取得使用者 email；需要驗證的 provider 未確認 email 時回傳 ErrEmailNotVerified
func (p *SocialProvider) FetchEmail(ctx context.Context, tok *oauth2.Token) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.config.Client(ctx, tok).Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s userinfo: status %d", p.Name, resp.StatusCode)
	}

	var info struct {
		Email string `json:"email"`
		// 部分 provider 以字串 "true" 回傳
		EmailVerified any `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", err
	}
	if info.Email == "" {
		return "", fmt.Errorf("%s userinfo: email not granted", p.Name)
	}
	if p.requireVerified && !cast.ToBool(info.EmailVerified) {
		return "", fmt.Errorf("%s userinfo: %w", p.Name, ErrEmailNotVerified)
	}
	return info.Email, nil
}

func socialStateKey(state string) string { return "oauth_state:" + state }

// IssueSocialState 產生 OAuth state 並記錄所屬 provider
func IssueSocialState(ctx context.Context, c cache.Cache, provider string) (string, error) {
	state := newUUID()
	if err := c.Set(ctx, socialStateKey(state), provider, SocialStateTTL).Err(); err != nil {
		return "", err
	}
	return state, nil
}

// ConsumeSocialState 驗證 state 並立即作廢
func ConsumeSocialState(ctx context.Context, c cache.Cache, state, provider string) error {
	if state == "" {
		return ErrInvalidState
	}
	key := socialStateKey(state)
	stored, err := c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrInvalidState
	}
	if err != nil {
		return err
	}
	if err := c.Del(ctx, key).Err(); err != nil {
		return err
	}
	if stored != provider {
		return ErrInvalidState
	}
	return nil
}
