// Package client はdeskhub APIに接続する組み込み用クライアントSDKを提供する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/hitoshi/deskhub/internal/model"
)

const csrfHeaderName = "X-CSRF-Token"

// Client はdeskhubサーバーAPIへのHTTPクライアント。
// セッションCookieはjarで保持し、CSRFトークンは取得後に全リクエストへ付与する。
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.Mutex
	csrfToken string
}

// New はClientを生成する。
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 30 * time.Second,
			// フラグメント付きリダイレクトはクライアント側で処理するため追従しない
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}, nil
}

// BaseURL は接続先のベースURLを返す。
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchCSRFToken はCSRFトークンを取得して以降のリクエストに付与する。
func (c *Client) FetchCSRFToken(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/csrf-token", nil)
	if err != nil {
		return fmt.Errorf("failed to build csrf request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "csrf_token" {
			c.mu.Lock()
			c.csrfToken = cookie.Value
			c.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("csrf token cookie not found in response")
}

// do はJSONリクエストを送信し、成功時はoutにデコードする。
// エラーレスポンスはmodel.APIErrorとして返す。
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.Lock()
	if c.csrfToken != "" {
		req.Header.Set(csrfHeaderName, c.csrfToken)
	}
	c.mu.Unlock()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeAPIError はエラーレスポンスをAPIErrorに復元する。
// 統一フォーマットでないボディはステータスコードのみのエラーとして扱う。
func decodeAPIError(resp *http.Response) error {
	var apiErr model.APIError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Code == "" {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return &apiErr
}

// Identity はサーバーが返すログインユーザー情報。
type Identity struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	EmailConfirmed bool   `json:"email_confirmed"`
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignIn はメールアドレスとパスワードでサインインする。
func (c *Client) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodPost, "/auth/signin", credentialsRequest{Email: email, Password: password}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// SignUp は新規登録する。返る識別情報はメール未確認の場合がある。
func (c *Client) SignUp(ctx context.Context, email, password string) (*Identity, error) {
	var identity Identity
	err := c.do(ctx, http.MethodPost, "/auth/signup", credentialsRequest{Email: email, Password: password}, &identity)
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

// Me は現在のセッションのユーザー情報を返す。
func (c *Client) Me(ctx context.Context) (*Identity, error) {
	var identity Identity
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// CreateSession はトークンペアを提示してセッションを確立する。
// OAuthリダイレクトのフラグメントで受け取ったトークンの再送に使う。
func (c *Client) CreateSession(ctx context.Context, pair *model.TokenPair) (*Identity, error) {
	var identity Identity
	if err := c.do(ctx, http.MethodPost, "/auth/session", pair, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Logout はサーバー側のセッションを破棄する。
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// GoogleLoginURL はGoogle OAuthフローを開始するURLを返す。
func (c *Client) GoogleLoginURL() string {
	return c.baseURL + "/auth/google/login"
}
