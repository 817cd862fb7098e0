// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package backend 是 CyberTap 後台 Lucky Pour 設定 API 的客戶端。
//
// 四個端點皆為 POST + JSON，以 Bearer token 驗證：
//
//	/user/game/luckypour/get     {pub_id}           -> Config | null
//	/user/game/luckypour/upsert  UpsertRequest      -> Config
//	/user/game/luckypour/toggle  {pub_id, enabled}  -> {message}
//	/user/game/luckypour/delete  {pub_id}           -> {message}
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/reward"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://cybertap.razniewski.eu"

const (
	pathGet    = "/user/game/luckypour/get"
	pathUpsert = "/user/game/luckypour/upsert"
	pathToggle = "/user/game/luckypour/toggle"
	pathDelete = "/user/game/luckypour/delete"
)

// 錯誤回應最多讀取的長度
const maxErrBody = 4 << 10

// TokenSource 提供呼叫後台用的 access token；身分驗證本身不在本套件範圍。
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken 固定 token。
type StaticToken string

func (s StaticToken) Token(context.Context) (string, error) {
	if strings.TrimSpace(string(s)) == "" {
		return "", errs.NewWarn("no access token available")
	}
	return string(s), nil
}

// Config 客戶端設定。RatePerSecond <= 0 表示不限速。
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	HTTPClient    *http.Client
}

// Client 執行緒安全，可在多個 goroutine 共用。
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// StatusError 後台回傳非 2xx。
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: status %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

// Message 後台的簡短回應。
type Message struct {
	Message string `json:"message"`
}

func New(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, errs.Invalid("base_url", "backend base url must be http(s)")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
	}, nil
}

// BaseURL 正規化後的後台位址。
func (c *Client) BaseURL() string { return c.baseURL }

// GetLuckyPour 取得某個 pub 的設定；尚未設定時回傳 (nil, nil)。
func (c *Client) GetLuckyPour(ctx context.Context, ts TokenSource, pubID int64) (*reward.Config, error) {
	if pubID <= 0 {
		return nil, errs.Invalid("pub_id", "pub_id must be positive")
	}
	var out *reward.Config
	if err := c.post(ctx, ts, pathGet, map[string]int64{"pub_id": pubID}, &out); err != nil {
		return nil, errs.Wrap(err, "get lucky pour config")
	}
	return out, nil
}

// UpsertLuckyPour 先在本地驗證政策，驗證失敗時不會送出請求。
func (c *Client) UpsertLuckyPour(ctx context.Context, ts TokenSource, req reward.UpsertRequest) (*reward.Config, error) {
	if req.PubID <= 0 {
		return nil, errs.Invalid("pub_id", "pub_id must be positive")
	}
	if err := req.Policy().Validate(); err != nil {
		return nil, err
	}
	out := new(reward.Config)
	if err := c.post(ctx, ts, pathUpsert, req, out); err != nil {
		return nil, errs.Wrap(err, "upsert lucky pour config")
	}
	return out, nil
}

func (c *Client) ToggleLuckyPour(ctx context.Context, ts TokenSource, pubID int64, enabled bool) (Message, error) {
	var out Message
	if pubID <= 0 {
		return out, errs.Invalid("pub_id", "pub_id must be positive")
	}
	body := struct {
		PubID   int64 `json:"pub_id"`
		Enabled bool  `json:"enabled"`
	}{pubID, enabled}
	if err := c.post(ctx, ts, pathToggle, body, &out); err != nil {
		return out, errs.Wrap(err, "toggle lucky pour")
	}
	return out, nil
}

func (c *Client) DeleteLuckyPour(ctx context.Context, ts TokenSource, pubID int64) (Message, error) {
	var out Message
	if pubID <= 0 {
		return out, errs.Invalid("pub_id", "pub_id must be positive")
	}
	if err := c.post(ctx, ts, pathDelete, map[string]int64{"pub_id": pubID}, &out); err != nil {
		return out, errs.Wrap(err, "delete lucky pour config")
	}
	return out, nil
}

func (c *Client) post(ctx context.Context, ts TokenSource, path string, in any, out any) error {
	if ts == nil {
		return errs.NewWarn("no access token available")
	}
	token, err := ts.Token(ctx)
	if err != nil {
		return errs.Wrap(err, "token")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return errs.WrapAs(errs.Fatal, err, "rate limit wait")
	}

	payload, err := json.Marshal(in)
	if err != nil {
		return errs.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errs.Wrap(err, "build request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(err, "call backend")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
		lv := errs.Fatal
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			lv = errs.Warn
		}
		return errs.WrapAs(lv, se, se.Error())
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errs.Wrap(err, "decode response")
	}
	return nil
}

// errorMessage 讀取 {"error": "..."}；解析失敗時回傳空字串。
func errorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	raw, err := io.ReadAll(io.LimitReader(r, maxErrBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	if json.Unmarshal(raw, &body) != nil {
		return ""
	}
	return body.Error
}

// HTTPStatus 轉給呼叫端時使用的狀態碼：4xx 原樣傳遞，其餘視為上游故障。
func (e *StatusError) HTTPStatus() int {
	if e.Status >= 400 && e.Status < 500 {
		return e.Status
	}
	return http.StatusBadGateway
}
