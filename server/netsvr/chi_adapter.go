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

package netsvr

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

const DefaultAddr string = ":5808"

// Timeouts http.Server 的逾時設定；零值欄位使用預設。
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Read <= 0 {
		t.Read = 10 * time.Second
	}
	if t.Write <= 0 {
		t.Write = 60 * time.Second
	}
	if t.Idle <= 0 {
		t.Idle = 120 * time.Second
	}
	return t
}

// ChiAdapter 以 chi 實作 NetSvr；子路由（Group/With）只持有 router。
type ChiAdapter struct {
	router chi.Router
	server *http.Server
	addr   string
}

// NewChiServer addr 為空時使用 DefaultAddr。
func NewChiServer(addr string, t Timeouts) *ChiAdapter {
	if strings.TrimSpace(addr) == "" {
		addr = DefaultAddr
	}
	t = t.withDefaults()
	cr := chi.NewRouter()
	return &ChiAdapter{
		router: cr,
		server: &http.Server{
			Addr:              addr,
			Handler:           cr,
			ReadTimeout:       t.Read,
			ReadHeaderTimeout: t.Read,
			WriteTimeout:      t.Write,
			IdleTimeout:       t.Idle,
		},
		addr: addr,
	}
}

func NewChiServerDefault() *ChiAdapter {
	return NewChiServer(DefaultAddr, Timeouts{})
}

func (c *ChiAdapter) Ready() bool {
	return c != nil && c.router != nil && c.server != nil &&
		strings.Contains(c.addr, ":") &&
		c.server.Handler != nil && c.server.Handler == c.router
}

// Run 阻塞直到 server 停止；正常 Shutdown 不視為錯誤。
func (c *ChiAdapter) Run() error {
	if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (c *ChiAdapter) Shutdown(ctx context.Context) error {
	return c.server.Shutdown(ctx)
}

func (c *ChiAdapter) Use(mw func(http.Handler) http.Handler) {
	c.router.Use(mw)
}

func (c *ChiAdapter) Get(path string, h http.HandlerFunc) {
	c.router.Get(path, h)
}

func (c *ChiAdapter) Post(path string, h http.HandlerFunc) {
	c.router.Post(path, h)
}

func (c *ChiAdapter) Handle(path string, h http.Handler) {
	c.router.Handle(path, h)
}

func (c *ChiAdapter) Group(path string, fn func(NetRouter)) {
	c.router.Route(path, func(r chi.Router) {
		fn(&ChiAdapter{router: r})
	})
}

func (c *ChiAdapter) With(mw ...func(http.Handler) http.Handler) NetRouter {
	return &ChiAdapter{router: c.router.With(mw...)}
}

// Handler 整個路由樹，供 httptest 或嵌入其他 server 使用。
func (c *ChiAdapter) Handler() http.Handler {
	return c.router
}

func (c *ChiAdapter) Address() string {
	return c.addr
}

// URLParam 讀取 chi 路由參數（例如 {pubID}）。
func URLParam(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// RoutePattern 命中的路由樣板，未命中時為空字串；供 metrics 做低基數標籤。
func RoutePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
