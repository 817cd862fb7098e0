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

package app

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const defaultGrace = 5 * time.Second

// App 並行啟動所有 Component，收到 SIGINT/SIGTERM、ctx 結束或任一元件停止時，依註冊的反序關閉。
type App struct {
	comps []Component
	log   *slog.Logger
	grace time.Duration
}

func New() *App { return &App{grace: defaultGrace} }

// NewWith 建立並依序註冊元件
func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// WithLogger 關閉錯誤改寫到 log；nil 時寫到 stderr。
func (a *App) WithLogger(log *slog.Logger) *App {
	a.log = log
	return a
}

// WithGrace 優雅關閉的總時限
func (a *App) WithGrace(d time.Duration) *App {
	if d > 0 {
		a.grace = d
	}
	return a
}

// Run 等同 RunContext(context.Background())。
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext 阻塞直到收到終止信號、ctx 結束或某個元件的 Run 返回。
// 信號與 ctx 視為正常結束回傳 nil；元件提前返回時回傳其錯誤（nil 表示該元件自行正常停止）。
func (a *App) RunContext(ctx context.Context) error {
	if len(a.comps) == 0 {
		return errors.New("app: no component registered")
	}
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	select {
	case <-sigCtx.Done():
	case err = <-errCh:
	}
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.grace)
	defer cancel()
	// 後註冊的先關：server 先停止接收請求，再關閉它依賴的資源
	for i := len(a.comps) - 1; i >= 0; i-- {
		if err := a.comps[i].Shutdown(ctx); err != nil {
			if a.log != nil {
				a.log.Error("app.shutdown", slog.Any("err", err))
			} else {
				_, _ = os.Stderr.WriteString("shutdown err: " + err.Error() + "\n")
			}
		}
	}
}
