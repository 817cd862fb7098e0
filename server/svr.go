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

package server

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zintix-labs/pourlab"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/server/api"
	"github.com/zintix-labs/pourlab/server/app"
	"github.com/zintix-labs/pourlab/server/netsvr"
	"github.com/zintix-labs/pourlab/server/svrcfg"
)

// Run 是 server 套件的「組裝器（assembler）」與「啟動入口（runtime entry）」。
//
// 它負責：
//  1. 驗證輸入的 SvrCfg（包含必要依賴，例如 logger 與 Pourlab）。
//  2. 建立 HTTP server（netsvr）與模擬池。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run() 並回傳停止原因。
//
// Run 不綁定任何檔案路徑或環境變數；組態檔由 cmd/svr 讀入後透過 SvrCfg 注入。
func Run(sCfg *svrcfg.SvrCfg) error {
	if err := sCfg.Valid(); err != nil {
		// 防止外層傳入的logger不可用
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	// 寫入時限需涵蓋最長的模擬
	svr := netsvr.NewChiServer(sCfg.Addr, netsvr.Timeouts{Write: sCfg.Sim.Timeout.Duration + 5*time.Second})
	return RunWithSvr(sCfg, svr)
}

// RunWithSvr 與 Run() 相同，但允許呼叫端注入自訂的 NetSvr
// （自己的 listener、TLS、timeout，或把路由掛到既有服務）。
//
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
// 模擬池會作為最後一個元件註冊，關閉時先停 HTTP 再關模擬池。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if err := sCfg.Valid(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	if svr == nil {
		err := errs.NewFatal("svr is required")
		sCfg.Log.Error(err.Error())
		return err
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		err := errs.NewFatal("default server is not ready")
		sCfg.Log.Error(err.Error())
		return err
	}

	pool := pourlab.NewSimPool(sCfg.Sim.Slots, sCfg.Sim.Workers)
	if err := api.RegisterRoutes(svr, sCfg, pool); err != nil {
		sCfg.Log.Error("register routes", slog.Any("err", err))
		pool.Close()
		return err
	}

	// 運行：app 以反序關閉，server 先於模擬池
	a := app.NewWith(app.NewCloser(pool.Close), svr).WithLogger(sCfg.Log)
	if c, ok := svr.(*netsvr.ChiAdapter); ok {
		sCfg.Log.Info("[pourlab] listening on http://localhost" + c.Address())
	} else {
		sCfg.Log.Info("[pourlab] listening")
	}
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
