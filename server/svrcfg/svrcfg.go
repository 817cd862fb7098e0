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

// Package svrcfg 服務的組態：TOML 檔提供基底，命令列旗標覆寫，Valid 補齊預設值。
package svrcfg

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/zintix-labs/pourlab"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/server/logger"
)

const (
	DefaultAddr         = ":5808"
	DefaultMaxSimDays   = 366
	DefaultMaxSimTx     = 50_000_000
	DefaultSimSlots     = 2
	DefaultSimWorkers   = 4
	DefaultReqTimeout   = 30 * time.Second
	DefaultRatePerMin   = 600
	DefaultRateBurst    = 60
	DefaultBackendRate  = 5
	DefaultBackendBurst = 5
)

// File TOML 組態檔結構。
//
//	addr = ":5808"
//	configs = "configs"
//
//	[log]
//	mode = "file"
//	path = "/var/log/pourlab.log"
//
//	[sim]
//	slots = 2
//	max_days = 366
//
//	[rate_limit]
//	requests_per_minute = 600
//
//	[backend]
//	url = "https://cybertap.razniewski.eu"
type File struct {
	Addr      string        `toml:"addr"`
	Configs   string        `toml:"configs"`
	Log       LogSection    `toml:"log"`
	Sim       SimSection    `toml:"sim"`
	RateLimit RateSection   `toml:"rate_limit"`
	Backend   BackendConfig `toml:"backend"`
	Metrics   MetricsConfig `toml:"metrics"`
}

type LogSection struct {
	Mode  string `toml:"mode"`
	Async int    `toml:"async"`
	logger.FileOptions
}

// SimSection 模擬端點的資源上限
type SimSection struct {
	Slots           int      `toml:"slots"`
	Workers         int      `toml:"workers"`
	MaxDays         int      `toml:"max_days"`
	MaxTransactions int64    `toml:"max_transactions"` // 單次模擬的交易總數上限（天數 × 每日交易）
	Timeout         Duration `toml:"timeout"`
}

type RateSection struct {
	RequestsPerMinute float64 `toml:"requests_per_minute"`
	Burst             int     `toml:"burst"`
	Disabled          bool    `toml:"disabled"`
}

// BackendConfig URL 為空時不註冊 /v1/remote 路由。
type BackendConfig struct {
	URL           string   `toml:"url"`
	Timeout       Duration `toml:"timeout"`
	RatePerSecond float64  `toml:"rate_per_second"`
	Burst         int      `toml:"burst"`
}

type MetricsConfig struct {
	Disabled  bool   `toml:"disabled"`
	Namespace string `toml:"namespace"`
}

// Duration 讓 TOML 可以寫 "30s"。
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Load 讀取 TOML；未知的 key 視為錯誤。
func Load(path string) (*File, error) {
	f := new(File)
	meta, err := toml.DecodeFile(path, f)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.WrapAs(errs.Warn, err, "config file not found: "+path)
		}
		return nil, errs.WrapAs(errs.Warn, err, "decode config file")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errs.Warnf("unknown config keys: %v", undecoded)
	}
	return f, nil
}

// SvrCfg 組裝完成、可直接交給 server.Run 的組態。
type SvrCfg struct {
	Log     *slog.Logger
	Lab     *pourlab.Pourlab
	Addr    string
	Sim     SimSection
	Rate    RateSection
	Backend BackendConfig
	Metrics MetricsConfig
}

// Valid 檢查必要依賴並補上預設值。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}
	if sc.Lab == nil {
		return errs.NewFatal("pourlab is required")
	}
	if strings.TrimSpace(sc.Addr) == "" {
		sc.Addr = DefaultAddr
	}

	// 1 <= slots <= 16
	sc.Sim.Slots = min(max(1, orDefault(sc.Sim.Slots, DefaultSimSlots)), 16)
	sc.Sim.Workers = max(1, orDefault(sc.Sim.Workers, DefaultSimWorkers))
	sc.Sim.MaxDays = max(1, orDefault(sc.Sim.MaxDays, DefaultMaxSimDays))
	if sc.Sim.MaxTransactions <= 0 {
		sc.Sim.MaxTransactions = DefaultMaxSimTx
	}
	if sc.Sim.Timeout.Duration <= 0 {
		sc.Sim.Timeout.Duration = DefaultReqTimeout
	}

	if sc.Rate.RequestsPerMinute <= 0 {
		sc.Rate.RequestsPerMinute = DefaultRatePerMin
	}
	if sc.Rate.Burst <= 0 {
		sc.Rate.Burst = DefaultRateBurst
	}

	sc.Backend.URL = strings.TrimSpace(sc.Backend.URL)
	if sc.Backend.RatePerSecond <= 0 {
		sc.Backend.RatePerSecond = DefaultBackendRate
	}
	if sc.Backend.Burst <= 0 {
		sc.Backend.Burst = DefaultBackendBurst
	}
	if sc.Metrics.Namespace == "" {
		sc.Metrics.Namespace = "pourlab"
	}
	return nil
}

// Apply 把檔案組態寫入 SvrCfg；只覆寫檔案中有值的欄位。
func (f *File) Apply(sc *SvrCfg) {
	if f == nil || sc == nil {
		return
	}
	if f.Addr != "" {
		sc.Addr = f.Addr
	}
	sc.Sim = f.Sim
	sc.Rate = f.RateLimit
	sc.Metrics = f.Metrics
	if f.Backend.URL != "" {
		sc.Backend = f.Backend
	}
}

// LoggerOptions 由檔案組態組出 logger 參數；mode 有誤時回傳 Warn。
func (f *File) LoggerOptions() (logger.Options, error) {
	mode, err := logger.ParseMode(f.Log.Mode)
	if err != nil {
		return logger.Options{}, err
	}
	return logger.Options{Mode: mode, File: f.Log.FileOptions, Async: orDefault(f.Log.Async, 8192)}, nil
}

func orDefault(v, d int) int {
	if v == 0 {
		return d
	}
	return v
}
