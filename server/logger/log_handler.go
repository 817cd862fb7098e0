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

// Package logger 組裝服務使用的 *slog.Logger。
//
// 依 LogMode 選擇輸出：dev 為 stderr 文字、prod 為 stdout JSON、file 為可輪替的 JSON 檔、silence 全部丟棄。
// 任何 slog.Handler 都可以用 AsyncHandler 包成非阻塞寫出。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/pourlab/errs"
	"gopkg.in/natefinch/lumberjack.v2"
)

// enum LogMode
type LogMode uint8

const (
	ModeDev LogMode = iota
	ModeProd
	ModeSilence
	ModeFile
)

var modeNames = map[string]LogMode{
	"dev":     ModeDev,
	"prod":    ModeProd,
	"silence": ModeSilence,
	"file":    ModeFile,
}

// ParseMode 不分大小寫；空字串視為 dev。
func ParseMode(s string) (LogMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ModeDev, nil
	}
	if m, ok := modeNames[s]; ok {
		return m, nil
	}
	return ModeDev, errs.Invalid("log_mode", "log mode must be dev, prod, silence or file")
}

func (m LogMode) String() string {
	for k, v := range modeNames {
		if v == m {
			return k
		}
	}
	return "unknown"
}

// FileOptions ModeFile 的輪替設定，零值欄位使用預設。
type FileOptions struct {
	Path       string `toml:"path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

const defaultLogFile = "pourlab.log"

// Options 組裝 logger 的完整參數。
type Options struct {
	Mode  LogMode
	File  FileOptions
	Async int // <= 0 表示同步寫出
}

// Closer 釋放 logger 持有的資源（async 佇列、檔案）；可重複呼叫。
type Closer func()

// NewDefaultLogger 依 mode 的預設值建立同步 logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	h, _ := buildHandler(Options{Mode: mode})
	return slog.New(h)
}

// NewDefaultAsyncLogger 依 mode 的預設值建立非同步 logger。
func NewDefaultAsyncLogger(mode LogMode) *slog.Logger {
	h, _ := buildHandler(Options{Mode: mode})
	return slog.New(NewAsyncHandler(h, 8192))
}

// New 依 Options 建立 logger；回傳的 Closer 會先 drain async 佇列再關閉檔案。
func New(opt Options) (*slog.Logger, Closer) {
	h, file := buildHandler(opt)
	var ah *AsyncHandler
	if opt.Async > 0 {
		ah = NewAsyncHandler(h, opt.Async)
		h = ah
	}
	var once sync.Once
	closer := func() {
		once.Do(func() {
			ah.Close()
			if file != nil {
				_ = file.Close()
			}
		})
	}
	return slog.New(h), closer
}

// NewLogger 呼叫端自行組裝 handler 時使用；nil 時退回 dev handler。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h, _ = buildHandler(Options{Mode: ModeDev})
	}
	return slog.New(h)
}

// AsyncHandler 把 Handle 改成 enqueue，由背景 goroutine 依序交給 next 寫出。
// 佇列滿或已 Close 時直接丟棄並計數，不會把 I/O 延遲帶回請求路徑。
type AsyncHandler struct {
	next slog.Handler
	d    *asyncDispatcher
}

type asyncDispatcher struct {
	ch      chan asyncItem
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type asyncItem struct {
	ctx     context.Context
	rec     slog.Record
	handler slog.Handler
}

// NewAsyncHandler buf <= 0 時使用 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next, _ = buildHandler(Options{Mode: ModeDev})
	}
	if buf <= 0 {
		buf = 1024
	}
	d := &asyncDispatcher{
		ch:     make(chan asyncItem, buf),
		closed: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return &AsyncHandler{next: next, d: d}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.d != nil
}

// Dropped 因佇列滿或關閉而丟棄的筆數
func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.d.dropped.Load()
}

// Close 停止接收並寫完佇列中剩餘的紀錄。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.d.once.Do(func() { close(h.d.closed) })
	h.d.wg.Wait()
}

func (d *asyncDispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case it := <-d.ch:
			it.write()
		case <-d.closed:
			for {
				select {
				case it := <-d.ch:
					it.write()
				default:
					return
				}
			}
		}
	}
}

func (it asyncItem) write() {
	if it.handler != nil {
		_ = it.handler.Handle(it.ctx, it.rec)
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.d.closed:
		h.d.dropped.Add(1)
		return nil
	default:
	}
	// Record 內含可變引用，跨 goroutine 前必須 Clone
	select {
	case h.d.ch <- asyncItem{ctx: ctx, rec: r.Clone(), handler: h.next}:
	default:
		h.d.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), d: h.d}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), d: h.d}
}

// NewAsync mode 預設 handler 外包一層 AsyncHandler。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	base, _ := buildHandler(Options{Mode: mode})
	ah := NewAsyncHandler(base, buf)
	return slog.New(ah), ah
}

// buildHandler ModeFile 時一併回傳檔案，讓呼叫端可以關閉。
func buildHandler(opt Options) (slog.Handler, io.Closer) {
	switch opt.Mode {
	case ModeDev:
		return slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}), nil
	case ModeProd:
		// stdout JSON，交給 log collector
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}), nil
	case ModeSilence:
		return slog.NewTextHandler(io.Discard, nil), nil
	case ModeFile:
		f := rotatingFile(opt.File)
		return slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelInfo}), f
	default:
		return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}), nil
	}
}

func rotatingFile(o FileOptions) *lumberjack.Logger {
	path := strings.TrimSpace(o.Path)
	if path == "" {
		path = defaultLogFile
	}
	size := o.MaxSizeMB
	if size <= 0 {
		size = 100
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    size,
		MaxBackups: max(o.MaxBackups, 0),
		MaxAge:     max(o.MaxAgeDays, 0),
		Compress:   o.Compress,
	}
}
