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

package pourlab

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/montecarlo"
)

// SimPool 限制同時執行的模擬數量，供 HTTP 等長駐服務使用。
//
// 每個模擬佔用一個 slot，slot 用完時呼叫端會等待直到 ctx 結束。
// 模擬 panic（含 montecarlo worker 內的 panic）會轉成 Fatal 錯誤並歸還 slot，池子維持可用。
type SimPool struct {
	slots     chan struct{}
	workers   int
	done      chan struct{}
	closeOnce sync.Once
	reason    atomic.Value // string
	inflight  atomic.Int32
	panics    atomic.Int32
	rejected  atomic.Int32
}

// NewSimPool n 為同時模擬上限，workers 為每個模擬的 goroutine 數。
func NewSimPool(n, workers int) *SimPool {
	n = max(1, n)
	p := &SimPool{
		slots:   make(chan struct{}, n),
		workers: max(1, workers),
		done:    make(chan struct{}),
	}
	p.reason.Store("")
	return p
}

// Simulate 取得 slot 後執行模擬；seed 為 nil 時使用隨機種子。cfg.Workers 會被池的設定覆寫。
func (p *SimPool) Simulate(ctx context.Context, cfg montecarlo.Config, seed *int64) (rep *montecarlo.Report, err error) {
	select {
	case <-p.done:
		return nil, errs.NewFatal("sim pool closed: " + p.ClosedReason())
	default:
	}

	cfg.Workers = p.workers
	var sim *montecarlo.Simulator
	if seed != nil {
		sim, err = montecarlo.NewWithSeed(cfg, *seed)
	} else {
		sim, err = montecarlo.New(cfg)
	}
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		p.rejected.Add(1)
		return nil, errs.WrapAs(errs.Warn, ctx.Err(), "waiting for simulation slot")
	case <-p.done:
		return nil, errs.NewFatal("sim pool closed: " + p.ClosedReason())
	case p.slots <- struct{}{}:
	}
	p.inflight.Add(1)
	defer func() {
		if r := recover(); r != nil {
			p.panics.Add(1)
			rep = nil
			err = errs.NewFatal(fmt.Sprintf("simulation panic: %v\n%s", r, debug.Stack()))
		}
		p.inflight.Add(-1)
		<-p.slots
	}()

	rep, _, err = sim.RunContext(ctx, false)
	return rep, err
}

// Close 之後 Simulate 一律回傳錯誤；已在執行的模擬不受影響。可重複呼叫。
func (p *SimPool) Close() {
	p.closeWithReason("closed")
}

func (p *SimPool) closeWithReason(reason string) {
	p.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		p.reason.Store(reason)
		close(p.done)
	})
}

func (p *SimPool) Closed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

func (p *SimPool) ClosedReason() string {
	if s, ok := p.reason.Load().(string); ok {
		return s
	}
	return ""
}

// SimPoolStats 觀測用快照
type SimPoolStats struct {
	Capacity int   `json:"capacity"`
	InFlight int32 `json:"in_flight"`
	Panics   int32 `json:"panics"`
	Rejected int32 `json:"rejected"`
	Closed   bool  `json:"closed"`
}

func (p *SimPool) Stats() SimPoolStats {
	return SimPoolStats{
		Capacity: cap(p.slots),
		InFlight: p.inflight.Load(),
		Panics:   p.panics.Load(),
		Rejected: p.rejected.Load(),
		Closed:   p.Closed(),
	}
}
