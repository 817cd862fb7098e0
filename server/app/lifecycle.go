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

// Package app 管理長駐元件的啟動與優雅關閉。
package app

import "context"

// Component 可啟動 / 可關閉的長生命週期元件。
//   - Run() 阻塞直到元件停止；正常停止回傳 nil。
//   - Shutdown(ctx) 要求優雅關閉，需尊重 ctx 的 deadline。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Closer 把只有 Close 的資源（模擬池、非同步 logger）包成 Component：
// Run 阻塞到 Shutdown 被呼叫，Shutdown 時執行 fn。
type Closer struct {
	fn   func()
	done chan struct{}
}

func NewCloser(fn func()) *Closer {
	return &Closer{fn: fn, done: make(chan struct{})}
}

func (c *Closer) Run() error {
	<-c.done
	return nil
}

func (c *Closer) Shutdown(context.Context) error {
	select {
	case <-c.done:
		return nil
	default:
	}
	close(c.done)
	if c.fn != nil {
		c.fn()
	}
	return nil
}
