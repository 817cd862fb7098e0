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

// Package netsvr 把 HTTP 框架包成 NetSvr，讓路由註冊與啟停控制分開。
package netsvr

import (
	"net/http"

	"github.com/zintix-labs/pourlab/server/app"
)

type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 只有路由行為，Group 回呼拿不到 Run/Shutdown。
type NetRouter interface {
	Use(middleware func(http.Handler) http.Handler)

	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	// Handle 註冊任意 http.Handler（例如 /metrics）到所有 method。
	Handle(path string, h http.Handler)

	Group(path string, fn func(NetRouter))
	// With 回傳套用額外 middleware 的子路由，只影響之後在其上註冊的路由。
	With(middleware ...func(http.Handler) http.Handler) NetRouter
}
