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

package api

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/zintix-labs/pourlab"
	"github.com/zintix-labs/pourlab/backend"
	"github.com/zintix-labs/pourlab/errs"
	v1 "github.com/zintix-labs/pourlab/server/api/v1"
	"github.com/zintix-labs/pourlab/server/logger"
	"github.com/zintix-labs/pourlab/server/netsvr"
	"github.com/zintix-labs/pourlab/server/netsvr/middleware"
	"github.com/zintix-labs/pourlab/server/svrcfg"
)

// RegisterRoutes 註冊。sCfg 必須已通過 Valid()。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, pool *pourlab.SimPool) error {
	var remote *backend.Client
	if sCfg.Backend.URL != "" {
		c, err := backend.New(backend.Config{
			BaseURL:       sCfg.Backend.URL,
			Timeout:       sCfg.Backend.Timeout.Duration,
			RatePerSecond: sCfg.Backend.RatePerSecond,
			Burst:         sCfg.Backend.Burst,
		})
		if err != nil {
			return err
		}
		remote = c
	}
	h, err := v1.NewHandler(sCfg, pool, remote)
	if err != nil {
		return err
	}

	var m *middleware.Metrics
	if !sCfg.Metrics.Disabled {
		m = middleware.NewMetrics(sCfg.Metrics.Namespace)
		if err := m.Register(poolCollectors(sCfg.Metrics.Namespace, pool, sCfg.Log)...); err != nil {
			return errs.Wrap(err, "register metrics")
		}
	}

	registerMiddleware(svr, sCfg, m) // 1. 註冊 middleware
	registerOps(svr, h, m)           // 2. /healthz /metrics
	registerV1API(svr, h)            // 3. 註冊 v1 api
	return nil
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg, m *middleware.Metrics) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover(sCfg.Log))
	if m != nil {
		svr.Use(m.Middleware)
	}
	if !sCfg.Rate.Disabled {
		rl := middleware.NewRateLimiter(middleware.RateLimit{
			RequestsPerMinute: sCfg.Rate.RequestsPerMinute,
			Burst:             sCfg.Rate.Burst,
		})
		svr.Use(rl.Middleware)
	}
	svr.Use(middleware.Compression(middleware.DefaultCompressConfig))
}

func registerOps(svr netsvr.NetSvr, h *v1.Handler, m *middleware.Metrics) {
	svr.Get("/healthz", h.Healthz)
	if m != nil {
		svr.Handle("/metrics", m.Handler())
	}
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, h *v1.Handler) {
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/projection", h.Projection)
		vOne.Post("/projection", h.Projection)
		vOne.Get("/projection/presets", h.Presets)
		vOne.Post("/projection/presets", h.Presets)
		vOne.Get("/simulate", h.Simulate)
		vOne.Post("/simulate", h.Simulate)

		vOne.Get("/pubs", h.Pubs)
		vOne.Get("/pubs/{pubID}/projection", h.PubProjection)
		vOne.Get("/pubs/{pubID}/presets", h.PubPresets)

		if h.HasRemote() {
			vOne.Get("/remote/{pubID}/projection", h.RemoteProjection)
		}
	})
}

// poolCollectors 模擬池與非同步 log 的觀測值
func poolCollectors(ns string, pool *pourlab.SimPool, log *slog.Logger) []prometheus.Collector {
	cs := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "sim", Name: "in_flight",
			Help: "Simulations currently running.",
		}, func() float64 { return float64(pool.Stats().InFlight) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "sim", Name: "capacity",
			Help: "Maximum concurrent simulations.",
		}, func() float64 { return float64(pool.Stats().Capacity) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "sim", Name: "rejected_total",
			Help: "Simulations abandoned while waiting for a slot.",
		}, func() float64 { return float64(pool.Stats().Rejected) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "sim", Name: "panics_total",
			Help: "Simulations that panicked.",
		}, func() float64 { return float64(pool.Stats().Panics) }),
	}
	if ah, ok := log.Handler().(*logger.AsyncHandler); ok {
		cs = append(cs, prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "log", Name: "dropped_total",
			Help: "Log records dropped by the async handler.",
		}, func() float64 { return float64(ah.Dropped()) }))
	}
	return cs
}

