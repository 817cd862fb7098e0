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

// Package v1 /v1 的 HTTP handlers。
package v1

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/zintix-labs/pourlab"
	"github.com/zintix-labs/pourlab/backend"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/server/httperr"
	"github.com/zintix-labs/pourlab/server/netsvr"
	"github.com/zintix-labs/pourlab/server/svrcfg"
	"github.com/zintix-labs/pourlab/stats"
)

// Handler 所有 v1 端點共用的依賴。
type Handler struct {
	lab    *pourlab.Pourlab
	pool   *pourlab.SimPool
	sim    svrcfg.SimSection
	log    *slog.Logger
	remote *backend.Client // nil 表示未設定後台
}

// NewHandler sCfg 必須已通過 Valid()。remote 可為 nil。
func NewHandler(sCfg *svrcfg.SvrCfg, pool *pourlab.SimPool, remote *backend.Client) (*Handler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("pourlab is required")
	}
	if pool == nil {
		return nil, errs.NewFatal("sim pool is required")
	}
	return &Handler{lab: sCfg.Lab, pool: pool, sim: sCfg.Sim, log: sCfg.Log, remote: remote}, nil
}

// HasRemote 是否已設定 CyberTap 後台
func (h *Handler) HasRemote() bool {
	return h.remote != nil
}

// respond 依 ?format= 輸出：json（預設）、yaml，或 text（終端表格，使用 table 參數）。
// 先寫進 buffer，確保不會在輸出到一半時才發生錯誤。
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, full any, table any) {
	format := r.URL.Query().Get("format")
	render, err := stats.RenderByName(orJSON(format))
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	v, ctype := full, "application/json"
	switch render.(type) {
	case *stats.YAMLRender:
		ctype = "application/yaml"
	case *stats.TextRender:
		v, ctype = table, "text/plain; charset=utf-8"
		if table == nil {
			httperr.Errs(w, errs.Invalid("format", "text format is not available for this endpoint"))
			return
		}
	}

	var b bytes.Buffer
	if err := render.Write(&b, v); err != nil {
		httperr.Log(h.log, "render response", err)
		httperr.Errs(w, errs.Wrap(err, "render response"))
		return
	}
	w.Header().Set("Content-Type", ctype)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b.Bytes())
}

func (h *Handler) fail(w http.ResponseWriter, msg string, err error) {
	httperr.Log(h.log, msg, err)
	httperr.Errs(w, err)
}

func orJSON(format string) string {
	if format == "" {
		return "json"
	}
	return format
}

func pubIDParam(r *http.Request) (int64, error) {
	s := netsvr.URLParam(r, "pubID")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.Invalid("pub_id", "pub id must be a positive integer")
	}
	return id, nil
}
