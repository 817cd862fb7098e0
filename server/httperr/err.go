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

package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/pourlab/errs"
)

// StatusCoder 錯誤鏈上實作此介面的錯誤可以自行決定狀態碼（例如轉發上游的 4xx）。
type StatusCoder interface {
	HTTPStatus() int
}

// StatusCode 將錯誤映射成 HTTP status code。
//
// 規則：
//   - ctx timeout/cancel → 504/408
//   - StatusCoder       → 由錯誤自行決定
//   - errs.Warn         → 400
//   - errs.Fatal        → 500
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.HTTPStatus()
	}

	var e *errs.E
	if errors.As(err, &e) && e.ErrLv == errs.Warn {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// body 與 dto.ErrorBody 相同的 wire format
type body struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// Errs 以 JSON {"error": "...", "field": "..."} 寫回錯誤。
func Errs(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	Write(w, StatusCode(err), err)
}

// Write 以指定狀態碼寫回錯誤；5xx 不回傳內部細節。
func Write(w http.ResponseWriter, status int, err error) {
	b := body{Error: http.StatusText(status)}
	if status < 500 && err != nil {
		b.Error = err.Error()
		if e, ok := errs.AsErr(err); ok {
			b.Field = e.Field
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(b)
}

// Log 依狀態碼決定層級：5xx 為 Error，408/409/429 為 Warn，其他 4xx 不記錄。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	status := StatusCode(err)
	switch {
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
