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

// Package errs 定義 pourlab 統一的錯誤型別與分級。
//
// 分級決定上層的處理方式：Warn 代表呼叫端輸入有誤（HTTP 400、CLI 提示後結束），
// Fatal 代表系統或依賴出錯（HTTP 500），Log 只需記錄。
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
//
// Field 只在輸入驗證錯誤時填寫（例如 "chance_percent"），讓 API 能指出是哪個欄位出錯。
type E struct {
	Message string
	Field   string
	Cause   error
	ErrLv   ErrLevel
}

func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Field != "" {
		base += " | field: " + e.Field
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// Invalid 建立一個欄位驗證錯誤（一律為 Warn）。
func Invalid(field string, msg string) *E {
	return &E{Message: msg, Field: field, ErrLv: Warn}
}

// Wrap 使用給定訊息包裝底層錯誤。
//
// ErrLevel 規則：
//   - cause 已經是 *E：沿用其 ErrLv 與 Field。
//   - 其他錯誤（標準庫或三方依賴）：一律視為 Fatal。
func Wrap(cause error, msg string) *E {
	errLv := Fatal
	field := ""
	if e, ok := AsErr(cause); ok {
		errLv = e.ErrLv
		field = e.Field
	}
	return &E{Message: msg, Field: field, Cause: cause, ErrLv: errLv}
}

// WrapAs 與 Wrap 相同，但由呼叫端明確指定分級（例如把遠端 4xx 視為 Warn）。
func WrapAs(errLv ErrLevel, cause error, msg string) *E {
	return &E{Message: msg, Cause: cause, ErrLv: errLv}
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

// IsWarn 回報 err 鏈上第一個 *E 是否為 Warn。
func IsWarn(err error) bool {
	e, ok := AsErr(err)
	return ok && e.ErrLv == Warn
}
