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

// Package stats 負責把試算與模擬結果渲染成終端表格、JSON 或 YAML。
package stats

import (
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// Currency 金額單位後綴
const Currency = "zł"

// FormatMinor 把最小貨幣單位（grosze）格式化為 "1,234.50 zł"。
func FormatMinor(minor int64) string {
	p := message.NewPrinter(lang)
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	// 整數部分走 locale 分組，小數部分固定兩位
	return p.Sprintf("%s%d", sign, minor/100) + fmt.Sprintf(".%02d %s", minor%100, Currency)
}

// FormatMinorFloat 平均值等非整數金額，先四捨五入到 grosz。
func FormatMinorFloat(minor float64) string {
	if minor < 0 {
		return FormatMinor(-int64(-minor + 0.5))
	}
	return FormatMinor(int64(minor + 0.5))
}

// FormatWins 中獎次數固定兩位小數
func FormatWins(w float64) string {
	return message.NewPrinter(lang).Sprintf("%.2f", w)
}

func formatDuration(d time.Duration, days int) string {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(days) / sec)
	return p.Sprintf("used: %.2f seconds\ndps : %d days/sec\n", sec, dps)
}

// fmtTable 兩欄表格：key | value
func fmtTable(title string, keys []string, msg map[string]string) string {
	maxKeyLen := 0
	maxValLen := 0
	for _, k := range keys {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(msg[k]); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)
	if titleW > totalInner {
		maxValLen += titleW - totalInner
		totalInner = titleW
	}

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", totalInner) + "+\n"

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	var sb strings.Builder
	sb.WriteString(top)
	sb.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	sb.WriteString(divider)
	for _, k := range keys {
		sb.WriteString("| " + runewidth.FillRight(k, maxKeyLen-2) + " | " + runewidth.FillRight(msg[k], maxValLen-2) + " |\n")
	}
	sb.WriteString(divider)
	return sb.String()
}

// fmtGrid 多欄表格，第一列為標題列。
func fmtGrid(title string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := len(rows[0])
	width := make([]int, cols)
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			width[i] = max(width[i], runewidth.StringWidth(row[i]))
		}
	}
	inner := cols - 1
	for _, w := range width {
		inner += w + 2
	}
	if tw := runewidth.StringWidth(title); tw > inner {
		width[cols-1] += tw - inner
		inner = tw
	}

	var div strings.Builder
	div.WriteString("+")
	for _, w := range width {
		div.WriteString(strings.Repeat("-", w+2) + "+")
	}
	div.WriteString("\n")

	var sb strings.Builder
	left := (inner - runewidth.StringWidth(title)) / 2
	right := inner - runewidth.StringWidth(title) - left
	sb.WriteString("+" + strings.Repeat("-", inner) + "+\n")
	sb.WriteString("|" + blank(left) + title + blank(right) + "|\n")
	sb.WriteString(div.String())
	for r, row := range rows {
		sb.WriteString("|")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if i == 0 {
				sb.WriteString(" " + runewidth.FillRight(cell, width[i]) + " |")
			} else {
				sb.WriteString(" " + runewidth.FillLeft(cell, width[i]) + " |")
			}
		}
		sb.WriteString("\n")
		if r == 0 {
			sb.WriteString(div.String())
		}
	}
	sb.WriteString(div.String())
	return sb.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
