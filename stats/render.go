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

package stats

import (
	"encoding/json"
	"io"
	"time"

	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/montecarlo"
	"github.com/zintix-labs/pourlab/projection"
	"gopkg.in/yaml.v3"
)

// Render 把報表寫到 w。
type Render interface {
	Write(w io.Writer, v any) error
}

// RenderByName "text" | "json" | "yaml"，其他名稱回傳 Warn。
func RenderByName(name string) (Render, error) {
	switch name {
	case "", "text", "table":
		return &TextRender{}, nil
	case "json":
		return &JsonRender{}, nil
	case "yaml", "yml":
		return &YAMLRender{}, nil
	default:
		return nil, errs.Invalid("format", "format must be text, json or yaml")
	}
}

// 終端表格渲染
type TextRender struct{}

func (tr *TextRender) Write(w io.Writer, v any) error {
	var s string
	switch t := v.(type) {
	case *ProjectionReport:
		s = t.Table()
	case []projection.PresetResult:
		s = PresetTable(t)
	case *montecarlo.Report:
		s = SimTable(t, -time.Nanosecond)
	default:
		return errs.Fatalf("text render: unsupported type %T", v)
	}
	_, err := io.WriteString(w, s)
	return err
}

// Json渲染
type JsonRender struct{}

func (jr *JsonRender) Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML渲染
type YAMLRender struct{}

func (yr *YAMLRender) Write(w io.Writer, v any) error {
	// 最內層的一維陣列輸出成 flow style：[..., ...]
	return forceReadableList(w, v)
}

func forceReadableList(w io.Writer, v any) error {
	var node yaml.Node
	if err := node.Encode(v); err != nil {
		return err
	}
	styleReadableSequences(&node)

	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(&node)
}

func styleReadableSequences(n *yaml.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.DocumentNode, yaml.MappingNode:
		for _, c := range n.Content {
			styleReadableSequences(c)
		}
	case yaml.SequenceNode:
		leaf := true
		for _, c := range n.Content {
			if c != nil && (c.Kind == yaml.SequenceNode || c.Kind == yaml.MappingNode) {
				leaf = false
			}
			styleReadableSequences(c)
		}
		if leaf {
			n.Style = yaml.FlowStyle
		}
	}
}
