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

package reward

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/zintix-labs/pourlab/errs"
	"gopkg.in/yaml.v3"
)

// Setting 單一酒吧的設定檔內容（catalog 的一個檔案）。
//
//	pub_id: 12
//	name: north-side
//	policy:
//	  chance_percent: 5
//	  reward_amount: 500
//	  daily_budget: 20000
//	assumptions:
//	  transactions_per_day: 400
//	  unique_accounts_per_day: 120
type Setting struct {
	PubID       int64        `json:"pub_id" yaml:"pub_id" toml:"pub_id"`
	Name        string       `json:"name" yaml:"name" toml:"name"`
	Enabled     bool         `json:"enabled" yaml:"enabled" toml:"enabled"`
	Policy      Policy       `json:"policy" yaml:"policy" toml:"policy"`
	Assumptions *Assumptions `json:"assumptions,omitempty" yaml:"assumptions,omitempty" toml:"assumptions,omitempty"`
}

// init 正規化名稱、補上預設流量並執行基本檢查。
func (s *Setting) init() error {
	s.Name = strings.ToLower(strings.TrimSpace(s.Name))
	if s.Name == "" {
		return errs.Invalid("name", "pub name required")
	}
	if s.PubID <= 0 {
		return errs.Invalid("pub_id", "pub id must be > 0")
	}
	if err := s.Policy.Validate(); err != nil {
		return err
	}
	if s.Assumptions == nil {
		a := DefaultAssumptions()
		s.Assumptions = &a
	}
	return s.Assumptions.Validate()
}

// ParseSettingYAML 讀取 YAML 設定並檢查
func ParseSettingYAML(data []byte) (*Setting, error) {
	s := &Setting{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, errs.WrapAs(errs.Warn, err, "failed to unmarshal yaml")
	}
	if err := s.init(); err != nil {
		return nil, errs.Wrap(err, "setting initialized err")
	}
	return s, nil
}

// ParseSettingJSON 讀取 JSON 設定並檢查
func ParseSettingJSON(data []byte) (*Setting, error) {
	s := &Setting{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(s); err != nil {
		return nil, errs.WrapAs(errs.Warn, err, "failed to unmarshal json")
	}
	if err := s.init(); err != nil {
		return nil, errs.Wrap(err, "setting initialized err")
	}
	return s, nil
}

// ParseSettingTOML 讀取 TOML 設定並檢查；未知的 key 視為錯誤。
func ParseSettingTOML(data []byte) (*Setting, error) {
	s := &Setting{}
	meta, err := toml.Decode(string(data), s)
	if err != nil {
		return nil, errs.WrapAs(errs.Warn, err, "failed to unmarshal toml")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errs.Warnf("unknown toml keys: %v", undecoded)
	}
	if err := s.init(); err != nil {
		return nil, errs.Wrap(err, "setting initialized err")
	}
	return s, nil
}

// SupportedExt 回報副檔名是否為可解析的設定格式。
func SupportedExt(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	default:
		return false
	}
}

// ParseSettingByExt 依副檔名選擇解析器。
func ParseSettingByExt(filename string, raw []byte) (*Setting, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ParseSettingYAML(raw)
	case ".json":
		return ParseSettingJSON(raw)
	case ".toml":
		return ParseSettingTOML(raw)
	default:
		return nil, errs.NewFatal(fmt.Sprintf("unsupported config format: %q", filename))
	}
}
