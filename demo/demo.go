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

// Package demo 以內嵌的範例酒吧設定組出可直接執行的 Pourlab 與 server 組態。
package demo

import (
	"github.com/zintix-labs/pourlab"
	"github.com/zintix-labs/pourlab/demo/demo_configs"
	"github.com/zintix-labs/pourlab/errs"
	"github.com/zintix-labs/pourlab/server/logger"
	"github.com/zintix-labs/pourlab/server/svrcfg"
)

func New() (*pourlab.Pourlab, error) {
	return pourlab.New(pourlab.Configs(demo_configs.FS)...)
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := New()
	if err != nil {
		return nil, errs.NewFatal("new pourlab failed:" + err.Error())
	}
	scfg := &svrcfg.SvrCfg{
		Log: logger.NewDefaultAsyncLogger(logger.ModeDev),
		Lab: lab,
	}
	return scfg, nil
}
