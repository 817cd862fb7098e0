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

package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/zintix-labs/pourlab"
	"github.com/zintix-labs/pourlab/demo/demo_configs"
	"github.com/zintix-labs/pourlab/server"
	"github.com/zintix-labs/pourlab/server/logger"
	"github.com/zintix-labs/pourlab/server/svrcfg"
)

// Lab server 入口。組態順序：預設值 < -config TOML < 命令列旗標。
func main() {
	sCfg, closeLog, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer closeLog()
	if err := server.Run(sCfg); err != nil {
		closeLog()
		os.Exit(1)
	}
}

type config struct {
	File    string
	Addr    string
	LogMode string
	Configs string
	Backend string
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, logger.Closer, error) {
	cfg := new(config)
	flag.StringVar(&cfg.File, "config", "", "TOML config file")
	flag.StringVar(&cfg.Addr, "addr", "", "listen address (default "+svrcfg.DefaultAddr+")")
	flag.StringVar(&cfg.LogMode, "log-mode", "", "log mode: dev|prod|silence|file")
	flag.StringVar(&cfg.Configs, "configs", "", "directory of pub policy files (default: embedded demo pubs)")
	flag.StringVar(&cfg.Backend, "backend", "", "CyberTap backend base url; enables /v1/remote")
	flag.Parse()

	file := new(svrcfg.File)
	if cfg.File != "" {
		f, err := svrcfg.Load(cfg.File)
		if err != nil {
			return nil, nil, err
		}
		file = f
	}
	// 旗標覆寫檔案
	if cfg.LogMode != "" {
		file.Log.Mode = cfg.LogMode
	}
	if cfg.Configs != "" {
		file.Configs = cfg.Configs
	}
	if cfg.Backend != "" {
		file.Backend.URL = cfg.Backend
	}
	if cfg.Addr != "" {
		file.Addr = cfg.Addr
	}

	opt, err := file.LoggerOptions()
	if err != nil {
		return nil, nil, err
	}
	log, closeLog := logger.New(opt)

	var src fs.FS = demo_configs.FS
	if file.Configs != "" {
		src = os.DirFS(file.Configs)
	}
	lab, err := pourlab.New(pourlab.Configs(src)...)
	if err != nil {
		closeLog()
		return nil, nil, err
	}

	sCfg := &svrcfg.SvrCfg{Log: log, Lab: lab}
	file.Apply(sCfg)
	return sCfg, closeLog, nil
}
