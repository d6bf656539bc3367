// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	flags "github.com/jessevdk/go-flags"
)

const defaultLogFilename = "walletdbtool.log"

type config struct {
	WalletFile string `long:"wallet" description:"Path to the wallet database file" required:"true"`
	Command    string `long:"cmd" description:"One of: load, verify, recover, backup" default:"load"`

	BackupsDir string `long:"backupsdir" description:"Directory to write backups into (backup command)"`
	Retention  int    `long:"retention" description:"Number of backups to retain (backup command)" default:"5"`

	LogDir   string `long:"logdir" description:"Directory to write log files to"`
	DebugLevel string `long:"debuglevel" description:"Logging level: trace, debug, info, warn, error, critical" default:"info"`
}

func loadConfig() (*config, error) {
	cfg := config{}
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if ok := asFlagsError(err, &flagsErr); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, err
	}

	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(os.TempDir(), "walletdbtool")
	}
	if cfg.BackupsDir == "" {
		cfg.BackupsDir = filepath.Join(filepath.Dir(cfg.WalletFile), "backups")
	}

	switch cfg.Command {
	case "load", "verify", "recover", "backup":
	default:
		return nil, fmt.Errorf("unknown command %q", cfg.Command)
	}

	return &cfg, nil
}

func asFlagsError(err error, target **flags.Error) bool {
	fe, ok := err.(*flags.Error)
	if ok {
		*target = fe
	}
	return ok
}
