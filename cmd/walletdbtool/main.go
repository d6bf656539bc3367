// Copyright (c) 2026 The Umbracoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command walletdbtool is a diagnostic CLI over the wallet persistence
// core: it loads, verifies, recovers, or backs up a wallet database file
// without a running wallet process.
package main

import (
	"fmt"
	"os"

	"github.com/umbracoin/backup"
	"github.com/umbracoin/store"
	"github.com/umbracoin/walletdb"
	_ "github.com/umbracoin/walletdb/bdb"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := initLogRotator(cfg.LogDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not initialize log rotation: %v\n", err)
	}
	setLogLevels(cfg.DebugLevel)

	switch cfg.Command {
	case "load":
		return runLoad(cfg)
	case "verify":
		return runVerify(cfg)
	case "recover":
		return runRecover(cfg)
	case "backup":
		return runBackup(cfg)
	default:
		return fmt.Errorf("unknown command %q", cfg.Command)
	}
}

func openStore(path string) (*store.DB, error) {
	kvdb, err := walletdb.Open("bdb", path)
	if err != nil {
		return nil, err
	}
	return store.Open(kvdb), nil
}

func runLoad(cfg *config) error {
	db, err := openStore(cfg.WalletFile)
	if err != nil {
		return err
	}
	defer db.Close()

	sink := store.NewMemorySink()
	loader := &store.Loader{}
	result, err := loader.LoadWallet(db, sink, store.NewLockToken())
	if err != nil {
		return err
	}

	fmt.Printf("load result: %s\n", result)
	fmt.Printf("keys: %d  crypted keys: %d  transactions: %d  watch-only: %d\n",
		len(sink.Keys), len(sink.CryptedKeys), len(sink.Transactions), len(sink.WatchOnly))
	fmt.Printf("encrypted: %v  first-key-time-unreliable: %v\n", sink.Encrypted, sink.FirstKeyTimeUnreliable)
	return nil
}

func runVerify(cfg *config) error {
	if err := store.VerifyEnvironment(cfg.WalletFile); err != nil {
		return fmt.Errorf("environment verification failed: %w", err)
	}
	if err := store.VerifyDatabaseFile(cfg.WalletFile); err != nil {
		return fmt.Errorf("database file verification failed: %w", err)
	}
	fmt.Println("verify ok")
	return nil
}

func runRecover(cfg *config) error {
	loader := &store.Loader{}
	records, err := store.Recover(cfg.WalletFile, store.KeysOnlyFilter(loader))
	if err != nil {
		return err
	}
	fmt.Printf("recovered %d key-bearing/hdchain records\n", len(records))
	return nil
}

func runBackup(cfg *config) error {
	mgr := &backup.Manager{
		BackupsDir: cfg.BackupsDir,
		WalletName: walletStem(cfg.WalletFile),
		WalletPath: cfg.WalletFile,
		Retention:  cfg.Retention,
	}
	result, err := mgr.AutoBackup(nil)
	if err != nil {
		return err
	}
	switch {
	case result.Disabled:
		fmt.Println("backups disabled")
	case result.Aborted:
		fmt.Println("backup aborted: wallet locked against key derivation")
	case result.Skipped:
		fmt.Printf("backup skipped, already exists: %s\n", result.Path)
	default:
		fmt.Printf("backup written: %s\n", result.Path)
	}
	return nil
}

func walletStem(path string) string {
	base := path
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' {
			return base[i+1:]
		}
	}
	return base
}
