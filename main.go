// Package main is the entry point for the qascope CLI.
package main

import (
	"github.com/qascope/qascope/cmd"
	"github.com/qascope/qascope/internal/contract"
	"github.com/qascope/qascope/internal/runstore"
)

func main() {
	cmd.SetHistoryManager(runstore.Manager)
	defer runstore.CloseHistory()

	if err := cmd.Execute(); err != nil {
		contract.LogFatal("Command failed", err)
	}
}
