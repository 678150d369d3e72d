// mattework is a command-line host for the material ID and multimatte
// panel. It works on a scene document stored as YAML or SQLite.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/mattework/internal/config"
	"github.com/Faultbox/mattework/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg, args, os.Stdout); err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`mattework - material ID and multimatte manager

Usage:
  mattework [-config file] [-scene file] [-format yaml|sqlite] [-debug] <command> [args]

Commands:
  init [-force] [-config-out file]       Write a sample scene document (and settings)
  show [mesh...]                         Show meshes (default: selected, else all) and mattes
  set-id <id|""> <material...>           Set the material ID of every listed material
  make-matte <material...>               Build multimattes from materials, in order
  delete-matte <name...>                 Delete multimattes
  rename-matte <old> <new>               Rename a multimatte
  set-channels <matte> <r> <g> <b>       Set the three channel IDs ("" leaves one unset)
  lowest-id [-zero]                      Print the lowest unused material ID

Examples:
  mattework init
  mattework show char:bodyShape
  mattework set-id 12 char:skin_MTL char:eyes_MTL
  mattework make-matte char:cloth_MTL prop:metal_MTL
  mattework -format sqlite -scene shot.db init`)
}
