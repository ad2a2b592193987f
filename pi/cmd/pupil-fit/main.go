/*
DESCRIPTION
  pupil-fit locates the pupil in eye images or pupil masks read from files.
  For each image it reports the fitted pupil ellipse, or that no pupil could be
  found, and optionally plots the intensity histogram and the pupil track.

AUTHORS
  AusOcean eye tracker contributors

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean)

  It is free software: you can redistribute it and/or modify them
  under the terms of the GNU General Public License as published by the
  Free Software Foundation, either version 3 of the License, or (at your
  option) any later version.

  It is distributed in the hope that it will be useful, but WITHOUT
  ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
  FITNESS FOR A PARTICULAR PURPOSE. See the GNU General Public License
  for more details.

  You should have received a copy of the GNU General Public License
  in gpl.txt.  If not, see http://www.gnu.org/licenses.
*/

// pupil-fit locates the pupil in eye images or pupil masks read from files.
//
// Usage:
//
//	pupil-fit [flags] image...
//
// Grayscale eye images are thresholded at the pupil threshold derived from
// their histogram spikes; binary images are used as masks directly.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/eyetracker/pi/pupil"
	"github.com/ausocean/utils/logging"
)

// Logging configuration.
const (
	logMaxSize   = 500 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logSuppress  = false
)

const progName = "pupil-fit"

func main() {
	var (
		configFile = flag.String("config", "", "JSON file of config variables, e.g. {\"MinSpikeCount\": \"40\"}")
		logPath    = flag.String("log", "pupil-fit.log", "log file path")
		verbosity  = flag.Int("v", int(logging.Info), "log verbosity (-1 debug, 0 info, 1 warning, 2 error)")
		plotDir    = flag.String("plots", "", "directory to write plots to, none if empty")
		threshold  = flag.Int("threshold", -1, "fixed pupil threshold for grayscale images, -1 to derive from the histogram")
	)
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   *logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	defer fileLog.Close()
	log := logging.New(int8(*verbosity), io.MultiWriter(fileLog, os.Stderr), logSuppress)

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] image...\n", progName)
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := pupil.NewConfig()
	if *configFile != "" {
		err := loadConfig(*configFile, &cfg, log)
		if err != nil {
			log.Fatal("could not load config", "file", *configFile, "error", err)
		}
	}
	cfg.Validate(log)
	log.Debug("using config", "config", fmt.Sprintf("%+v", cfg))

	f := &fitter{cfg: cfg, threshold: *threshold, plotDir: *plotDir, log: log}
	found, err := f.run(flag.Args(), os.Stdout)
	if err != nil {
		log.Error("could not process images", "error", err)
		os.Exit(1)
	}
	if found == 0 {
		log.Warning("no pupil found in any image")
		os.Exit(1)
	}
}

// loadConfig reads a JSON object of string variables from path and applies
// them to c.
func loadConfig(path string, c *pupil.Config, l logging.Logger) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("could not read config file: %w", err)
	}
	var vars map[string]string
	err = json.Unmarshal(b, &vars)
	if err != nil {
		return fmt.Errorf("could not unmarshal config: %w", err)
	}
	return c.Update(vars, l)
}
