// Copyright 2024 The czar Authors.
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
	"os"

	"gopkg.in/yaml.v2"
)

// PriorityLevel configures one of the executive's PriQ bands.
type PriorityLevel struct {
	Priority int `yaml:"priority"`
	Min      int `yaml:"min"`
	Max      int `yaml:"max"`
}

// Config is czar's top-level configuration, loaded once at startup from a
// YAML file. There is no hot reload - a fresh process picks up config
// changes, matching the teacher's own Config-constructed-once-at-NewServer
// approach.
type Config struct {
	// StripingDefaults names the striping parameters assumed for a
	// database whose metadata store entry omits them.
	StripingDefaults struct {
		Stripes             int `yaml:"stripes"`
		SubStripesPerStripe int `yaml:"subStripesPerStripe"`
	} `yaml:"stripingDefaults"`

	// PriorityLevels configures the executive's PriQ bands. At least one
	// level must be present.
	PriorityLevels []PriorityLevel `yaml:"priorityLevels"`

	// MergeDSN is the data source name for the local SQL connection the
	// result merger stages and loads results through.
	MergeDSN string `yaml:"mergeDsn"`

	// MetadataDSN is the data source name for the metadata database that
	// secondary-index (director table) lookups are issued against.
	MetadataDSN string `yaml:"metadataDsn"`

	// ListenAddr names where a future front-end proxy transport would
	// attach. Unused today - wiring one in is out of scope.
	ListenAddr string `yaml:"listenAddr"`

	// LogLevel is parsed with logrus.ParseLevel.
	LogLevel string `yaml:"logLevel"`
}

// DefaultConfig returns the configuration czar falls back to when no
// config file is given: LSST's own striping defaults, a single priority
// level wide enough for interactive and background queries alike, and
// info-level logging.
func DefaultConfig() Config {
	cfg := Config{
		PriorityLevels: []PriorityLevel{{Priority: 1, Min: 1, Max: 8}},
		MergeDSN:       "postgres://localhost:5432/czar_merge?sslmode=disable",
		MetadataDSN:    "postgres://localhost:5432/czar_meta?sslmode=disable",
		ListenAddr:     ":4040",
		LogLevel:       "info",
	}
	cfg.StripingDefaults.Stripes = 85
	cfg.StripingDefaults.SubStripesPerStripe = 12
	return cfg
}

// LoadConfig reads and parses the YAML config file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
