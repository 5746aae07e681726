// Package config loads and validates the fixed-shape build configuration
// (spec.md §3 GlobalConfig). The struct is enumerated rather than an open
// map, per spec.md §9 ("Dynamic config").
package config

import (
	"encoding/json"
	"fmt"

	"github.com/imagegate/gatebuilder/internal/bgerrors"
)

// GlobalConfig is the immutable build input, loaded from
// data/data-global.json.
type GlobalConfig struct {
	GameRandomSalt string   `json:"gameRandomSalt"`
	LevelCount     int      `json:"levelCount"`
	HintThresholds []int    `json:"hintThresholds"`
	UnlockedLevels int      `json:"unlockedLevels"`
	Languages      []string `json:"languages"`
}

// Parse decodes and validates raw JSON into a GlobalConfig.
func Parse(raw []byte) (GlobalConfig, error) {
	var cfg GlobalConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return GlobalConfig{}, bgerrors.Wrap(bgerrors.ErrConfig, "parsing data-global.json", err)
	}
	if err := cfg.validate(); err != nil {
		return GlobalConfig{}, err
	}
	return cfg, nil
}

func (c GlobalConfig) validate() error {
	if c.GameRandomSalt == "" {
		return bgerrors.New(bgerrors.ErrConfig, "gameRandomSalt must not be empty")
	}
	if c.LevelCount < 1 || c.LevelCount > 255 {
		return bgerrors.New(bgerrors.ErrConfig, fmt.Sprintf("levelCount %d out of range [1,255]", c.LevelCount))
	}
	if len(c.HintThresholds) == 0 {
		return bgerrors.New(bgerrors.ErrConfig, "hintThresholds must not be empty")
	}
	for i, k := range c.HintThresholds {
		if k < 2 || k > c.LevelCount {
			return bgerrors.New(bgerrors.ErrConfig,
				fmt.Sprintf("hintThresholds[%d]=%d must be in [2,levelCount=%d]", i, k, c.LevelCount))
		}
	}
	if len(c.Languages) == 0 {
		return bgerrors.New(bgerrors.ErrConfig, "languages must not be empty")
	}
	if c.UnlockedLevels < 0 || c.UnlockedLevels > c.LevelCount {
		return bgerrors.New(bgerrors.ErrConfig, fmt.Sprintf("unlockedLevels %d out of range [0,levelCount=%d]", c.UnlockedLevels, c.LevelCount))
	}
	return nil
}
