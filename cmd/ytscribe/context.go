package main

import (
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"ytscribe/internal/config"
)

const skipConfigAnnotation = "skipConfigLoad"

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

// ensureConfig loads and fully validates the configuration once.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// pipelineConfig loads configuration for commands that never contact Telegram,
// so a missing token is not an error.
func (c *commandContext) pipelineConfig() (*config.Config, error) {
	cfg, _, _, err := config.LoadUnvalidated(c.configPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidatePipeline(); err != nil {
		return nil, err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// diagnosticConfig loads configuration without validation so status output can
// describe a half-configured install.
func (c *commandContext) diagnosticConfig() (*config.Config, string, bool, error) {
	return config.LoadUnvalidated(c.configPath())
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations[skipConfigAnnotation] == "true" {
			return true
		}
	}
	return false
}

func skipConfig() map[string]string {
	return map[string]string{skipConfigAnnotation: "true"}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
