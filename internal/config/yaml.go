package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"LCInvestor/internal/model"
)

// yamlFile mirrors the YAML layout. Criteria stay as a node so that key order
// and the literal scalar text reach CastNum untouched.
type yamlFile struct {
	Account  *rawAccount `yaml:"account"`
	Criteria yaml.Node   `yaml:"criteria"`
	Gateway  struct {
		BaseURL           string  `yaml:"base_url"`
		Proxy             string  `yaml:"proxy"`
		RequestsPerSecond *float64 `yaml:"requests_per_second"`
		Timeout           string  `yaml:"timeout"`
	} `yaml:"gateway"`
	Log struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
}

func parseYAML(data []byte) (*Config, error) {
	var f yamlFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parse yaml: %v", err)}
	}
	if f.Account == nil {
		return nil, &Error{Section: sectionAccount, Reason: "section is missing"}
	}
	account, err := f.Account.cast()
	if err != nil {
		return nil, err
	}
	criteria, err := yamlCriteria(&f.Criteria)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Account: account, Criteria: criteria}
	cfg.Gateway.BaseURL = f.Gateway.BaseURL
	cfg.Gateway.Proxy = f.Gateway.Proxy
	cfg.Gateway.RequestsPerSecond = DefaultRequestsPerSecond
	if f.Gateway.RequestsPerSecond != nil {
		cfg.Gateway.RequestsPerSecond = *f.Gateway.RequestsPerSecond
	}
	if f.Gateway.Timeout != "" {
		d, err := time.ParseDuration(f.Gateway.Timeout)
		if err != nil {
			return nil, &Error{Section: "gateway", Key: "timeout", Reason: err.Error()}
		}
		cfg.Gateway.Timeout = d
	}
	cfg.Log = Log{
		File:       f.Log.File,
		Level:      f.Log.Level,
		MaxSizeMB:  f.Log.MaxSizeMB,
		MaxBackups: f.Log.MaxBackups,
	}
	cfg.Telegram = Telegram{BotToken: f.Telegram.BotToken, ChatID: f.Telegram.ChatID}
	cfg.Schedule = Schedule{Cron: f.Schedule.Cron}
	return cfg, nil
}

func yamlCriteria(node *yaml.Node) (Criteria, error) {
	if node.Kind == 0 {
		return nil, &Error{Section: "criteria", Reason: "section is missing"}
	}
	// "criteria:" with nothing under it decodes as a null scalar.
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return Criteria{}, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, &Error{Section: "criteria", Reason: "must be a mapping"}
	}
	criteria := make(Criteria, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return nil, &Error{Section: "criteria", Key: key.Value, Reason: "must be a scalar"}
		}
		criteria = append(criteria, Criterion{Name: key.Value, Value: model.CastNum(val.Value)})
	}
	return criteria, nil
}
