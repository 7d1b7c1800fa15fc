package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/listgate/internal/model"
)

// fileDocument is the on-disk layout. Field order is the key order in the file.
type fileDocument struct {
	Enabled     bool     `yaml:"enabled"`
	KickMessage string   `yaml:"kick_message"`
	AutoCheck   string   `yaml:"auto_check"`
	Whitelist   []string `yaml:"whitelist"`
}

// partialDocument tells a missing key apart from a zero value
type partialDocument struct {
	Enabled     *bool    `yaml:"enabled"`
	KickMessage *string  `yaml:"kick_message"`
	AutoCheck   *string  `yaml:"auto_check"`
	Whitelist   []string `yaml:"whitelist"`
}

// encodeSettings renders settings as YAML with the whitelist sorted, so equal
// settings always produce identical bytes
func encodeSettings(s model.Settings) ([]byte, error) {
	doc := fileDocument{
		Enabled:     s.Enabled,
		KickMessage: s.KickMessage,
		AutoCheck:   s.AutoCheck,
		Whitelist:   model.SortedIdentities(s.Whitelist),
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeSettings parses a settings document. Unknown keys are ignored and
// missing keys take their defaults.
func decodeSettings(data []byte) (model.Settings, error) {
	settings := model.DefaultSettings()

	var doc partialDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return settings, fmt.Errorf("parse settings: %w", err)
	}

	if doc.Enabled != nil {
		settings.Enabled = *doc.Enabled
	}
	if doc.KickMessage != nil {
		settings.KickMessage = *doc.KickMessage
	}
	if doc.AutoCheck != nil {
		settings.AutoCheck = *doc.AutoCheck
	}
	if doc.Whitelist != nil {
		settings.Whitelist = doc.Whitelist
	}
	return settings, nil
}
