// Package manifest loads batch scan definitions from YAML.
//
//	beacon_url: https://cdn.example/mod_pagespeed_beacon
//	options_hash: H123
//	targets:
//	  - url: https://example.com/
//	  - url: ./fixtures/landing.html
//	    html_url: https://example.com/landing
//	    options_hash: H456
package manifest

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"critical-images-beacon/internal/domain/entity"
)

var (
	ErrManifestNotFound = errors.New("manifest file not found")
	ErrNoTargets        = errors.New("manifest has no targets")
	ErrMissingURL       = errors.New("target url is required")
)

type File struct {
	BeaconURL   string        `yaml:"beacon_url"`
	OptionsHash string        `yaml:"options_hash"`
	Targets     []TargetEntry `yaml:"targets"`
}

type TargetEntry struct {
	URL         string `yaml:"url"`
	BeaconURL   string `yaml:"beacon_url,omitempty"`
	HTMLURL     string `yaml:"html_url,omitempty"`
	OptionsHash string `yaml:"options_hash,omitempty"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided manifest path
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
		}
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if len(f.Targets) == 0 {
		return nil, ErrNoTargets
	}
	for i, t := range f.Targets {
		if t.URL == "" {
			return nil, fmt.Errorf("target %d: %w", i, ErrMissingURL)
		}
	}
	return &f, nil
}

// Resolve fills per-target gaps from the file level, then from defaults.
// A target reports itself as its own page URL unless html_url says otherwise.
func (f *File) Resolve(defaults entity.BeaconConfig) []entity.Target {
	targets := make([]entity.Target, 0, len(f.Targets))
	for _, t := range f.Targets {
		targets = append(targets, entity.Target{
			PageURL: t.URL,
			Beacon: entity.BeaconConfig{
				BeaconURL:   firstNonEmpty(t.BeaconURL, f.BeaconURL, defaults.BeaconURL),
				HTMLURL:     firstNonEmpty(t.HTMLURL, defaults.HTMLURL, t.URL),
				OptionsHash: firstNonEmpty(t.OptionsHash, f.OptionsHash, defaults.OptionsHash),
			},
		})
	}
	return targets
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
