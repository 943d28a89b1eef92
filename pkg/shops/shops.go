package shops

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shoplo-hq/shoplo-go/pkg/shoplo"
)

// Package shops contains the shop registry (YAML/JSON) the export toolkit runs against.

type Profile struct {
	ID             string         `json:"id" yaml:"id"`
	Name           string         `json:"name" yaml:"name"`
	Shop           string         `json:"shop" yaml:"shop"`
	Username       string         `json:"username" yaml:"username"`
	APIKey         string         `json:"api_key" yaml:"api_key"`
	UserAgent      string         `json:"user_agent" yaml:"user_agent"`
	Secure         bool           `json:"secure" yaml:"secure"`
	Enabled        *bool          `json:"enabled" yaml:"enabled"`
	ResponseFormat string         `json:"response_format" yaml:"response_format"`
	RequestDelayMs int            `json:"request_delay_ms" yaml:"request_delay_ms"`
	Collections    []string       `json:"collections" yaml:"collections"`
	Config         map[string]any `json:"config" yaml:"config"`
}

type registryFile struct {
	Shops []Profile `json:"shops" yaml:"shops"`
}

var (
	defaultRequestDelayMs = 500
	defaultCollections    = []string{"products"}
)

// Registry materializes shop profiles loaded from a config file.
type Registry struct {
	mu    sync.RWMutex
	shops []Profile
	idx   map[string]Profile
}

// LoadRegistry loads the shop registry from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("shops file path is empty")
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shops file: %w", err)
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read shops file: %w", err)
	}

	fileReg, err := parseRegistry(raw, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if len(fileReg.Shops) == 0 {
		return nil, errors.New("shops file contains no shop entries")
	}

	reg := &Registry{
		shops: make([]Profile, len(fileReg.Shops)),
		idx:   make(map[string]Profile, len(fileReg.Shops)),
	}

	for i := range fileReg.Shops {
		p := sanitizeProfile(fileReg.Shops[i])
		if err := validateProfile(p); err != nil {
			return nil, fmt.Errorf("shop[%d]: %w", i, err)
		}
		if _, exists := reg.idx[p.ID]; exists {
			return nil, fmt.Errorf("duplicate shop id %q", p.ID)
		}
		reg.shops[i] = p
		reg.idx[p.ID] = p
	}

	return reg, nil
}

// All returns a copy of every loaded profile.
func (r *Registry) All() []Profile {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Profile, len(r.shops))
	copy(out, r.shops)
	return out
}

// ByID returns the profile for the given id, if loaded.
func (r *Registry) ByID(id string) (Profile, bool) {
	if r == nil {
		return Profile{}, false
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Profile{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.idx[id]
	return p, ok
}

// Enabled returns the profiles not switched off in the registry file.
func (r *Registry) Enabled() []Profile {
	all := r.All()
	if len(all) == 0 {
		return nil
	}

	out := make([]Profile, 0, len(all))
	for _, p := range all {
		if p.EnabledValue() {
			out = append(out, p)
		}
	}
	return out
}

// EnabledValue returns the enabled flag defaulting to true.
func (p Profile) EnabledValue() bool {
	if p.Enabled == nil {
		return true
	}
	return *p.Enabled
}

func parseRegistry(data []byte, ext string) (registryFile, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   unmarshalFn
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		if reg, err := unmarshalRegistry(d.name, data, d.fn); err == nil {
			return reg, nil
		}
	}

	return registryFile{}, errors.New("shops file format not recognized (expected YAML or JSON)")
}

type unmarshalFn func([]byte, any) error

func unmarshalRegistry(name string, data []byte, fn unmarshalFn) (registryFile, error) {
	var reg registryFile
	if err := fn(data, &reg); err != nil {
		return registryFile{}, fmt.Errorf("decode %s shops: %w", name, err)
	}
	return reg, nil
}

func sanitizeProfile(p Profile) Profile {
	p.ID = strings.TrimSpace(p.ID)
	p.Name = strings.TrimSpace(p.Name)
	p.Shop = strings.TrimSpace(p.Shop)
	p.Username = strings.TrimSpace(p.Username)
	p.APIKey = strings.TrimSpace(p.APIKey)
	p.UserAgent = strings.TrimSpace(p.UserAgent)
	p.ResponseFormat = strings.ToLower(strings.TrimSpace(p.ResponseFormat))

	if p.Config == nil {
		p.Config = map[string]any{}
	}
	if p.RequestDelayMs <= 0 {
		p.RequestDelayMs = defaultRequestDelayMs
	}

	collections := make([]string, 0, len(p.Collections))
	for _, c := range p.Collections {
		if c = strings.TrimSpace(c); c != "" {
			collections = append(collections, c)
		}
	}
	if len(collections) == 0 {
		collections = append(collections, defaultCollections...)
	}
	p.Collections = collections

	return p
}

func validateProfile(p Profile) error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required for shop %q", p.ID)
	}
	if p.Shop == "" {
		return fmt.Errorf("shop subdomain is required for shop %q", p.ID)
	}
	if p.Username == "" {
		return fmt.Errorf("username is required for shop %q", p.ID)
	}
	if p.ResponseFormat != "" && p.ResponseFormat != shoplo.FormatJSON && p.ResponseFormat != shoplo.FormatXML {
		return fmt.Errorf("response_format %q is not supported for shop %q", p.ResponseFormat, p.ID)
	}
	return nil
}

// ClientConfig maps the profile onto an API client configuration.
func (p Profile) ClientConfig() shoplo.Config {
	return shoplo.Config{
		Shop:           p.Shop,
		Username:       p.Username,
		APIKey:         p.APIKey,
		UserAgent:      p.UserAgent,
		Secure:         p.Secure,
		ResponseFormat: p.ResponseFormat,
	}
}

// ClientFor builds a configured platform API client for the profile.
func ClientFor(p Profile) (*shoplo.Client, error) {
	return shoplo.New(p.ClientConfig())
}

// RequestDelay returns the per-request throttle duration for the shop.
func (p Profile) RequestDelay() time.Duration {
	if p.RequestDelayMs <= 0 {
		return time.Duration(defaultRequestDelayMs) * time.Millisecond
	}
	return time.Duration(p.RequestDelayMs) * time.Millisecond
}
