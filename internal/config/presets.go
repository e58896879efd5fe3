package config

import (
	"sort"
	"time"
)

// Profiles are named deployment targets for the api and server sections.
var Profiles = map[string]*Config{
	"local": {
		API:    APIConfig{BaseURL: "http://localhost:5000", Timeout: DefaultTimeout},
		Server: ServerConfig{Addr: ":5000", AllowedOrigins: []string{"http://localhost:3000"}},
	},
	"docker": {
		API:    APIConfig{BaseURL: "http://api:5000", Timeout: DefaultTimeout},
		Server: ServerConfig{Addr: "0.0.0.0:5000", AllowedOrigins: []string{"http://localhost:3000", "http://web:3000"}},
	},
	"heroku": {
		API:    APIConfig{BaseURL: "https://physics-formulas.herokuapp.com", Timeout: 30 * time.Second},
		Server: ServerConfig{Addr: ":8080"},
	},
}

// GetProfile returns a copy of the named profile layered over the defaults, or nil.
func GetProfile(name string) *Config {
	p, ok := Profiles[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.API = p.API
	cfg.Server.Addr = p.Server.Addr
	if len(p.Server.AllowedOrigins) > 0 {
		cfg.Server.AllowedOrigins = append([]string(nil), p.Server.AllowedOrigins...)
	}
	cfg.normalize()
	return cfg
}

func ListProfiles() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
