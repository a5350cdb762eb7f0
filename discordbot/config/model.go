package config

import (
	"time"
)

// Redis connection part of configuration
type Redis struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Namespace string `yaml:"namespace"`
}

// Private part of configuration
type Private struct {
	Token         string            `yaml:"token"`
	Admins        string            `yaml:"admins"`
	Prefix        string            `yaml:"prefix"`
	ModulePrefix  map[string]string `yaml:"module_prefix"`
	GuildID       string            `yaml:"guild"`
	Devlog        string            `yaml:"devlog"`
	Name          string            `yaml:"name"`
	LogLevel      string            `yaml:"log_level"`
	LogDB         string            `yaml:"logdb"`
	StateMessages int               `yaml:"state_messages"`
	Redis         Redis             `yaml:"redis"`
}

// Bookmark module configuration
type Bookmark struct {
	Emoji    string        `yaml:"emoji"`
	Icon     string        `yaml:"icon"`
	Timeout  time.Duration `yaml:"timeout"`
	Cooldown time.Duration `yaml:"cooldown"`
}

// Colours used in embeds, hex-encoded
type Colours struct {
	SoftGreen string `yaml:"soft_green"`
	SoftRed   string `yaml:"soft_red"`
}

// Server specific part of configuration
type Server struct {
	GuildID      string            `yaml:"id"`
	Prefix       string            `yaml:"prefix"`
	ModulePrefix map[string]string `yaml:"module_prefix"`
	Admins       []string          `yaml:"admins"`
}

// Root of configuration
type Root struct {
	Servers  []Server `yaml:"servers"`
	Private  Private  `yaml:"private"`
	Bookmark Bookmark `yaml:"bookmark"`
	Colours  Colours  `yaml:"colours"`
}
