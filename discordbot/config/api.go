// Package config with configuration models and utilities
package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"
	yaml "gopkg.in/yaml.v2"
)

// Defaults applied to empty configuration values
const (
	DefaultPrefix          = "."
	DefaultName            = "SeasonalBot"
	DefaultNamespace       = "seasonalbot"
	DefaultLogLevel        = "info"
	DefaultStateMessages   = 1000
	DefaultBookmarkEmoji   = "\U0001F4CC"
	DefaultBookmarkIcon    = "https://cdn.discordapp.com/emojis/654080405988966419.png"
	DefaultBookmarkTimeout = 120 * time.Second
	DefaultCooldown        = 5 * time.Second
	DefaultSoftGreen       = "#68c290"
	DefaultSoftRed         = "#cd6d6d"
)

var (
	// ErrMissingToken is returned when configuration has no bot token
	ErrMissingToken = errors.New("missing token in config")
)

// Read reads configuration
func Read(reader io.Reader) (root *Root, err error) {
	root = &Root{}
	err = yaml.NewDecoder(reader).Decode(root)

	if err == io.EOF {
		err = nil
	}

	if err != nil {
		return nil, err
	}

	root.Defaults()

	return
}

// Write writes configuration
func Write(writer io.Writer, root *Root) (err error) {
	err = yaml.NewEncoder(writer).Encode(root)

	return
}

// Defaults fills in unset values
func (root *Root) Defaults() {
	if root.Private.Prefix == "" {
		root.Private.Prefix = DefaultPrefix
	}

	if root.Private.Name == "" {
		root.Private.Name = DefaultName
	}

	if root.Private.LogLevel == "" {
		root.Private.LogLevel = DefaultLogLevel
	}

	if root.Private.StateMessages == 0 {
		root.Private.StateMessages = DefaultStateMessages
	}

	if root.Private.Redis.Namespace == "" {
		root.Private.Redis.Namespace = DefaultNamespace
	}

	if root.Bookmark.Emoji == "" {
		root.Bookmark.Emoji = DefaultBookmarkEmoji
	}

	if root.Bookmark.Icon == "" {
		root.Bookmark.Icon = DefaultBookmarkIcon
	}

	if root.Bookmark.Timeout == 0 {
		root.Bookmark.Timeout = DefaultBookmarkTimeout
	}

	if root.Bookmark.Cooldown == 0 {
		root.Bookmark.Cooldown = DefaultCooldown
	}

	if root.Colours.SoftGreen == "" {
		root.Colours.SoftGreen = DefaultSoftGreen
	}

	if root.Colours.SoftRed == "" {
		root.Colours.SoftRed = DefaultSoftRed
	}
}

// Validate checks that configuration is usable
func (root *Root) Validate() error {
	if root.Private.Token == "" {
		return ErrMissingToken
	}

	if _, err := ParseColour(root.Colours.SoftGreen); err != nil {
		return fmt.Errorf("colours.soft_green: %w", err)
	}

	if _, err := ParseColour(root.Colours.SoftRed); err != nil {
		return fmt.Errorf("colours.soft_red: %w", err)
	}

	return nil
}

// ParseColour converts hex colour into embed colour value
func ParseColour(hex string) (int, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return 0, err
	}

	r, g, b := c.RGB255()

	return int(r)<<16 | int(g)<<8 | int(b), nil
}

// Colour returns embed colour value, zero on malformed input
func Colour(hex string) int {
	v, _ := ParseColour(hex)

	return v
}
