package client

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"pixel-canvas/internal/pixelcanvas"
)

// ProfileFileName 是默认配置文件名，位于用户主目录下
const ProfileFileName = ".pixeledit.yaml"

// DefaultPalette 是终端和桌面编辑器用数字键切换的默认调色板
var DefaultPalette = []string{
	"#000000", "#ffffff", "#ff0000", "#00ff00", "#0000ff",
	"#ffff00", "#ff00ff", "#00ffff", "#808080",
}

// Profile 是编辑器的本地配置
type Profile struct {
	Server       string   `yaml:"server"`
	Token        string   `yaml:"token,omitempty"`
	DefaultColor string   `yaml:"default_color,omitempty"`
	CellSize     int      `yaml:"cell_size,omitempty"`
	Palette      []string `yaml:"palette,omitempty"`
}

// DefaultProfilePath 返回 ~/.pixeledit.yaml
func DefaultProfilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ProfileFileName), nil
}

// LoadProfile 读取配置文件。文件不存在时返回默认配置。
func LoadProfile(path string) (*Profile, error) {
	p := &Profile{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// 使用默认配置
	case err != nil:
		return nil, fmt.Errorf("failed to read profile: %w", err)
	default:
		if err := yaml.Unmarshal(data, p); err != nil {
			return nil, fmt.Errorf("failed to parse YAML profile %s: %w", path, err)
		}
	}
	p.applyDefaults()
	return p, nil
}

// SaveProfile 以 0600 权限写回配置文件 (包含 token)
func SaveProfile(p *Profile, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", path, err)
	}
	return nil
}

func (p *Profile) applyDefaults() {
	if p.Server == "" {
		p.Server = "http://localhost:8080"
	}
	if p.DefaultColor == "" {
		p.DefaultColor = pixelcanvas.DefaultColor
	}
	if p.CellSize < 0 {
		p.CellSize = 0
	}
	if len(p.Palette) == 0 {
		p.Palette = append([]string(nil), DefaultPalette...)
	}
}
