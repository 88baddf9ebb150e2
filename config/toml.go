package config

import (
	"bytes"
	_ "embed"
	"path/filepath"
	"text/template"

	cmtconfig "github.com/cometbft/cometbft/config"
	cmtos "github.com/cometbft/cometbft/libs/os"
)

// DefaultDirPerm is the default permissions used when creating directories.
const DefaultDirPerm = 0o700

var appConfigTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("appConfigFileTemplate")
	if appConfigTemplate, err = tmpl.Parse(defaultAppConfigTemplate); err != nil {
		panic(err)
	}
}

// WriteConfigFiles writes config.toml with CometBFT's own writer and
// app.toml from the embedded template.
func WriteConfigFiles(home string, config *Config) error {
	dir := filepath.Join(home, "config")
	if err := cmtos.EnsureDir(dir, DefaultDirPerm); err != nil {
		return err
	}
	cmtconfig.WriteConfigFile(filepath.Join(dir, "config.toml"), config.Config)
	return WriteAppConfigFile(filepath.Join(dir, AppConfigFile), config.App)
}

// WriteAppConfigFile renders app using the template and writes it to path.
func WriteAppConfigFile(path string, app *AgoraAppConfig) error {
	var buffer bytes.Buffer

	if err := appConfigTemplate.Execute(&buffer, app); err != nil {
		return err
	}

	return cmtos.WriteFile(path, buffer.Bytes(), 0o644)
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in AgoraAppConfig in config/config.go.
//
//go:embed app.toml.tpl
var defaultAppConfigTemplate string
