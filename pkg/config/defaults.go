package config

import (
	_ "embed"

	"github.com/arthur-debert/dotlinks/pkg/paths"
)

//go:embed embedded/config.yaml
var exampleConfig []byte

// ExampleContent returns the annotated starter configuration.
func ExampleContent() string {
	return string(exampleConfig)
}

// getSystemDefaults returns the base layer every configuration is merged
// onto.
func getSystemDefaults() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"repo_dir":     paths.DefaultRepoDir,
			"state_dir":    paths.DefaultStateDir,
			"passwd_file":  "/etc/passwd",
			"min_uid":      1000,
			"login_shells": []interface{}{"bash", "zsh", "fish", "sh"},
		},
		"transport": map[string]interface{}{
			"kind": TransportDirect,
			"ssh": map[string]interface{}{
				"port":        "22",
				"user":        "root",
				"known_hosts": "~/.ssh/known_hosts",
				"timeout":     "10s",
			},
		},
		"dotfiles": []interface{}{},
	}
}
