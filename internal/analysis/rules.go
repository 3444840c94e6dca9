package analysis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules are the detection tables the passes match against. Defaults are
// compiled in; a YAML rules file extends (never replaces) them.
type Rules struct {
	// DangerousSymbols are substrings flagged in the binary symbol table.
	DangerousSymbols []string `yaml:"dangerous_symbols"`

	// RepositoryHosts maps host substrings to package-repository labels.
	RepositoryHosts map[string]string `yaml:"repository_hosts"`

	// FrameworkMarkers maps manifest-file substrings to framework names.
	FrameworkMarkers map[string]string `yaml:"framework_markers"`

	// ServerBasenames maps target basename substrings to server/framework
	// names detected without manifest files.
	ServerBasenames map[string]string `yaml:"server_basenames"`

	// NetworkTools maps basename substrings to a one-line behavior summary
	// for tools expected to reach the network.
	NetworkTools map[string]string `yaml:"network_tools"`
}

// DefaultRules returns the built-in detection tables.
func DefaultRules() *Rules {
	return &Rules{
		DangerousSymbols: []string{
			"strcpy", "strcat", "sprintf", "vsprintf", "gets", "scanf",
			"system", "popen",
			"execve", "execl", "execlp", "execle", "execv", "execvp",
			"buffer_overflow", "use_after_free", "double_free", "format_string",
		},
		RepositoryHosts: map[string]string{
			"debian.org":         "Debian/Ubuntu",
			"ubuntu.com":         "Debian/Ubuntu",
			"pypi.org":           "PyPI",
			"pypi.python.org":    "PyPI",
			"npmjs.org":          "NPM",
			"npmjs.com":          "NPM",
			"registry.npmjs.org": "NPM",
			"crates.io":          "Crates.io",
			"maven.org":          "Maven Central",
		},
		FrameworkMarkers: map[string]string{
			"spring-boot": "Spring Boot",
			"hibernate":   "Hibernate",
			"react":       "React",
			"vue":         "Vue",
			"angular":     "Angular",
			"express":     "Express.js",
			"django":      "Django",
			"flask":       "Flask",
			"fastapi":     "FastAPI",
		},
		ServerBasenames: map[string]string{
			"apache":   "Apache HTTP Server",
			"httpd":    "Apache HTTP Server",
			"nginx":    "Nginx",
			"mysqld":   "MySQL",
			"mysql":    "MySQL",
			"postgres": "PostgreSQL",
			"redis":    "Redis",
			"docker":   "Docker",
			"kubectl":  "Kubernetes",
		},
		NetworkTools: map[string]string{
			"wget":  "Download tool - HTTP requests expected",
			"curl":  "Download tool - HTTP requests expected",
			"fetch": "Download tool - HTTP requests expected",
			"ssh":   "Secure transfer tool - SSH connections expected",
			"scp":   "Secure transfer tool - SSH connections expected",
			"rsync": "Secure transfer tool - SSH connections expected",
			"git":   "Git version control - repository access expected",
			"apt":   "Package manager - repository downloads expected",
			"yum":   "Package manager - repository downloads expected",
			"dnf":   "Package manager - repository downloads expected",
			"pip":   "Package manager - repository downloads expected",
			"npm":   "Package manager - repository downloads expected",
		},
	}
}

// LoadRules reads a YAML overlay and merges it additively onto the defaults.
func LoadRules(path string) (*Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules file: %w", err)
	}
	var overlay Rules
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}

	rules.DangerousSymbols = append(rules.DangerousSymbols, overlay.DangerousSymbols...)
	mergeInto(rules.RepositoryHosts, overlay.RepositoryHosts)
	mergeInto(rules.FrameworkMarkers, overlay.FrameworkMarkers)
	mergeInto(rules.ServerBasenames, overlay.ServerBasenames)
	mergeInto(rules.NetworkTools, overlay.NetworkTools)
	return rules, nil
}

func mergeInto(dst, src map[string]string) {
	for k, v := range src {
		dst[k] = v
	}
}
