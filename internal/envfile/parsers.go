package envfile

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Kind is the format of an environment file.
type Kind string

const (
	KindDotenv  Kind = "env"
	KindEnvrc   Kind = "envrc"
	KindCompose Kind = "docker-compose"
	KindK8s     Kind = "k8s"
	KindSystemd Kind = "systemd"
	KindShell   Kind = "shell"
)

// DetectKind determines the type of environment file based on its name.
// Unknown names are treated as dotenv files.
func DetectKind(path string) Kind {
	filename := strings.ToLower(filepath.Base(path))
	isYAML := strings.HasSuffix(filename, ".yaml") || strings.HasSuffix(filename, ".yml")

	switch {
	case filename == ".envrc":
		return KindEnvrc
	case isDotenvName(filename):
		return KindDotenv
	case strings.HasPrefix(filename, "docker-compose") || strings.HasPrefix(filename, "compose."):
		return KindCompose
	case isYAML && (strings.Contains(filename, "configmap") || strings.Contains(filename, "secret")):
		return KindK8s
	case strings.HasSuffix(filename, ".service"):
		return KindSystemd
	case strings.HasSuffix(filename, ".sh") || strings.HasSuffix(filename, ".bash"):
		return KindShell
	default:
		return KindDotenv
	}
}

// isDotenvName matches ".env" and ".env.<suffix>", but not other dot files
// that merely start with ".env" such as ".envscan.yaml".
func isDotenvName(filename string) bool {
	return filename == ".env" || strings.HasPrefix(filename, ".env.")
}

// ParseFile parses a single environment file using the parser for its kind.
// A file that does not exist yields an empty map.
func ParseFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	defer f.Close()

	vars, err := Parse(DetectKind(path), f)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return vars, nil
}

// Parse reads variables in the given format from r.
func Parse(kind Kind, r io.Reader) (map[string]string, error) {
	switch kind {
	case KindEnvrc, KindShell:
		return parseExports(r)
	case KindCompose:
		return parseDockerCompose(r)
	case KindK8s:
		return parseK8s(r)
	case KindSystemd:
		return parseSystemd(r)
	default:
		return godotenv.Parse(r)
	}
}

var exportRegex = regexp.MustCompile(`^\s*export\s+([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)

// parseExports reads "export VAR=value" lines from direnv files and shell
// scripts and ignores everything else.
func parseExports(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if m := exportRegex.FindStringSubmatch(line); m != nil {
			vars[m[1]] = trimQuotes(m[2])
		}
	}

	return vars, scanner.Err()
}

// composeEnvironment accepts both forms of a service's environment section:
// a mapping, or a list of "KEY=value" strings.
type composeEnvironment map[string]string

func (e *composeEnvironment) UnmarshalYAML(node *yaml.Node) error {
	env := composeEnvironment{}

	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if value.Tag == "!!null" {
				env[key.Value] = ""
				continue
			}
			env[key.Value] = value.Value
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			// "KEY" alone passes the host value through; it still declares KEY.
			key, value, _ := strings.Cut(item.Value, "=")
			if key = strings.TrimSpace(key); key != "" {
				env[key] = strings.TrimSpace(value)
			}
		}
	default:
		return fmt.Errorf("line %d: environment must be a mapping or a list", node.Line)
	}

	*e = env
	return nil
}

type composeFile struct {
	Services map[string]struct {
		Environment composeEnvironment `yaml:"environment"`
	} `yaml:"services"`
}

// parseDockerCompose reads the environment of every service.
func parseDockerCompose(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)

	var compose composeFile
	if err := yaml.NewDecoder(r).Decode(&compose); err != nil {
		if errors.Is(err, io.EOF) {
			return vars, nil
		}
		return nil, err
	}

	for _, svc := range compose.Services {
		for k, v := range svc.Environment {
			vars[k] = v
		}
	}
	return vars, nil
}

type k8sObject struct {
	Kind       string            `yaml:"kind"`
	Data       map[string]string `yaml:"data"`
	StringData map[string]string `yaml:"stringData"`
}

// parseK8s reads ConfigMap and Secret documents. Secret data is base64
// decoded; values that do not decode are kept as they are.
func parseK8s(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)

	dec := yaml.NewDecoder(r)
	for {
		var obj k8sObject
		err := dec.Decode(&obj)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch obj.Kind {
		case "ConfigMap":
			for k, v := range obj.Data {
				vars[k] = v
			}
		case "Secret":
			for k, v := range obj.Data {
				if decoded, err := base64.StdEncoding.DecodeString(v); err == nil {
					vars[k] = string(decoded)
				} else {
					vars[k] = v
				}
			}
			for k, v := range obj.StringData {
				vars[k] = v
			}
		}
	}

	return vars, nil
}

var systemdEnvRegex = regexp.MustCompile(`^\s*Environment\s*=\s*(.+)$`)

// parseSystemd reads Environment= lines of a unit file. One line may set
// several variables: Environment="A=1" "B=2".
func parseSystemd(r io.Reader) (map[string]string, error) {
	vars := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		m := systemdEnvRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, assignment := range splitSystemdAssignments(m[1]) {
			key, value, ok := strings.Cut(assignment, "=")
			if key = strings.TrimSpace(key); ok && key != "" {
				vars[key] = strings.TrimSpace(value)
			}
		}
	}

	return vars, scanner.Err()
}

// splitSystemdAssignments splits on spaces outside double quotes and drops
// the quotes.
func splitSystemdAssignments(s string) []string {
	var out []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ' ' && !inQuotes:
			if cur.Len() > 0 {
				out = append(out, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

// trimQuotes removes surrounding quotes from a string
func trimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') ||
			(s[0] == '`' && s[len(s)-1] == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
