package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// EnvVarSpec represents a parsed environment variable reference
type EnvVarSpec struct {
	// VarName is the environment variable name (e.g., "DEPLOY_REGION")
	VarName string

	// HasDefault indicates if a default value was provided
	HasDefault bool

	// DefaultValue is the default value if HasDefault is true
	DefaultValue string

	// IsLiteral indicates the value is not an env var reference
	IsLiteral bool

	// LiteralValue is the literal value if IsLiteral is true
	LiteralValue string
}

// envVarPattern matches ${VAR} and ${VAR:default} syntax
var envVarPattern = regexp.MustCompile(`^\$\{([A-Z_][A-Z0-9_]*)(:[^}]*)?\}$`)

// ParseEnvVar parses a value that may be an environment variable reference.
//
//	ParseEnvVar("${REGION}")           -> required env var "REGION"
//	ParseEnvVar("${REGION:eu-west-1}") -> env var with default
//	ParseEnvVar("eu-west-1")           -> literal value
func ParseEnvVar(value string) *EnvVarSpec {
	matches := envVarPattern.FindStringSubmatch(value)
	if matches == nil {
		return &EnvVarSpec{
			IsLiteral:    true,
			LiteralValue: value,
		}
	}

	spec := &EnvVarSpec{
		VarName:    matches[1],
		HasDefault: matches[2] != "",
	}
	if spec.HasDefault {
		spec.DefaultValue = strings.TrimPrefix(matches[2], ":")
	}
	return spec
}

// Resolve returns the effective value using lookup for env vars.
// A required variable that is unset is an error.
func (s *EnvVarSpec) Resolve(lookup func(string) (string, bool)) (string, error) {
	if s.IsLiteral {
		return s.LiteralValue, nil
	}
	if v, ok := lookup(s.VarName); ok {
		return v, nil
	}
	if s.HasDefault {
		return s.DefaultValue, nil
	}
	return "", fmt.Errorf("required environment variable not set: %s", s.VarName)
}

// ResolveEnv substitutes env var references in every string of value,
// descending into maps and slices. Non-string scalars are returned unchanged.
func ResolveEnv(value any) (any, error) {
	return resolveValue(value, os.LookupEnv)
}

func resolveValue(value any, lookup func(string) (string, bool)) (any, error) {
	switch v := value.(type) {
	case string:
		return ParseEnvVar(v).Resolve(lookup)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			resolved, err := resolveValue(item, lookup)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			resolved, err := resolveValue(item, lookup)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}
