package runtime

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var pluginIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// validate checks both host settings (InitializeConfig) and build-file
// specs (ProjectSpec.Validate).
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	tags := map[string]validator.Func{
		// host:port, the port numeric or a known service name
		"hostname_port": func(fl validator.FieldLevel) bool {
			host, port, err := net.SplitHostPort(fl.Field().String())
			if err != nil || host == "" || port == "" {
				return false
			}
			_, err = net.LookupPort("tcp", port)
			return err == nil
		},
		// absolute URL with scheme and host
		"url_format": func(fl validator.FieldLevel) bool {
			u, err := url.Parse(fl.Field().String())
			return err == nil && u.Scheme != "" && u.Host != ""
		},
		"task_name": func(fl validator.FieldLevel) bool {
			return validateTaskName(fl.Field().String()) == nil
		},
		"plugin_id": func(fl validator.FieldLevel) bool {
			return pluginIDPattern.MatchString(fl.Field().String())
		},
		// onlyIf expressions; compiled later against the project
		"predicate": func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(fmt.Sprintf("register %s validator: %v", tag, err))
		}
	}
	return v
}

// InitializeConfig fills a tagged config struct: `default:` tags first, then
// rawValues decoded through `yaml:` tags, then the `validate:` rules.
//
//	var s Settings
//	err := runtime.InitializeConfig(&s, file.Settings)
func InitializeConfig(config any, rawValues map[string]any) error {
	if err := ApplyDefaults(config); err != nil {
		return err
	}
	if len(rawValues) > 0 {
		if err := mapToStructFromYAML(rawValues, config); err != nil {
			return fmt.Errorf("failed to apply config values to %T: %w", config, err)
		}
	}
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

func ApplyDefaults(config any) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}
	if err := defaults.Set(config); err != nil {
		return fmt.Errorf("failed to apply defaults to %T: %w", config, err)
	}
	return nil
}

// validateConfig runs the validate tags of a struct or struct pointer and
// reports every failing field on its own line.
func validateConfig(config any) error {
	if config == nil {
		return errors.New("config cannot be nil")
	}

	err := validate.Struct(config)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		lines[i] = fmt.Sprintf("%s: %q does not satisfy %s", fe.Namespace(), fmt.Sprint(fe.Value()), fe.Tag())
	}
	return errors.New(strings.Join(lines, "\n"))
}

// ValidatePluginID reports whether id is usable in build.yaml and with --plugin.
func ValidatePluginID(id string) error {
	if err := validate.Var(id, "plugin_id"); err != nil {
		return fmt.Errorf("invalid plugin id %q: must start with a letter or digit and contain only letters, digits, '.', '_' or '-'", id)
	}
	return nil
}
