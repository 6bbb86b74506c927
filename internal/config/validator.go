package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate validates the runtime config using struct tags plus cross-field
// rules, with actionable error messages.
func (c *KernelConfig) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if c.Audit.SQLitePath != "" && c.Audit.SQLitePath == c.Audit.LogFile {
		return errors.New("audit: sqlite_path must differ from log_file")
	}

	return nil
}

// formatValidationErrors rewrites validator errors into config-path messages.
func formatValidationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		path := strings.ToLower(trimStructPrefix(fe.Namespace()))
		switch fe.Tag() {
		case "required", "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required", path))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", path, fe.Param()))
		case "hostname_port":
			msgs = append(msgs, fmt.Sprintf("%s must be a host:port address", path))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", path, fe.Tag()))
		}
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func trimStructPrefix(namespace string) string {
	if _, rest, found := strings.Cut(namespace, "."); found {
		return rest
	}
	return namespace
}

// ValidateWildcardPattern checks a capability pattern from a policy file. A
// pattern may carry at most one "*", only as the final character; every
// other glob metacharacter is rejected at load.
func ValidateWildcardPattern(pattern string) error {
	if pattern == "" {
		return errors.New("empty capability pattern")
	}
	for _, c := range pattern {
		switch c {
		case '?', '[', ']', '{', '}':
			return fmt.Errorf("pattern %q contains unsupported metacharacter %q", pattern, c)
		}
	}
	if n := strings.Count(pattern, "*"); n > 1 {
		return fmt.Errorf("pattern %q contains more than one wildcard", pattern)
	} else if n == 1 && !strings.HasSuffix(pattern, "*") {
		return fmt.Errorf("pattern %q may only use a trailing wildcard", pattern)
	}
	return nil
}
