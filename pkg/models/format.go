package models

import "fmt"

// FormatKind identifies a supported log format.
type FormatKind string

const (
	FormatSyslog     FormatKind = "syslog"
	FormatJSON       FormatKind = "json"
	FormatNginx      FormatKind = "nginx"
	FormatApache     FormatKind = "apache"
	FormatDocker     FormatKind = "docker"
	FormatKubernetes FormatKind = "kubernetes"
	FormatCustom     FormatKind = "custom"

	// FormatAuto is a request-time sentinel asking the parser to detect the
	// format. It never appears on a parsed record's provenance.
	FormatAuto FormatKind = "auto"
)

// ParseFormatKind converts a string into a FormatKind. The empty string
// defaults to auto-detection.
func ParseFormatKind(s string) (FormatKind, error) {
	switch FormatKind(s) {
	case FormatSyslog, FormatJSON, FormatNginx, FormatApache,
		FormatDocker, FormatKubernetes, FormatCustom, FormatAuto:
		return FormatKind(s), nil
	case "":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("unknown log format %q", s)
}
