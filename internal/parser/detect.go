package parser

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/logsage/logsage/pkg/models"
)

// DefaultDetectThreshold is the minimum score a format must reach before
// detection trusts it; below this the parser falls back to syslog, the most
// lenient format. Detection never errors.
const DefaultDetectThreshold = 0.3

// detectors are evaluated in priority order; on score ties the earlier
// format wins, keeping detection deterministic.
var detectors = []struct {
	kind  models.FormatKind
	score func([]string) float64
}{
	{models.FormatJSON, scoreJSON},
	{models.FormatSyslog, scorePattern(reSyslog)},
	{models.FormatNginx, scorePattern(reNginxAccess)},
	{models.FormatApache, scorePattern(reApacheAccess)},
	{models.FormatDocker, scorePattern(reDocker)},
	{models.FormatKubernetes, scorePattern(reKubernetes)},
}

// DetectFormat scores the sample lines against every known format and
// returns the best match, or syslog when no format reaches the threshold.
func DetectFormat(sample []string, threshold float64) models.FormatKind {
	if threshold <= 0 {
		threshold = DefaultDetectThreshold
	}

	best := models.FormatSyslog
	bestScore := 0.0
	for _, d := range detectors {
		if score := d.score(sample); score > bestScore {
			best = d.kind
			bestScore = score
		}
	}

	if bestScore < threshold {
		return models.FormatSyslog
	}
	return best
}

// scoreJSON returns the fraction of sample lines that decode as JSON objects.
func scoreJSON(lines []string) float64 {
	if len(lines) == 0 {
		return 0
	}
	matched := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") || !strings.HasSuffix(line, "}") {
			continue
		}
		var obj map[string]any
		if json.Unmarshal([]byte(line), &obj) == nil {
			matched++
		}
	}
	return float64(matched) / float64(len(lines))
}

// scorePattern returns a scorer computing the fraction of sample lines
// matching the format's anchored pattern.
func scorePattern(re *regexp.Regexp) func([]string) float64 {
	return func(lines []string) float64 {
		if len(lines) == 0 {
			return 0
		}
		matched := 0
		for _, line := range lines {
			if re.MatchString(line) {
				matched++
			}
		}
		return float64(matched) / float64(len(lines))
	}
}
