package parser

import "regexp"

// Per-format line patterns compiled once at package init. All patterns are
// anchored: a format claims a line only when it matches from the first byte.
var (
	reSyslog = regexp.MustCompile(
		`^(?P<timestamp>\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2})\s+` +
			`(?P<hostname>\S+)\s+` +
			`(?P<process>[^:\[\s]+)(?:\[(?P<pid>\d+)\])?\s*:\s*` +
			`(?P<message>.*)$`)

	reNginxAccess = regexp.MustCompile(
		`^(?P<remote_addr>\S+)\s+\S+\s+` +
			`(?P<remote_user>\S+)\s+` +
			`(?P<time_local>\[[^\]]+\])\s+` +
			`"(?P<request>[^"]+)"\s+` +
			`(?P<status>\d+)\s+` +
			`(?P<body_bytes_sent>\d+)\s+` +
			`"(?P<http_referer>[^"]*)"\s+` +
			`"(?P<http_user_agent>[^"]*)"`)

	reApacheAccess = regexp.MustCompile(
		`^(?P<remote_addr>\S+)\s+` +
			`(?P<remote_logname>\S+)\s+` +
			`(?P<remote_user>\S+)\s+` +
			`(?P<time_local>\[[^\]]+\])\s+` +
			`"(?P<request>[^"]+)"\s+` +
			`(?P<status>\d+)\s+` +
			`(?P<bytes_sent>\S+)`)

	reDocker = regexp.MustCompile(
		`^(?P<timestamp>\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z)\s+` +
			`(?P<stream>stdout|stderr)\s+` +
			`(?P<tag>\S+)\s+` +
			`(?P<message>.*)$`)

	reKubernetes = regexp.MustCompile(
		`^(?P<timestamp>\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d+Z)\s+` +
			`(?P<level>\w+)\s+` +
			`(?P<component>\S+)\s+` +
			`(?P<message>.*)$`)
)

// Timestamp patterns searched anywhere in a line by the generic parser.
var reTimestamps = []*regexp.Regexp{
	regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?`),
	regexp.MustCompile(`\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}(?:\.\d+)?`),
	regexp.MustCompile(`\w{3}\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}`),
	regexp.MustCompile(`\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}`),
}

// Timestamp layouts tried in order; first successful parse wins.
// time.Parse tolerates fractional seconds after the seconds element, so the
// ISO layouts cover values with and without sub-second precision.
var timestampLayouts = []string{
	"2006-01-02T15:04:05Z07:00", // RFC 3339
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"Jan _2 15:04:05",            // syslog, no year
	"02/Jan/2006:15:04:05 -0700", // apache/nginx time_local
	"02/Jan/2006:15:04:05",
}

// Field aliases searched in order in JSON logs; first present key wins.
var (
	jsonTimestampFields = []string{"timestamp", "time", "ts", "datetime", "@timestamp"}
	jsonMessageFields   = []string{"message", "msg", "log", "text"}
	jsonLevelFields     = []string{"level", "severity", "loglevel", "priority"}
	jsonSourceFields    = []string{"service", "component", "logger"}
)

// Keyword table for level inference, evaluated in order.
var levelKeywords = []struct {
	level    string
	keywords []string
}{
	{"CRITICAL", []string{"CRITICAL", "FATAL", "PANIC"}},
	{"ERROR", []string{"ERROR", "ERR", "FAIL", "EXCEPTION"}},
	{"WARNING", []string{"WARNING", "WARN", "ALERT"}},
	{"INFO", []string{"INFO"}},
	{"DEBUG", []string{"DEBUG", "TRACE"}},
}
