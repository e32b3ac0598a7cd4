package analysis

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/logsage/logsage/pkg/models"
)

var (
	reResponseTime = regexp.MustCompile(`(?i)(?:response time|duration|took|elapsed)[:\s]*(\d+(?:\.\d+)?)\s*(ms|s|seconds?|milliseconds?)`)
	reCPUUsage     = regexp.MustCompile(`(?i)cpu[:\s]*(\d+(?:\.\d+)?)%`)
	reMemoryUsage  = regexp.MustCompile(`(?i)memory[:\s]*(\d+(?:\.\d+)?)%`)
)

const timelineLimit = 20

// ExtractPerformanceMetrics mines response times, hourly error rates and
// resource-usage mentions out of record messages. Best-effort: absent
// signals simply leave their section empty.
func ExtractPerformanceMetrics(records []models.LogRecord) map[string]any {
	return map[string]any{
		"response_times": responseTimes(records),
		"error_rates":    errorRates(records),
		"resource_usage": resourceUsage(records),
	}
}

func responseTimes(records []models.LogRecord) []map[string]any {
	times := []map[string]any{}
	for _, rec := range records {
		m := reResponseTime.FindStringSubmatch(rec.Message)
		if m == nil {
			continue
		}
		value, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(m[2]), "s") {
			value *= 1000
		}
		entry := map[string]any{"value_ms": value, "source": rec.Source}
		if rec.Timestamp != nil {
			entry["timestamp"] = rec.Timestamp.Format(time.RFC3339)
		}
		times = append(times, entry)
	}
	return times
}

// errorRates computes the per-hour percentage of error-level records.
func errorRates(records []models.LogRecord) map[string]map[string]any {
	type hourStats struct{ total, errors int }
	hours := make(map[string]*hourStats)

	for _, rec := range records {
		if rec.Timestamp == nil {
			continue
		}
		key := rec.Timestamp.Truncate(time.Hour).Format(time.RFC3339)
		hs, ok := hours[key]
		if !ok {
			hs = &hourStats{}
			hours[key] = hs
		}
		hs.total++
		if rec.IsErrorLevel() {
			hs.errors++
		}
	}

	rates := make(map[string]map[string]any, len(hours))
	for key, hs := range hours {
		rate := float64(hs.errors) / float64(hs.total) * 100
		rates[key] = map[string]any{
			"error_rate_percent": math.Round(rate*100) / 100,
			"total_entries":      hs.total,
			"error_count":        hs.errors,
		}
	}
	return rates
}

func resourceUsage(records []models.LogRecord) map[string]any {
	usage := map[string]any{}
	for _, rec := range records {
		if m := reCPUUsage.FindStringSubmatch(rec.Message); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				usage["cpu_percent"] = v
			}
		}
		if m := reMemoryUsage.FindStringSubmatch(rec.Message); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				usage["memory_percent"] = v
			}
		}
	}
	return usage
}

// BuildIncidentTimeline lists the significant (error- and warning-level)
// records in timestamp order, capped to the most relevant few.
func BuildIncidentTimeline(records []models.LogRecord) []models.TimelineEvent {
	var significant []models.LogRecord
	for _, rec := range records {
		if rec.IsErrorLevel() || rec.IsWarningLevel() {
			significant = append(significant, rec)
		}
	}
	sort.SliceStable(significant, func(i, j int) bool {
		return tsOrZero(significant[i]).Before(tsOrZero(significant[j]))
	})
	if len(significant) > timelineLimit {
		significant = significant[:timelineLimit]
	}

	timeline := make([]models.TimelineEvent, 0, len(significant))
	for _, rec := range significant {
		ts := "unknown"
		if rec.Timestamp != nil {
			ts = rec.Timestamp.Format(time.RFC3339)
		}
		source := rec.Source
		if source == "" {
			source = "unknown"
		}
		event := rec.Message
		if len(event) > 100 {
			event = event[:100] + "..."
		}
		timeline = append(timeline, models.TimelineEvent{
			Timestamp: ts,
			Level:     rec.Level,
			Source:    source,
			Event:     event,
		})
	}
	return timeline
}
