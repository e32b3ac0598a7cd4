package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/logsage/logsage/pkg/models"
)

// AnomalyOptions tunes anomaly detection. The defaults mirror the detection
// windows the analyzer was calibrated with; they are options rather than
// constants so hosts can adjust them per workload.
type AnomalyOptions struct {
	// Threshold is how many standard deviations above the mean an hourly
	// bucket must sit to be flagged.
	Threshold float64
	// MinRecords is the minimum record count before volume detection runs.
	MinRecords int
	// BurstSize is the sliding window length in error records.
	BurstSize int
	// BurstWindow is the maximum span of a window that counts as a burst.
	BurstWindow time.Duration
}

// DefaultAnomalyOptions returns the standard detection tuning.
func DefaultAnomalyOptions() AnomalyOptions {
	return AnomalyOptions{
		Threshold:   2.0,
		MinRecords:  10,
		BurstSize:   5,
		BurstWindow: 60 * time.Second,
	}
}

// IdentifyAnomalies finds volume spikes and error bursts in a record set.
// Overlapping burst windows each produce an anomaly; the duplication is a
// density signal, not a defect.
func IdentifyAnomalies(records []models.LogRecord, opts AnomalyOptions) []models.Anomaly {
	if opts.Threshold == 0 {
		opts = DefaultAnomalyOptions()
	}

	var anomalies []models.Anomaly
	if len(records) > opts.MinRecords {
		anomalies = append(anomalies, volumeAnomalies(records, opts.Threshold)...)
	}
	anomalies = append(anomalies, errorBursts(records, opts)...)
	return anomalies
}

// volumeAnomalies buckets timestamped records into hour-aligned buckets and
// flags buckets more than threshold standard deviations above the mean.
// Requires at least two non-empty buckets to have a meaningful baseline.
func volumeAnomalies(records []models.LogRecord, threshold float64) []models.Anomaly {
	buckets := make(map[time.Time]int)
	for _, rec := range records {
		if rec.Timestamp != nil {
			buckets[rec.Timestamp.Truncate(time.Hour)]++
		}
	}
	if len(buckets) < 2 {
		return nil
	}

	hours := make([]time.Time, 0, len(buckets))
	for hour := range buckets {
		hours = append(hours, hour)
	}
	sort.Slice(hours, func(i, j int) bool { return hours[i].Before(hours[j]) })

	mean, stddev := meanStddev(buckets)

	var anomalies []models.Anomaly
	for _, hour := range hours {
		count := buckets[hour]
		if float64(count) <= mean+threshold*stddev {
			continue
		}
		ts := hour
		anomalies = append(anomalies, models.Anomaly{
			Type:      models.AnomalyHighActivity,
			Timestamp: &ts,
			Count:     count,
			Average:   round1(mean),
			Deviation: round1((float64(count) - mean) / stddev),
		})
	}
	return anomalies
}

// errorBursts slides a fixed window over timestamp-sorted error records and
// emits one anomaly per window whose span fits inside the burst window.
func errorBursts(records []models.LogRecord, opts AnomalyOptions) []models.Anomaly {
	var errs []models.LogRecord
	for _, rec := range records {
		if rec.IsErrorLevel() {
			errs = append(errs, rec)
		}
	}
	if len(errs) <= opts.BurstSize {
		return nil
	}

	sort.SliceStable(errs, func(i, j int) bool {
		return tsOrZero(errs[i]).Before(tsOrZero(errs[j]))
	})

	var anomalies []models.Anomaly
	for i := 0; i+opts.BurstSize <= len(errs); i++ {
		window := errs[i : i+opts.BurstSize]
		if !allTimestamped(window) {
			continue
		}
		span := window[len(window)-1].Timestamp.Sub(*window[0].Timestamp)
		if span >= opts.BurstWindow {
			continue
		}
		anomalies = append(anomalies, models.Anomaly{
			Type:            models.AnomalyErrorBurst,
			StartTime:       window[0].Timestamp,
			EndTime:         window[len(window)-1].Timestamp,
			ErrorCount:      len(window),
			TimeSpanSeconds: span.Seconds(),
		})
	}
	return anomalies
}

// meanStddev computes the mean and population standard deviation of the
// bucket counts.
func meanStddev(buckets map[time.Time]int) (float64, float64) {
	sum := 0
	for _, c := range buckets {
		sum += c
	}
	mean := float64(sum) / float64(len(buckets))

	variance := 0.0
	for _, c := range buckets {
		d := float64(c) - mean
		variance += d * d
	}
	variance /= float64(len(buckets))
	return mean, math.Sqrt(variance)
}

func allTimestamped(records []models.LogRecord) bool {
	for _, rec := range records {
		if rec.Timestamp == nil {
			return false
		}
	}
	return true
}

func tsOrZero(rec models.LogRecord) time.Time {
	if rec.Timestamp == nil {
		return time.Time{}
	}
	return *rec.Timestamp
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
