package cache

import "fmt"

func AnalysisKey(contentHash string) string {
	return fmt.Sprintf("analysis:%s", contentHash)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
