package agent

import "time"

// EngagementRate normalizes score plus comment count against post age.
// total/(100*hours) clamps to [0,1] and the hour factor floors at 1 so fresh
// posts are not amplified; comment-fetch failures should be passed in as 0.
func EngagementRate(score, comments int, createdUTC float64, now time.Time) float64 {
	total := float64(score + comments)

	ageSeconds := float64(now.Unix()) - createdUTC
	timeFactor := ageSeconds / 3600.0
	if timeFactor < 1.0 {
		timeFactor = 1.0
	}

	rate := total / (100.0 * timeFactor)
	if rate > 1.0 {
		return 1.0
	}
	if rate < 0 {
		return 0.0
	}
	return rate
}
