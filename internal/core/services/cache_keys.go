package services

import (
	"fmt"
	"time"
)

func currentRateKey(from, to string) string {
	return fmt.Sprintf("rate:%s:%s:current", from, to)
}

func seriesKey(base, target string, start, end time.Time) string {
	return fmt.Sprintf("rates:%s:%s:%s:%s", base, target, start.Format("20060102"), end.Format("20060102"))
}
