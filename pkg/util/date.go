package util

import "time"

// DateOf formats an instant as its UTC trading date.
func DateOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}
