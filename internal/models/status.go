package models

import "time"

// StatusDateLayout is DD.MM.YYYY.
const StatusDateLayout = "02.01.2006"

var statusPhrases = map[string]string{
	StatusDone:       "tamamlandı",
	StatusInProgress: "devam ediyor",
	StatusToDo:       "yapılacaklara eklendi",
}

// StatusPhrase returns the audit phrase for status, empty for unknown values.
func StatusPhrase(status string) string {
	return statusPhrases[status]
}

// StatusDate renders the server-owned audit line for a status change,
// e.g. "19.10.2026 tarihinde tamamlandı".
func StatusDate(now time.Time, status string) string {
	return now.Format(StatusDateLayout) + " tarihinde " + StatusPhrase(status)
}
