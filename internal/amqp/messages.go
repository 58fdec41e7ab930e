package amqp

import (
	"encoding/json"
	"time"
)

// ReportRenderedMessage announces a chart file written by a report run.
// It carries the pivot shape so consumers can decide whether to fetch the file.
type ReportRenderedMessage struct {
	RunID      string    `json:"run_id"`
	Report     string    `json:"report"`
	Path       string    `json:"path"`
	Format     string    `json:"format"`
	Buckets    int       `json:"buckets"`
	Categories int       `json:"categories"`
	Total      int       `json:"total"`
	Skipped    int       `json:"skipped"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewReportRenderedMessage stamps the message with the current time.
func NewReportRenderedMessage(runID, report, path, format string, buckets, categories, total, skipped int) *ReportRenderedMessage {
	return &ReportRenderedMessage{
		RunID:      runID,
		Report:     report,
		Path:       path,
		Format:     format,
		Buckets:    buckets,
		Categories: categories,
		Total:      total,
		Skipped:    skipped,
		Timestamp:  time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReportRenderedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReportRenderedMessageFromJSON decodes a message body.
func ReportRenderedMessageFromJSON(data []byte) (*ReportRenderedMessage, error) {
	var msg ReportRenderedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
