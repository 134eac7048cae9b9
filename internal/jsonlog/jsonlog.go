// Package jsonlog writes one JSON object per line, the log format shared by the
// server, migrations and tracing setup.
package jsonlog

import (
	"encoding/json"
	"io"
	"log"
	"time"
)

// Log writes data to the standard logger. A "ts" field is added in loc and
// "level" defaults to "error" when status is "error", "info" otherwise.
func Log(loc *time.Location, data map[string]any) {
	b, err := encode(loc, data)
	if err != nil {
		log.Printf("failed to marshal log entry: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}

// Fprint is Log for an explicit writer.
func Fprint(w io.Writer, loc *time.Location, data map[string]any) {
	b, err := encode(loc, data)
	if err != nil {
		return
	}
	b = append(b, '\n')
	_, _ = w.Write(b)
}

func encode(loc *time.Location, data map[string]any) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}
	return json.Marshal(data)
}
