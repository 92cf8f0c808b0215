package models

import (
	"io"
	"log/slog"
	"time"
)

const progressLogInterval = time.Second

// ProgressReader counts bytes read from an upload stream and logs progress
// at most once per second.
type ProgressReader struct {
	Reader      io.Reader
	ObjectID    string
	Expected    int64
	TotalBytes  int64
	ChunkCount  int
	LastLogTime time.Time
}

func NewProgressReader(r io.Reader, objectID string, expected int64) *ProgressReader {
	return &ProgressReader{
		Reader:      r,
		ObjectID:    objectID,
		Expected:    expected,
		LastLogTime: time.Now(),
	}
}

func (pr *ProgressReader) Read(p []byte) (int, error) {
	n, err := pr.Reader.Read(p)
	pr.TotalBytes += int64(n)
	pr.ChunkCount++
	now := time.Now()
	if now.Sub(pr.LastLogTime) >= progressLogInterval {
		slog.Info("upload progress",
			"object_id", pr.ObjectID,
			"chunk_number", pr.ChunkCount,
			"bytes_read_in_chunk", n,
			"total_bytes", pr.TotalBytes,
			"percent", pr.Percent(),
		)
		pr.LastLogTime = now
	}
	return n, err
}

// Percent reports progress against Expected, or -1 when the size is unknown.
func (pr *ProgressReader) Percent() float64 {
	if pr.Expected <= 0 {
		return -1
	}
	return float64(pr.TotalBytes) * 100 / float64(pr.Expected)
}
