package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const maxLineBytes = 1024 * 1024

// Last returns up to limit entries matching filter from the end of the file,
// oldest first, and the offset just past the last byte read. A missing file
// yields no entries and offset 0.
func Last(path string, limit int, filter Filter) ([]Entry, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, end, nil
	}

	ring := make([]Entry, 0, limit)
	start := 0
	offset, err := scan(file, func(e Entry) {
		if !filter.Match(e) {
			return
		}
		if len(ring) < limit {
			ring = append(ring, e)
			return
		}
		ring[start] = e
		start = (start + 1) % limit
	})
	if err != nil {
		return nil, 0, err
	}
	return append(ring[start:], ring[:start]...), offset, nil
}

// Follow emits entries appended after offset until ctx is cancelled. A file
// that shrinks below offset is read again from the start. It returns nil
// when ctx ends.
func Follow(ctx context.Context, path string, offset int64, filter Filter, poll time.Duration, emit func(Entry)) error {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		next, err := readFrom(path, offset, filter, emit)
		if err != nil {
			return err
		}
		offset = next

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func readFrom(path string, offset int64, filter Filter, emit func(Entry)) (int64, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return offset, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return offset, fmt.Errorf("stat log file: %w", err)
	}
	if offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return offset, fmt.Errorf("seek log file: %w", err)
	}
	consumed, err := scan(file, func(e Entry) {
		if filter.Match(e) {
			emit(e)
		}
	})
	if err != nil {
		return offset, err
	}
	return offset + consumed, nil
}

// scan decodes complete lines from r and returns the number of bytes they
// covered. A trailing partial line is left for the next read.
func scan(r io.Reader, fn func(Entry)) (int64, error) {
	reader := bufio.NewReaderSize(r, 64*1024)
	var consumed int64
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return consumed, nil
			}
			return consumed, fmt.Errorf("read log file: %w", err)
		}
		consumed += int64(len(line))
		if len(line) > maxLineBytes {
			continue
		}
		if e, ok := ParseEntry(line); ok {
			fn(e)
		}
	}
}
