package view

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

// EventSnapshot names the frame that carries the whole diagram rather than
// one change. Change frames are named by their op.
const EventSnapshot = "snapshot"

// retryMillis is the reconnect delay suggested to viewers.
const retryMillis = 2000

// FeedWriter frames events onto a viewer response as server-sent events.
// Every frame carries an id, so a viewer that reconnects with
// Last-Event-ID resumes after the last frame it saw.
type FeedWriter struct {
	w  http.ResponseWriter
	rc *http.ResponseController
}

// NewFeedWriter wraps w.
func NewFeedWriter(w http.ResponseWriter) *FeedWriter {
	return &FeedWriter{w: w, rc: http.NewResponseController(w)}
}

// Start sends the stream headers and the reconnect hint.
func (fw *FeedWriter) Start() error {
	h := fw.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("X-Accel-Buffering", "no")
	fw.w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(fw.w, "retry: %d\n\n", retryMillis); err != nil {
		return fmt.Errorf("feed: start: %w", err)
	}
	return fw.flush()
}

// Write sends ev as one frame:
//
//	id: <ev.ID>
//	event: <op, or snapshot>
//	data: <json>
func (fw *FeedWriter) Write(ev Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("feed: marshal seq %d: %w", ev.Seq, err)
	}
	if _, err := fmt.Fprintf(fw.w, "id: %d\nevent: %s\ndata: %s\n\n", ev.ID, ev.name(), data); err != nil {
		return fmt.Errorf("feed: write seq %d: %w", ev.Seq, err)
	}
	return fw.flush()
}

func (fw *FeedWriter) flush() error {
	if err := fw.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("feed: flush: %w", err)
	}
	return nil
}

func (ev Event) name() string {
	if ev.Op == "" {
		return EventSnapshot
	}
	return ev.Op
}

// frame accumulates the fields of one message as it is read.
type frame struct {
	name string
	data []string
}

// ReadEvents decodes the feed in body and delivers one Event per frame,
// with ID and Name taken from the id and event fields. A frame without an
// id field keeps the last id seen, as browsers do. The channel closes when
// body ends or ctx is cancelled; body is closed then. A frame whose data
// is not an Event arrives with Err set.
func ReadEvents(ctx context.Context, body io.ReadCloser) <-chan Event {
	ch := make(chan Event)
	go func() {
		defer close(ch)
		defer body.Close()

		sc := bufio.NewScanner(body)
		sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		var (
			cur    frame
			lastID uint64
		)
		dispatch := func() bool {
			defer func() { cur = frame{} }()
			if len(cur.data) == 0 {
				return true
			}
			ev := decodeFrame(cur, lastID)
			select {
			case ch <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for sc.Scan() {
			if ctx.Err() != nil {
				return
			}
			line := sc.Text()
			if line == "" {
				if !dispatch() {
					return
				}
				continue
			}
			field, value, _ := strings.Cut(line, ":")
			value = strings.TrimPrefix(value, " ")
			switch field {
			case "id":
				if id, err := strconv.ParseUint(value, 10, 64); err == nil {
					lastID = id
				}
			case "event":
				cur.name = value
			case "data":
				cur.data = append(cur.data, value)
			}
		}
		if ctx.Err() == nil {
			dispatch()
		}
	}()
	return ch
}

func decodeFrame(f frame, id uint64) Event {
	var ev Event
	if err := json.Unmarshal([]byte(strings.Join(f.data, "\n")), &ev); err != nil {
		ev = Event{Err: fmt.Errorf("feed: decode frame %d: %w", id, err)}
	}
	ev.ID = id
	ev.Name = f.name
	if ev.Name == "" {
		ev.Name = "message"
	}
	return ev
}
