package view

import (
	"context"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/umlcanvas/internal/registry"
	"github.com/dusk-indust/umlcanvas/internal/uml"
)

func TestFeedWriter_FramesCarryIDAndName(t *testing.T) {
	rec := httptest.NewRecorder()
	fw := NewFeedWriter(rec)
	require.NoError(t, fw.Start())

	rm := registry.RenderModel{}
	require.NoError(t, fw.Write(Event{ID: 4, Render: &rm}))
	require.NoError(t, fw.Write(Event{ID: 5, Seq: 5, Op: "addNode", NodeID: 7}))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, rec.Flushed)

	frames := strings.Split(strings.TrimSuffix(rec.Body.String(), "\n\n"), "\n\n")
	require.Len(t, frames, 3)
	assert.Equal(t, "retry: 2000", frames[0])

	lines := strings.Split(frames[1], "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id: 4", lines[0])
	assert.Equal(t, "event: snapshot", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], `data: {"seq":0`), lines[2])

	lines = strings.Split(frames[2], "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id: 5", lines[0])
	assert.Equal(t, "event: addNode", lines[1])
	assert.Contains(t, lines[2], `"nodeId":7`)
}

func TestReadEvents_ParsesFields(t *testing.T) {
	pr, pw := io.Pipe()
	go func() {
		defer pw.Close()
		fmt.Fprint(pw, ": comment\nretry: 2000\n\n")
		fmt.Fprint(pw, "id: 3\nevent: addNode\ndata: {\"seq\":3,\"op\":\"addNode\",\"nodeId\":3}\n\n")
		fmt.Fprint(pw, "event: addLink\ndata:{\"seq\":4,\"op\":\"addLink\",\n")
		fmt.Fprint(pw, "data: \"link\":{\"from\":3,\"to\":3,\"category\":\"association\"}}\n\n")
		fmt.Fprint(pw, "id: bogus\ndata: not json\n\n")
		fmt.Fprint(pw, "id: 9\ndata: {\"seq\":9}")
	}()

	ch := ReadEvents(context.Background(), pr)

	ev := <-ch
	require.NoError(t, ev.Err)
	assert.Equal(t, uint64(3), ev.ID)
	assert.Equal(t, "addNode", ev.Name)
	assert.Equal(t, uml.NodeID(3), ev.NodeID)

	ev = <-ch
	require.NoError(t, ev.Err)
	assert.Equal(t, uint64(3), ev.ID, "id carries over")
	assert.Equal(t, "addLink", ev.Name)
	require.NotNil(t, ev.Link)
	assert.Equal(t, uml.Association, ev.Link.Category)

	ev = <-ch
	assert.Error(t, ev.Err)
	assert.Equal(t, uint64(3), ev.ID, "unparsable id is ignored")
	assert.Equal(t, "message", ev.Name)

	ev = <-ch
	require.NoError(t, ev.Err, "trailing frame without blank line")
	assert.Equal(t, uint64(9), ev.ID)

	_, open := <-ch
	assert.False(t, open)
}

func TestFeed_RoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	fw := NewFeedWriter(rec)
	require.NoError(t, fw.Start())
	l := uml.Link{From: 1, To: 2, Category: uml.Composition}
	require.NoError(t, fw.Write(Event{ID: 2, Seq: 2, Op: "addLink", Direction: "undo", Link: &l}))

	ev := <-ReadEvents(context.Background(), io.NopCloser(rec.Body))
	require.NoError(t, ev.Err)
	assert.Equal(t, uint64(2), ev.ID)
	assert.Equal(t, "addLink", ev.Name)
	assert.Equal(t, "undo", ev.Direction)
	assert.Equal(t, &l, ev.Link)
}

func TestReadEvents_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	ctx, cancel := context.WithCancel(context.Background())

	ch := ReadEvents(ctx, pr)
	go fmt.Fprint(pw, "data: {\"seq\":1}\n\n")
	<-ch
	cancel()
	go fmt.Fprint(pw, "data: {\"seq\":2}\n\n")

	select {
	case _, open := <-ch:
		if open {
			// A frame already in flight may still arrive; the next read must end.
			_, open = <-ch
		}
		assert.False(t, open)
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not stop")
	}
}
