package mocktool

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func appendFile(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString(content)
	require.NoError(t, err)
}

func nextRecord(t *testing.T, records <-chan Invocation) Invocation {
	t.Helper()
	select {
	case inv, ok := <-records:
		require.True(t, ok, "record channel closed unexpectedly")
		return inv
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for invocation record")
		return Invocation{}
	}
}

func TestTailerEmitsRecordsAsAppended(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "record.log")

	tailer, err := NewTailer(logPath)
	require.NoError(t, err)
	defer tailer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	records := tailer.Records(ctx)

	appendFile(t, logPath, transcript("first", []string{"A=1"}, []string{"x"}, nil))
	inv := nextRecord(t, records)
	require.Equal(t, "first", inv.Name)
	require.Equal(t, []string{"x"}, inv.Args)

	appendFile(t, logPath, transcript("second", []string{"B=2"}, nil, []string{"done"}))
	inv = nextRecord(t, records)
	require.Equal(t, "second", inv.Name)
	require.Equal(t, "done", inv.Output)
}

func TestTailerWaitsForFileCreation(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "later", "record.log")

	tailer, err := NewTailer(logPath)
	require.NoError(t, err)
	defer tailer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	records := tailer.Records(ctx)

	// File appears after the tailer starts.
	time.Sleep(200 * time.Millisecond)
	appendFile(t, logPath, transcript("late", []string{"C=3"}, nil, nil))

	inv := nextRecord(t, records)
	require.Equal(t, "late", inv.Name)
}

func TestTailerStopsOnMalformedRecord(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "record.log")

	tailer, err := NewTailer(logPath)
	require.NoError(t, err)
	defer tailer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	records := tailer.Records(ctx)

	// A complete record whose environment line has no '=' cannot parse.
	appendFile(t, logPath, "BEGIN MOCK broken\nNOEQUALS\n---\n---\nEND MOCK\n")

	select {
	case inv, ok := <-records:
		require.False(t, ok, "expected closed channel, got record %q", inv.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("channel stayed open after malformed record")
	}
	require.Error(t, tailer.Err())
	require.Contains(t, tailer.Err().Error(), "malformed transcript record")
}

func TestTailerBuffersPartialRecords(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "record.log")

	tailer, err := NewTailer(logPath)
	require.NoError(t, err)
	defer tailer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	records := tailer.Records(ctx)

	// Write a record in two halves; nothing should be emitted in between.
	full := transcript("split", []string{"D=4"}, []string{"arg"}, nil)
	half := len(full) / 2
	appendFile(t, logPath, full[:half])

	select {
	case inv := <-records:
		t.Fatalf("got record %q before END marker was written", inv.Name)
	case <-time.After(300 * time.Millisecond):
	}

	appendFile(t, logPath, full[half:])
	inv := nextRecord(t, records)
	require.Equal(t, "split", inv.Name)
	require.Equal(t, []string{"arg"}, inv.Args)
}
