package seotag

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch(t *testing.T) {
	old := SettleDelay
	SettleDelay = 50 * time.Millisecond
	defer func() { SettleDelay = old }()

	c := testConfig(t)
	c.InDir = t.TempDir()
	existing := filepath.Join(c.InDir, "old.jpg")
	writeJPEG(t, existing)

	p := NewProcessor(c, NewAnalyzer(c, &fakeGenerator{resp: sampleJSON}), testWriter(c, nil))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Watch(ctx, []string{existing}) }()

	// give the watcher time to register before creating files
	time.Sleep(100 * time.Millisecond)
	writeJPEG(t, filepath.Join(c.InDir, "new.jpg"))
	writeJPEG(t, filepath.Join(c.InDir, "ignored.txt"))

	assert.Eventually(t, func() bool {
		des, err := os.ReadDir(c.OutDir)
		return err == nil && len(des) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
	assert.Equal(t, []string{"Fresh Fruit Salad.jpg"}, dirNames(t, c.OutDir))
}

type countingGenerator struct {
	resp  string
	calls atomic.Int32
}

func (g *countingGenerator) Generate(context.Context, string, string, []byte, string) (string, error) {
	g.calls.Add(1)
	return g.resp, nil
}

func TestWatchRetriesFailedImage(t *testing.T) {
	old := SettleDelay
	SettleDelay = 50 * time.Millisecond
	defer func() { SettleDelay = old }()

	c := testConfig(t)
	c.InDir = t.TempDir()
	g := &countingGenerator{resp: sampleJSON}
	p := NewProcessor(c, NewAnalyzer(c, g), testWriter(c, nil))

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- p.Watch(ctx, nil) }()

	time.Sleep(100 * time.Millisecond)
	late := filepath.Join(c.InDir, "late.jpg")
	require.NoError(t, os.WriteFile(late, []byte("still copying"), 0o644))

	require.Eventually(t, func() bool { return g.calls.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	writeJPEG(t, late)

	assert.Eventually(t, func() bool {
		des, err := os.ReadDir(c.OutDir)
		return err == nil && len(des) == 1
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-errc)
}
