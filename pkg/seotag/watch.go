package seotag

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"
)

// SettleDelay is how long a watched file must go without events before it is processed.
var SettleDelay = 2 * time.Second

// Watch processes accepted images as they appear in the input directory until ctx is done.
// Files listed in skip were already handled and are ignored. Events are batched
// and processed sequentially, in name order, once the directory settles.
func (p *Processor) Watch(ctx context.Context, skip []string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(p.c.InDir); err != nil {
		return fmt.Errorf("watch %s: %w", p.c.InDir, err)
	}
	klog.Infof("watching %s for new images ...", p.c.InDir)

	done := map[string]bool{}
	for _, s := range skip {
		done[filepath.Clean(s)] = true
	}
	pending := map[string]bool{}

	settle := time.NewTimer(SettleDelay)
	settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			klog.V(1).Infof("event: %v", event)
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			path := filepath.Clean(event.Name)
			if done[path] || !accepted(path, p.c.Extensions) || filepath.Base(path)[0] == '.' {
				continue
			}
			pending[path] = true
			settle.Reset(SettleDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		case <-settle.C:
			paths := []string{}
			for path := range pending {
				paths = append(paths, path)
			}
			slices.Sort(paths)
			clear(pending)

			s := p.Run(ctx, paths)
			failed := map[string]bool{}
			for _, f := range s.Failures {
				failed[f.Path] = true
			}
			// failures stay eligible so a later write event retries them
			for _, path := range append(paths, s.Outputs...) {
				if !failed[path] {
					done[filepath.Clean(path)] = true
				}
			}
			klog.Infof("watch: %d annotated, %d failed", len(s.Outputs), len(s.Failures))
		}
	}
}
