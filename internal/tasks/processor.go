// Package tasks runs the background work queued by the API: re-checking
// uploaded product images and removing images no product refers to.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"ecobazaar/internal/media/sniffer"
	"ecobazaar/internal/queue"
	"ecobazaar/internal/storage"
)

type ObjectStore interface {
	Head(ctx context.Context, key string, n int64) ([]byte, error)
	List(ctx context.Context, prefix string) ([]storage.ObjectInfo, error)
	Remove(ctx context.Context, key string) error
}

type ImageReferences interface {
	ReferencedImageURLs(ctx context.Context, urls []string) (map[string]struct{}, error)
}

type Options struct {
	UploadPrefix    string
	OrphanRetention time.Duration
	Now             func() time.Time
}

type Processor struct {
	store  ObjectStore
	refs   ImageReferences
	opts   Options
	logger zerolog.Logger
}

func NewProcessor(store ObjectStore, refs ImageReferences, opts Options, logger zerolog.Logger) *Processor {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.OrphanRetention <= 0 {
		opts.OrphanRetention = 24 * time.Hour
	}
	return &Processor{
		store:  store,
		refs:   refs,
		opts:   opts,
		logger: logger,
	}
}

func (p *Processor) Handle(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case queue.TaskIngest:
		return p.handleIngest(ctx, task)
	case queue.TaskCleanup:
		_, err := p.Cleanup(ctx)
		return err
	default:
		p.logger.Warn().Str("type", string(task.Type)).Msg("unknown task type")
		return nil
	}
}

func (p *Processor) handleIngest(ctx context.Context, task queue.Task) error {
	if task.Object == "" {
		p.logger.Warn().Msg("ingest task without object")
		return nil
	}

	head, err := p.store.Head(ctx, task.Object, sniffer.HeadSize)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			p.logger.Info().Str("object", task.Object).Msg("ingest object already gone")
			return nil
		}
		return fmt.Errorf("read head: %w", err)
	}

	result, err := sniffer.DetectHead(head)
	if err == nil && (task.ContentType == "" || task.ContentType == result.MIME) {
		p.logger.Debug().Str("object", task.Object).Str("format", string(result.Format)).Msg("ingest verified")
		return nil
	}

	p.logger.Warn().
		Str("object", task.Object).
		Str("declared", task.ContentType).
		Msg("stored object is not the image it claims to be, removing")
	return p.store.Remove(ctx, task.Object)
}

// Cleanup removes objects under the upload prefix that are older than the
// retention window and referenced by no product. It returns the removed keys.
func (p *Processor) Cleanup(ctx context.Context) ([]string, error) {
	prefix := strings.TrimSuffix(p.opts.UploadPrefix, "/") + "/"
	objects, err := p.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	cutoff := p.opts.Now().Add(-p.opts.OrphanRetention)
	candidates := make(map[string]string)
	urls := make([]string, 0, len(objects))
	for _, obj := range objects {
		if !obj.LastModified.Before(cutoff) {
			continue
		}
		url := storage.PublicURL(obj.Key)
		candidates[url] = obj.Key
		urls = append(urls, url)
	}
	if len(urls) == 0 {
		return nil, nil
	}

	refs, err := p.refs.ReferencedImageURLs(ctx, urls)
	if err != nil {
		return nil, fmt.Errorf("load references: %w", err)
	}

	var removed []string
	for _, url := range urls {
		if _, used := refs[url]; used {
			continue
		}
		key := candidates[url]
		if err := p.store.Remove(ctx, key); err != nil {
			p.logger.Error().Err(err).Str("object", key).Msg("remove orphan failed")
			continue
		}
		removed = append(removed, key)
	}

	p.logger.Info().Int("scanned", len(objects)).Int("removed", len(removed)).Msg("orphan cleanup finished")
	return removed, nil
}
