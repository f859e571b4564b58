package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"path"
	"time"

	"github.com/rs/zerolog"

	"ecobazaar/internal/ids"
	"ecobazaar/internal/media/sniffer"
	"ecobazaar/internal/media/svg"
	"ecobazaar/internal/queue"
	"ecobazaar/internal/storage"
)

type ImageStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (storage.ObjectInfo, error)
}

type TaskQueue interface {
	Enqueue(ctx context.Context, task queue.Task) error
}

type UploadInput struct {
	Header textproto.MIMEHeader
	Body   io.Reader
}

type UploadResult struct {
	Key         string
	URL         string
	ContentType string
	Size        int64
}

type UploadService struct {
	store    ImageStore
	tasks    TaskQueue
	prefix   string
	maxBytes int64
	now      func() time.Time
	log      zerolog.Logger
}

func NewUploadService(store ImageStore, tasks TaskQueue, prefix string, maxBytes int64, log zerolog.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &UploadService{
		store:    store,
		tasks:    tasks,
		prefix:   prefix,
		maxBytes: maxBytes,
		now:      time.Now,
		log:      log,
	}
}

func (s *UploadService) Upload(ctx context.Context, id Identity, input UploadInput) (UploadResult, error) {
	if !id.IsAdmin() {
		return UploadResult{}, ErrForbidden
	}
	if input.Body == nil {
		return UploadResult{}, fmt.Errorf("%w: missing file", ErrInvalidUpload)
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return UploadResult{}, fmt.Errorf("read file: %w", err)
	}
	if len(data) == 0 {
		return UploadResult{}, fmt.Errorf("%w: empty file", ErrInvalidUpload)
	}
	if int64(len(data)) > s.maxBytes {
		return UploadResult{}, fmt.Errorf("%w: file exceeds %d bytes", ErrInvalidUpload, s.maxBytes)
	}

	head := data
	if len(head) > sniffer.HeadSize {
		head = head[:sniffer.HeadSize]
	}
	result, err := sniffer.DetectHead(head)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	declared := sniffer.DeclaredType(input.Header)
	if !sniffer.Compatible(declared, result) {
		return UploadResult{}, fmt.Errorf("%w: declared %s, actual %s", ErrInvalidUpload, declared, result.MIME)
	}

	if result.Format == sniffer.FormatSVG {
		clean, err := svg.Sanitize(data)
		if err != nil {
			if errors.Is(err, svg.ErrNotSVG) {
				return UploadResult{}, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
			}
			return UploadResult{}, fmt.Errorf("sanitize svg: %w", err)
		}
		data = clean
	}

	key := s.objectKey(result.Ext())
	info, err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), result.MIME)
	if err != nil {
		return UploadResult{}, err
	}

	task := queue.Task{Type: queue.TaskIngest, Object: key, ContentType: result.MIME}
	if err := s.tasks.Enqueue(ctx, task); err != nil {
		s.log.Warn().Err(err).Str("object", key).Msg("enqueue ingest failed")
	}

	s.log.Info().Str("object", key).Str("uploaded_by", id.UserID).Int64("size", info.Size).Msg("product image stored")
	return UploadResult{
		Key:         key,
		URL:         storage.PublicURL(key),
		ContentType: result.MIME,
		Size:        int64(len(data)),
	}, nil
}

func (s *UploadService) objectKey(ext string) string {
	datePrefix := s.now().UTC().Format("2006/01/02")
	return path.Join(s.prefix, datePrefix, ids.New()+"."+ext)
}
