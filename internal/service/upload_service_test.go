package service

import (
	"bytes"
	"context"
	"errors"
	"net/textproto"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecobazaar/internal/queue"
)

var pngBytes = append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, bytes.Repeat([]byte{0}, 64)...)

func partHeader(contentType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}

func newUploadService(maxBytes int64) (*UploadService, *memoryImages, *recordingQueue) {
	store := newMemoryImages()
	tasks := &recordingQueue{}
	svc := NewUploadService(store, tasks, "uploads", maxBytes, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) }
	return svc, store, tasks
}

func TestUploadStoresImageAndEnqueuesIngest(t *testing.T) {
	svc, store, tasks := newUploadService(1 << 20)

	res, err := svc.Upload(context.Background(), admin, UploadInput{Header: partHeader("image/png"), Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^uploads/2025/03/07/[0-9A-Za-z]{27}\.png$`), res.Key)
	assert.Equal(t, "/uploads/"+res.Key, res.URL)
	assert.Equal(t, "image/png", res.ContentType)
	assert.Equal(t, pngBytes, store.objects[res.Key])
	assert.Equal(t, "image/png", store.types[res.Key])
	assert.Equal(t, []queue.Task{{Type: queue.TaskIngest, Object: res.Key, ContentType: "image/png"}}, tasks.tasks)
}

func TestUploadRejections(t *testing.T) {
	cases := []struct {
		name   string
		header textproto.MIMEHeader
		body   []byte
	}{
		{"empty", partHeader("image/png"), nil},
		{"not an image", partHeader("image/png"), []byte("hello, world")},
		{"declared type mismatch", partHeader("image/jpeg"), pngBytes},
		{"too large", partHeader(""), append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{1}, 200)...)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store, tasks := newUploadService(128)
			_, err := svc.Upload(context.Background(), admin, UploadInput{Header: tc.header, Body: bytes.NewReader(tc.body)})
			assert.ErrorIs(t, err, ErrInvalidUpload)
			assert.Empty(t, store.objects)
			assert.Empty(t, tasks.tasks)
		})
	}
}

func TestUploadSanitizesSVG(t *testing.T) {
	svc, store, _ := newUploadService(1 << 20)
	body := `<svg xmlns="http://www.w3.org/2000/svg" onload="steal()"><script>alert(1)</script><circle r="4"/></svg>`

	res, err := svc.Upload(context.Background(), admin, UploadInput{Header: partHeader("image/svg+xml"), Body: strings.NewReader(body)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(res.Key, ".svg"))

	stored := string(store.objects[res.Key])
	assert.NotContains(t, stored, "script")
	assert.NotContains(t, stored, "onload")
	assert.Contains(t, stored, `<circle r="4"/>`)
	assert.Equal(t, int64(len(stored)), res.Size)
}

func TestUploadRequiresAdmin(t *testing.T) {
	svc, _, _ := newUploadService(1 << 20)
	_, err := svc.Upload(context.Background(), shopper, UploadInput{Header: partHeader("image/png"), Body: bytes.NewReader(pngBytes)})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUploadSurvivesQueueFailure(t *testing.T) {
	svc, store, tasks := newUploadService(1 << 20)
	tasks.err = errors.New("redis unavailable")

	res, err := svc.Upload(context.Background(), admin, UploadInput{Header: partHeader(""), Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.Contains(t, store.objects, res.Key)
}

func TestUploadStoreFailure(t *testing.T) {
	svc, store, tasks := newUploadService(1 << 20)
	store.err = errors.New("minio down")

	_, err := svc.Upload(context.Background(), admin, UploadInput{Header: partHeader("image/png"), Body: bytes.NewReader(pngBytes)})
	assert.ErrorContains(t, err, "minio down")
	assert.NotErrorIs(t, err, ErrInvalidUpload)
	assert.Empty(t, tasks.tasks)
}
