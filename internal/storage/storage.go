// Package storage keeps uploaded media on local disk and publishes it
// under a public base URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"shoe-storefront/internal/domain"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 3072

var (
	ErrEmptyUpload          = errors.New("upload is empty")
	ErrUnsupportedMediaType = errors.New("only image and video uploads are accepted")
	ErrUploadTooLarge       = errors.New("upload exceeds the size limit")
)

// Object describes a stored upload.
type Object struct {
	URL         string           `json:"url"`
	MediaType   domain.MediaType `json:"mediaType"`
	ContentType string           `json:"contentType"`
	Size        int64            `json:"size"`
}

// Storage accepts media uploads.
type Storage interface {
	Upload(ctx context.Context, r io.Reader) (*Object, error)
}

// Local writes uploads to <dir>/<image|video>/<uuid><ext>.
type Local struct {
	dir       string
	publicURL string
	maxBytes  int64
}

func NewLocal(dir, publicURL string, maxBytes int64) *Local {
	return &Local{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		maxBytes:  maxBytes,
	}
}

// Dir is the root directory served read-only as public media.
func (s *Local) Dir() string {
	return s.dir
}

func (s *Local) Upload(ctx context.Context, r io.Reader) (*Object, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyUpload
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	kind, ok := mediaKind(mtype)
	if !ok {
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedMediaType, mtype.String())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir := filepath.Join(s.dir, string(kind))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload folder: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file: %w", err)
	}

	size, err := s.write(f, head, r)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close upload file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	return &Object{
		URL:         s.publicURL + "/" + string(kind) + "/" + name,
		MediaType:   kind,
		ContentType: mtype.String(),
		Size:        size,
	}, nil
}

func (s *Local) write(w io.Writer, head []byte, rest io.Reader) (int64, error) {
	if s.maxBytes > 0 && int64(len(head)) > s.maxBytes {
		return 0, ErrUploadTooLarge
	}

	if _, err := w.Write(head); err != nil {
		return 0, fmt.Errorf("failed to write upload: %w", err)
	}

	src := rest
	if s.maxBytes > 0 {
		src = io.LimitReader(rest, s.maxBytes-int64(len(head))+1)
	}

	copied, err := io.Copy(w, src)
	if err != nil {
		return 0, fmt.Errorf("failed to write upload: %w", err)
	}

	size := int64(len(head)) + copied
	if s.maxBytes > 0 && size > s.maxBytes {
		return 0, ErrUploadTooLarge
	}
	return size, nil
}

func mediaKind(m *mimetype.MIME) (domain.MediaType, bool) {
	ct := m.String()
	switch {
	case strings.HasPrefix(ct, "image/svg"):
		return "", false
	case strings.HasPrefix(ct, "image/"):
		return domain.MediaTypeImage, true
	case strings.HasPrefix(ct, "video/"):
		return domain.MediaTypeVideo, true
	}
	return "", false
}
