// Package storage manages the uploaded files behind account avatars and
// listing images. Files are addressed by reference URLs of the form
// {baseURL}/uploads/{name}; the reference lives on the owning entity.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/xid"
	"marketplace/internal/apperr"
	"marketplace/internal/logging"
)

const (
	UploadsPath    = "/uploads/"
	DefaultMaxSize = 5 << 20

	sniffLen = 3072
)

// Blob is the byte store behind the assets. Remove and Open report a missing
// object with an error matching fs.ErrNotExist.
type Blob interface {
	Put(ctx context.Context, name string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, name string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// Kind names a family of assets and the image types it accepts.
type Kind struct {
	Prefix  string
	Allowed []string
}

var (
	ListingImage = Kind{Prefix: "listing", Allowed: []string{"image/jpeg", "image/png", "image/webp"}}
	Avatar       = Kind{Prefix: "avatar", Allowed: []string{"image/jpeg", "image/png", "image/webp", "image/gif"}}
)

func (k Kind) allows(contentType string) bool {
	for _, allowed := range k.Allowed {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func (k Kind) allowsDetected(m *mimetype.MIME) bool {
	for _, allowed := range k.Allowed {
		if m.Is(allowed) {
			return true
		}
	}
	return false
}

type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Assets struct {
	blob    Blob
	baseURL string
	maxSize int64
	log     logging.Logger
	now     func() time.Time
}

func NewAssets(blob Blob, baseURL string, maxSize int64, log logging.Logger) *Assets {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Assets{
		blob:    blob,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		log:     log.With("component", "assets"),
		now:     time.Now,
	}
}

// Prefix is the only reference prefix Delete will act on.
func (a *Assets) Prefix() string {
	return a.baseURL + UploadsPath
}

func (a *Assets) MaxSize() int64 {
	return a.maxSize
}

// Store validates and writes up, returning its reference URL. Nothing is
// written when validation fails.
func (a *Assets) Store(ctx context.Context, kind Kind, up Upload) (string, error) {
	body, detected, err := a.validate(kind, up)
	if err != nil {
		return "", err
	}

	size := up.Size
	if size == 0 {
		size = -1
	}

	name := a.newName(kind, up.Filename, detected)
	capped := &cappedReader{r: io.LimitReader(body, a.maxSize+1), left: a.maxSize}
	if err := a.blob.Put(ctx, name, capped, size, detected.String()); err != nil {
		if errors.Is(err, errTooLarge) {
			return "", apperr.Validation("file is larger than the limit of %s", humanize.IBytes(uint64(a.maxSize)))
		}
		return "", apperr.Storage("write asset", err)
	}

	a.log.Debug(ctx, "asset stored", "name", name, "size", up.Size, "type", detected.String())
	return a.Prefix() + name, nil
}

// Replace stores up, hands the new reference to persist and only then
// removes previous. When persist fails the new file is removed again and
// previous is left alone.
func (a *Assets) Replace(ctx context.Context, kind Kind, up Upload, previous *string, persist func(ctx context.Context, ref string) error) (string, error) {
	ref, err := a.Store(ctx, kind, up)
	if err != nil {
		return "", err
	}

	if err := persist(ctx, ref); err != nil {
		a.Delete(ctx, ref)
		return "", err
	}

	if previous != nil && *previous != ref {
		a.Delete(ctx, *previous)
	}
	return ref, nil
}

// Delete removes the file behind ref if ref is one of ours. Failures are
// logged, never returned.
func (a *Assets) Delete(ctx context.Context, ref string) {
	name, ok := a.ManagedName(ref)
	if !ok {
		if ref != "" {
			a.log.Debug(ctx, "skipping delete of unmanaged reference", "ref", ref)
		}
		return
	}

	err := a.blob.Remove(ctx, name)
	switch {
	case err == nil:
		a.log.Debug(ctx, "asset deleted", "name", name)
	case errors.Is(err, fs.ErrNotExist):
		a.log.Info(ctx, "asset already gone", "name", name)
	default:
		a.log.Warn(ctx, "asset delete failed", "name", name, "error", err)
	}
}

var managedNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ManagedName extracts the stored file name from ref. It rejects references
// outside {baseURL}/uploads/ and anything that could step out of that directory.
func (a *Assets) ManagedName(ref string) (string, bool) {
	prefix := a.Prefix()
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}

	name := strings.TrimPrefix(ref, prefix)
	if !managedNameRe.MatchString(name) || strings.Contains(name, "..") {
		return "", false
	}
	return name, true
}

// Open streams a stored file by name for the uploads route.
func (a *Assets) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if !managedNameRe.MatchString(name) || strings.Contains(name, "..") {
		return nil, apperr.NotFound("file", name)
	}

	rc, err := a.blob.Open(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.NotFound("file", name)
		}
		return nil, apperr.Storage("open asset", err)
	}
	return rc, nil
}

func (a *Assets) validate(kind Kind, up Upload) (io.Reader, *mimetype.MIME, error) {
	if up.Body == nil {
		return nil, nil, apperr.Validation("file is required")
	}
	if up.Size < 0 {
		return nil, nil, apperr.Validation("file size %d is invalid", up.Size)
	}
	if up.Size > a.maxSize {
		return nil, nil, a.tooLarge(up.Size)
	}

	if declared := normalizeContentType(up.ContentType); declared != "" && declared != "application/octet-stream" && !kind.allows(declared) {
		return nil, nil, unsupportedType(kind, declared)
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(up.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, nil, apperr.Validation("file could not be read: %v", err)
	}
	if n == 0 {
		return nil, nil, apperr.Validation("file is empty")
	}
	head = head[:n]

	detected := mimetype.Detect(head)
	if !kind.allowsDetected(detected) {
		return nil, nil, unsupportedType(kind, detected.String())
	}

	return io.MultiReader(bytes.NewReader(head), up.Body), detected, nil
}

func (a *Assets) tooLarge(size int64) error {
	return apperr.Validation("file is %s, the limit is %s",
		humanize.IBytes(uint64(size)), humanize.IBytes(uint64(a.maxSize)))
}

var errTooLarge = errors.New("asset exceeds the size limit")

// cappedReader fails with errTooLarge once more than left bytes have been read,
// whatever size the caller declared.
type cappedReader struct {
	r    io.Reader
	left int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.left -= int64(n)
	if c.left < 0 {
		return n, errTooLarge
	}
	return n, err
}

var extRe = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

func (a *Assets) newName(kind Kind, filename string, detected *mimetype.MIME) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !extRe.MatchString(ext) {
		ext = detected.Extension()
	}
	return fmt.Sprintf("%s-%d-%s%s", kind.Prefix, a.now().UnixMilli(), xid.New().String(), ext)
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	if mediaType == "image/jpg" {
		return "image/jpeg"
	}
	return mediaType
}

func unsupportedType(kind Kind, got string) error {
	return apperr.Validation("unsupported file type %q, allowed: %s", got, strings.Join(kind.Allowed, ", "))
}
