package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/angelmondragon/farmstore/pkg/config"
	pkgerrors "github.com/angelmondragon/farmstore/pkg/errors"
	"github.com/angelmondragon/farmstore/pkg/logger"
)

// UploadInput is one image picked by the user.
type UploadInput struct {
	Filename string
	Body     io.Reader
	Progress ProgressFunc
}

// Uploaded is the hosted image returned by the upload endpoint.
type Uploaded struct {
	URL         string `json:"secure_url"`
	PublicID    string `json:"public_id"`
	Bytes       int64  `json:"bytes"`
	Format      string `json:"format"`
	ContentType string `json:"-"`
}

type uploadError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Uploader sends images to an unsigned multipart upload endpoint
// (Cloudinary style: file + upload_preset + folder). Cancelling the
// context aborts an upload in flight.
type Uploader struct {
	http     *resty.Client
	url      string
	preset   string
	folder   string
	maxBytes int64
	logg     *logger.Logger
}

type Option func(*Uploader)

func WithHTTPClient(client *http.Client) Option {
	return func(u *Uploader) {
		if client != nil {
			u.http = resty.NewWithClient(client)
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(u *Uploader) {
		if logg != nil {
			u.logg = logg
		}
	}
}

func NewUploader(cfg config.MediaConfig, opts ...Option) (*Uploader, error) {
	if strings.TrimSpace(cfg.UploadURL) == "" {
		return nil, fmt.Errorf("media upload url required")
	}
	if strings.TrimSpace(cfg.UploadPreset) == "" {
		return nil, fmt.Errorf("media upload preset required")
	}
	u := &Uploader{
		http:     resty.New(),
		url:      cfg.UploadURL,
		preset:   cfg.UploadPreset,
		folder:   cfg.Folder,
		maxBytes: cfg.MaxUploadBytes(),
		logg:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	u.http.
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")
	return u, nil
}

func (u *Uploader) Upload(ctx context.Context, in UploadInput) (*Uploaded, error) {
	if in.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}
	data, err := u.readLimited(in.Body)
	if err != nil {
		return nil, err
	}
	detected, err := sniffImage(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}

	filename := path.Base(strings.TrimSpace(in.Filename))
	if filename == "" || filename == "." || filename == "/" {
		filename = "upload" + detected.Extension()
	}

	body := &progressReader{
		ctx:   ctx,
		r:     bytes.NewReader(data),
		total: int64(len(data)),
		fn:    in.Progress,
	}

	form := map[string]string{"upload_preset": u.preset}
	if u.folder != "" {
		form["folder"] = u.folder
	}

	var out Uploaded
	var failure uploadError
	resp, err := u.http.R().
		SetContext(ctx).
		SetMultipartField("file", filename, detected.String(), body).
		SetFormData(form).
		SetResult(&out).
		SetError(&failure).
		Post(u.url)
	if err != nil {
		return nil, uploadTransportError(ctx, err)
	}
	if resp.IsError() {
		msg := failure.Error.Message
		if msg == "" {
			msg = "upload rejected"
		}
		return nil, pkgerrors.New(pkgerrors.CodeRejected, msg).
			WithDetails(map[string]any{"status": resp.StatusCode()})
	}
	if out.URL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upload response missing url")
	}
	out.ContentType = detected.String()

	u.logg.Info(u.logg.WithFields(ctx, map[string]any{
		"public_id":    out.PublicID,
		"bytes":        len(data),
		"content_type": out.ContentType,
	}), "image uploaded")
	return &out, nil
}

func (u *Uploader) readLimited(r io.Reader) ([]byte, error) {
	if u.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read file")
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read file")
	}
	if int64(len(data)) > u.maxBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is too large").
			WithDetails(map[string]any{"maxBytes": u.maxBytes})
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	return data, nil
}

func uploadTransportError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return pkgerrors.Wrap(pkgerrors.CodeCanceled, err, "upload canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "upload timed out")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload failed")
}
