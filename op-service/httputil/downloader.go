package httputil

import (
	"context"
	"fmt"
	"io"

	"github.com/go-resty/resty/v2"

	"github.com/mantlenetworkio/deploy-tasks/op-service/ioutil"
)

type Downloader struct {
	Client     *resty.Client
	Progressor ioutil.Progressor
	MaxSize    int64
}

func (d *Downloader) Download(ctx context.Context, url string, out io.Writer) error {
	if out == nil {
		return fmt.Errorf("output writer is nil")
	}

	client := d.Client
	if client == nil {
		client = resty.New()
	}
	resp, err := client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return fmt.Errorf("failed to request %s: %w", url, err)
	}
	body := resp.RawBody()
	if body != nil {
		defer body.Close()
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return fmt.Errorf("download failed with status code %d: %s", resp.StatusCode(), resp.Status())
	}

	var contentLength int64
	if resp.RawResponse != nil {
		contentLength = resp.RawResponse.ContentLength
	}
	if contentLength > 0 && d.MaxSize > 0 && contentLength > d.MaxSize {
		return fmt.Errorf("content length %d exceeds maximum allowed size %d", contentLength, d.MaxSize)
	}

	r := io.Reader(body)
	if d.MaxSize > 0 {
		r = io.LimitReader(body, d.MaxSize)
	}

	pr := &ioutil.ProgressReader{
		R:          r,
		Progressor: d.Progressor,
		Total:      contentLength,
	}
	if _, err := io.Copy(out, pr); err != nil {
		return fmt.Errorf("failed to write download: %w", err)
	}
	return nil
}
