package util

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

var Client *http.Client = &http.Client{
	Timeout: time.Second * 120,
	Transport: &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     false,
		DisableKeepAlives:     true,
		MaxIdleConns:          0,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConnsPerHost:   100,
		Proxy:                 http.ProxyFromEnvironment,
	},
}

func Get(ctx context.Context, url string) (resp *http.Response, err error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	return Client.Do(req)
}

// DownloadFile 下载到临时文件，完成后再改名，避免留下不完整的文件
func DownloadFile(ctx context.Context, filePath, fileURL string) error {
	resp, err := Get(ctx, fileURL)
	if err != nil {
		return errors.Wrap(err, "Get")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("download %s: status %d", fileURL, resp.StatusCode)
	}
	tmpPath := filePath + ".part"
	out, err := os.Create(tmpPath)
	if err != nil {
		return errors.Wrap(err, "Create")
	}
	n, err := io.Copy(out, resp.Body)
	out.Close()
	if err != nil {
		os.Remove(tmpPath)
		return errors.Wrapf(err, "Copy %d", n)
	}
	return errors.Wrap(os.Rename(tmpPath, filePath), "Rename")
}
