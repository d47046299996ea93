// Package acquire fetches the input image over HTTP
package acquire

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/cyclopcam/logs"
	"github.com/cyclopcam/ovdetect/pkg/iox"
)

var ErrDownloadFailed = errors.New("Image couldn't be retreived")

// HTTPStatusError is returned when the server responds with anything other than 200
type HTTPStatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP error %v fetching %v", e.Status, e.URL)
}

func (e *HTTPStatusError) Unwrap() error {
	return ErrDownloadFailed
}

// Filename returns the last path segment of the URL, ignoring any query string.
func Filename(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("Invalid image URL '%v': %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("Image URL '%v' has no filename", rawURL)
	}
	return name, nil
}

// Download fetches rawURL and streams it into dir, named after the last segment of the URL.
// An existing file of the same name is overwritten.
// If client is nil, http.DefaultClient is used.
// Returns the path of the downloaded file.
func Download(log logs.Log, client *http.Client, rawURL, dir string) (string, error) {
	if client == nil {
		client = http.DefaultClient
	}
	name, err := Filename(rawURL)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	targetFile := filepath.Join(dir, name)

	resp, err := client.Get(rawURL)
	if err != nil {
		log.Errorf("%v", ErrDownloadFailed)
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Errorf("%v", ErrDownloadFailed)
		return "", &HTTPStatusError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
	}

	if err := iox.WriteStreamToFileAtomic(targetFile, resp.Body); err != nil {
		log.Errorf("%v", ErrDownloadFailed)
		return "", fmt.Errorf("%w: %w", ErrDownloadFailed, err)
	}
	log.Infof("Image sucessfully downloaded: %v", dir)
	return targetFile, nil
}
