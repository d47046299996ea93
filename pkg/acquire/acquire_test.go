package acquire

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/cyclopcam/logs"
	"github.com/stretchr/testify/require"
)

func TestFilename(t *testing.T) {
	name, err := Filename("https://storage.openvinotoolkit.org/data/test_data/images/cat.jpg")
	require.NoError(t, err)
	require.Equal(t, "cat.jpg", name)

	name, err = Filename("http://example.com/a/b/car.png?x=1")
	require.NoError(t, err)
	require.Equal(t, "car.png", name)

	_, err = Filename("http://example.com/")
	require.Error(t, err)
	_, err = Filename("http://example.com")
	require.Error(t, err)
}

func TestDownload(t *testing.T) {
	log := logs.NewTestingLog(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/images/cat.jpg" {
			w.Write([]byte("not really a jpeg"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	fn, err := Download(log, srv.Client(), srv.URL+"/images/cat.jpg", dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "cat.jpg"), fn)
	raw, err := os.ReadFile(fn)
	require.NoError(t, err)
	require.Equal(t, "not really a jpeg", string(raw))

	// Overwrite on second download
	_, err = Download(log, srv.Client(), srv.URL+"/images/cat.jpg", dir)
	require.NoError(t, err)
}

func TestDownloadNotFound(t *testing.T) {
	log := logs.NewTestingLog(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	dir := t.TempDir()
	fn, err := Download(log, nil, srv.URL+"/dog.jpg", dir)
	require.Error(t, err)
	require.Equal(t, "", fn)
	require.True(t, errors.Is(err, ErrDownloadFailed))
	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, 404, statusErr.StatusCode)

	_, err = os.Stat(filepath.Join(dir, "dog.jpg"))
	require.True(t, os.IsNotExist(err))
}
