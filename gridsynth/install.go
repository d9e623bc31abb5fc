package gridsynth

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// baseURL is the newsynth distribution site.
const baseURL = "https://www.mathstat.dal.ca/~selinger/newsynth/downloads"

// downloadURL returns the distribution URL of the gridsynth binary for the
// given OS.
func downloadURL(base, goos string) string {
	switch goos {
	case "windows":
		return base + "/win/gridsynth.exe"
	case "darwin":
		return base + "/mac/gridsynth"
	default:
		return base + "/lin/gridsynth"
	}
}

// DownloadURL returns the URL [Install] downloads the binary from on the
// current OS.
func DownloadURL() string {
	return downloadURL(baseURL, runtime.GOOS)
}

// InstallOptions configures [Install].
type InstallOptions struct {
	// Client is the HTTP client performing the download. Nil means
	// http.DefaultClient.
	Client *http.Client
	// BaseURL overrides the distribution site.
	BaseURL string
}

// Install downloads the gridsynth binary for the current OS into the
// per-user directory and marks it executable. It returns
// [ErrAlreadyInstalled] when the binary is already present.
//
// The binary is licensed under GPL-3.0, independently of this module. The
// caller is responsible for obtaining the user's consent before installing.
func Install(ctx context.Context, opts InstallOptions) error {

	path, err := Path()
	if err != nil {
		return err
	}

	if Installed() {
		return ErrAlreadyInstalled
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	base := opts.BaseURL
	if base == "" {
		base = baseURL
	}

	url := downloadURL(base, runtime.GOOS)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "cannot download gridsynth")
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "cannot download gridsynth")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("cannot download gridsynth: %s returned %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "cannot create the binary directory")
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o755)
	if err != nil {
		return errors.Wrap(err, "cannot create the binary file")
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrap(err, "cannot write the binary file")
	}

	if err := f.Close(); err != nil {
		os.Remove(path)
		return errors.Wrap(err, "cannot write the binary file")
	}

	return nil
}

// Uninstall removes the installed gridsynth binary. It returns
// [ErrNotInstalled] when the binary is not present.
func Uninstall() error {

	path, err := Path()
	if err != nil {
		return err
	}

	if !Installed() {
		return ErrNotInstalled
	}

	return errors.Wrap(os.Remove(path), "cannot remove gridsynth")
}
