package hintcrypto

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/imagegate/gatebuilder/internal/bgerrors"
)

// CSVFetcher retrieves the raw hint sheet for a language. Grounded on the
// plain net/http.Client GET in kryptco-kr's
// src/common/version/latest_version.go (GetLatestVersions).
type CSVFetcher interface {
	Fetch(ctx context.Context, language string) ([]byte, error)
}

// HTTPCSVFetcher fetches hint sheets published as CSV over HTTP, one URL
// per language, substituting "{lang}" in URLTemplate with the language
// code (e.g. a published Google Sheets CSV export URL parameterized by a
// per-language sheet id, spec.md §6).
type HTTPCSVFetcher struct {
	URLTemplate string
	Client      *http.Client
}

// NewHTTPCSVFetcher builds a fetcher with a 10-second default timeout.
func NewHTTPCSVFetcher(urlTemplate string) *HTTPCSVFetcher {
	return &HTTPCSVFetcher{
		URLTemplate: urlTemplate,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *HTTPCSVFetcher) Fetch(ctx context.Context, language string) ([]byte, error) {
	url := strings.ReplaceAll(f.URLTemplate, "{lang}", language)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrFetch, "building hint sheet request", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrFetch, fmt.Sprintf("fetching hint sheet for %q", language), err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, bgerrors.New(bgerrors.ErrFetch,
			fmt.Sprintf("hint sheet for %q returned status %d", language, resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrFetch, "reading hint sheet body", err)
	}
	return body, nil
}
