package auctions

import (
	"bytes"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"numicat-backend/lib/fetch"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func loadPage(t *testing.T, fixture, rawURL string) fetch.Page {
	t.Helper()

	raw, err := os.ReadFile(filepath.Join("testdata", fixture))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	require.NoError(t, err)
	u, err := url.Parse(rawURL)
	require.NoError(t, err)

	return fetch.Page{URL: u, Doc: doc, Text: string(raw)}
}
