// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/link2ref/pkg/types"
)

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/2301.07041v2</id>
    <published>2023-01-17T18:59:59Z</published>
    <title>Attention Is
      Still All You Need</title>
    <summary>  We revisit attention.
    </summary>
    <author><name>Jane Doe</name></author>
    <author><name>John Q. Public</name></author>
  </entry>
</feed>`

const arxivFeedWithDOI = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom" xmlns:arxiv="http://arxiv.org/schemas/atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v7</id>
    <published>2017-06-12T17:57:34Z</published>
    <title>Attention Is All You Need</title>
    <author><name>Ashish Vaswani</name></author>
    <arxiv:doi>10.5555/3295222.3295349</arxiv:doi>
  </entry>
</feed>`

const arxivErrorFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/api/errors#incorrect_id_format_for_9999.99999</id>
    <title>Error</title>
    <summary>incorrect id format for 9999.99999</summary>
  </entry>
</feed>`

func newArxivTestClient(t *testing.T, body string) *ArxivClient {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.URL.Query().Get("id_list"))
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return NewArxivClient(WithBaseURL(ts.URL), WithRateLimit(0))
}

func TestArxivLookup(t *testing.T) {
	c := newArxivTestClient(t, arxivFeedXML)

	rec, err := c.Lookup(context.Background(), "2301.07041")
	require.NoError(t, err)

	assert.Equal(t, "Attention Is Still All You Need", rec.Title)
	assert.Equal(t, "We revisit attention.", rec.Abstract)
	assert.Equal(t, types.TypeArticleJournal, rec.Type)
	assert.Equal(t, "arXiv", rec.Publisher)
	assert.Equal(t, "arXiv", rec.ContainerTitle)
	assert.Equal(t, "10.48550/arXiv.2301.07041", rec.DOI)
	assert.Equal(t, "https://arxiv.org/abs/2301.07041", rec.URL)
	assert.Equal(t, []int{2023, 1, 17}, rec.Issued.Parts())
	assert.Regexp(t, `^arxiv-[0-9a-f]{8}$`, rec.ID)
	assert.Equal(t, []types.Name{
		{Family: "Doe", Given: "Jane"},
		{Family: "Public", Given: "John Q."},
	}, rec.Author)
}

func TestArxivLookupPrefersPublishedDOI(t *testing.T) {
	c := newArxivTestClient(t, arxivFeedWithDOI)
	rec, err := c.Lookup(context.Background(), "1706.03762")
	require.NoError(t, err)
	assert.Equal(t, "10.5555/3295222.3295349", rec.DOI)
}

func TestArxivLookupNotFound(t *testing.T) {
	for name, body := range map[string]string{
		"error entry": arxivErrorFeed,
		"empty feed":  `<feed xmlns="http://www.w3.org/2005/Atom"></feed>`,
	} {
		t.Run(name, func(t *testing.T) {
			c := newArxivTestClient(t, body)
			_, err := c.Lookup(context.Background(), "9999.99999")
			require.Error(t, err)
			assert.True(t, IsNotFound(err))
			assert.ErrorIs(t, err, types.ErrProviderUnavailable)
		})
	}
}

func TestArxivLookupMalformed(t *testing.T) {
	c := newArxivTestClient(t, "<feed><entry>")
	_, err := c.Lookup(context.Background(), "2301.07041")
	require.Error(t, err)
	assert.False(t, IsNotFound(err))
}

func TestArxivLookupEmptyID(t *testing.T) {
	c := NewArxivClient(WithBaseURL("http://127.0.0.1:0"))
	_, err := c.Lookup(context.Background(), " ")
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}
