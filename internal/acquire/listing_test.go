// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/daily-arxiv/internal/keywords"
	"github.com/pdiddy/daily-arxiv/pkg/types"
)

const sampleListingHTML = `<!DOCTYPE html>
<html><body>
<div id="dlpage">
<h1>Computer Vision and Pattern Recognition</h1>
<ul>
<li><a href="/list/cs.CV/new?skip=0&amp;show=2000#item1">New submissions</a></li>
<li><a href="/list/cs.CV/new?skip=0&amp;show=2000#item4">Cross-lists</a></li>
<li><a href="/list/cs.CV/new?skip=0&amp;show=2000#item5">Replacements</a></li>
</ul>
<dl id="articles">
<h3>New submissions</h3>
<dt>
  <a name="item1">[1]</a>
  <a href="/abs/2504.00001" title="Abstract" id="2504.00001">arXiv:2504.00001</a>
</dt>
<dd>
  <div class="meta">
    <div class="list-title mathjax"><span class="descriptor">Title:</span>
      Gaussian Splatting
      for Everyone
    </div>
    <div class="list-subjects"><span class="descriptor">Subjects:</span>
      <span class="primary-subject">Computer Vision and Pattern Recognition (cs.CV)</span>; Machine Learning (cs.LG)
    </div>
  </div>
</dd>
<dt>
  <a name="item2">[2]</a>
  <a href="/abs/2504.00002" title="Abstract" id="2504.00002">arXiv:2504.00002</a>
</dt>
<dd>
  <div class="meta">
    <div class="list-title mathjax"><span class="descriptor">Title:</span> Robot Grasping</div>
    <div class="list-subjects"><span class="descriptor">Subjects:</span>
      <span class="primary-subject">Robotics (cs.RO)</span>
    </div>
  </div>
</dd>
<dt>
  <a name="item3">[3]</a>
  <a href="/abs/2504.00003" title="Abstract" id="2504.00003">arXiv:2504.00003</a>
</dt>
<dd>
  <div class="meta">
    <div class="list-title mathjax"><span class="descriptor">Title:</span> Untagged Paper</div>
  </div>
</dd>
<h3>Cross-lists</h3>
<dt>
  <a name="item4">[4]</a>
  <a href="/abs/2504.00004" title="Abstract" id="2504.00004">arXiv:2504.00004</a>
</dt>
<dd>
  <div class="meta">
    <div class="list-title mathjax"><span class="descriptor">Title:</span> Diffusion Policies</div>
    <div class="list-subjects"><span class="descriptor">Subjects:</span>
      <span class="primary-subject">Machine Learning (cs.LG)</span>; Computer Vision and Pattern Recognition (cs.CV)
    </div>
  </div>
</dd>
<h3>Replacements</h3>
<dt>
  <a name="item5">[5]</a>
  <a href="/abs/2401.09999" title="Abstract" id="2401.09999">arXiv:2401.09999</a>
</dt>
<dd>
  <div class="meta">
    <div class="list-title mathjax"><span class="descriptor">Title:</span> Old Paper Revised</div>
    <div class="list-subjects"><span class="descriptor">Subjects:</span>
      <span class="primary-subject">Computer Vision and Pattern Recognition (cs.CV)</span>
    </div>
  </div>
</dd>
</dl>
</div>
</body></html>`

func ids(recs []types.Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestParseListing(t *testing.T) {
	var log bytes.Buffer
	recs, err := ParseListing(strings.NewReader(sampleListingHTML), []string{"cs.CV"}, nil, &log)
	require.NoError(t, err)

	// 2504.00002 is cs.RO only; 2401.09999 is a replacement.
	assert.Equal(t, []string{"2504.00001", "2504.00003", "2504.00004"}, ids(recs))

	assert.Equal(t, "Gaussian Splatting for Everyone", recs[0].Title)
	assert.Equal(t, []string{"cs.CV", "cs.LG"}, recs[0].Categories)
	assert.Empty(t, recs[1].Categories)
	assert.Equal(t, []string{"cs.LG", "cs.CV"}, recs[2].Categories)

	assert.Contains(t, log.String(), "could not read categories for 2504.00003")
	assert.Contains(t, log.String(), "skipped 2504.00002")
}

func TestParseListing_MultipleTargets(t *testing.T) {
	recs, err := ParseListing(strings.NewReader(sampleListingHTML), []string{"cs.RO", "cs.LG"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2504.00001", "2504.00002", "2504.00003", "2504.00004"}, ids(recs))
}

func TestParseListing_TitleKeywordFilter(t *testing.T) {
	m := keywords.New([]string{"splatting"})
	recs, err := ParseListing(strings.NewReader(sampleListingHTML), []string{"cs.CV"}, m, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2504.00001"}, ids(recs))
}

func TestParseListing_NoSectionAnchors(t *testing.T) {
	page := `<html><body><dl>
<dt><a name="item1">[1]</a><a href="/abs/2504.10000" title="Abstract">x</a></dt>
<dd><div class="list-title">T</div><div class="list-subjects">Computer Vision (cs.CV)</div></dd>
<dt><a href="/abs/2504.10001" title="Abstract">no anchor</a></dt>
<dd><div class="list-title">U</div></dd>
</dl></body></html>`
	recs, err := ParseListing(strings.NewReader(page), []string{"cs.CV"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"2504.10000"}, ids(recs))
}

func TestItemNumber(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"item12", 12, true},
		{"/list/cs.CV/new?skip=0&show=2000#item170", 170, true},
		{"#items", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		n, ok := itemNumber(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, n, tt.in)
	}
}

func TestArxivLister_List(t *testing.T) {
	var gotPath, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, sampleListingHTML)
	}))
	defer ts.Close()

	orig := listBase
	listBase = ts.URL + "/list/"
	defer func() { listBase = orig }()

	l := &ArxivLister{
		Client: ts.Client(),
		Config: types.AcquisitionConfig{
			HTTPConfig: types.HTTPConfig{UserAgent: "daily-arxiv/test"},
			Categories: []string{"cs.CV"},
		},
	}
	recs, err := l.List(context.Background(), "cs.CV")
	require.NoError(t, err)
	assert.Len(t, recs, 3)
	assert.Equal(t, "/list/cs.CV/new", gotPath)
	assert.Equal(t, "daily-arxiv/test", gotUA)
}

func TestArxivLister_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	orig := listBase
	listBase = ts.URL + "/list/"
	defer func() { listBase = orig }()

	l := &ArxivLister{Client: ts.Client()}
	_, err := l.List(context.Background(), "cs.XX")
	assert.ErrorContains(t, err, "HTTP 404")
}
