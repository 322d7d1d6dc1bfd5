package extract

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobscrape-engine/internal/config"
	"jobscrape-engine/internal/domain"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func listingSpec() config.SelectorSpec {
	return config.SelectorSpec{
		Container: ".job",
		Fields: map[domain.Field]config.Rule{
			domain.FieldTitle:    {Query: "h2", Mode: config.ModeText},
			domain.FieldCompany:  {Query: ".company", Mode: config.ModeText},
			domain.FieldApplyURL: {Query: "a.apply", Mode: config.ModeAttr, Attr: "href"},
		},
	}
}

const listingPage = `
<html><body>
  <div class="job">
    <h2> Backend   Engineer </h2>
    <span class="company">Acme</span>
    <a class="apply" href="/jobs/1">Apply</a>
  </div>
  <div class="job">
    <h2>Data Engineer</h2>
    <span class="company">Globex</span>
    <a class="apply" href="/jobs/2">Apply</a>
  </div>
  <div class="job">
    <h2>SRE</h2>
    <a class="apply" href="/jobs/3">Apply</a>
  </div>
</body></html>`

func TestJobs_OnePerContainer(t *testing.T) {
	raws := Jobs(mustDoc(t, listingPage), listingSpec())

	require.Len(t, raws, 3)
	assert.Equal(t, "Backend Engineer", raws[0][domain.FieldTitle])
	assert.Equal(t, "Data Engineer", raws[1][domain.FieldTitle])
	assert.Equal(t, "SRE", raws[2][domain.FieldTitle])
}

// A field selector must only see its own container. Without scoping,
// ".company" would resolve to the first company on the page for every job.
func TestJobs_NoCrossContainerBleed(t *testing.T) {
	raws := Jobs(mustDoc(t, listingPage), listingSpec())

	require.Len(t, raws, 3)
	assert.Equal(t, "Acme", raws[0][domain.FieldCompany])
	assert.Equal(t, "Globex", raws[1][domain.FieldCompany])

	_, present := raws[2][domain.FieldCompany]
	assert.False(t, present, "third job has no company element; the field must be absent, not borrowed")
}

func TestJobs_AttrModeIsLiteral(t *testing.T) {
	raws := Jobs(mustDoc(t, listingPage), listingSpec())

	require.Len(t, raws, 3)
	// relative href stays relative; resolution happens in the normalizer
	assert.Equal(t, "/jobs/1", raws[0][domain.FieldApplyURL])
}

func TestJobs_MissingAttrIsAbsent(t *testing.T) {
	doc := mustDoc(t, `<div class="job"><h2>X</h2><a class="apply">Apply</a></div>`)
	raws := Jobs(doc, listingSpec())

	require.Len(t, raws, 1)
	_, present := raws[0][domain.FieldApplyURL]
	assert.False(t, present)
}

func TestJobs_NoContainersMeansEmpty(t *testing.T) {
	doc := mustDoc(t, `<html><body><p>No openings right now.</p></body></html>`)
	raws := Jobs(doc, listingSpec())
	assert.Empty(t, raws)
}

func TestDetail_DocumentScoped(t *testing.T) {
	doc := mustDoc(t, `
<html><body>
  <article>
    <div class="description">Long   form description.</div>
    <span class="type">Full-time</span>
  </article>
</body></html>`)

	raw := Detail(doc, map[domain.Field]Rule{
		domain.FieldDescription: {Query: ".description", Mode: config.ModeText},
		domain.FieldJobType:     {Query: ".type", Mode: config.ModeText},
		domain.FieldSalary:      {Query: ".salary", Mode: config.ModeText},
	})

	assert.Equal(t, "Long form description.", raw[domain.FieldDescription])
	assert.Equal(t, "Full-time", raw[domain.FieldJobType])
	_, present := raw[domain.FieldSalary]
	assert.False(t, present)
}
