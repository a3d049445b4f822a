package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const sampleTable = `<html><body><table>
<tr><th>Üniversite</th><th>Bölüm</th><th>Tür</th><th>Yıl</th><th>Puan</th><th>Sıra</th><th>Kontenjan</th></tr>
<tr><td>Marmara Üniversitesi</td><td>Bilgisayar Mühendisliği</td><td>say</td><td>2025</td><td>488,7</td><td>21.400</td><td>110</td></tr>
<tr><td>Boğaziçi Üniversitesi</td><td>Bilgisayar Mühendisliği</td><td>SAY</td><td>2025</td><td>540.3</td><td>850</td><td>100</td></tr>
<tr><td>bozuk satır</td><td>eksik</td></tr>
</table></body></html>`

func TestParseScoreTable(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(sampleTable))
	require.NoError(t, err)

	records := ParseScoreTable(doc)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "Marmara Üniversitesi", first.University)
	assert.Equal(t, "Bilgisayar Mühendisliği", first.Department)
	assert.Equal(t, "SAY", first.ScoreType)
	assert.Equal(t, 2025, first.Year)
	assert.Equal(t, 488.7, first.MinScore)
	assert.Equal(t, 21400, first.MinRank)
	assert.Equal(t, 110, first.Quota)
}

func TestScraperRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sampleTable)
	}))
	defer server.Close()

	scraper := NewScraper(server.Client(), 2, nil)
	records, err := scraper.Run(context.Background(), []string{server.URL, server.URL})

	require.NoError(t, err)
	assert.Len(t, records, 4)
}

func TestScraperRunFailsOnBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	scraper := NewScraper(server.Client(), 2, nil)
	_, err := scraper.Run(context.Background(), []string{server.URL})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}
