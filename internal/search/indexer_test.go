package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSearchResponse(t *testing.T) {
	body := `{
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_score": 4.2, "_source": {"hospitalName": "Sunrise Hospital", "status": "SUBMITTED"}},
				{"_score": 1.1, "_source": {"hospitalName": "Corner Clinic", "status": "APPROVED"}}
			]
		}
	}`

	result, err := parseSearchResponse(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.TotalHits)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, 4.2, result.Hits[0].Score)
	assert.Equal(t, "Sunrise Hospital", result.Hits[0].Source["hospitalName"])
}

func TestParseSearchResponseEmpty(t *testing.T) {
	result, err := parseSearchResponse(strings.NewReader(`{"hits":{"total":{"value":0},"hits":[]}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalHits)
	assert.Empty(t, result.Hits)
}

func TestParseSearchResponseMalformed(t *testing.T) {
	_, err := parseSearchResponse(strings.NewReader(`not json`))
	assert.Error(t, err)
}
