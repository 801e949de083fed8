package validation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scorecardBody struct {
	ApplicationID string  `json:"applicationId"`
	Year          int     `json:"year"`
	Month         int     `json:"month"`
	Availability  float64 `json:"availability"`
	Volume        int64   `json:"volume"`
}

func TestValidator_Decode(t *testing.T) {
	v, err := NewValidator(DefaultCacheSize)
	require.NoError(t, err)

	tests := []struct {
		name    string
		schema  string
		body    string
		wantErr string
	}{
		{name: "valid team", schema: SchemaTeam, body: `{"teamName":"Ops","userGroup":"g1","adminGroup":"g2"}`},
		{name: "team missing admin group", schema: SchemaTeam, body: `{"teamName":"Ops","userGroup":"g1"}`, wantErr: "adminGroup"},
		{name: "team unknown field", schema: SchemaTeam, body: `{"teamName":"Ops","userGroup":"g1","adminGroup":"g2","owner":"x"}`, wantErr: "owner"},
		{name: "valid entry", schema: SchemaTurnoverEntry, body: `{"entryType":"MIM","title":"p1 outage","important":true,"applicationId":null}`},
		{name: "bad entry type", schema: SchemaTurnoverEntry, body: `{"entryType":"BUG","title":"x"}`, wantErr: "entryType"},
		{name: "empty title", schema: SchemaTurnoverEntry, body: `{"entryType":"FYI","title":""}`, wantErr: "title"},
		{name: "valid scorecard", schema: SchemaScorecard, body: `{"applicationId":"a","year":2026,"month":9,"availability":99.95,"volume":10}`},
		{name: "availability above 100", schema: SchemaScorecard, body: `{"applicationId":"a","year":2026,"month":9,"availability":100.5,"volume":10}`, wantErr: "availability"},
		{name: "negative volume", schema: SchemaScorecard, body: `{"applicationId":"a","year":2026,"month":9,"availability":90,"volume":-1}`, wantErr: "volume"},
		{name: "month 13", schema: SchemaScorecard, body: `{"applicationId":"a","year":2026,"month":13,"availability":90,"volume":1}`, wantErr: "month"},
		{name: "valid link", schema: SchemaLink, body: `{"title":"Grafana","url":"https://grafana.example.com"}`},
		{name: "link not http", schema: SchemaLink, body: `{"title":"x","url":"javascript:alert(1)"}`, wantErr: "url"},
		{name: "valid application", schema: SchemaApplication, body: `{"name":"ledger","tla":"LDG","tier":1}`},
		{name: "tier out of range", schema: SchemaApplication, body: `{"name":"ledger","tier":9}`, wantErr: "tier"},
		{name: "malformed json", schema: SchemaTeam, body: `{"teamName":`, wantErr: "malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var dst map[string]any
			err := v.Decode(tt.schema, []byte(tt.body), &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.NotEmpty(t, dst)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidator_DecodeIntoStruct(t *testing.T) {
	v, err := NewValidator(DefaultCacheSize)
	require.NoError(t, err)

	var body scorecardBody
	require.NoError(t, v.Decode(SchemaScorecard, []byte(`{"applicationId":"app-1","year":2026,"month":2,"availability":99.5,"volume":42}`), &body))
	assert.Equal(t, scorecardBody{ApplicationID: "app-1", Year: 2026, Month: 2, Availability: 99.5, Volume: 42}, body)
}

func TestValidator_CachesCompiledSchemas(t *testing.T) {
	v, err := NewValidator(DefaultCacheSize)
	require.NoError(t, err)

	var dst map[string]any
	for i := 0; i < 3; i++ {
		require.NoError(t, v.Decode(SchemaLink, []byte(`{"title":"a","url":"http://a"}`), &dst))
	}
	assert.Equal(t, 1, v.cache.Len())
}

func TestValidator_UnknownSchema(t *testing.T) {
	v, err := NewValidator(DefaultCacheSize)
	require.NoError(t, err)

	err = v.Decode("nope", []byte(`{}`), &map[string]any{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidInput)
}

func TestValidator_TruncatesOnRuneBoundary(t *testing.T) {
	v, err := NewValidator(DefaultCacheSize)
	require.NoError(t, err)

	key := strings.Repeat("é", 200) + strings.Repeat("€", 200)
	body := `{"teamName":"Ops","userGroup":"g1","adminGroup":"g2","` + key + `":1}`

	var dst map[string]any
	err = v.Decode(SchemaTeam, []byte(body), &dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.True(t, utf8.ValidString(err.Error()), "message must stay valid UTF-8")
	assert.True(t, strings.HasSuffix(err.Error(), "... (truncated)"))
}
