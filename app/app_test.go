package app

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dtypes "go.hackfix.me/lhost/discovery/types"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>`
	nodeItem  = `<item><title>localhost:3000 ~ node</title><subtitle>/app  server.js</subtitle><arg>http://localhost:3000</arg></item>`
	rubyItem  = `<item><title>localhost:4000 ~ ruby</title><subtitle>  </subtitle><arg>http://localhost:4000</arg></item>`
	dbxItem   = `<item><title>localhost:17600 ~ Dropbox</title><subtitle>/  </subtitle><arg>http://localhost:17600</arg></item>`
	pyItem    = `<item><title>localhost:8000 ~ python3</title><subtitle>/srv/www  -m http.server</subtitle><arg>http://localhost:8000</arg></item>`
	noneItem  = `<item><title>No running processes found.</title><subtitle>Try a different search query, or start a process on localhost.</subtitle><arg>http://localhost</arg></item>`
)

func TestAppFind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		config    string
		expStdout string
		expErr    string
	}{
		{
			name:      "ok/default_query",
			args:      []string{},
			expStdout: xmlHeader + "<items>" + nodeItem + rubyItem + pyItem + "</items>",
		},
		{
			name:      "ok/query_name",
			args:      []string{"ruby"},
			expStdout: xmlHeader + "<items>" + rubyItem + "</items>",
		},
		{
			name:      "ok/query_case_insensitive_directory",
			args:      []string{"SRV"},
			expStdout: xmlHeader + "<items>" + pyItem + "</items>",
		},
		{
			name:      "ok/query_regex_port",
			args:      []string{"^[34]000$"},
			expStdout: xmlHeader + "<items>" + nodeItem + rubyItem + "</items>",
		},
		{
			name:      "ok/query_ignored",
			args:      []string{"dropbox"},
			expStdout: xmlHeader + "<items>" + noneItem + "</items>",
		},
		{
			name:      "ok/no_match",
			args:      []string{"postgres"},
			expStdout: xmlHeader + "<items>" + noneItem + "</items>",
		},
		{
			name:      "ok/invalid_regex_literal",
			args:      []string{"server.js("},
			expStdout: xmlHeader + "<items>" + noneItem + "</items>",
		},
		{
			name:      "ok/query_leading_dash",
			args:      []string{"-m http"},
			expStdout: xmlHeader + "<items>" + pyItem + "</items>",
		},
		{
			name:      "ok/query_leading_dash_word",
			args:      []string{"-dev"},
			expStdout: xmlHeader + "<items>" + noneItem + "</items>",
		},
		{
			name:      "ok/query_leading_double_dash",
			args:      []string{"--inspect"},
			expStdout: xmlHeader + "<items>" + noneItem + "</items>",
		},
		{
			name:      "ok/query_after_separator",
			args:      []string{"--", "-m http"},
			expStdout: xmlHeader + "<items>" + pyItem + "</items>",
		},
		{
			name:      "ok/query_help_after_separator",
			args:      []string{"--", "--help"},
			expStdout: xmlHeader + "<items>" + noneItem + "</items>",
		},
		{
			name:      "ok/single_flag",
			args:      []string{"--format=xml"},
			expStdout: xmlHeader + "<items>" + nodeItem + rubyItem + pyItem + "</items>",
		},
		{
			name:      "ok/config_empty_ignore",
			args:      []string{"drop"},
			config:    `{"ignore": []}`,
			expStdout: xmlHeader + "<items>" + dbxItem + "</items>",
		},
		{
			name:      "ok/config_custom_ignore",
			args:      []string{},
			config:    `{"ignore": ["^node$", "python"]}`,
			expStdout: xmlHeader + "<items>" + rubyItem + dbxItem + "</items>",
		},
		{
			name:      "ok/config_options",
			args:      []string{"node"},
			config:    `{"list_timeout": "1s", "inspect_timeout": "100ms", "concurrency": 1}`,
			expStdout: xmlHeader + "<items>" + nodeItem + "</items>",
		},
		{
			name:   "err/config_invalid",
			args:   []string{},
			config: `{"ignore": ["("]}`,
			expErr: "invalid ignore pattern '('",
		},
		{
			name:   "err/config_empty_ignore_pattern",
			args:   []string{},
			config: `{"ignore": [""]}`,
			expErr: "empty ignore pattern at index 0",
		},
		{
			name:   "err/config_unparseable",
			args:   []string{},
			config: `{`,
			expErr: "failed parsing configuration file",
		},
		{
			name:   "err/invalid_format",
			args:   []string{"--format", "yaml"},
			expErr: "failed parsing CLI arguments: --format must be one of",
		},
		{
			name:   "err/mock_backend",
			args:   []string{"--backend", "mock"},
			expErr: "unsupported discovery backend 'mock'",
		},
		{
			name:   "err/too_many_args",
			args:   []string{"node", "ruby"},
			expErr: "failed parsing CLI arguments: unexpected argument ruby",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app, err := newTestApp(t.Context(), newTestBackend())
			require.NoError(t, err)

			if tt.config != "" {
				app.writeConfig(t, tt.config)
			}

			err = app.Run(tt.args...)
			if tt.expErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expStdout, app.stdout.String())
		})
	}
}

func TestAppFindJSON(t *testing.T) {
	t.Parallel()

	app, err := newTestApp(t.Context(), newTestBackend())
	require.NoError(t, err)

	err = app.Run("--format", "json", "node|python")
	require.NoError(t, err)

	var doc struct {
		Items []struct {
			Title    string `json:"title"`
			Subtitle string `json:"subtitle"`
			Arg      string `json:"arg"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(app.stdout.Bytes(), &doc))
	require.Len(t, doc.Items, 2)
	assert.Equal(t, "localhost:3000 ~ node", doc.Items[0].Title)
	assert.Equal(t, "http://localhost:8000", doc.Items[1].Arg)
	assert.Equal(t, "/srv/www  -m http.server", doc.Items[1].Subtitle)
}

func TestAppFindTable(t *testing.T) {
	t.Parallel()

	app, err := newTestApp(t.Context(), newTestBackend())
	require.NoError(t, err)

	err = app.Run("--format=table", "ruby")
	require.NoError(t, err)
	assert.Contains(t, app.stdout.String(), "localhost:4000 ~ ruby")
	assert.Contains(t, app.stdout.String(), "http://localhost:4000")
	assert.NotContains(t, app.stdout.String(), "node")
}

func TestAppFindDiscoveryUnavailable(t *testing.T) {
	t.Parallel()

	backend := newTestBackend()
	backend.SetListError(errors.New("lsof: permission denied"))

	app, err := newTestApp(t.Context(), backend)
	require.NoError(t, err)

	err = app.Run("node")
	require.Error(t, err)
	assert.ErrorIs(t, err, dtypes.ErrDiscoveryUnavailable)
	assert.Empty(t, app.stdout.String())
	assert.Equal(t, 0, backend.Inspected(111))
}

func TestAppFindDebugLogging(t *testing.T) {
	t.Parallel()

	app, err := newTestApp(t.Context(), newTestBackend())
	require.NoError(t, err)

	err = app.Run("--log-level", "DEBUG", "ruby")
	require.NoError(t, err)

	stderr := app.stderr.String()
	assert.Contains(t, stderr, "process inspection degraded")
	assert.Contains(t, stderr, "pid=222")
	assert.Contains(t, stderr, "matched=1")
	assert.Equal(t, xmlHeader+"<items>"+rubyItem+"</items>", app.stdout.String())
}
