// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/autobrr/ipt/internal/iptorrents"
	"github.com/autobrr/ipt/internal/releases"
	"github.com/autobrr/ipt/internal/services/search"
)

func sampleResponse() *search.Response {
	return &search.Response{
		Total: 1,
		Results: []search.Result{{
			Record: iptorrents.Record{
				Title:        "Dune.2021.2160p.BluRay-OTHER",
				URL:          "https://iptorrents.com/details.php?id=2",
				DownloadURL:  "https://iptorrents.com/download.php/2/Dune.torrent?torrent_pass=k",
				Seeds:        40,
				Leeches:      1,
				Availability: 47.21,
				Size:         21474836480,
			},
			SizeHuman: "20 GiB",
			Release:   releases.Info{Resolution: "2160p", Group: "OTHER"},
		}},
	}
}

func TestResolveFormat(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	tests := []struct {
		raw     string
		want    outputFormat
		wantErr bool
	}{
		{raw: "auto", want: outputJSON},
		{raw: "", want: outputJSON},
		{raw: "TABLE", want: outputTable},
		{raw: "yaml", want: outputYAML},
		{raw: "json", want: outputJSON},
		{raw: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := resolveFormat(tt.raw, f)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResults(&buf, outputJSON, sampleResponse()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	results := decoded["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "Dune.2021.2160p.BluRay-OTHER", first["title"])
	assert.Equal(t, "20 GiB", first["size_human"])
}

func TestWriteResults_YAMLIsFlat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResults(&buf, outputYAML, sampleResponse()))

	var decoded struct {
		Results []map[string]any `yaml:"results"`
		Total   int              `yaml:"total"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Results, 1)
	assert.Equal(t, 1, decoded.Total)
	assert.Equal(t, 40, decoded.Results[0]["seeds"])
	assert.NotContains(t, decoded.Results[0], "record")
}

func TestWriteResults_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResults(&buf, outputTable, sampleResponse()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Contains(t, lines[1], "20 GiB")
	assert.Contains(t, lines[1], "47.21")
	assert.Contains(t, lines[1], "OTHER")

	buf.Reset()
	require.NoError(t, writeResults(&buf, outputTable, &search.Response{}))
	assert.Equal(t, "No results.\n", buf.String())
}

func TestWriteCategories_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeCategories(&buf, outputTable, iptorrents.Categories()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Greater(t, len(lines), 2)
	assert.Equal(t, []string{"All", "-"}, strings.Fields(lines[1]))
}

func TestGeneratedConfigPath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "config.toml"), generatedConfigPath(dir))
	assert.Equal(t, "/etc/ipt/custom.toml", generatedConfigPath("/etc/ipt/custom.toml"))
}

func TestVersionCommand(t *testing.T) {
	cmd := RunVersionCommand("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "1.2.3\n", out.String())
}
