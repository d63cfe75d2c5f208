// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/autobrr/ipt/internal/iptorrents"
	"github.com/autobrr/ipt/internal/services/search"
)

type outputFormat string

const (
	outputAuto  outputFormat = "auto"
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

// resolveFormat validates raw. Auto picks a table on a terminal and JSON
// everywhere else.
func resolveFormat(raw string, out *os.File) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(raw))); f {
	case outputTable, outputJSON, outputYAML:
		return f, nil
	case outputAuto, "":
		if out != nil && term.IsTerminal(int(out.Fd())) {
			return outputTable, nil
		}
		return outputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want auto, table, json or yaml)", raw)
	}
}

func writeStructured(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}

func writeResults(w io.Writer, format outputFormat, resp *search.Response) error {
	if format != outputTable {
		return writeStructured(w, format, resp)
	}

	if len(resp.Results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTITLE\tSIZE\tSEEDS\tLEECH\tAVAIL\tRES\tGROUP\tDOWNLOAD")
	for i, r := range resp.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
			i+1,
			r.Title,
			r.SizeHuman,
			r.Seeds,
			r.Leeches,
			strconv.FormatFloat(r.Availability, 'f', 2, 64),
			dash(r.Release.Resolution),
			dash(r.Release.Group),
			r.DownloadURL,
		)
	}
	return tw.Flush()
}

func writeCategories(w io.Writer, format outputFormat, cats []iptorrents.CategoryInfo) error {
	if format != outputTable {
		return writeStructured(w, format, cats)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCODE")
	for _, c := range cats {
		fmt.Fprintf(tw, "%s\t%s\n", c.Name, dash(c.Code.String()))
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
