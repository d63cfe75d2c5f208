// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/autobrr/ipt/internal/buildinfo"
	"github.com/autobrr/ipt/internal/config"
	"github.com/autobrr/ipt/internal/iptorrents"
	"github.com/autobrr/ipt/internal/services/search"
)

// newSearchService loads the configuration and builds a service for a single
// command invocation.
func newSearchService(flags *globalFlags) (*search.Service, error) {
	cfg, err := config.New(flags.configDir, buildinfo.Version)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize configuration")
	}
	if flags.logPath != "" {
		cfg.SetLogPath(flags.logPath)
	}
	cfg.ApplyLogConfig()

	settings, err := iptorrents.NewSettings(cfg.Config.IPTorrents)
	if err != nil {
		return nil, errors.Wrapf(err, "check the [iptorrents] section of %s", cfg.GetConfigDir())
	}

	return search.NewService(settings), nil
}

func RunSearchCommand(flags *globalFlags) *cobra.Command {
	var (
		title      string
		categories []string
		output     string
	)

	command := &cobra.Command{
		Use:   "search [terms...]",
		Short: "Search the site and list releases",
		Long: `Search the site once per term and list the merged releases, best
availability first. Without terms the --title is searched.

Categories are names from 'ipt categories' or numeric codes, for example:
  ipt search "Dune 2021" --category Movie-4K --category Movie-HD-Bluray`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(output, os.Stdout)
			if err != nil {
				return err
			}

			svc, err := newSearchService(flags)
			if err != nil {
				return err
			}

			resp, err := svc.Search(cmd.Context(), search.Request{
				Title:         title,
				SearchStrings: args,
				Categories:    categories,
			})
			if err != nil {
				return errors.Wrap(err, "search failed")
			}

			for _, warning := range resp.Warnings {
				cmd.PrintErrln("warning:", warning)
			}

			return writeResults(cmd.OutOrStdout(), format, resp)
		},
	}

	command.Flags().StringVar(&title, "title", "", "title to search when no terms are given")
	command.Flags().StringSliceVarP(&categories, "category", "c", nil, "category name or code, repeatable (default from config)")
	command.Flags().StringVarP(&output, "output", "o", string(outputAuto), "output format: auto, table, json or yaml")

	return command
}

func RunResolveCommand(flags *globalFlags) *cobra.Command {
	var title string

	command := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Rewrite a search url into a download url",
		Long: `Run the search a search url points at and print the download url of
the best release. Other site urls are printed unchanged.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSearchService(flags)
			if err != nil {
				return err
			}

			entry, err := svc.Resolve(cmd.Context(), iptorrents.Entry{Title: title, URL: args[0]})
			if err != nil {
				return errors.Wrap(err, "resolve failed")
			}

			fmt.Fprintln(cmd.OutOrStdout(), entry.URL)
			return nil
		},
	}

	command.Flags().StringVar(&title, "title", "", "title to search when the url has no q parameter")

	return command
}

func RunRecognizeCommand(flags *globalFlags) *cobra.Command {
	command := &cobra.Command{
		Use:   "recognize <url>",
		Short: "Print whether a url belongs to the configured site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := newSearchService(flags)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), strconv.FormatBool(svc.Recognizes(args[0])))
			return nil
		},
	}

	return command
}

func RunCategoriesCommand() *cobra.Command {
	var output string

	command := &cobra.Command{
		Use:   "categories",
		Short: "List the category names and codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(output, os.Stdout)
			if err != nil {
				return err
			}
			return writeCategories(cmd.OutOrStdout(), format, iptorrents.Categories())
		},
	}

	command.Flags().StringVarP(&output, "output", "o", string(outputAuto), "output format: auto, table, json or yaml")

	return command
}
