// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package buildinfo

import (
	"fmt"
	"runtime"
)

// Set via ldflags:
//
//	-X github.com/autobrr/ipt/internal/buildinfo.Version=v1.0.0
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// UserAgent is sent with every outbound request to the site.
var UserAgent = fmt.Sprintf("ipt/%s (%s; %s)", Version, runtime.GOOS, runtime.GOARCH)

// Info returns a one-line summary for the version command.
func Info() string {
	if Commit == "" {
		return Version
	}
	if Date == "" {
		return fmt.Sprintf("%s (%s)", Version, Commit)
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, Date)
}
