// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the ConvoSniffer
// control plane.
//
// Configuration comes from a single file named by either the
// CONVOSNIFFER_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no ~/.config discovery and no
// automatic file search. When neither is given, [Load] returns
// [Default], which matches the controller's built-in endpoint
// (0.0.0.0:21830), so the control plane runs with no file at all.
//
// Files ending in .json or .jsonc are JSON with comments and trailing
// commas (normalized by tidwall/jsonc); anything else is YAML. Both
// decode into the same yaml-tagged structs, so durations are written
// as Go duration strings ("30s") in either format.
//
// The file may contain environment-specific sections (development,
// production) that override base values when [Config].Environment
// matches. Production without an explicit section defaults to JSON
// logs at info level.
//
// ${VAR} and ${VAR:-default} patterns in server.address are expanded
// after loading. No other environment variables override config values.
//
// This package depends on no other ConvoSniffer packages.
package config
