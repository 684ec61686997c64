// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command streamlitd runs the StreamlitLike web service.
//
// # Configuration
//
// Settings come from built-in defaults, an optional YAML file
// (--config or STREAMLIT_CONFIG), an optional .env file (--env-file), and
// STREAMLIT_* environment variables, in that order.
//
// # Usage
//
//	# Write a starting config
//	streamlitd init-config streamlit.yaml
//
//	# Run
//	streamlitd serve --config streamlit.yaml
package main

import (
	"os"

	"github.com/AleutianAI/StreamlitLike/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Default().Error("streamlitd failed", "error", err)
		os.Exit(1)
	}
}
