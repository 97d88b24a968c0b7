/*
Package types defines core data structures shared across the console.

# Overview

The types package provides shared type definitions for:
  - Pipeline configuration (base URL)
  - Declared catalog endpoints
  - Request descriptors and exchange outcomes
  - Display payloads and notifications
  - History entries

# Outcome

Outcome is a tagged union. Kind selects the variant:

	OutcomeOK              status, parsed JSON body, raw body
	OutcomeTransportError  Message from the network layer
	OutcomeValidationError Message from the JSON parser, never sent

A 4xx/5xx response is still OutcomeOK; the OK flag carries the 2xx
distinction.

# Field Tags

Types carry JSON and YAML tags so they can be printed with -o json/yaml
and loaded from the catalog file.
*/
package types
