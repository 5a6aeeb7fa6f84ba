// Package confloader provides configuration loading mechanism.
//
// This package implements a configuration loader that supports multiple
// sources using koanf as the underlying library.
//
// Features:
//
//   - Multiple Sources: YAML files, environment variables, flag maps
//   - Watch Support: callbacks on config file changes (fsnotify)
//   - Type Safety: Unmarshaling into typed structs
//   - Defaults: values already present in the target struct are kept
//     for keys no source sets
//
// Priority (highest to lowest):
//
//  1. Command-line flags
//  2. Environment variables
//  3. Configuration file
//  4. Default values
package confloader
