// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration at ~/.plancheck/config.toml
//   - PromptStore: editable prompt templates at ~/.plancheck/prompts/
//   - PromptWatcher: fsnotify-driven prompt hot reload
package file
