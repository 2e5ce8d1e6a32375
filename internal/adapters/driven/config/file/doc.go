// Package file provides filesystem implementations of driven ports rooted in
// the waec home directory ($WAEC_HOME, default ~/.waec).
//
// Adapters:
//   - ConfigStore: TOML settings in config.toml
//   - PromptStore: editable LLM prompt templates under prompts/
package file
