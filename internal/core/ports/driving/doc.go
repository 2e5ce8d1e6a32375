// Package driving declares what the outside world may ask of the core:
// ingest papers, retrieve and answer questions, rebuild the index, report
// on the corpus, and read or change settings. The CLI, HTTP API, MCP
// server, TUI and directory watcher all go through these interfaces.
package driving
