// Package html provides a Normaliser for scraped exam-archive web pages.
// It extracts the main content area, drops navigation and scripts, and
// keeps block-level line breaks so question markers stay at line starts.
package html
