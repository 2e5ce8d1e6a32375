// Package normalisers turns input files into raw documents ready for
// ingestion. Each sub-package handles one format; the Registry picks the
// right one by MIME type.
package normalisers
