// Package domain holds the types every layer agrees on: raw exam
// documents, the candidate blocks segmented from them, extracted questions,
// metadata filters, ranked retrieval results, index status and settings.
//
// It imports nothing outside the standard library, and nothing inside this
// module imports into it.
package domain
