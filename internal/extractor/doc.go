// Package extractor turns candidate question blocks into structured
// questions: it separates the stem from lettered options, classifies the
// answer format, and infers subject and exam year from document text and
// filenames. All inference is heuristic and best effort.
package extractor
