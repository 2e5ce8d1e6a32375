// Package segmenter splits noisy exam-archive text into candidate question
// blocks.
//
// Text is cleaned first (boilerplate banners and instructions removed,
// whitespace collapsed), then an ordered list of numbering strategies is
// tried. The first strategy whose marker pattern matches anywhere in the
// text wins, even when none of its candidates survive filtering; later
// strategies are never consulted.
//
// Default strategy order:
//
//	dot       "12. Which of the following..."
//	question  "QUESTION 12:" or "Q12"
//	paren     "12) Which of the following..."
package segmenter
