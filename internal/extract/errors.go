package extract

import "errors"

// ErrNotMarkup is returned when the input cannot be treated as markup text at
// all, for example an unconverted binary word-processor file. It is distinct
// from a document that parses but yields no observations, which is a valid
// (empty) report.
var ErrNotMarkup = errors.New("input is not markup text")
