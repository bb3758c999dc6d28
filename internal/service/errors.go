package service

import "errors"

var (
	ErrEmptyQuery       = errors.New("query is empty")
	ErrCitationNotFound = errors.New("citation not found")
	ErrInvalidCitation  = errors.New("invalid citation")
	ErrSelectionClosed  = errors.New("no citation is selected")
)
