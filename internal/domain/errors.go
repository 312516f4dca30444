package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a player has no running game.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSampleNotFound indicates a sample id is missing from the catalog.
	ErrSampleNotFound = errors.New("sample not found")
	// ErrEmptyRemainingSet is returned when a question is requested with no samples left.
	ErrEmptyRemainingSet = errors.New("no samples remaining")
	// ErrNoActiveQuestion is returned when an answer arrives outside of an active round.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrChoiceNotInQuestion indicates the chosen sample was not offered in this round.
	ErrChoiceNotInQuestion = errors.New("choice is not part of the question")
	// ErrGameOver is returned for operations on a finished or closed game.
	ErrGameOver = errors.New("game is over")
	// ErrCatalogEmpty indicates the sample catalog could not provide any samples.
	ErrCatalogEmpty = errors.New("sample catalog is empty")
	// ErrUnknownMediaAction is returned for unsupported transport control actions.
	ErrUnknownMediaAction = errors.New("unknown media action")
)
