package tui

type state int

const (
	loadingState state = iota
	sessionState
	errorState
)
