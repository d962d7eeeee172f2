package client

import "github.com/HengWoo/TA-flagger/internal/models"

// State is the fetch lifecycle: exactly one of Loading, Failed or Loaded.
type State interface {
	isState()
}

type Loading struct{}

// Failed carries the single user-visible message for a failed fetch.
type Failed struct {
	Message string
	Err     error
}

type Loaded struct {
	Payload *models.Payload
}

func (Loading) isState() {}
func (Failed) isState()  {}
func (Loaded) isState()  {}

// Settled reports whether s is terminal.
func Settled(s State) bool {
	switch s.(type) {
	case Failed, Loaded:
		return true
	}
	return false
}
