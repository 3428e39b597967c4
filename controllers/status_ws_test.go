package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/outreachhq/sequencer/store"
)

func TestIsSequenceComplete_AllTerminalReturnsTrue(t *testing.T) {
	status := store.SequenceStatus{
		Total:  5,
		Counts: map[string]int{"completed": 3, "failed": 2},
	}
	assert.True(t, isSequenceComplete(status))
}

func TestIsSequenceComplete_StillInFlightReturnsFalse(t *testing.T) {
	status := store.SequenceStatus{
		Total:  5,
		Counts: map[string]int{"completed": 2, "failed": 1, "pending": 2},
	}
	assert.False(t, isSequenceComplete(status))
}

func TestIsSequenceComplete_EmptySequenceReturnsFalse(t *testing.T) {
	status := store.SequenceStatus{Total: 0, Counts: map[string]int{}}
	assert.False(t, isSequenceComplete(status))
}
