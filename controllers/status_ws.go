package controller

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/outreachhq/sequencer/config"
	"github.com/outreachhq/sequencer/store"
	"github.com/outreachhq/sequencer/utils"
)

// HandleSequenceStatusWS streams a sequence's status-count snapshot
// over a websocket until the client disconnects or the sequence
// reaches 100% completed/failed. Its read-then-push loop follows
// HandleCampaignProgressWS's shape, but where that handler simulates a
// scripted progression, this pushes the same SequenceStatus
// GET /sequences/{id}/status already computes, so the socket can
// never drift from the REST endpoint's numbers.
func HandleSequenceStatusWS(c *websocket.Conn) {
	defer c.Close()

	sequenceID := utils.ParseUint(c.Params("id"))
	s := store.New(config.DB)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		status, err := s.SequenceStatus(sequenceID)
		if err != nil {
			log.Printf("sequence status stream: %v", err)
			return
		}
		if err := c.WriteJSON(status); err != nil {
			log.Printf("sequence status stream write: %v", err)
			return
		}
		if isSequenceComplete(status) {
			return
		}
	}
}

// isSequenceComplete reports whether every enrollment on the sequence
// has reached a terminal state, the signal the stream uses to close
// itself instead of polling a sequence that will never change again.
func isSequenceComplete(status store.SequenceStatus) bool {
	done := status.Counts["completed"] + status.Counts["failed"]
	return status.Total > 0 && done == status.Total
}
