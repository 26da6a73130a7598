package realtime

import (
	"context"

	"github.com/existflow/taskboard/internal/model"
)

// peerPhrases are the simulated actions of other board members
var peerPhrases = []string{
	"is reviewing the board",
	"commented on a task",
	"is updating the sprint plan",
	"joined the board",
	"is looking at overdue tasks",
	"shared the board with the team",
}

// simulate appends one activity attributed to a random member other than the
// session user
func (br *Bridge) simulate() {
	if !br.enter() {
		return
	}
	defer br.inflight.Done()

	self := br.board.UserID()
	var peers []model.User
	for _, u := range br.board.Users() {
		if u.ID != self {
			peers = append(peers, u)
		}
	}
	if len(peers) == 0 {
		return
	}

	br.mu.Lock()
	peer := peers[br.rand.IntN(len(peers))]
	phrase := peerPhrases[br.rand.IntN(len(peerPhrases))]
	br.mu.Unlock()

	br.board.AppendActivity(context.Background(), model.Activity{
		Type:    model.ActivitySystem,
		UserID:  peer.ID,
		Message: peer.Name + " " + phrase,
	})
}
