package service

import (
	"sync"

	battlestorage "github.com/ashveldt/wartide/internal/battle/storage"
)

// watchBuffer bounds how far a subscriber may lag before updates are
// dropped. Spectators recover dropped records through the journal, so a
// slow connection never stalls resolution.
const watchBuffer = 16

type watcher struct {
	battleID string
	ch       chan battlestorage.StoredEngagement
}

// Watch subscribes to engagements appended to one battle. The returned
// cancel releases the subscription and closes the channel; it is safe to
// call more than once.
func (s *Service) Watch(battleID string) (<-chan battlestorage.StoredEngagement, func()) {
	w := &watcher{
		battleID: battleID,
		ch:       make(chan battlestorage.StoredEngagement, watchBuffer),
	}

	s.mu.Lock()
	if s.watchers == nil {
		s.watchers = make(map[*watcher]struct{})
	}
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, w)
			s.mu.Unlock()
			close(w.ch)
		})
	}
	return w.ch, cancel
}

// notifyWatchers fans a journaled engagement out to live subscribers.
func (s *Service) notifyWatchers(stored battlestorage.StoredEngagement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for w := range s.watchers {
		if w.battleID != stored.Engagement.BattleID {
			continue
		}
		select {
		case w.ch <- stored:
		default:
		}
	}
}
