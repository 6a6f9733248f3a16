package app

import (
	"context"
	"sync"
	"time"

	"quiz-result-service/internal/domain"
)

// LeaderboardFeed fans leaderboard snapshots out to per-quiz subscribers.
type LeaderboardFeed struct {
	mu          sync.Mutex
	subscribers map[int64]map[chan domain.Leaderboard]struct{}
	refreshing  map[int64]*sync.Mutex
}

// LeaderboardLoader reads the current leaderboard of one quiz.
type LeaderboardLoader func(ctx context.Context) (domain.Leaderboard, error)

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{
		subscribers: make(map[int64]map[chan domain.Leaderboard]struct{}),
		refreshing:  make(map[int64]*sync.Mutex),
	}
}

// Subscribe registers a listener for quizID. initial is queued before the
// listener becomes visible to Publish, so it is always received first.
// The caller must invoke the returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe(quizID int64, initial domain.Leaderboard) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)
	ch <- initial

	f.mu.Lock()
	subs, ok := f.subscribers[quizID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		f.subscribers[quizID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs, ok := f.subscribers[quizID]
		if !ok {
			return
		}
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(f.subscribers, quizID)
		}
	}
	return ch, cancel
}

// SubscribeLoaded loads the initial snapshot and subscribes while holding the
// quiz's refresh lock, so no refresh can slip in between the two.
func (f *LeaderboardFeed) SubscribeLoaded(ctx context.Context, quizID int64, load LeaderboardLoader) (<-chan domain.Leaderboard, func(), error) {
	lock := f.refreshLock(quizID)
	lock.Lock()
	defer lock.Unlock()

	initial, err := load(ctx)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := f.Subscribe(quizID, initial)
	return ch, cancel, nil
}

// Refresh loads and publishes a snapshot of quizID if anyone is watching.
// Refreshes of one quiz run one at a time, so a snapshot loaded earlier is
// never published after one loaded later.
func (f *LeaderboardFeed) Refresh(ctx context.Context, quizID int64, load LeaderboardLoader) error {
	lock := f.refreshLock(quizID)
	lock.Lock()
	defer lock.Unlock()

	if !f.Watched(quizID) {
		return nil
	}
	lb, err := load(ctx)
	if err != nil {
		return err
	}
	f.Publish(lb)
	return nil
}

func (f *LeaderboardFeed) refreshLock(quizID int64) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.refreshing[quizID]
	if !ok {
		lock = &sync.Mutex{}
		f.refreshing[quizID] = lock
	}
	return lock
}

// Watched reports whether anyone is subscribed to quizID.
func (f *LeaderboardFeed) Watched(quizID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[quizID]) > 0
}

// Publish delivers lb to every subscriber of its quiz. A subscriber whose
// buffer is full loses its oldest pending snapshot instead of blocking.
func (f *LeaderboardFeed) Publish(lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[lb.QuizID] {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// LeaderboardNotifier refreshes the feed after each stored submission.
type LeaderboardNotifier struct {
	feed    *LeaderboardFeed
	results ResultStore
	size    int
	now     func() time.Time
}

func NewLeaderboardNotifier(feed *LeaderboardFeed, results ResultStore, size int) *LeaderboardNotifier {
	if size <= 0 {
		size = DefaultLeaderboardSize
	}
	return &LeaderboardNotifier{feed: feed, results: results, size: size, now: time.Now}
}

func (n *LeaderboardNotifier) NotifyResult(ctx context.Context, result domain.GradedResult) error {
	quizID := result.QuizID
	return n.feed.Refresh(ctx, quizID, func(ctx context.Context) (domain.Leaderboard, error) {
		top, err := n.results.ListByQuiz(ctx, quizID, n.size)
		if err != nil {
			return domain.Leaderboard{}, err
		}
		return BuildLeaderboard(quizID, top, n.now().UTC()), nil
	})
}
