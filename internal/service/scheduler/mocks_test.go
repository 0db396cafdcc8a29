package scheduler

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/store"
)

// fakeTxRunner executes the transaction function directly; the fake
// stores below ignore the tx handle.
type fakeTxRunner struct{}

func (fakeTxRunner) RunInTransaction(ctx context.Context, fn store.TxFn) error {
	return fn(ctx, nil)
}

// fakeWordbookStore serves one wordbook, optionally marked active.
// Unstubbed interface methods panic via the embedded nil interface.
type fakeWordbookStore struct {
	store.WordbookStore
	wordbook *domain.Wordbook
}

func (f *fakeWordbookStore) Get(ctx context.Context, id int64) (*domain.Wordbook, error) {
	if f.wordbook == nil || f.wordbook.ID != id {
		return nil, store.ErrWordbookNotFound
	}
	return f.wordbook, nil
}

func (f *fakeWordbookStore) GetActive(ctx context.Context) (*domain.Wordbook, error) {
	if f.wordbook == nil || !f.wordbook.IsActive {
		return nil, store.ErrNoActiveWordbook
	}
	return f.wordbook, nil
}

func (f *fakeWordbookStore) WithTx(tx *sql.Tx) store.WordbookStore { return f }

// fakeCardStore holds study cards in memory and answers the candidate
// queries the way the SQL implementation would.
type fakeCardStore struct {
	store.CardStore
	cards map[int64]*store.StudyCard
}

func newFakeCardStore(cards ...*store.StudyCard) *fakeCardStore {
	m := make(map[int64]*store.StudyCard, len(cards))
	for _, sc := range cards {
		m[sc.Card.ID] = sc
	}
	return &fakeCardStore{cards: m}
}

func (f *fakeCardStore) sorted(less func(a, b *store.StudyCard) bool) []*store.StudyCard {
	out := make([]*store.StudyCard, 0, len(f.cards))
	for _, sc := range f.cards {
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (f *fakeCardStore) Get(ctx context.Context, id int64) (*domain.Card, error) {
	sc, ok := f.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	card := sc.Card
	return &card, nil
}

func (f *fakeCardStore) GetStudyCard(ctx context.Context, id int64) (*store.StudyCard, error) {
	sc, ok := f.cards[id]
	if !ok {
		return nil, store.ErrCardNotFound
	}
	return sc, nil
}

func (f *fakeCardStore) ListDue(ctx context.Context, wordbookID int64, now time.Time, limit int) ([]*store.StudyCard, error) {
	var out []*store.StudyCard
	for _, sc := range f.sorted(func(a, b *store.StudyCard) bool { return a.State.Due.Before(b.State.Due) }) {
		if len(out) >= limit {
			break
		}
		if sc.Word.WordbookID == wordbookID && !sc.State.Due.After(now) {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeCardStore) ListCreatedBetween(ctx context.Context, wordbookID int64, from, to time.Time, limit int) ([]*store.StudyCard, error) {
	var out []*store.StudyCard
	for _, sc := range f.sorted(func(a, b *store.StudyCard) bool { return a.Card.CreatedAt.Before(b.Card.CreatedAt) }) {
		if len(out) >= limit {
			break
		}
		created := sc.Card.CreatedAt
		if sc.Word.WordbookID == wordbookID && !created.Before(from) && created.Before(to) {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeCardStore) ListNew(ctx context.Context, wordbookID int64, limit int) ([]*store.StudyCard, error) {
	var out []*store.StudyCard
	for _, sc := range f.sorted(func(a, b *store.StudyCard) bool { return a.Card.CreatedAt.Before(b.Card.CreatedAt) }) {
		if len(out) >= limit {
			break
		}
		if sc.Word.WordbookID == wordbookID && sc.State.Reps == 0 {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (f *fakeCardStore) CountDue(ctx context.Context, wordbookID int64, now time.Time) (int, error) {
	count := 0
	for _, sc := range f.cards {
		if sc.Word.WordbookID == wordbookID && !sc.State.Due.After(now) {
			count++
		}
	}
	return count, nil
}

func (f *fakeCardStore) CountDueBetween(ctx context.Context, wordbookID int64, from, to time.Time) (int, error) {
	count := 0
	for _, sc := range f.cards {
		if sc.Word.WordbookID == wordbookID &&
			!sc.State.Due.Before(from) && sc.State.Due.Before(to) {
			count++
		}
	}
	return count, nil
}

func (f *fakeCardStore) CountNew(ctx context.Context, wordbookID int64) (int, error) {
	count := 0
	for _, sc := range f.cards {
		if sc.Word.WordbookID == wordbookID && sc.State.Reps == 0 {
			count++
		}
	}
	return count, nil
}

func (f *fakeCardStore) CountByWordbook(ctx context.Context, wordbookID int64) (int, error) {
	count := 0
	for _, sc := range f.cards {
		if sc.Word.WordbookID == wordbookID {
			count++
		}
	}
	return count, nil
}

func (f *fakeCardStore) UpdateTags(ctx context.Context, id int64, tags string) error {
	sc, ok := f.cards[id]
	if !ok {
		return store.ErrCardNotFound
	}
	sc.Card.Tags = tags
	return nil
}

func (f *fakeCardStore) WithTx(tx *sql.Tx) store.CardStore { return f }

// fakeStateStore keeps scheduling state keyed by card id.
type fakeStateStore struct {
	store.SRSStateStore
	states map[int64]*domain.SRSState
}

func newFakeStateStore(cards ...*store.StudyCard) *fakeStateStore {
	m := make(map[int64]*domain.SRSState, len(cards))
	for _, sc := range cards {
		st := sc.State
		m[st.CardID] = &st
	}
	return &fakeStateStore{states: m}
}

func (f *fakeStateStore) Get(ctx context.Context, cardID int64) (*domain.SRSState, error) {
	st, ok := f.states[cardID]
	if !ok {
		return nil, store.ErrSRSStateNotFound
	}
	copied := *st
	return &copied, nil
}

func (f *fakeStateStore) GetForUpdate(ctx context.Context, cardID int64) (*domain.SRSState, error) {
	return f.Get(ctx, cardID)
}

func (f *fakeStateStore) Update(ctx context.Context, state *domain.SRSState) error {
	if _, ok := f.states[state.CardID]; !ok {
		return store.ErrSRSStateNotFound
	}
	copied := *state
	f.states[state.CardID] = &copied
	return nil
}

func (f *fakeStateStore) WithTx(tx *sql.Tx) store.SRSStateStore { return f }

// fakeReviewStore appends reviews to a slice.
type fakeReviewStore struct {
	store.ReviewStore
	reviews []*domain.Review
	grades  []store.GradeCount
	daily   []store.DailyReviewCount
}

func (f *fakeReviewStore) Create(ctx context.Context, review *domain.Review) error {
	review.ID = int64(len(f.reviews) + 1)
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeReviewStore) CountSince(ctx context.Context, wordbookID int64, since time.Time) (int, error) {
	count := 0
	for _, r := range f.reviews {
		if !r.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeReviewStore) CountByGradeSince(ctx context.Context, wordbookID int64, since time.Time) ([]store.GradeCount, error) {
	return f.grades, nil
}

func (f *fakeReviewStore) DailyCounts(ctx context.Context, wordbookID int64, days int) ([]store.DailyReviewCount, error) {
	return f.daily, nil
}

func (f *fakeReviewStore) WithTx(tx *sql.Tx) store.ReviewStore { return f }
