package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lgrenier/vocable-api/internal/domain"
	"github.com/lgrenier/vocable-api/internal/domain/srs"
	"github.com/lgrenier/vocable-api/internal/platform/logger"
	"github.com/lgrenier/vocable-api/internal/store"
)

// CardType labels which candidate population a queue card came from.
type CardType string

const (
	CardTypeDue     CardType = "due"
	CardTypeRolling CardType = "rolling"
	CardTypeNew     CardType = "new"
)

// Base priority weights per candidate population. Overdue material
// outranks rolling reinforcement, which outranks new cards.
const (
	weightDue     = 3.0
	weightRolling = 2.0
	weightNew     = 1.0
)

// backlogThreshold is the fraction of the queue limit above which the
// due+rolling load counts as backlog and new-card introduction is
// throttled.
const backlogThreshold = 0.7

// QueueOptions are the tunable knobs of queue construction. The HTTP
// layer fills them from query parameters and stored settings. They are
// echoed back on the queue so clients can see which options applied.
type QueueOptions struct {
	Limit          int  `json:"limit"`
	NewCardLimit   int  `json:"new_card_limit"`
	IncludeRolling bool `json:"include_rolling"`
	AutoAdjustNew  bool `json:"auto_adjust_new"`
}

// CardInfo is one entry of the study queue: lexical fields for
// presentation plus the scheduling snapshot that produced its rank.
type CardInfo struct {
	CardID    int64     `json:"card_id"`
	WordID    int64     `json:"word_id"`
	Lemma     string    `json:"lemma"`
	Meaning   string    `json:"meaning"`
	Pos       string    `json:"pos,omitempty"`
	Gender    string    `json:"gender,omitempty"`
	IPA       string    `json:"ipa,omitempty"`
	Lesson    string    `json:"lesson,omitempty"`
	CEFR      string    `json:"cefr,omitempty"`
	Language  string    `json:"language,omitempty"`
	Hint      string    `json:"hint,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CardType  CardType  `json:"card_type"`
	Weight    float64   `json:"weight"`
	Score     float64   `json:"score"`
	Due       time.Time `json:"due"`
	Interval  float64   `json:"interval"`
	Ease      float64   `json:"ease"`
	Reps      int       `json:"reps"`
	Lapses    int       `json:"lapses"`
	Retention float64   `json:"retention"`
}

// StatsSnapshot is the aggregate view returned alongside the queue.
type StatsSnapshot struct {
	TotalCards    int `json:"total_cards"`
	DueCount      int `json:"due_count"`
	NewCount      int `json:"new_count"`
	RollingCount  int `json:"rolling_count"`
	ReviewedToday int `json:"reviewed_today"`
}

// Queue is a bounded, ranked study session.
type Queue struct {
	SessionID   uuid.UUID     `json:"session_id"`
	WordbookID  int64         `json:"wordbook_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Cards       []CardInfo    `json:"cards"`
	Stats       StatsSnapshot `json:"stats"`
	Options     QueueOptions  `json:"queue_info"`
}

// Service builds study queues and processes review submissions.
type Service struct {
	tx        store.TxRunner
	wordbooks store.WordbookStore
	cards     store.CardStore
	states    store.SRSStateStore
	reviews   store.ReviewStore
	registry  *srs.Registry
	noise     Noise
	logger    *slog.Logger
}

// NewService creates a scheduler service. If noise is nil a random
// source is used; if log is nil the default logger is used.
func NewService(
	tx store.TxRunner,
	wordbooks store.WordbookStore,
	cards store.CardStore,
	states store.SRSStateStore,
	reviews store.ReviewStore,
	registry *srs.Registry,
	noise Noise,
	log *slog.Logger,
) *Service {
	if tx == nil {
		panic("tx cannot be nil")
	}
	if wordbooks == nil {
		panic("wordbooks cannot be nil")
	}
	if cards == nil {
		panic("cards cannot be nil")
	}
	if states == nil {
		panic("states cannot be nil")
	}
	if reviews == nil {
		panic("reviews cannot be nil")
	}
	if registry == nil {
		registry = srs.NewRegistry()
	}
	if noise == nil {
		noise = RandNoise{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		tx:        tx,
		wordbooks: wordbooks,
		cards:     cards,
		states:    states,
		reviews:   reviews,
		registry:  registry,
		noise:     noise,
		logger:    log.With(slog.String("component", "scheduler")),
	}
}

// BuildQueue assembles a ranked study queue for the given wordbook.
// Pass wordbookID 0 to use the currently active wordbook; if no
// wordbook is active the queue comes back empty rather than failing,
// since "nothing to study" is a valid state.
func (s *Service) BuildQueue(ctx context.Context, wordbookID int64, opts QueueOptions) (*Queue, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := time.Now().UTC()

	if opts.Limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, opts.Limit)
	}

	queue := &Queue{
		SessionID:   uuid.New(),
		WordbookID:  wordbookID,
		GeneratedAt: now,
		Cards:       []CardInfo{},
		Options:     opts,
	}

	var wordbook *domain.Wordbook
	if wordbookID == 0 {
		active, err := s.wordbooks.GetActive(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNoActiveWordbook) {
				log.Debug("no active wordbook, returning empty queue")
				return queue, nil
			}
			return nil, NewBuildQueueError("failed to resolve active wordbook", err)
		}
		wordbook = active
		wordbookID = active.ID
		queue.WordbookID = wordbookID
	} else {
		wb, err := s.wordbooks.Get(ctx, wordbookID)
		if err != nil {
			return nil, NewBuildQueueError("failed to load wordbook", err)
		}
		wordbook = wb
	}

	// Candidate population 1: overdue cards, earliest due first. Fetch
	// twice the limit so scoring can still surface the worst offenders
	// after the mix with rolling and new candidates.
	due, err := s.cards.ListDue(ctx, wordbookID, now, 2*opts.Limit)
	if err != nil {
		return nil, NewBuildQueueError("failed to fetch due cards", err)
	}

	seen := make(map[int64]struct{}, len(due))
	for _, sc := range due {
		seen[sc.Card.ID] = struct{}{}
	}

	// Candidate population 2: rolling reinforcement, one calendar-day
	// window per checkpoint, sharing a budget of whatever the due cards
	// left free.
	var rolling []*store.StudyCard
	if opts.IncludeRolling {
		budget := opts.Limit - len(due)
		perWindow := budget / len(srs.RollingCheckpoints)
		if perWindow > 0 {
			for _, checkpoint := range srs.RollingCheckpoints {
				if len(rolling) >= budget {
					break
				}
				from, to := rollingWindow(now, checkpoint)
				window, err := s.cards.ListCreatedBetween(ctx, wordbookID, from, to, perWindow)
				if err != nil {
					return nil, NewBuildQueueError("failed to fetch rolling cards", err)
				}
				for _, sc := range window {
					if _, dup := seen[sc.Card.ID]; dup {
						continue
					}
					seen[sc.Card.ID] = struct{}{}
					rolling = append(rolling, sc)
				}
			}
		}
	}

	// Candidate population 3: new cards, throttled down when the
	// learner is already behind on reviews.
	adaptiveLimit := opts.NewCardLimit
	if remaining := opts.Limit - len(due) - len(rolling); remaining < adaptiveLimit {
		adaptiveLimit = remaining
	}
	if adaptiveLimit < 0 {
		adaptiveLimit = 0
	}
	if opts.AutoAdjustNew {
		backlog := len(due) + len(rolling) - int(backlogThreshold*float64(opts.Limit))
		if backlog > 0 {
			reduction := backlog / 2
			if reduction > adaptiveLimit {
				reduction = adaptiveLimit
			}
			adaptiveLimit -= reduction
		}
	}

	var fresh []*store.StudyCard
	if adaptiveLimit > 0 {
		candidates, err := s.cards.ListNew(ctx, wordbookID, adaptiveLimit+len(seen))
		if err != nil {
			return nil, NewBuildQueueError("failed to fetch new cards", err)
		}
		for _, sc := range candidates {
			if len(fresh) >= adaptiveLimit {
				break
			}
			if _, dup := seen[sc.Card.ID]; dup {
				continue
			}
			seen[sc.Card.ID] = struct{}{}
			fresh = append(fresh, sc)
		}
	}

	cards := make([]CardInfo, 0, len(due)+len(rolling)+len(fresh))
	for _, sc := range due {
		cards = append(cards, s.scoreCard(sc, CardTypeDue, weightDue, wordbook.Language, now))
	}
	for _, sc := range rolling {
		cards = append(cards, s.scoreCard(sc, CardTypeRolling, weightRolling, wordbook.Language, now))
	}
	for _, sc := range fresh {
		cards = append(cards, s.scoreCard(sc, CardTypeNew, weightNew, wordbook.Language, now))
	}

	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Score > cards[j].Score
	})
	if len(cards) > opts.Limit {
		cards = cards[:opts.Limit]
	}
	queue.Cards = cards

	stats, err := s.Stats(ctx, wordbookID)
	if err != nil {
		return nil, NewBuildQueueError("failed to aggregate stats", err)
	}
	queue.Stats = *stats

	log.Debug("queue built",
		slog.Int64("wordbook_id", wordbookID),
		slog.Int("due", len(due)),
		slog.Int("rolling", len(rolling)),
		slog.Int("new", len(fresh)),
		slog.Int("returned", len(queue.Cards)))

	return queue, nil
}

// rollingWindow is the calendar day, midnight to midnight UTC, that
// sits checkpoint days before now. Aligning on midnight keeps window
// membership stable across a day instead of sliding with the clock.
func rollingWindow(now time.Time, checkpoint int) (time.Time, time.Time) {
	day := now.AddDate(0, 0, -checkpoint)
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 0, 1)
}

// scoreCard computes the ranking score for one candidate. Overdue
// pressure and low estimated retention push a card up; a leech tag
// pushes it down; a little noise keeps near-ties from always landing
// in the same order.
func (s *Service) scoreCard(sc *store.StudyCard, cardType CardType, weight float64, language string, now time.Time) CardInfo {
	overdueDays := 0.0
	if cardType == CardTypeDue {
		if d := now.Sub(sc.State.Due).Hours() / 24; d > 0 {
			overdueDays = d
		}
	}

	retention := srs.Retention(sc.State.Ease, sc.State.Interval)

	leechPenalty := 0.0
	if sc.Card.HasTag(domain.TagLeech) {
		leechPenalty = -0.5
	}

	score := weight + 0.8*overdueDays + 0.6*(1-retention) + leechPenalty + s.noise.Next()

	return CardInfo{
		CardID:    sc.Card.ID,
		WordID:    sc.Word.ID,
		Lemma:     sc.Word.Lemma,
		Meaning:   sc.Word.Meaning,
		Pos:       sc.Word.Pos,
		Gender:    sc.Word.Gender,
		IPA:       sc.Word.IPA,
		Lesson:    sc.Word.Lesson,
		CEFR:      sc.Word.CEFR,
		Language:  language,
		Hint:      sc.Card.Hint,
		Tags:      sc.Card.TagList(),
		CardType:  cardType,
		Weight:    weight,
		Score:     score,
		Due:       sc.State.Due,
		Interval:  sc.State.Interval,
		Ease:      sc.State.Ease,
		Reps:      sc.State.Reps,
		Lapses:    sc.State.Lapses,
		Retention: retention,
	}
}
