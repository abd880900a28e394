package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/nanohard/petal-lottery-bot/pkg/db"
	"github.com/nanohard/petal-lottery-bot/pkg/lottery"
	"github.com/nanohard/petal-lottery-bot/pkg/models"
)

type EventRepository interface {
	FindEvent(ctx context.Context, id string) (models.Event, error)
	SaveEvent(ctx context.Context, event models.Event) error
	DeleteEvent(ctx context.Context, id string) error
}

type ScoreRepository interface {
	FindScore(ctx context.Context, userID string) (models.Score, error)
	SaveScore(ctx context.Context, score models.Score) error
}

// List names one of the id lists of an event.
type List string

const (
	ListParticipants List = "participants"
	ListWinners      List = "winners"
	ListPrioritized  List = "prioritized"
	ListLurer        List = "lurer"
)

// Op is an edit applied to a List.
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// NewEvent is the input of CreateEvent.
type NewEvent struct {
	ID            string
	Title         string
	EndsAt        time.Time
	RequiredBiome string
	RequiredScore float64
	ChannelID     string
	CreatedAt     time.Time
}

func (e NewEvent) validate(biomes []string) error {
	choices := make([]interface{}, 0, len(biomes))
	for _, b := range biomes {
		choices = append(choices, b)
	}

	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Title, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&e.EndsAt, validation.Required, validation.By(func(interface{}) error {
			if !e.EndsAt.After(e.CreatedAt) {
				return errors.New("must be in the future")
			}
			return nil
		})),
		validation.Field(&e.RequiredBiome, validation.In(choices...)),
		validation.Field(&e.RequiredScore, validation.Min(0.0)),
	)
}

type LotteryService struct {
	mu     sync.Mutex
	events EventRepository
	scores ScoreRepository
	lurer  []string
	biomes []string
	rng    *rand.Rand
}

// NewLotteryService copies lurer into every new event. biomes limits the
// score requirement an event may ask for.
func NewLotteryService(events EventRepository, scores ScoreRepository, lurer, biomes []string, seed int64) *LotteryService {
	return &LotteryService{
		events: events,
		scores: scores,
		lurer:  append([]string(nil), lurer...),
		biomes: append([]string(nil), biomes...),
		rng:    lottery.NewRand(seed),
	}
}

func (s *LotteryService) CreateEvent(ctx context.Context, in NewEvent) (models.Event, error) {
	if err := in.validate(s.biomes); err != nil {
		return models.Event{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	event := models.Event{
		ID:            in.ID,
		Title:         in.Title,
		EndsAt:        in.EndsAt.UTC(),
		RequiredBiome: in.RequiredBiome,
		RequiredScore: in.RequiredScore,
		Lurer:         append([]string{}, s.lurer...),
		Participants:  []string{},
		ChannelID:     in.ChannelID,
		CreatedAt:     in.CreatedAt.UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.events.SaveEvent(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("s.events.SaveEvent -> %w", err)
	}

	return event, nil
}

// AttachMessage records where the event embed was posted.
func (s *LotteryService) AttachMessage(ctx context.Context, eventID, channelID, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.find(ctx, eventID)
	if err != nil {
		return err
	}

	event.ChannelID = channelID
	event.MessageID = messageID
	if err := s.events.SaveEvent(ctx, event); err != nil {
		return fmt.Errorf("s.events.SaveEvent -> %w", err)
	}

	return nil
}

// Get returns the stored event.
func (s *LotteryService) Get(ctx context.Context, eventID string) (models.Event, error) {
	return s.find(ctx, eventID)
}

// Join enters userID into the event while it is open and the member meets
// the score requirement.
func (s *LotteryService) Join(ctx context.Context, eventID, userID string, now time.Time) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.find(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}

	if now.After(event.EndsAt) {
		return models.Event{}, ErrEntryClosed
	}

	if event.HasRequirement() {
		score, err := s.scores.FindScore(ctx, userID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return models.Event{}, fmt.Errorf("s.scores.FindScore -> %w", err)
		}
		actual := score.BiomeScore(event.RequiredBiome)
		if actual < event.RequiredScore {
			return models.Event{}, &ScoreRequirementError{
				Biome:    event.RequiredBiome,
				Required: event.RequiredScore,
				Actual:   actual,
			}
		}
	}

	if event.Joined(userID) {
		return models.Event{}, ErrAlreadyJoined
	}

	event.Participants = append(event.Participants, userID)
	if err := s.events.SaveEvent(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("s.events.SaveEvent -> %w", err)
	}

	return event, nil
}

func (s *LotteryService) Leave(ctx context.Context, eventID, userID string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.find(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}

	if !event.Joined(userID) {
		return models.Event{}, ErrNotJoined
	}

	event.Participants = without(event.Participants, userID)
	if err := s.events.SaveEvent(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("s.events.SaveEvent -> %w", err)
	}

	return event, nil
}

// Prioritize moves a participant into the prioritized tier.
func (s *LotteryService) Prioritize(ctx context.Context, eventID, userID string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.find(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}

	if !event.Joined(userID) {
		return models.Event{}, ErrNotJoined
	}
	if contains(event.Prioritized, userID) {
		return models.Event{}, ErrAlreadyPrioritized
	}

	event.Prioritized = append(event.Prioritized, userID)
	if err := s.events.SaveEvent(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("s.events.SaveEvent -> %w", err)
	}

	return event, nil
}

// EditList adds or removes userID on one of the event lists. The bool
// reports whether the list changed; nothing is written when it did not.
// Winners stay a subset of participants: a new winner is also entered and
// a removed participant also loses a win.
func (s *LotteryService) EditList(ctx context.Context, eventID string, list List, op Op, userID string) (models.Event, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.find(ctx, eventID)
	if err != nil {
		return models.Event{}, false, err
	}

	var target *[]string
	switch list {
	case ListParticipants:
		target = &event.Participants
	case ListWinners:
		target = &event.Winners
	case ListPrioritized:
		target = &event.Prioritized
	case ListLurer:
		target = &event.Lurer
	default:
		return models.Event{}, false, fmt.Errorf("%w: %q", ErrUnknownList, list)
	}

	switch op {
	case OpAdd:
		if contains(*target, userID) {
			return event, false, nil
		}
		*target = append(*target, userID)
		if list == ListWinners && !contains(event.Participants, userID) {
			event.Participants = append(event.Participants, userID)
		}
	case OpRemove:
		if !contains(*target, userID) {
			return event, false, nil
		}
		*target = without(*target, userID)
		if list == ListParticipants && event.Drawn() {
			event.Winners = without(event.Winners, userID)
		}
	default:
		return models.Event{}, false, fmt.Errorf("unknown edit %q", op)
	}

	if err := s.events.SaveEvent(ctx, event); err != nil {
		return models.Event{}, false, fmt.Errorf("s.events.SaveEvent -> %w", err)
	}

	return event, true, nil
}

// Draw picks count winners once the event has ended. count <= 0 means
// everyone. An event nobody joined is deleted and ErrNoParticipants is
// returned.
func (s *LotteryService) Draw(ctx context.Context, eventID string, count int, now time.Time) (models.Event, lottery.Draw, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.find(ctx, eventID)
	if err != nil {
		return models.Event{}, lottery.Draw{}, err
	}

	if now.Before(event.EndsAt) {
		return models.Event{}, lottery.Draw{}, ErrEventOpen
	}
	if event.Drawn() {
		return models.Event{}, lottery.Draw{}, ErrAlreadyDrawn
	}

	draw, err := lottery.SelectWinners(event.Participants, event.Lurer, event.Prioritized, count, s.rng)
	if errors.Is(err, lottery.ErrNoParticipants) {
		if err := s.events.DeleteEvent(ctx, eventID); err != nil && !errors.Is(err, db.ErrNotFound) {
			return models.Event{}, lottery.Draw{}, fmt.Errorf("s.events.DeleteEvent -> %w", err)
		}
		return event, lottery.Draw{}, lottery.ErrNoParticipants
	}
	if err != nil {
		return models.Event{}, lottery.Draw{}, fmt.Errorf("lottery.SelectWinners -> %w", err)
	}

	event.Winners = append([]string{}, draw.Winners...)
	if err := s.events.SaveEvent(ctx, event); err != nil {
		return models.Event{}, lottery.Draw{}, fmt.Errorf("s.events.SaveEvent -> %w", err)
	}

	return event, draw, nil
}

func (s *LotteryService) find(ctx context.Context, eventID string) (models.Event, error) {
	event, err := s.events.FindEvent(ctx, eventID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Event{}, ErrEventNotFound
	}
	if err != nil {
		return models.Event{}, fmt.Errorf("s.events.FindEvent -> %w", err)
	}
	return event, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func without(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
