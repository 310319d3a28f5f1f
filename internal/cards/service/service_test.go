package service

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"taskboard_backend/internal/cards/criteria"
	"taskboard_backend/internal/cards/repository"
	"taskboard_backend/internal/cards/transport"
	"taskboard_backend/internal/events"
	"taskboard_backend/platform/apperr"
	"taskboard_backend/platform/logger"
)

type userBoard struct{ userID, boardID int64 }
type userProject struct{ userID, projectID int64 }
type userCard struct{ userID, cardID int64 }

// fakeRepo is a call-counting in-memory record store. All methods are safe
// for the concurrent fan-out the service performs.
type fakeRepo struct {
	mu sync.Mutex

	boards      map[int64]repository.Board
	memberships map[userBoard]bool
	managers    map[userProject]bool
	subscribers map[userCard]bool
	cards       []repository.Card

	cardMemberships []repository.CardMembership
	cardLabels      []repository.CardLabel
	tasks           []repository.Task

	findCardsCalls        int
	membershipBatchCalls  int
	labelBatchCalls       int
	taskBatchCalls        int
	isBoardMemberCalls    int
	lastBatchCardIDs      []int64
	memberCheckDelay      func(boardID int64) time.Duration
	failTasks             bool
	failFindCards         bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		boards:      make(map[int64]repository.Board),
		memberships: make(map[userBoard]bool),
		managers:    make(map[userProject]bool),
		subscribers: make(map[userCard]bool),
	}
}

func (f *fakeRepo) FindBoard(ctx context.Context, boardID int64) (*repository.Board, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if board, ok := f.boards[boardID]; ok {
		return &board, nil
	}
	return nil, nil
}

func (f *fakeRepo) FindBoardByList(ctx context.Context, listID int64) (*repository.Board, error) {
	return nil, nil
}

func (f *fakeRepo) FindBoardMembership(ctx context.Context, boardID, userID int64) (*repository.BoardMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memberships[userBoard{userID, boardID}] {
		return &repository.BoardMembership{ID: 1, BoardID: boardID, UserID: userID}, nil
	}
	return nil, nil
}

func (f *fakeRepo) IsBoardMember(ctx context.Context, userID, boardID int64) (bool, error) {
	f.mu.Lock()
	f.isBoardMemberCalls++
	delay := f.memberCheckDelay
	member := f.memberships[userBoard{userID, boardID}]
	f.mu.Unlock()
	if delay != nil {
		time.Sleep(delay(boardID))
	}
	return member, nil
}

func (f *fakeRepo) IsProjectManager(ctx context.Context, userID, projectID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.managers[userProject{userID, projectID}], nil
}

func (f *fakeRepo) IsCardSubscriber(ctx context.Context, userID, cardID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribers[userCard{userID, cardID}], nil
}

func (f *fakeRepo) FindCards(ctx context.Context, crit criteria.Criteria) ([]repository.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.findCardsCalls++
	if f.failFindCards {
		return nil, errors.New("store unavailable")
	}
	out := make([]repository.Card, len(f.cards))
	copy(out, f.cards)
	return out, nil
}

func (f *fakeRepo) FindCardMemberships(ctx context.Context, cardIDs []int64) ([]repository.CardMembership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.membershipBatchCalls++
	f.lastBatchCardIDs = append([]int64(nil), cardIDs...)
	return f.cardMemberships, nil
}

func (f *fakeRepo) FindCardLabels(ctx context.Context, cardIDs []int64) ([]repository.CardLabel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labelBatchCalls++
	return f.cardLabels, nil
}

func (f *fakeRepo) FindTasks(ctx context.Context, cardIDs []int64) ([]repository.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.taskBatchCalls++
	if f.failTasks {
		return nil, errors.New("store unavailable")
	}
	return f.tasks, nil
}

func (f *fakeRepo) GetCard(ctx context.Context, cardID int64) (*repository.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, card := range f.cards {
		if card.ID == cardID {
			c := card
			return &c, nil
		}
	}
	return nil, apperr.NotFound("card not found")
}

func (f *fakeRepo) CreateCard(ctx context.Context, listID int64, name, description string) (*repository.Card, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeRepo) UpdateCard(ctx context.Context, card *repository.Card) error { return nil }

func (f *fakeRepo) DeleteCard(ctx context.Context, cardID int64) error { return nil }

func (f *fakeRepo) Subscribe(ctx context.Context, userID, cardID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers[userCard{userID, cardID}] = true
	return nil
}

func (f *fakeRepo) Unsubscribe(ctx context.Context, userID, cardID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribers, userCard{userID, cardID})
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	return New(repo, events.NewInMemoryBus(logger.New("development")))
}

func strPtr(s string) *string { return &s }

const requesterID int64 = 42

func TestSearchMissingBoardScopeYieldsEmptyEnvelope(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{
		BoardID: strPtr("999"),
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(result.Items) != 0 || result.Total != 0 {
		t.Fatalf("expected empty envelope, got %d items, total %d", len(result.Items), result.Total)
	}
	if result.Included.CardMemberships == nil || result.Included.CardLabels == nil || result.Included.Tasks == nil {
		t.Fatalf("expected included collections to be empty, not absent")
	}
	if len(result.Included.CardMemberships)+len(result.Included.CardLabels)+len(result.Included.Tasks) != 0 {
		t.Fatalf("expected empty included collections, got %+v", result.Included)
	}
	if repo.findCardsCalls != 0 {
		t.Fatalf("expected no candidate fetch for a missing board, got %d", repo.findCardsCalls)
	}
}

func TestSearchForbiddenBoardScopeRejectsWithoutRecordFetch(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[5] = repository.Board{ID: 5, ProjectID: 100}
	svc := newTestService(repo)

	_, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{
		BoardID: strPtr("5"),
	})
	if err == nil {
		t.Fatalf("expected forbidden error")
	}
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden kind, got %v", err)
	}

	domainErr := err.(*apperr.Error)
	details, ok := domainErr.Details.(map[string]string)
	if !ok || details["notEnoughRights"] != "Not enough rights" {
		t.Fatalf("expected notEnoughRights details, got %+v", domainErr.Details)
	}
	if repo.findCardsCalls != 0 {
		t.Fatalf("expected no candidate fetch after rejection, got %d", repo.findCardsCalls)
	}
}

func TestSearchBoardScopePassesForProjectManager(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[5] = repository.Board{ID: 5, ProjectID: 100}
	repo.managers[userProject{requesterID, 100}] = true
	repo.cards = []repository.Card{{ID: 1, BoardID: 5, ListID: 2, Name: "a"}}
	svc := newTestService(repo)

	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{
		BoardID: strPtr("5"),
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("expected 1 item, got %d", result.Total)
	}
}

func TestSearchDropsUnauthorizedCardsSilently(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[1] = repository.Board{ID: 1, ProjectID: 10}
	repo.boards[2] = repository.Board{ID: 2, ProjectID: 20}
	repo.memberships[userBoard{requesterID, 1}] = true
	repo.cards = []repository.Card{
		{ID: 101, BoardID: 1, Name: "visible-1"},
		{ID: 102, BoardID: 2, Name: "hidden"},
		{ID: 103, BoardID: 1, Name: "visible-2"},
		{ID: 104, BoardID: 3, Name: "dangling-board"},
	}
	svc := newTestService(repo)

	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if result.Total != 2 || len(result.Items) != 2 {
		t.Fatalf("expected 2 visible cards, got total=%d len=%d", result.Total, len(result.Items))
	}
	if result.Items[0].ID != 101 || result.Items[1].ID != 103 {
		t.Fatalf("expected candidate order preserved, got %d, %d", result.Items[0].ID, result.Items[1].ID)
	}
}

func TestSearchOrderPreservedUnderConcurrentChecks(t *testing.T) {
	repo := newFakeRepo()
	var cards []repository.Card
	for i := int64(1); i <= 8; i++ {
		repo.boards[i] = repository.Board{ID: i, ProjectID: i * 10}
		repo.memberships[userBoard{requesterID, i}] = true
		cards = append(cards, repository.Card{ID: i, BoardID: i})
	}
	repo.cards = cards
	// Earlier candidates resolve slower than later ones.
	repo.memberCheckDelay = func(boardID int64) time.Duration {
		return time.Duration(9-boardID) * time.Millisecond
	}
	svc := newTestService(repo)

	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	ids := make([]int64, len(result.Items))
	for i, item := range result.Items {
		ids[i] = item.ID
	}
	if !sort.SliceIsSorted(ids, func(a, b int) bool { return ids[a] < ids[b] }) {
		t.Fatalf("expected candidate order regardless of completion order, got %v", ids)
	}
}

func TestSearchPerRecordCheckRunsEvenAfterScopeGate(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[5] = repository.Board{ID: 5, ProjectID: 100}
	repo.memberships[userBoard{requesterID, 5}] = true
	repo.cards = []repository.Card{
		{ID: 1, BoardID: 5},
		{ID: 2, BoardID: 5},
		{ID: 3, BoardID: 5},
	}
	svc := newTestService(repo)

	if _, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{
		BoardID: strPtr("5"),
	}); err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if repo.isBoardMemberCalls != len(repo.cards) {
		t.Fatalf("expected %d per-record membership checks, got %d", len(repo.cards), repo.isBoardMemberCalls)
	}
}

func TestSearchBatchFetchesExactlyOncePerCollection(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[1] = repository.Board{ID: 1, ProjectID: 10}
	repo.memberships[userBoard{requesterID, 1}] = true
	repo.cards = []repository.Card{
		{ID: 7, BoardID: 1},
		{ID: 8, BoardID: 1},
		{ID: 9, BoardID: 1},
	}
	repo.cardMemberships = []repository.CardMembership{{ID: 1, CardID: 7, UserID: 2}}
	repo.cardLabels = []repository.CardLabel{{ID: 1, CardID: 8, LabelID: 3, Name: "bug", Color: "red"}}
	repo.tasks = []repository.Task{{ID: 1, CardID: 9, Name: "review"}}
	svc := newTestService(repo)

	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if repo.membershipBatchCalls != 1 || repo.labelBatchCalls != 1 || repo.taskBatchCalls != 1 {
		t.Fatalf("expected one batch call each, got %d/%d/%d",
			repo.membershipBatchCalls, repo.labelBatchCalls, repo.taskBatchCalls)
	}
	if !reflect.DeepEqual(repo.lastBatchCardIDs, []int64{7, 8, 9}) {
		t.Fatalf("expected batch over all authorized card ids, got %v", repo.lastBatchCardIDs)
	}
	if len(result.Included.CardMemberships) != 1 || len(result.Included.CardLabels) != 1 || len(result.Included.Tasks) != 1 {
		t.Fatalf("expected included collections populated, got %+v", result.Included)
	}
}

func TestSearchSubscriptionFlagIsPerCard(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[1] = repository.Board{ID: 1, ProjectID: 10}
	repo.memberships[userBoard{requesterID, 1}] = true
	repo.cards = []repository.Card{
		{ID: 7, BoardID: 1},
		{ID: 8, BoardID: 1},
	}
	repo.subscribers[userCard{requesterID, 8}] = true
	// Another user's subscription must not leak into the requester's flags.
	repo.subscribers[userCard{7, 7}] = true
	svc := newTestService(repo)

	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if result.Items[0].IsSubscribed {
		t.Fatalf("expected card 7 unsubscribed for requester")
	}
	if !result.Items[1].IsSubscribed {
		t.Fatalf("expected card 8 subscribed for requester")
	}
}

func TestSearchIsIdempotentWithoutStateChanges(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[1] = repository.Board{ID: 1, ProjectID: 10}
	repo.memberships[userBoard{requesterID, 1}] = true
	repo.cards = []repository.Card{
		{ID: 7, BoardID: 1, Name: "a"},
		{ID: 8, BoardID: 1, Name: "b"},
	}
	repo.tasks = []repository.Task{{ID: 1, CardID: 7, Name: "review"}}
	svc := newTestService(repo)

	req := transport.SearchCardsRequest{Name: strPtr("a")}
	first, err := svc.Search(context.Background(), requesterID, req)
	if err != nil {
		t.Fatalf("first search failed: %v", err)
	}
	second, err := svc.Search(context.Background(), requesterID, req)
	if err != nil {
		t.Fatalf("second search failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical envelopes, got %+v vs %+v", first, second)
	}
}

func TestSearchUpstreamFailureIsFatal(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[1] = repository.Board{ID: 1, ProjectID: 10}
	repo.memberships[userBoard{requesterID, 1}] = true
	repo.cards = []repository.Card{{ID: 7, BoardID: 1}}
	repo.failTasks = true
	svc := newTestService(repo)

	if _, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{}); err == nil {
		t.Fatalf("expected enrichment failure to fail the search")
	}
}

func TestSearchEmptyCandidateSetIsEmptySuccess(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{
		Name: strPtr("nothing-matches"),
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if result.Total != 0 || len(result.Items) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if repo.membershipBatchCalls+repo.labelBatchCalls+repo.taskBatchCalls != 0 {
		t.Fatalf("expected no batch fetches for empty set")
	}
}

func TestSearchOverflowBoardIDYieldsEmptyEnvelope(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[1] = repository.Board{ID: 1, ProjectID: 10}
	repo.memberships[userBoard{requesterID, 1}] = true
	repo.cards = []repository.Card{{ID: 7, BoardID: 1, Name: "visible"}}
	svc := newTestService(repo)

	// Passes the numeric boundary check but exceeds any stored identifier.
	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{
		BoardID: strPtr("99999999999999999999999"),
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(result.Items) != 0 || result.Total != 0 {
		t.Fatalf("expected empty envelope for unrepresentable board id, got %d items", len(result.Items))
	}
	if repo.findCardsCalls != 0 {
		t.Fatalf("expected no candidate fetch, got %d", repo.findCardsCalls)
	}
}

func TestSearchOverflowListIDYieldsEmptyEnvelope(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[1] = repository.Board{ID: 1, ProjectID: 10}
	repo.memberships[userBoard{requesterID, 1}] = true
	repo.cards = []repository.Card{{ID: 7, BoardID: 1, ListID: 3, Name: "visible"}}
	svc := newTestService(repo)

	result, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{
		ListID: strPtr("99999999999999999999999"),
	})
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}

	if len(result.Items) != 0 || result.Total != 0 {
		t.Fatalf("expected empty envelope for unrepresentable list id, got %d items", len(result.Items))
	}
	if repo.findCardsCalls != 0 {
		t.Fatalf("expected no candidate fetch, got %d", repo.findCardsCalls)
	}
}

func TestSearchCandidateFetchFailureIsFatal(t *testing.T) {
	repo := newFakeRepo()
	repo.boards[1] = repository.Board{ID: 1, ProjectID: 10}
	repo.memberships[userBoard{requesterID, 1}] = true
	repo.failFindCards = true
	svc := newTestService(repo)

	if _, err := svc.Search(context.Background(), requesterID, transport.SearchCardsRequest{}); err == nil {
		t.Fatalf("expected candidate fetch failure to fail the search")
	}
}
