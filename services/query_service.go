package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/repository"
)

// QueryService is the read-only projection layer. Every call reads the
// store afresh.
//
// A missing single entity is pkg.ErrNotFound; a collection with nothing in
// it is an empty, non-nil slice.
type QueryService interface {
	ListSessions(ctx context.Context) ([]models.Session, error)
	GetSession(ctx context.Context, id string) (*models.SessionDetail, error)

	ListMembers(ctx context.Context) ([]models.Member, error)
	GetMember(ctx context.Context, id string) (*models.Member, error)
	MemberSessions(ctx context.Context, memberID string) ([]models.MemberSessionView, error)
	MemberGames(ctx context.Context, memberID string) ([]models.MemberGameView, error)

	ListGames(ctx context.Context) ([]models.Game, error)
	GetGame(ctx context.Context, id string) (*models.GameDetail, error)

	ListSessionMembers(ctx context.Context) ([]models.SessionMember, error)
	GetSessionMember(ctx context.Context, id string) (*models.SessionMember, error)
	ListSessionGames(ctx context.Context) ([]models.SessionGame, error)
	GetSessionGame(ctx context.Context, id string) (*models.SessionGame, error)
	ListMemberGames(ctx context.Context) ([]models.MemberGame, error)
	GetMemberGame(ctx context.Context, id string) (*models.MemberGame, error)
}

type queryService struct {
	store *repository.Store
}

func NewQueryService(store *repository.Store) QueryService {
	return &queryService{store: store}
}

func (s *queryService) ListSessions(ctx context.Context) ([]models.Session, error) {
	return s.store.Sessions.List(ctx)
}

func (s *queryService) GetSession(ctx context.Context, id string) (*models.SessionDetail, error) {
	session, err := s.store.Sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	attendance, err := s.store.SessionMembers.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberIndex(ctx)
	if err != nil {
		return nil, err
	}

	detail := &models.SessionDetail{
		Session: *session,
		Members: make([]models.AttendanceView, 0, len(attendance)),
		Games:   []models.GamePlayView{},
	}
	for _, record := range attendance {
		m := members[record.MemberID]
		detail.Members = append(detail.Members, models.AttendanceView{
			SessionMemberID: record.ID,
			MemberID:        record.MemberID,
			Name:            m.Name,
			DiscordName:     m.DiscordName,
			Start:           record.Start,
			End:             record.End,
			DurationSeconds: models.DurationSeconds(record.Bounds),
		})
	}

	plays, err := s.store.SessionGames.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	games, err := s.gameIndex(ctx)
	if err != nil {
		return nil, err
	}
	for _, record := range plays {
		detail.Games = append(detail.Games, models.GamePlayView{
			SessionGameID:   record.ID,
			GameID:          record.GameID,
			Name:            games[record.GameID].Name,
			Start:           record.Start,
			End:             record.End,
			DurationSeconds: models.DurationSeconds(record.Bounds),
		})
	}

	return detail, nil
}

func (s *queryService) ListMembers(ctx context.Context) ([]models.Member, error) {
	return s.store.Members.List(ctx)
}

func (s *queryService) GetMember(ctx context.Context, id string) (*models.Member, error) {
	return s.store.Members.GetByID(ctx, id)
}

// MemberSessions lists the sessions a member attended, newest first.
func (s *queryService) MemberSessions(ctx context.Context, memberID string) ([]models.MemberSessionView, error) {
	if _, err := s.store.Members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	records, err := s.store.SessionMembers.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionIndex(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.MemberSessionView, 0, len(records))
	for _, record := range records {
		views = append(views, models.MemberSessionView{
			SessionID:       record.SessionID,
			Date:            sessions[record.SessionID].Date,
			Start:           record.Start,
			End:             record.End,
			DurationSeconds: models.DurationSeconds(record.Bounds),
		})
	}
	sort.SliceStable(views, func(i, j int) bool { return views[i].Date > views[j].Date })
	return views, nil
}

// MemberGames lists the games a member has played. Each game's history is
// the sessions where the member was present and the game was observed.
//
// SessionGame rows are per game, not per player, so presence is what ties
// a play to this member. A member seen playing but never in voice keeps
// the game in the list (the MemberGame link) with an empty history.
func (s *queryService) MemberGames(ctx context.Context, memberID string) ([]models.MemberGameView, error) {
	if _, err := s.store.Members.GetByID(ctx, memberID); err != nil {
		return nil, err
	}

	links, err := s.store.MemberGames.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	attended, err := s.store.SessionMembers.ListByMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(attended))
	for _, record := range attended {
		present[record.SessionID] = true
	}

	games, err := s.gameIndex(ctx)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionIndex(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]models.MemberGameView, 0, len(links))
	for _, link := range links {
		plays, err := s.store.SessionGames.ListByGame(ctx, link.GameID)
		if err != nil {
			return nil, err
		}

		history := []models.GameSessionView{}
		for _, play := range plays {
			if !present[play.SessionID] {
				continue
			}
			history = append(history, gameSessionView(play, sessions))
		}
		sortGameSessions(history)

		views = append(views, models.MemberGameView{
			GameID:    link.GameID,
			Name:      games[link.GameID].Name,
			FirstSeen: link.CreatedAt,
			Sessions:  history,
		})
	}
	return views, nil
}

func (s *queryService) ListGames(ctx context.Context) ([]models.Game, error) {
	return s.store.Games.List(ctx)
}

func (s *queryService) GetGame(ctx context.Context, id string) (*models.GameDetail, error) {
	game, err := s.store.Games.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	plays, err := s.store.SessionGames.ListByGame(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessionIndex(ctx)
	if err != nil {
		return nil, err
	}
	history := make([]models.GameSessionView, 0, len(plays))
	for _, play := range plays {
		history = append(history, gameSessionView(play, sessions))
	}
	sortGameSessions(history)

	links, err := s.store.MemberGames.ListByGame(ctx, game.ID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberIndex(ctx)
	if err != nil {
		return nil, err
	}
	players := make([]models.Member, 0, len(links))
	for _, link := range links {
		if m, ok := members[link.MemberID]; ok {
			players = append(players, m)
		}
	}

	return &models.GameDetail{Game: *game, Sessions: history, Players: players}, nil
}

func (s *queryService) ListSessionMembers(ctx context.Context) ([]models.SessionMember, error) {
	return s.store.SessionMembers.List(ctx)
}

func (s *queryService) GetSessionMember(ctx context.Context, id string) (*models.SessionMember, error) {
	return s.store.SessionMembers.GetByID(ctx, id)
}

func (s *queryService) ListSessionGames(ctx context.Context) ([]models.SessionGame, error) {
	return s.store.SessionGames.List(ctx)
}

func (s *queryService) GetSessionGame(ctx context.Context, id string) (*models.SessionGame, error) {
	return s.store.SessionGames.GetByID(ctx, id)
}

func (s *queryService) ListMemberGames(ctx context.Context) ([]models.MemberGame, error) {
	return s.store.MemberGames.List(ctx)
}

func (s *queryService) GetMemberGame(ctx context.Context, id string) (*models.MemberGame, error) {
	return s.store.MemberGames.GetByID(ctx, id)
}

// The index helpers load a whole table once per projection instead of one
// lookup per row. Tables here hold a few hundred rows at most.

func (s *queryService) memberIndex(ctx context.Context) (map[string]models.Member, error) {
	members, err := s.store.Members.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to index members: %w", err)
	}
	index := make(map[string]models.Member, len(members))
	for _, m := range members {
		index[m.ID] = m
	}
	return index, nil
}

func (s *queryService) gameIndex(ctx context.Context) (map[string]models.Game, error) {
	games, err := s.store.Games.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to index games: %w", err)
	}
	index := make(map[string]models.Game, len(games))
	for _, g := range games {
		index[g.ID] = g
	}
	return index, nil
}

func (s *queryService) sessionIndex(ctx context.Context) (map[string]models.Session, error) {
	sessions, err := s.store.Sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to index sessions: %w", err)
	}
	index := make(map[string]models.Session, len(sessions))
	for _, session := range sessions {
		index[session.ID] = session
	}
	return index, nil
}

func gameSessionView(play models.SessionGame, sessions map[string]models.Session) models.GameSessionView {
	return models.GameSessionView{
		SessionID:       play.SessionID,
		Date:            sessions[play.SessionID].Date,
		Start:           play.Start,
		End:             play.End,
		DurationSeconds: models.DurationSeconds(play.Bounds),
	}
}

func sortGameSessions(views []models.GameSessionView) {
	sort.SliceStable(views, func(i, j int) bool { return views[i].Date > views[j].Date })
}
