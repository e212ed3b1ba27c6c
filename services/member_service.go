package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/akinalp/rollcall/models"
	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/repository"
)

// MemberService is the administrative side of the member roster. Every
// method takes the acting member and checks its capability before anything
// else happens.
type MemberService interface {
	// RegisterMember creates a member. A taken discord name returns a
	// *ConflictError carrying the existing member.
	RegisterMember(ctx context.Context, actor *models.Member, req *models.RegisterMemberRequest) (*models.Member, error)
	// SetRotation includes or excludes a member from the active rotation.
	SetRotation(ctx context.Context, actor *models.Member, memberID string, req *models.UpdateMemberRequest) (*models.Member, error)
	// RemoveMember deletes a member together with its attendance history.
	RemoveMember(ctx context.Context, actor *models.Member, memberID string) error
	// ImportRoster registers every entry, skipping handles that already exist.
	ImportRoster(ctx context.Context, actor *models.Member, entries []models.RegisterMemberRequest) (*RosterImportResult, error)
}

// RosterImportResult reports what an import did. Existing lists the members
// whose handles were already registered.
type RosterImportResult struct {
	Created  []models.Member `json:"created"`
	Existing []models.Member `json:"existing"`
}

type memberService struct {
	members repository.MemberRepository
	logger  *zap.Logger
}

func NewMemberService(members repository.MemberRepository, logger *zap.Logger) MemberService {
	return &memberService{
		members: members,
		logger:  logger.Named("members"),
	}
}

func (s *memberService) RegisterMember(ctx context.Context, actor *models.Member, req *models.RegisterMemberRequest) (*models.Member, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	member := &models.Member{
		DiscordName: req.DiscordName,
		Name:        req.Name,
		IsAdmin:     req.IsAdmin,
		InRotation:  true,
	}
	if err := s.members.Create(ctx, member); err != nil {
		if !errors.Is(err, pkg.ErrAlreadyExists) {
			return nil, err
		}
		existing, getErr := s.members.GetByDiscordName(ctx, req.DiscordName)
		if getErr != nil {
			return nil, fmt.Errorf("failed to load conflicting member: %w", getErr)
		}
		return nil, &ConflictError{Existing: existing}
	}

	s.logger.Info("member registered",
		zap.String("member_id", member.ID),
		zap.String("discord_name", member.DiscordName),
		zap.String("actor", actor.DiscordName),
	)
	return member, nil
}

func (s *memberService) SetRotation(ctx context.Context, actor *models.Member, memberID string, req *models.UpdateMemberRequest) (*models.Member, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.members.UpdateRotation(ctx, memberID, *req.InRotation); err != nil {
		return nil, err
	}
	return s.members.GetByID(ctx, memberID)
}

func (s *memberService) RemoveMember(ctx context.Context, actor *models.Member, memberID string) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}
	if actor.ID == memberID {
		return fmt.Errorf("%w: administrators cannot remove themselves", pkg.ErrBadRequest)
	}

	if err := s.members.Delete(ctx, memberID); err != nil {
		return err
	}
	s.logger.Info("member removed", zap.String("member_id", memberID), zap.String("actor", actor.DiscordName))
	return nil
}

func (s *memberService) ImportRoster(ctx context.Context, actor *models.Member, entries []models.RegisterMemberRequest) (*RosterImportResult, error) {
	if err := RequireAdmin(actor); err != nil {
		return nil, err
	}

	result := &RosterImportResult{Created: []models.Member{}, Existing: []models.Member{}}
	for i := range entries {
		member, err := s.RegisterMember(ctx, actor, &entries[i])
		var conflict *ConflictError
		switch {
		case errors.As(err, &conflict):
			result.Existing = append(result.Existing, *conflict.Existing)
		case err != nil:
			return result, fmt.Errorf("roster entry %d: %w", i+1, err)
		default:
			result.Created = append(result.Created, *member)
		}
	}
	return result, nil
}
