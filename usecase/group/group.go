package group

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/carecircle/domain"
	"github.com/fastygo/carecircle/repository"
	"github.com/fastygo/carecircle/usecase"
)

const inviteCodeLength = 8

type UseCase struct {
	groups  repository.GroupRepository
	members repository.MembershipRepository
	logger  *zap.Logger
}

func New(groups repository.GroupRepository, members repository.MembershipRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		groups:  groups,
		members: members,
		logger:  logger,
	}
}

var _ usecase.GroupAuthorizer = (*UseCase)(nil)

// Authorize checks the group exists and userID belongs to it.
func (uc *UseCase) Authorize(ctx context.Context, groupID, userID string) (*domain.Membership, error) {
	if groupID == "" {
		return nil, domain.Invalid("group id is required")
	}
	if _, err := uc.groups.GetByID(ctx, groupID); err != nil {
		return nil, err
	}
	return uc.members.Get(ctx, groupID, userID)
}

func (uc *UseCase) CreateGroup(ctx context.Context, ownerID, name string) (*domain.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.Invalid("group name is required")
	}
	group := &domain.Group{
		Name:       name,
		OwnerID:    ownerID,
		InviteCode: newInviteCode(),
	}
	created, err := uc.groups.Create(ctx, group)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("group created", zap.String("group_id", created.ID), zap.String("owner_id", ownerID))
	return created, nil
}

func (uc *UseCase) ListGroups(ctx context.Context, userID string) ([]domain.Group, error) {
	groups, err := uc.groups.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].OwnerID != userID {
			groups[i].InviteCode = ""
		}
	}
	return groups, nil
}

func (uc *UseCase) GetGroup(ctx context.Context, userID, groupID string) (*domain.Group, error) {
	if _, err := uc.Authorize(ctx, groupID, userID); err != nil {
		return nil, err
	}
	group, err := uc.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != userID {
		group.InviteCode = ""
	}
	return group, nil
}

// JoinGroup adds userID to the group behind an invite code.
func (uc *UseCase) JoinGroup(ctx context.Context, userID, code, role string) (*domain.Membership, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, domain.Invalid("invite code is required")
	}
	if role == "" {
		role = domain.MemberRoleMember
	}
	if !domain.ValidMemberRole(role) {
		return nil, domain.Invalid("unknown member role %q", role)
	}

	group, err := uc.groups.GetByInviteCode(ctx, code)
	if err != nil {
		return nil, err
	}
	membership := &domain.Membership{GroupID: group.ID, UserID: userID, Role: role}
	if err := uc.members.Add(ctx, membership); err != nil {
		return nil, err
	}
	uc.logger.Info("member joined", zap.String("group_id", group.ID), zap.String("user_id", userID))
	return membership, nil
}

func (uc *UseCase) LeaveGroup(ctx context.Context, userID, groupID string) error {
	membership, err := uc.Authorize(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if membership.IsOwner() {
		return domain.ErrOwnerCannotLeave
	}
	return uc.members.Remove(ctx, groupID, userID)
}

func (uc *UseCase) Members(ctx context.Context, userID, groupID string) ([]domain.Membership, error) {
	if _, err := uc.Authorize(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return uc.members.List(ctx, groupID)
}

func newInviteCode() string {
	code := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(code[:inviteCodeLength])
}
