package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"

	"github.com/jmespath-community/go-jmespath"

	"github.com/placementhub/placement-engine/internal/core"
	domainauth "github.com/placementhub/placement-engine/internal/domain/auth"
	"github.com/placementhub/placement-engine/internal/domain/completion"
	"github.com/placementhub/placement-engine/internal/domain/model"
)

// Profile paths compared for the recruiter domain-match hint.
const (
	companyWebsitePath = "company.website"
	contactEmailPath   = "contact.email"
)

// AccountServiceOptions groups dependencies for AccountService.
type AccountServiceOptions struct {
	Actors   core.ActorRepository
	Profiles core.ProfileRepository
	Logger   *slog.Logger
}

// AccountService handles self-registration and profile maintenance.
type AccountService struct {
	actors   core.ActorRepository
	profiles core.ProfileRepository
	logger   *slog.Logger
}

// NewAccountService constructs a new AccountService.
func NewAccountService(opts AccountServiceOptions) *AccountService {
	if opts.Actors == nil {
		panic("NewAccountService: Actors is required")
	}
	if opts.Profiles == nil {
		panic("NewAccountService: Profiles is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{actors: opts.Actors, profiles: opts.Profiles, logger: logger}
}

// Register creates an account with its profile and, for recruiters and
// alumni, a pending verification. Applicants are active immediately.
func (s *AccountService) Register(ctx context.Context, req model.RegisterRequest) (*model.Registration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	fields := req.Profile
	if fields == nil {
		fields = map[string]any{}
	}
	params := model.CreateActorParams{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		Active:      !req.Role.RequiresVerification(),
		Profile:     fields,
		Completion:  completion.Score(req.Role, fields),
	}
	if req.Role.RequiresVerification() {
		params.Verification = &model.NewVerification{Kind: model.VerificationKind(req.Role)}
		if req.Role == domainauth.RoleRecruiter {
			params.Verification.DomainMatch = recruiterDomainMatch(req.Email, fields)
		}
	}

	reg, err := s.actors.Register(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("register account: %w", err)
	}
	s.logger.InfoContext(ctx, "account registered",
		"actor_id", reg.Actor.ID, "role", reg.Actor.Role, "active", reg.Actor.Active)
	return reg, nil
}

// Me returns the caller's account and profile.
func (s *AccountService) Me(ctx context.Context, actor domainauth.Actor) (*model.Registration, error) {
	if err := requireActive(actor); err != nil {
		return nil, err
	}
	rec, err := s.actors.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	p, err := s.profiles.Get(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &model.Registration{Actor: rec, Profile: p}, nil
}

// UpdateProfile shallow-merges top-level sections into the caller's profile
// and stores the recomputed completion score. A null section clears it.
func (s *AccountService) UpdateProfile(
	ctx context.Context,
	actor domainauth.Actor,
	req model.UpdateProfileRequest,
) (*model.Profile, error) {
	if err := gateCap(actor, domainauth.CapManageOwnProfile); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	current, err := s.profiles.Get(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	merged := MergeProfile(current.Fields, req.Fields)
	p, err := s.profiles.Save(ctx, core.SaveProfileParams{
		ActorID:    actor.ID,
		Fields:     merged,
		Completion: completion.Score(actor.Role, merged),
	})
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// MergeProfile returns base with each section of patch replacing the section
// of the same name. Sections set to null are removed.
func MergeProfile(base, patch map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(patch))
	maps.Copy(out, base)
	for k, v := range patch {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

func recruiterDomainMatch(accountEmail string, fields map[string]any) *bool {
	website := searchString(companyWebsitePath, fields)
	email := searchString(contactEmailPath, fields)
	if email == "" {
		email = accountEmail
	}
	match, ok := model.DomainsMatch(email, website)
	if !ok {
		return nil
	}
	return &match
}

func searchString(expr string, fields map[string]any) string {
	v, err := jmespath.Search(expr, fields)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
