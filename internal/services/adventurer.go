package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
	"github.com/questforge/questforge-backend/pkg/logger"
)

// AdventurerService resolves authenticated identities and GitHub usernames
// into adventurer profiles, creating one on the first XP-worthy event.
type AdventurerService struct {
	store repository.Store
}

func NewAdventurerService(store repository.Store) *AdventurerService {
	return &AdventurerService{store: store}
}

func (s *AdventurerService) GetByID(ctx context.Context, id uint) (*models.Adventurer, error) {
	adv, err := s.store.Adventurers().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("adventurer %d not found", id))
		}
		return nil, err
	}
	return adv, nil
}

func (s *AdventurerService) GetByUsername(ctx context.Context, username string) (*models.Adventurer, error) {
	adv, err := s.store.Adventurers().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("adventurer %q not found", username))
		}
		return nil, err
	}
	return adv, nil
}

// ResolveOrCreate returns the adventurer for a GitHub username, creating a
// fresh Iron-rank profile when the username is new to the platform.
func (s *AdventurerService) ResolveOrCreate(ctx context.Context, githubUsername string) (*models.Adventurer, error) {
	if githubUsername == "" {
		return nil, apperrors.Validation("github username is required")
	}

	adv, err := s.store.Adventurers().GetByUsername(ctx, githubUsername)
	if err == nil {
		return adv, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	adv = &models.Adventurer{
		GithubUsername: githubUsername,
		DisplayClass:   "adventurer",
		Level:          1,
		Rank:           models.RankIron,
	}
	if err := s.store.Adventurers().Create(ctx, adv); err != nil {
		return nil, err
	}
	logger.Info().Str("github_username", githubUsername).Uint("adventurer_id", adv.ID).Msg("adventurer profile created")
	return adv, nil
}

// EquipTitle sets the adventurer's displayed title. Only titles actually
// dropped from that adventurer's opened crates are equippable.
func (s *AdventurerService) EquipTitle(ctx context.Context, adventurerID uint, title string) error {
	adv, err := s.GetByID(ctx, adventurerID)
	if err != nil {
		return err
	}

	crates, err := s.store.Crates().ListByAdventurer(ctx, adventurerID)
	if err != nil {
		return err
	}
	owned := false
	for _, crate := range crates {
		if crate.ContentsTitle != nil && *crate.ContentsTitle == title {
			owned = true
			break
		}
	}
	if !owned {
		return apperrors.Forbidden(fmt.Sprintf("title %q has not been earned", title))
	}

	adv.EquippedTitle = &title
	return s.store.Adventurers().Save(ctx, adv)
}
