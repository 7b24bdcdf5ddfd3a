package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/questforge/questforge-backend/internal/database"
	"github.com/questforge/questforge-backend/internal/models"
	"github.com/questforge/questforge-backend/internal/repository"
	apperrors "github.com/questforge/questforge-backend/pkg/errors"
)

// questAction is an edge label in the acceptance state machine.
type questAction string

const (
	actionSubmit   questAction = "submit"
	actionComplete questAction = "complete"
	actionReject   questAction = "reject"
	actionReaccept questAction = "reaccept"
)

type transitionKey struct {
	from   models.AcceptanceStatus
	action questAction
}

// transitions is the full legal-edge table. Anything not listed is an
// invalid-state error, so illegal moves are a lookup miss rather than a
// scattered string comparison.
var transitions = map[transitionKey]models.AcceptanceStatus{
	{models.StatusAccepted, actionSubmit}:    models.StatusSubmitted,
	{models.StatusSubmitted, actionComplete}: models.StatusCompleted,
	{models.StatusSubmitted, actionReject}:   models.StatusRejected,
	{models.StatusRejected, actionReaccept}:  models.StatusAccepted,
}

func nextStatus(from models.AcceptanceStatus, action questAction) (models.AcceptanceStatus, error) {
	to, ok := transitions[transitionKey{from, action}]
	if !ok {
		return "", apperrors.InvalidState(fmt.Sprintf("cannot %s a quest in status %q", action, from))
	}
	return to, nil
}

// minReviewerRank gates peer review: reviewers must hold at least Silver.
const minReviewerRank = models.RankSilver

// QuestLifecycle drives one adventurer's engagement with one quest ref
// through accept -> submit -> complete/reject, including rank gating,
// reviewer eligibility and the completion side effects.
type QuestLifecycle struct {
	store  repository.Store
	xp     *GamificationEngine
	ranks  *RankService
	bosses *BossService
}

func NewQuestLifecycle(store repository.Store, xp *GamificationEngine, ranks *RankService, bosses *BossService) *QuestLifecycle {
	return &QuestLifecycle{store: store, xp: xp, ranks: ranks, bosses: bosses}
}

// Accept starts (or idempotently returns) an engagement. A catalog entry
// with a rank requirement gates the accept; a rejected row is reopened with
// all timestamps and review fields reset.
func (s *QuestLifecycle) Accept(ctx context.Context, adventurerID uint, questRef string) (*models.QuestAcceptance, error) {
	if questRef == "" {
		return nil, apperrors.Validation("quest ref is required")
	}

	// rank gating, when the catalog knows this quest and gates it
	quest, err := s.store.Quests().GetQuest(ctx, questRef)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if quest != nil && quest.RankRequired != nil {
		ok, err := s.ranks.MeetsRequirement(ctx, adventurerID, *quest.RankRequired)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.Forbidden(fmt.Sprintf("quest %q requires rank %s", questRef, *quest.RankRequired))
		}
	} else {
		// still surface a missing adventurer as not-found
		if _, err := s.store.Adventurers().GetByID(ctx, adventurerID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NotFound(fmt.Sprintf("adventurer %d not found", adventurerID))
			}
			return nil, err
		}
	}

	var result *models.QuestAcceptance
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Quests().GetAcceptance(ctx, adventurerID, questRef)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		if existing != nil {
			if existing.Status != models.StatusRejected {
				// accepting twice is a no-op returning the current row
				result = existing
				return nil
			}
			// reopen after rejection: full reset, the attempt starts over
			if _, err := nextStatus(existing.Status, actionReaccept); err != nil {
				return err
			}
			existing.Status = models.StatusAccepted
			existing.AcceptedAt = time.Now()
			existing.SubmittedAt = nil
			existing.CompletedAt = nil
			existing.ReviewerID = nil
			existing.ReviewNotes = nil
			if err := tx.Quests().SaveAcceptance(ctx, existing); err != nil {
				return err
			}
			result = existing
			return nil
		}

		qa := &models.QuestAcceptance{
			AdventurerID: adventurerID,
			QuestRef:     questRef,
			Status:       models.StatusAccepted,
			AcceptedAt:   time.Now(),
		}
		if err := tx.Quests().CreateAcceptance(ctx, qa); err != nil {
			return err
		}
		result = qa
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Submit moves the caller's own accepted quest to submitted. SubmittedAt is
// set here and only ever cleared by a post-rejection reopen.
func (s *QuestLifecycle) Submit(ctx context.Context, adventurerID uint, questRef string) (*models.QuestAcceptance, error) {
	var result *models.QuestAcceptance
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		qa, err := tx.Quests().GetAcceptance(ctx, adventurerID, questRef)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound(fmt.Sprintf("no acceptance of quest %q for adventurer %d", questRef, adventurerID))
			}
			return err
		}

		to, err := nextStatus(qa.Status, actionSubmit)
		if err != nil {
			return err
		}

		now := time.Now()
		qa.Status = to
		qa.SubmittedAt = &now
		if err := tx.Quests().SaveAcceptance(ctx, qa); err != nil {
			return err
		}
		result = qa
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CompletionResult is surfaced to the notification layer.
type CompletionResult struct {
	Acceptance *models.QuestAcceptance `json:"acceptance"`
	Award      *XPAward                `json:"award,omitempty"`
	RankChange *RankChange             `json:"rankChange,omitempty"`
}

// Complete finishes a submitted quest (admin or self-service path). The
// status flip and the primary XP grant commit in one transaction; rank
// recalculation and boss damage run best-effort afterwards.
func (s *QuestLifecycle) Complete(ctx context.Context, adventurerID uint, questRef string, xpReward int, completedBy *uint) (*CompletionResult, error) {
	result, err := s.complete(ctx, adventurerID, questRef, xpReward, completedBy, nil)
	if err != nil {
		return nil, err
	}
	s.afterCompletion(ctx, adventurerID, questRef, xpReward)
	return result, nil
}

// complete runs the primary completion transaction shared by Complete and
// the approval path of Review.
func (s *QuestLifecycle) complete(ctx context.Context, adventurerID uint, questRef string, xpReward int, completedBy *uint, notes *string) (*CompletionResult, error) {
	result := &CompletionResult{}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		qa, err := tx.Quests().GetAcceptance(ctx, adventurerID, questRef)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperrors.NotFound(fmt.Sprintf("no acceptance of quest %q for adventurer %d", questRef, adventurerID))
			}
			return err
		}

		to, err := nextStatus(qa.Status, actionComplete)
		if err != nil {
			return err
		}

		now := time.Now()
		qa.Status = to
		qa.CompletedAt = &now
		qa.ReviewerID = completedBy
		if notes != nil {
			qa.ReviewNotes = notes
		}
		if err := tx.Quests().SaveAcceptance(ctx, qa); err != nil {
			return err
		}

		// primary grant: fires only for a positive reward, and a failure
		// rolls the status flip back with it
		if xpReward > 0 {
			award, err := s.xp.AwardXPIn(ctx, tx, adventurerID, xpReward, models.XPSourceQuest, questRef)
			if err != nil {
				return err
			}
			result.Award = award
		}

		result.Acceptance = qa
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// afterCompletion applies the eventually-consistent side effects of a
// completed quest. Each one is independent and must not fail the caller.
func (s *QuestLifecycle) afterCompletion(ctx context.Context, adventurerID uint, questRef string, xpEarned int) {
	BestEffort("rank recalculation", func() error {
		_, err := s.ranks.Recalculate(ctx, adventurerID)
		return err
	})

	BestEffort("boss damage", func() error {
		quest, err := s.store.Quests().GetQuest(ctx, questRef)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil // quest not in catalog, no project linkage
			}
			return err
		}
		return s.bosses.HandleQuestCompletion(ctx, quest.ProjectID, xpEarned)
	})

	BestEffort("leaderboard cache invalidation", func() error {
		return database.CacheInvalidate("leaderboard:*")
	})
}

// Review resolves a submitted quest by a peer: approve completes it (with
// the owner's XP grant and a reviewer bonus), reject parks it in rejected.
// Reviewers must hold at least Silver rank and cannot review their own work.
func (s *QuestLifecycle) Review(ctx context.Context, reviewerID, ownerID uint, questRef string, approved bool, reviewNotes string, xpReward int) (*CompletionResult, error) {
	reviewer, err := s.store.Adventurers().GetByID(ctx, reviewerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound(fmt.Sprintf("reviewer %d not found", reviewerID))
		}
		return nil, err
	}
	if reviewerID == ownerID {
		return nil, apperrors.Forbidden("cannot review your own quest")
	}
	if !reviewer.Rank.AtLeast(minReviewerRank) {
		return nil, apperrors.Forbidden(fmt.Sprintf("peer review requires rank %s or above", minReviewerRank))
	}

	var notes *string
	if reviewNotes != "" {
		notes = &reviewNotes
	}

	if !approved {
		var result *CompletionResult
		err := s.store.Transaction(ctx, func(tx repository.Store) error {
			qa, err := tx.Quests().GetAcceptance(ctx, ownerID, questRef)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return apperrors.NotFound(fmt.Sprintf("no acceptance of quest %q for adventurer %d", questRef, ownerID))
				}
				return err
			}
			to, err := nextStatus(qa.Status, actionReject)
			if err != nil {
				return err
			}
			qa.Status = to
			qa.ReviewerID = &reviewerID
			qa.ReviewNotes = notes
			if err := tx.Quests().SaveAcceptance(ctx, qa); err != nil {
				return err
			}
			result = &CompletionResult{Acceptance: qa}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}

	result, err := s.complete(ctx, ownerID, questRef, xpReward, &reviewerID, notes)
	if err != nil {
		return nil, err
	}

	BestEffort("reviewer bonus", func() error {
		bonus := ReviewerBonus(xpReward)
		_, err := s.xp.AwardXP(ctx, reviewerID, bonus, models.XPSourceReview, questRef)
		return err
	})
	s.afterCompletion(ctx, ownerID, questRef, xpReward)

	return result, nil
}

// ReviewerBonus is the XP a reviewer earns for an approval:
// max(5, round(0.1 * questXp)).
func ReviewerBonus(questXP int) int {
	bonus := int(math.Round(0.1 * float64(questXP)))
	if bonus < 5 {
		bonus = 5
	}
	return bonus
}
