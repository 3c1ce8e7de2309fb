// Package classify applies user-directed variable classification: construct
// groups and demographic definitions, saved with replace-not-merge
// semantics so exact resubmission is idempotent.
package classify

import (
	"context"

	"statflow/domain/classify"
	"statflow/domain/core"
	"statflow/domain/project"
	"statflow/internal/errors"
	"statflow/internal/logging"
	"statflow/ports"
)

// SaveInput carries the optional group and demographic sets of one save
// call. A nil slice pointer means the set was not supplied at all, which is
// different from supplying an empty set (clear everything).
type SaveInput struct {
	Groups       *[]classify.VariableGroup
	Demographics *[]classify.DemographicDefinition
}

// Service coordinates classification saves against the repositories
type Service struct {
	classificationRepo ports.ClassificationRepository
	projectRepo        ports.ProjectRepository
	logger             *logging.Logger
}

// NewService creates a classification service
func NewService(classificationRepo ports.ClassificationRepository, projectRepo ports.ProjectRepository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.DefaultLogger
	}
	return &Service{
		classificationRepo: classificationRepo,
		projectRepo:        projectRepo,
		logger:             logger,
	}
}

// Save persists groups and/or demographics for a project. At least one of
// the two sets must be supplied. Saving demographics transitions the
// project to configured; a groups-only save leaves the status untouched.
func (s *Service) Save(ctx context.Context, ownerID core.OwnerID, projectID core.ProjectID, input SaveInput) error {
	if input.Groups == nil && input.Demographics == nil {
		return errors.InvalidArgument("save requires groups, demographics, or both")
	}

	if _, err := s.projectRepo.GetOwned(ctx, projectID, ownerID); err != nil {
		return err
	}

	if input.Groups != nil {
		groups := normalizeExclusive(*input.Groups)
		if err := s.classificationRepo.ReplaceGroups(ctx, projectID, groups); err != nil {
			return errors.Wrap(err, "failed to replace variable groups")
		}
		s.logger.Info("[Classify] replaced %d groups for project %s", len(groups), projectID)
	}

	if input.Demographics != nil {
		defs := *input.Demographics
		for i := range defs {
			if err := defs[i].Validate(); err != nil {
				return errors.WithCode(errors.CodeInvalidArgument, err)
			}
		}
		if err := s.classificationRepo.ReplaceDemographics(ctx, projectID, defs); err != nil {
			return errors.Wrap(err, "failed to replace demographics")
		}
		s.logger.Info("[Classify] replaced %d demographic definitions for project %s", len(defs), projectID)

		// An empty set only clears flags; it does not configure the project.
		if len(defs) > 0 {
			if err := s.projectRepo.UpdateStatus(ctx, projectID, project.StatusConfigured); err != nil {
				return errors.Wrap(err, "failed to mark project configured")
			}
		}
	}

	return nil
}

// normalizeExclusive enforces exclusive group membership within one save
// pass: when a variable appears in more than one incoming group, the
// last-listed group wins and earlier memberships are dropped.
func normalizeExclusive(groups []classify.VariableGroup) []classify.VariableGroup {
	owner := make(map[core.ID]int)
	for gi, g := range groups {
		for _, v := range g.VariableIDs {
			owner[v] = gi
		}
	}

	normalized := make([]classify.VariableGroup, len(groups))
	for gi, g := range groups {
		kept := g
		kept.VariableIDs = nil
		seen := make(map[core.ID]bool)
		for _, v := range g.VariableIDs {
			if owner[v] == gi && !seen[v] {
				kept.VariableIDs = append(kept.VariableIDs, v)
				seen[v] = true
			}
		}
		normalized[gi] = kept
	}
	return normalized
}
