package service

import (
	"context"

	"github.com/channxy/ai-credit-assessment/internal/domain/advisor"
	"github.com/channxy/ai-credit-assessment/internal/domain/model"
)

func (s *Service) latest(ctx context.Context, userID string) (model.Assessment, error) {
	if err := requireUser(userID); err != nil {
		return model.Assessment{}, err
	}
	return read(ctx, s, storeLabel, "latest_assessment", func(c context.Context) (model.Assessment, error) {
		return s.store.LatestAssessment(c, userID)
	})
}

// Recommendations builds the recommendation report from the latest stored
// assessment of userID.
func (s *Service) Recommendations(ctx context.Context, userID string) (model.RecommendationReport, error) {
	a, err := s.latest(ctx, userID)
	if err != nil {
		return model.RecommendationReport{}, err
	}
	return s.advisor.Report(a), nil
}

// ImprovementPlan plans from the latest assessment toward target over months.
// A zero target picks advisor.DefaultTarget and zero months the default
// timeline.
func (s *Service) ImprovementPlan(ctx context.Context, userID string, target float64, months int) (model.ImprovementPlan, error) {
	a, err := s.latest(ctx, userID)
	if err != nil {
		return model.ImprovementPlan{}, err
	}
	if target == 0 {
		target = advisor.DefaultTarget(a.CreditScore)
	}
	if months == 0 {
		months = advisor.DefaultTimelineMonths
	}
	return s.advisor.BuildImprovementPlan(a, target, months)
}
