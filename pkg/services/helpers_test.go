package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-staffing/pkg/models"
)

func employee(id, name, role string, level models.ExperienceLevel, availability int, skills ...string) models.Employee {
	e := models.Employee{
		ID:                  id,
		Name:                name,
		Role:                role,
		ExperienceLevel:     level,
		AvailabilityPercent: availability,
		Status:              models.EmployeeStatusBench,
	}
	for _, s := range skills {
		e.Skills = append(e.Skills, models.Skill{Name: s, Proficiency: 4})
	}
	return e
}

// testRoster is a small bench: five backend developers, two QA engineers and a designer.
func testRoster() []models.Employee {
	return []models.Employee{
		employee("e1", "Alice Chen", "Backend Developer", models.ExperienceSenior, 100, "Go", "PostgreSQL"),
		employee("e2", "Bob Martin", "Backend Developer", models.ExperienceMid, 100, "Go"),
		employee("e3", "Carol Diaz", "Java Engineer", models.ExperienceMid, 80, "Java", "Go"),
		employee("e4", "Dan Okafor", "Backend Developer", models.ExperienceJunior, 60, "Go"),
		employee("e5", "Eve Novak", "Backend Developer", models.ExperienceJunior, 40, "Python", "Go"),
		employee("q1", "Quinn Park", "QA Engineer", models.ExperienceMid, 100, "Selenium"),
		employee("q2", "Ravi Shah", "QA Engineer", models.ExperienceSenior, 100, "Cypress"),
		employee("d1", "Dana Lee", "Product Designer", models.ExperienceMid, 100, "Figma"),
	}
}

func backendDemand(headcount int) *models.ProjectDemand {
	return &models.ProjectDemand{
		ProjectType: models.ProjectTypeNew,
		ProjectName: "Payments",
		Roles: []models.RoleDemand{{
			RoleName:          "Backend Developer",
			RequiredSkills:    []models.SkillRequirement{{Name: "Go", MinimumProficiency: 3}},
			ExperienceLevel:   models.ExperienceMid,
			AllocationPercent: 100,
			Headcount:         headcount,
		}},
	}
}

// newTestEngine builds a deterministic engine with no completion service.
func newTestEngine() AllocationEngine {
	logger := zap.NewNop()
	return NewAllocationEngine(
		NewDemandNormalizer(logger),
		NewCandidateResolver(nil),
		NewCandidateRanker(nil, logger),
		nil,
		logger,
	)
}

func newTestRouter() IntentRouter {
	logger := zap.NewNop()
	return NewIntentRouter(
		newTestEngine(),
		NewCandidateResolver(nil),
		NewCandidateRanker(nil, logger),
		NewHeadcountRecommender(nil, logger),
		NewProposalExplainer(nil, logger),
		logger,
	)
}

func recommendationIDs(ra *models.RoleAllocation) []string {
	ids := make([]string, 0, len(ra.Recommendations))
	for _, rec := range ra.Recommendations {
		ids = append(ids, rec.EmployeeID)
	}
	return ids
}

type stubEmployeeStore struct {
	employees []models.Employee
	err       error
}

func (s stubEmployeeStore) List(context.Context) ([]models.Employee, error) {
	return s.employees, s.err
}

type stubProjectStore struct {
	projects []models.Project
	err      error
}

func (s stubProjectStore) List(context.Context) ([]models.Project, error) {
	return s.projects, s.err
}
