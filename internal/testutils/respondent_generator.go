// Package testutils provides utilities for testing, including synthetic
// respondent generators and sample datasets. These components are intended
// for internal use within the project's test suites and tools and are not
// part of the public API.
package testutils

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/ahrav/go-rolecall/internal/domain"
)

// DefaultNoise is the standard deviation, in slider steps, of the jitter
// added to generated positions.
const DefaultNoise = 0.8

// Background affinity given to non-primary roles of a specialist.
const backgroundAffinity = 0.2

// memberNamespace seeds deterministic member IDs.
var memberNamespace = uuid.MustParse("6f1c3f55-2b8e-4d5a-9c61-0f3b7a1e9d42")

// Generator produces synthetic answer sets against a question bank. The
// same seed and call sequence always produces the same answers. A
// Generator is not safe for concurrent use.
type Generator struct {
	bank  *domain.QuestionBank
	rng   *rand.Rand
	noise float64
	seed  uint64
	count int
}

// NewGenerator creates a generator for bank seeded with seed.
func NewGenerator(bank *domain.QuestionBank, seed uint64) *Generator {
	return &Generator{
		bank:  bank,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		noise: DefaultNoise,
		seed:  seed,
	}
}

// WithNoise sets the positional jitter. Zero makes answers a pure function
// of affinity.
func (g *Generator) WithNoise(stddev float64) *Generator {
	g.noise = max(stddev, 0)
	return g
}

// Answers returns one answer per bank question. For each question the
// respondent leans toward the statement whose role has the higher
// affinity; equal affinities land on the neutral position before noise.
func (g *Generator) Answers(affinity domain.RoleScores) []domain.Answer {
	questions := g.bank.Questions()
	answers := make([]domain.Answer, 0, len(questions))
	for _, q := range questions {
		a, b := affinity.Get(q.StatementA.Role), affinity.Get(q.StatementB.Role)
		lean := 0.0
		if a+b > 0 {
			lean = (b - a) / (a + b)
		}
		pos := float64(domain.NeutralPosition) + lean*float64(domain.NeutralPosition)
		if g.noise > 0 {
			pos += g.rng.NormFloat64() * g.noise
		}
		answers = append(answers, domain.Answer{
			QuestionID: q.ID,
			Position:   clampPosition(int(math.Round(pos))),
		})
	}
	return answers
}

// Specialist returns a respondent strongly inclined toward role.
func (g *Generator) Specialist(role domain.Role) domain.MemberAnswers {
	return domain.MemberAnswers{ID: g.nextID(), Answers: g.Answers(SpecialistAffinity(role))}
}

// Random returns a respondent with uniformly random affinities.
func (g *Generator) Random() domain.MemberAnswers {
	var affinity domain.RoleScores
	for _, r := range domain.AllRoles() {
		affinity[r] = g.rng.Float64()
	}
	return domain.MemberAnswers{ID: g.nextID(), Answers: g.Answers(affinity)}
}

// Team returns size specialists whose primary roles are drawn uniformly.
func (g *Generator) Team(size int) []domain.MemberAnswers {
	members := make([]domain.MemberAnswers, 0, size)
	for range size {
		members = append(members, g.Specialist(domain.Role(g.rng.IntN(int(domain.RoleCount)))))
	}
	return members
}

// TeamOf returns one specialist per listed role, in order.
func (g *Generator) TeamOf(roles ...domain.Role) []domain.MemberAnswers {
	members := make([]domain.MemberAnswers, 0, len(roles))
	for _, r := range roles {
		members = append(members, g.Specialist(r))
	}
	return members
}

// SpecialistAffinity weights role fully and every other role lightly.
func SpecialistAffinity(role domain.Role) domain.RoleScores {
	var affinity domain.RoleScores
	for _, r := range domain.AllRoles() {
		affinity[r] = backgroundAffinity
	}
	affinity[role] = 1
	return affinity
}

func (g *Generator) nextID() string {
	g.count++
	return uuid.NewSHA1(memberNamespace, fmt.Appendf(nil, "%d/%d", g.seed, g.count)).String()
}

func clampPosition(p int) int {
	return min(max(p, domain.MinPosition), domain.MaxPosition)
}
