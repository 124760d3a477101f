package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	worldcupdb "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/infrastructure/repositories"
)

var categories = []string{"classic", "chicken", "premium", "spicy", "veggie"}

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed the generator was created with.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// GenerateCompetitor returns an unrated competitor. The ID is left zero so the
// database assigns one.
func (g *TestDataGenerator) GenerateCompetitor() worldcupdb.Competitor {
	brand := g.faker.Company()
	name := g.faker.AdjectiveDescriptive() + " " + g.faker.Lunch()
	return worldcupdb.Competitor{
		Name:        name,
		NameEn:      name,
		Brand:       brand,
		BrandEn:     brand,
		Description: g.faker.AdjectiveDescriptive() + " " + g.faker.Dinner(),
		Category:    g.faker.RandomString(categories),
		ImageURL:    g.faker.URL(),
		Rating:      1500,
	}
}

// GenerateCompetitors returns n unrated competitors.
func (g *TestDataGenerator) GenerateCompetitors(n int) []worldcupdb.Competitor {
	out := make([]worldcupdb.Competitor, n)
	for i := range out {
		out[i] = g.GenerateCompetitor()
	}
	return out
}
