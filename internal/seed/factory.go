// Package seed provides helpers to create demo data for development
// databases. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"strings"
	"time"

	"devconnector/internal/models"
	"devconnector/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plaintext password of every seeded account.
const DefaultPassword = "password123"

// Factory builds domain entities populated with fake data. It does not
// persist anything; the Seeder owns storage.
type Factory struct {
	faker *gofakeit.Faker
	opts  Options
	now   func() time.Time

	passwordHash string
}

// NewFactory creates a Factory. A zero opts.RandSeed picks a random seed.
func NewFactory(opts Options) (*Factory, error) {
	f := &Factory{
		faker: gofakeit.New(opts.RandSeed),
		opts:  opts,
		now:   time.Now,
	}

	// One hash for every account keeps large seeds fast.
	if opts.SkipBcrypt {
		f.passwordHash = DefaultPassword
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		f.passwordHash = string(hash)
	}
	return f, nil
}

// BuildUser returns an unsaved account. n keeps emails unique across a run.
func (f *Factory) BuildUser(n int, overrides ...func(*models.User)) *models.User {
	name := truncate(f.faker.Name(), 30)
	email := fmt.Sprintf("%s.%d@%s", slug(f.faker.Username()), n, strings.ToLower(f.faker.DomainName()))
	user := &models.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: f.passwordHash,
		Avatar:   service.GravatarURL(email),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildProfile returns an unsaved profile owned by user.
func (f *Factory) BuildProfile(user *models.User, n int, overrides ...func(*models.Profile)) *models.Profile {
	handle := fmt.Sprintf("%s%d", slug(f.faker.Username()), n)
	skills := make([]string, 0, 4)
	for range f.faker.Number(1, 4) {
		skills = append(skills, f.faker.ProgrammingLanguage())
	}

	profile := &models.Profile{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Handle:         handle,
		Company:        f.faker.Company(),
		Website:        f.faker.URL(),
		Location:       f.faker.City(),
		Bio:            f.faker.Sentence(12),
		Status:         f.faker.RandomString([]string{"Developer", "Junior Developer", "Senior Developer", "Manager", "Student", "Instructor"}),
		GithubUsername: slug(f.faker.Username()),
		Skills:         skills,
		Social: models.Social{
			Twitter:  "https://twitter.com/" + slug(f.faker.Username()),
			LinkedIn: "https://linkedin.com/in/" + slug(f.faker.Username()),
		},
	}

	for range f.faker.Number(0, 3) {
		profile.Experience = append(profile.Experience, f.buildExperience())
	}
	for range f.faker.Number(0, 2) {
		profile.Education = append(profile.Education, f.buildEducation())
	}

	for _, override := range overrides {
		override(profile)
	}
	return profile
}

func (f *Factory) buildExperience() models.Experience {
	from, to, current := f.dateRange()
	return models.Experience{
		ID:          uuid.NewString(),
		Title:       f.faker.JobTitle(),
		Company:     f.faker.Company(),
		Location:    f.faker.City(),
		From:        from,
		To:          to,
		Current:     current,
		Description: f.faker.Sentence(10),
	}
}

func (f *Factory) buildEducation() models.Education {
	from, to, current := f.dateRange()
	return models.Education{
		ID:           uuid.NewString(),
		School:       f.faker.Company() + " University",
		Degree:       f.faker.RandomString([]string{"BSc", "BA", "MSc", "MA", "PhD"}),
		FieldOfStudy: f.faker.RandomString([]string{"Computer Science", "Mathematics", "Physics", "Design", "Economics"}),
		From:         from,
		To:           to,
		Current:      current,
	}
}

// dateRange picks a start in the last ten years. Current entries have no end.
func (f *Factory) dateRange() (time.Time, *time.Time, bool) {
	now := f.now().UTC()
	from := f.faker.DateRange(now.AddDate(-10, 0, 0), now.AddDate(0, -1, 0)).Truncate(24 * time.Hour)
	if f.faker.Bool() {
		return from, nil, true
	}
	to := f.faker.DateRange(from, now).Truncate(24 * time.Hour)
	return from, &to, false
}

// BuildPost returns an unsaved post by author, dated within opts.MaxDays.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	post := &models.Post{
		ID:     uuid.NewString(),
		UserID: author.ID,
		Text:   f.postText(),
		Name:   author.Name,
		Avatar: author.Avatar,
		Date:   f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildComment returns a comment by author dated after the post.
func (f *Factory) BuildComment(author *models.User, post *models.Post) models.Comment {
	date := f.faker.DateRange(post.Date, f.now().UTC())
	return models.Comment{
		ID:     uuid.NewString(),
		Text:   truncate(f.faker.Sentence(f.faker.Number(3, 15)), 300),
		Name:   author.Name,
		Avatar: author.Avatar,
		User:   author.ID,
		Date:   date,
	}
}

// postText satisfies the 10..300 character rule for post bodies.
func (f *Factory) postText() string {
	text := f.faker.Paragraph(1, f.faker.Number(1, 3), 12, " ")
	for len(text) < 10 {
		text += " " + f.faker.HackerPhrase()
	}
	return truncate(text, 300)
}

func (f *Factory) pastTime() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	now := f.now().UTC()
	return f.faker.DateRange(now.AddDate(0, 0, -maxDays), now)
}

// slug lowercases s and keeps only letters and digits, capped at 20 runes.
func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "dev"
	}
	return truncate(b.String(), 20)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return strings.TrimSpace(string(r[:n]))
}
