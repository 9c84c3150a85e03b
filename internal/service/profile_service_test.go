package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"devconnector/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestSplitSkills(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"go", "rust"}, SplitSkills("go,rust"))
	assert.Equal(t, []string{"go", "rust"}, SplitSkills(" go , ,rust, "))
	assert.Empty(t, SplitSkills(" , ,"))
	assert.NotNil(t, SplitSkills(""))
}

func TestProfileService_Upsert_Validation(t *testing.T) {
	t.Parallel()

	svc := NewProfileService(newProfileRepoStub(), noopUserRepo())
	ctx := context.Background()

	tests := []struct {
		name  string
		in    UpsertProfileInput
		field string
		msg   string
	}{
		{"missing handle", UpsertProfileInput{Status: "Dev", Skills: "go"}, "handle", "Profile handle is required"},
		{"short handle", UpsertProfileInput{Handle: "a", Status: "Dev", Skills: "go"}, "handle", "Handle needs to between 2 and 40 characters"},
		{"long handle", UpsertProfileInput{Handle: strings.Repeat("h", 41), Status: "Dev", Skills: "go"}, "handle", "Handle needs to between 2 and 40 characters"},
		{"missing status", UpsertProfileInput{Handle: "alice", Skills: "go"}, "status", "Status field is required"},
		{"missing skills", UpsertProfileInput{Handle: "alice", Status: "Dev"}, "skills", "Skills field is required"},
		{"blank skills", UpsertProfileInput{Handle: "alice", Status: "Dev", Skills: " , "}, "skills", "Skills field is required"},
		{"bad website", UpsertProfileInput{Handle: "alice", Status: "Dev", Skills: "go", Website: strPtr("not a url")}, "website", "Not a valid URL"},
		{"bad twitter", UpsertProfileInput{Handle: "alice", Status: "Dev", Skills: "go", Twitter: strPtr("ftp://twitter.com/a")}, "twitter", "Not a valid URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Upsert(ctx, "u1", tt.in)
			assertValidationError(t, err, tt.field, tt.msg)
		})
	}
}

func TestProfileService_Upsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newProfileRepoStub()
	svc := NewProfileService(repo, noopUserRepo())

	created, err := svc.Upsert(ctx, "u1", UpsertProfileInput{
		Handle:  "alice",
		Status:  "Dev",
		Skills:  "go,rust",
		Company: strPtr("Acme"),
		Website: strPtr("https://alice.dev"),
		Twitter: strPtr("https://twitter.com/alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "rust"}, []string(created.Skills))
	assert.Equal(t, "Acme", created.Company)
	assert.Equal(t, "https://twitter.com/alice", created.Social.Twitter)

	updated, err := svc.Upsert(ctx, "u1", UpsertProfileInput{
		Handle:  "alice",
		Status:  "Senior Dev",
		Skills:  "python",
		Company: strPtr(""),
		Bio:     strPtr("hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Senior Dev", updated.Status)
	assert.Equal(t, []string{"python"}, []string(updated.Skills))
	assert.Equal(t, "hello", updated.Bio)
	assert.Equal(t, "Acme", updated.Company, "empty optional field keeps stored value")
	assert.Equal(t, "https://alice.dev", updated.Website, "absent optional field keeps stored value")
	assert.Equal(t, "https://twitter.com/alice", updated.Social.Twitter)
	assert.Len(t, repo.byUser, 1)
	assert.Equal(t, 1, repo.saves)
}

func TestProfileService_Upsert_HandleConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewProfileService(newProfileRepoStub(), noopUserRepo())

	_, err := svc.Upsert(ctx, "u1", UpsertProfileInput{Handle: "dev", Status: "Dev", Skills: "go"})
	require.NoError(t, err)

	_, err = svc.Upsert(ctx, "u2", UpsertProfileInput{Handle: "dev", Status: "Dev", Skills: "go"})
	appErr := requireAppError(t, err, models.CodeConflict)
	assert.Equal(t, "That handle already exists", appErr.Fields["handle"])

	// Keeping one's own handle is not a conflict.
	_, err = svc.Upsert(ctx, "u1", UpsertProfileInput{Handle: "dev", Status: "Lead", Skills: "go"})
	assert.NoError(t, err)
}

func TestProfileService_Lookups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newProfileRepoStub()
	svc := NewProfileService(repo, noopUserRepo())

	_, err := svc.GetOwn(ctx, "u1")
	assert.Equal(t, "No Profile Found for this user", requireAppError(t, err, models.CodeNotFound).Fields["noprofile"])
	_, err = svc.GetByHandle(ctx, "nobody")
	assert.Equal(t, "No Profile for this handle", requireAppError(t, err, models.CodeNotFound).Fields["noprofile"])
	_, err = svc.GetByUser(ctx, "u1")
	assert.Equal(t, "No Profile for this userID", requireAppError(t, err, models.CodeNotFound).Fields["noprofile"])

	list, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Upsert(ctx, "u1", UpsertProfileInput{Handle: "alice", Status: "Dev", Skills: "go"})
	require.NoError(t, err)

	p, err := svc.GetByHandle(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	p, err = svc.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Handle)
}

func TestProfileService_Experience(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newProfileRepoStub()
	svc := NewProfileService(repo, noopUserRepo())

	in := ExperienceInput{Title: "Engineer", Company: "Acme", From: "2018-01-01"}

	_, err := svc.AddExperience(ctx, "u1", in)
	assert.Equal(t, "No Profile Found for this user", requireAppError(t, err, models.CodeNotFound).Fields["noprofile"])

	_, err = svc.Upsert(ctx, "u1", UpsertProfileInput{Handle: "alice", Status: "Dev", Skills: "go"})
	require.NoError(t, err)

	t.Run("validation", func(t *testing.T) {
		_, err := svc.AddExperience(ctx, "u1", ExperienceInput{})
		appErr := requireAppError(t, err, models.CodeValidation)
		assert.Equal(t, "Job title field is required", appErr.Fields["title"])
		assert.Equal(t, "Company field is required", appErr.Fields["company"])
		assert.Equal(t, "From date field is required", appErr.Fields["from"])

		_, err = svc.AddExperience(ctx, "u1", ExperienceInput{Title: "x", Company: "y", From: "yesterday", To: "later"})
		appErr = requireAppError(t, err, models.CodeValidation)
		assert.Equal(t, "From date is invalid", appErr.Fields["from"])
		assert.Equal(t, "To date is invalid", appErr.Fields["to"])
	})

	first, err := svc.AddExperience(ctx, "u1", in)
	require.NoError(t, err)
	require.Len(t, first.Experience, 1)

	second, err := svc.AddExperience(ctx, "u1", ExperienceInput{Title: "Lead", Company: "Beta", From: "2020-02-01", To: "2021-01-01", Current: true})
	require.NoError(t, err)
	require.Len(t, second.Experience, 2)
	assert.Equal(t, "Lead", second.Experience[0].Title, "new entries go first")
	assert.Nil(t, second.Experience[0].To, "current entries drop the end date")

	_, err = svc.RemoveExperience(ctx, "u1", "unknown-id")
	assert.Equal(t, "No experience Record found with that ID", requireAppError(t, err, models.CodeNotFound).Fields["delete"])

	after, err := svc.RemoveExperience(ctx, "u1", second.Experience[1].ID)
	require.NoError(t, err)
	require.Len(t, after.Experience, 1)
	assert.Equal(t, "Lead", after.Experience[0].Title)
}

func TestProfileService_Education(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := NewProfileService(newProfileRepoStub(), noopUserRepo())

	_, err := svc.Upsert(ctx, "u1", UpsertProfileInput{Handle: "alice", Status: "Dev", Skills: "go"})
	require.NoError(t, err)

	_, err = svc.AddEducation(ctx, "u1", EducationInput{From: "2010-09-01"})
	appErr := requireAppError(t, err, models.CodeValidation)
	assert.Equal(t, "School field is required", appErr.Fields["school"])
	assert.Equal(t, "Degree field is required", appErr.Fields["degree"])
	assert.Equal(t, "Field of study field is required", appErr.Fields["fieldofstudy"])

	p, err := svc.AddEducation(ctx, "u1", EducationInput{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01T00:00:00Z"})
	require.NoError(t, err)
	require.Len(t, p.Education, 1)
	assert.Equal(t, 2010, p.Education[0].From.Year())

	_, err = svc.RemoveEducation(ctx, "u1", "nope")
	assert.Equal(t, "No education Record found with that ID", requireAppError(t, err, models.CodeNotFound).Fields["delete"])

	p, err = svc.RemoveEducation(ctx, "u1", p.Education[0].ID)
	require.NoError(t, err)
	assert.Empty(t, p.Education)
}

func TestProfileService_DeleteAccount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newProfileRepoStub()
	var order []string
	users := noopUserRepo()
	users.deleteFn = func(_ context.Context, id string) error {
		_, stillThere := repo.byUser[id]
		assert.False(t, stillThere, "profile is removed before the user")
		order = append(order, "user:"+id)
		return nil
	}
	svc := NewProfileService(repo, users)

	_, err := svc.Upsert(ctx, "u1", UpsertProfileInput{Handle: "alice", Status: "Dev", Skills: "go"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, "u1"))
	assert.Equal(t, []string{"user:u1"}, order)

	users.deleteFn = func(_ context.Context, _ string) error { return models.NewInternalError(errors.New("db down")) }
	requireAppError(t, svc.DeleteAccount(ctx, "u1"), models.CodeInternal)
}
