package service

import (
	"context"
	"strings"
	"time"

	"devconnector/internal/models"
	"devconnector/internal/repository"
	"devconnector/internal/validation"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProfileService struct {
	profiles repository.ProfileRepository
	users    repository.UserRepository
}

// UpsertProfileInput carries the profile form. Optional fields are pointers
// so an update can tell "not sent" from "sent empty"; both keep the stored value.
type UpsertProfileInput struct {
	Handle         string  `json:"handle" form:"handle"`
	Status         string  `json:"status" form:"status"`
	Skills         string  `json:"skills" form:"skills"`
	Company        *string `json:"company" form:"company"`
	Website        *string `json:"website" form:"website"`
	Location       *string `json:"location" form:"location"`
	Bio            *string `json:"bio" form:"bio"`
	GithubUsername *string `json:"githubusername" form:"githubusername"`
	YouTube        *string `json:"youtube" form:"youtube"`
	Twitter        *string `json:"twitter" form:"twitter"`
	LinkedIn       *string `json:"linkedin" form:"linkedin"`
	Instagram      *string `json:"instagram" form:"instagram"`
	Facebook       *string `json:"facebook" form:"facebook"`
}

type ExperienceInput struct {
	Title       string `json:"title" form:"title"`
	Company     string `json:"company" form:"company"`
	Location    string `json:"location" form:"location"`
	From        string `json:"from" form:"from"`
	To          string `json:"to" form:"to"`
	Current     bool   `json:"current" form:"current"`
	Description string `json:"description" form:"description"`
}

type EducationInput struct {
	School       string `json:"school" form:"school"`
	Degree       string `json:"degree" form:"degree"`
	FieldOfStudy string `json:"fieldofstudy" form:"fieldofstudy"`
	From         string `json:"from" form:"from"`
	To           string `json:"to" form:"to"`
	Current      bool   `json:"current" form:"current"`
	Description  string `json:"description" form:"description"`
}

func NewProfileService(profiles repository.ProfileRepository, users repository.UserRepository) *ProfileService {
	return &ProfileService{profiles: profiles, users: users}
}

// SplitSkills splits a comma separated list, trimming entries and dropping empties.
func SplitSkills(raw string) []string {
	skills := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func (in UpsertProfileInput) validate() error {
	var f validation.Fields
	f.Required("handle", in.Handle, "Profile handle is required")
	f.Length("handle", strings.TrimSpace(in.Handle), 2, 40, "Handle needs to between 2 and 40 characters")
	f.Required("status", in.Status, "Status field is required")
	f.Check(len(SplitSkills(in.Skills)) > 0, "skills", "Skills field is required")
	f.URL("website", deref(in.Website), "Not a valid URL")
	f.URL("youtube", deref(in.YouTube), "Not a valid URL")
	f.URL("twitter", deref(in.Twitter), "Not a valid URL")
	f.URL("facebook", deref(in.Facebook), "Not a valid URL")
	f.URL("linkedin", deref(in.LinkedIn), "Not a valid URL")
	f.URL("instagram", deref(in.Instagram), "Not a valid URL")
	return f.Err()
}

// apply copies the sent fields onto p. Empty optional fields are skipped.
func (in UpsertProfileInput) apply(p *models.Profile) {
	set := func(dst *string, src *string) {
		if v := deref(src); v != "" {
			*dst = v
		}
	}

	p.Handle = strings.TrimSpace(in.Handle)
	p.Status = strings.TrimSpace(in.Status)
	p.Skills = datatypes.JSONSlice[string](SplitSkills(in.Skills))
	set(&p.Company, in.Company)
	set(&p.Website, in.Website)
	set(&p.Location, in.Location)
	set(&p.Bio, in.Bio)
	set(&p.GithubUsername, in.GithubUsername)
	set(&p.Social.YouTube, in.YouTube)
	set(&p.Social.Twitter, in.Twitter)
	set(&p.Social.LinkedIn, in.LinkedIn)
	set(&p.Social.Instagram, in.Instagram)
	set(&p.Social.Facebook, in.Facebook)
}

// dateRange validates from/to for an embedded entry. A current entry has no end date.
func dateRange(f *validation.Fields, from, to string, current bool) (time.Time, *time.Time) {
	f.Required("from", from, "From date field is required")
	start := f.Date("from", from, "From date is invalid")
	end := f.Date("to", to, "To date is invalid")
	if start == nil {
		return time.Time{}, nil
	}
	if current {
		end = nil
	}
	return *start, end
}

func (in ExperienceInput) entry() (models.Experience, error) {
	var f validation.Fields
	f.Required("title", in.Title, "Job title field is required")
	f.Required("company", in.Company, "Company field is required")
	from, to := dateRange(&f, in.From, in.To, in.Current)
	if err := f.Err(); err != nil {
		return models.Experience{}, err
	}
	return models.Experience{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(in.Title),
		Company:     strings.TrimSpace(in.Company),
		Location:    strings.TrimSpace(in.Location),
		From:        from,
		To:          to,
		Current:     in.Current,
		Description: strings.TrimSpace(in.Description),
	}, nil
}

func (in EducationInput) entry() (models.Education, error) {
	var f validation.Fields
	f.Required("school", in.School, "School field is required")
	f.Required("degree", in.Degree, "Degree field is required")
	f.Required("fieldofstudy", in.FieldOfStudy, "Field of study field is required")
	from, to := dateRange(&f, in.From, in.To, in.Current)
	if err := f.Err(); err != nil {
		return models.Education{}, err
	}
	return models.Education{
		ID:           uuid.NewString(),
		School:       strings.TrimSpace(in.School),
		Degree:       strings.TrimSpace(in.Degree),
		FieldOfStudy: strings.TrimSpace(in.FieldOfStudy),
		From:         from,
		To:           to,
		Current:      in.Current,
		Description:  strings.TrimSpace(in.Description),
	}, nil
}

// own loads the principal's profile, mapping absence to the noprofile error.
func (s *ProfileService) own(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewFieldNotFoundError("noprofile", "No Profile Found for this user")
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetOwn(ctx context.Context, userID string) (*models.Profile, error) {
	return s.own(ctx, userID)
}

func (s *ProfileService) GetByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	profile, err := s.profiles.GetByHandle(ctx, handle)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewFieldNotFoundError("noprofile", "No Profile for this handle")
		}
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, models.NewFieldNotFoundError("noprofile", "No Profile for this userID")
		}
		return nil, err
	}
	return profile, nil
}

// List returns profiles oldest first. An empty result is not an error.
func (s *ProfileService) List(ctx context.Context, limit, offset int) ([]*models.Profile, error) {
	return s.profiles.List(ctx, limit, offset)
}

// Upsert creates the principal's profile or updates it in place.
func (s *ProfileService) Upsert(ctx context.Context, userID string, in UpsertProfileInput) (*models.Profile, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	handle := strings.TrimSpace(in.Handle)
	taken, err := s.profiles.GetByHandle(ctx, handle)
	if err != nil && !models.HasCode(err, models.CodeNotFound) {
		return nil, err
	}
	if taken != nil && taken.UserID != userID {
		return nil, models.NewConflictError("handle", "That handle already exists")
	}

	profile, err := s.profiles.GetByUserID(ctx, userID)
	switch {
	case models.HasCode(err, models.CodeNotFound):
		profile = &models.Profile{UserID: userID}
		in.apply(profile)
		if err := s.profiles.Create(ctx, profile); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		in.apply(profile)
		if err := s.profiles.Save(ctx, profile); err != nil {
			return nil, err
		}
	}

	return s.profiles.GetByUserID(ctx, userID)
}

func (s *ProfileService) AddExperience(ctx context.Context, userID string, in ExperienceInput) (*models.Profile, error) {
	exp, err := in.entry()
	if err != nil {
		return nil, err
	}
	profile, err := s.own(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Experience = models.Prepend(profile.Experience, exp)
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) RemoveExperience(ctx context.Context, userID, expID string) (*models.Profile, error) {
	profile, err := s.own(ctx, userID)
	if err != nil {
		return nil, err
	}
	rest, ok := models.RemoveByID(profile.Experience, expID)
	if !ok {
		return nil, models.NewFieldNotFoundError("delete", "No experience Record found with that ID")
	}
	profile.Experience = rest
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) AddEducation(ctx context.Context, userID string, in EducationInput) (*models.Profile, error) {
	edu, err := in.entry()
	if err != nil {
		return nil, err
	}
	profile, err := s.own(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile.Education = models.Prepend(profile.Education, edu)
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *ProfileService) RemoveEducation(ctx context.Context, userID, eduID string) (*models.Profile, error) {
	profile, err := s.own(ctx, userID)
	if err != nil {
		return nil, err
	}
	rest, ok := models.RemoveByID(profile.Education, eduID)
	if !ok {
		return nil, models.NewFieldNotFoundError("delete", "No education Record found with that ID")
	}
	profile.Education = rest
	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// DeleteAccount removes the principal's profile and then the account itself.
// The two deletes are not atomic; a failure in between leaves a user without
// a profile, which is a valid state.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.profiles.DeleteByUserID(ctx, userID); err != nil {
		return err
	}
	return s.users.Delete(ctx, userID)
}
