package client

import (
	"context"
	"net/http"
	"net/url"

	"devconnector/internal/models"
)

// MyProfile returns the profile of the token's owner.
func (c *Client) MyProfile(ctx context.Context, token string) (*models.Profile, error) {
	return c.profile(ctx, http.MethodGet, "/profile", token, nil)
}

// Profiles lists every profile.
func (c *Client) Profiles(ctx context.Context, page Page) ([]models.Profile, error) {
	var out []models.Profile
	if err := c.do(ctx, http.MethodGet, "/profile/all", "", page.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ProfileByHandle looks a profile up by its handle.
func (c *Client) ProfileByHandle(ctx context.Context, handle string) (*models.Profile, error) {
	return c.profile(ctx, http.MethodGet, "/profile/handle/"+url.PathEscape(handle), "", nil)
}

// ProfileByUser looks a profile up by its owner's id.
func (c *Client) ProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	return c.profile(ctx, http.MethodGet, "/profile/user/"+url.PathEscape(userID), "", nil)
}

// UpsertProfile creates or updates the caller's profile. Nil optional
// fields are left unchanged.
func (c *Client) UpsertProfile(ctx context.Context, token string, in ProfileInput) (*models.Profile, error) {
	return c.profile(ctx, http.MethodPost, "/profile", token, in)
}

func (c *Client) AddExperience(ctx context.Context, token string, in ExperienceInput) (*models.Profile, error) {
	return c.profile(ctx, http.MethodPost, "/profile/experience", token, in)
}

func (c *Client) RemoveExperience(ctx context.Context, token, id string) (*models.Profile, error) {
	return c.profile(ctx, http.MethodDelete, "/profile/experience/"+url.PathEscape(id), token, nil)
}

func (c *Client) AddEducation(ctx context.Context, token string, in EducationInput) (*models.Profile, error) {
	return c.profile(ctx, http.MethodPost, "/profile/education", token, in)
}

func (c *Client) RemoveEducation(ctx context.Context, token, id string) (*models.Profile, error) {
	return c.profile(ctx, http.MethodDelete, "/profile/education/"+url.PathEscape(id), token, nil)
}

// DeleteAccount removes the caller's profile and account.
func (c *Client) DeleteAccount(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodDelete, "/profile", token, nil, nil, nil)
}

func (c *Client) profile(ctx context.Context, method, path, token string, body any) (*models.Profile, error) {
	var p models.Profile
	if err := c.do(ctx, method, path, token, nil, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
