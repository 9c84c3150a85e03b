package client

import (
	"context"
	"net/http"
	"net/url"

	"devconnector/internal/models"
)

// Posts lists posts newest first.
func (c *Client) Posts(ctx context.Context, page Page) ([]models.Post, error) {
	var out []models.Post
	if err := c.do(ctx, http.MethodGet, "/posts", "", page.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Post(ctx context.Context, id string) (*models.Post, error) {
	return c.post(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), "", nil)
}

// CreatePost publishes a post. Empty Name and Avatar default to the caller's.
func (c *Client) CreatePost(ctx context.Context, token string, in PostInput) (*models.Post, error) {
	return c.post(ctx, http.MethodPost, "/posts", token, in)
}

// DeletePost removes a post owned by the caller.
func (c *Client) DeletePost(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), token, nil, nil, nil)
}

func (c *Client) Like(ctx context.Context, token, postID string) (*models.Post, error) {
	return c.post(ctx, http.MethodPost, "/posts/like/"+url.PathEscape(postID), token, nil)
}

func (c *Client) Unlike(ctx context.Context, token, postID string) (*models.Post, error) {
	return c.post(ctx, http.MethodPost, "/posts/unlike/"+url.PathEscape(postID), token, nil)
}

func (c *Client) AddComment(ctx context.Context, token, postID string, in PostInput) (*models.Post, error) {
	return c.post(ctx, http.MethodPost, "/posts/comment/"+url.PathEscape(postID), token, in)
}

func (c *Client) RemoveComment(ctx context.Context, token, postID, commentID string) (*models.Post, error) {
	path := "/posts/comment/" + url.PathEscape(postID) + "/" + url.PathEscape(commentID)
	return c.post(ctx, http.MethodDelete, path, token, nil)
}

func (c *Client) post(ctx context.Context, method, path, token string, body any) (*models.Post, error) {
	var p models.Post
	if err := c.do(ctx, method, path, token, nil, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
