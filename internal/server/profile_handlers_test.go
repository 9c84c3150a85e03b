package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"devconnector/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExampleFlow walks register, login, profile upsert and a missing
// experience delete end to end.
func TestExampleFlow(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.do(t, http.MethodPost, "/api/users/register", "", map[string]string{
		"name": "Alice", "email": "a@x.com", "password": "pw123456", "password2": "pw123456",
	})
	require.Equal(t, http.StatusOK, status)

	status, login := env.doMap(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "pw123456",
	})
	require.Equal(t, http.StatusOK, status)
	token := login["token"].(string)

	status, profile := env.doMap(t, http.MethodPost, "/api/profile", token, map[string]string{
		"handle": "alice", "status": "Dev", "skills": "go,rust",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"go", "rust"}, profile["skills"])

	status, body := env.doMap(t, http.MethodDelete, "/api/profile/experience/unknown-id", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, map[string]any{"delete": "No experience Record found with that ID"}, body)
}

func TestProfileLookups(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "Alice", "a@x.com")

	status, body := env.doMap(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, map[string]any{"noprofile": "No Profile Found for this user"}, body)

	status, raw := env.do(t, http.MethodGet, "/api/profile/all", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))

	status, body = env.doMap(t, http.MethodGet, "/api/profile/handle/alice", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, map[string]any{"noprofile": "No Profile for this handle"}, body)

	status, body = env.doMap(t, http.MethodGet, "/api/profile/user/nobody", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, map[string]any{"noprofile": "No Profile for this userID"}, body)

	status, created := env.doMap(t, http.MethodPost, "/api/profile", token, map[string]string{
		"handle": "alice", "status": "Dev", "skills": "go", "twitter": "https://twitter.com/alice",
	})
	require.Equal(t, http.StatusOK, status)
	owner := created["user"].(map[string]any)
	assert.Equal(t, "Alice", owner["name"])
	assert.NotContains(t, owner, "email")
	assert.Equal(t, "https://twitter.com/alice", created["social"].(map[string]any)["twitter"])

	status, body = env.doMap(t, http.MethodGet, "/api/profile/handle/alice", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, created["id"], body["id"])

	status, body = env.doMap(t, http.MethodGet, "/api/profile/user/"+owner["id"].(string), "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "alice", body["handle"])

	status, raw = env.do(t, http.MethodGet, "/api/profile/all?limit=10", "", nil)
	assert.Equal(t, http.StatusOK, status)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(raw, &all))
	require.Len(t, all, 1)
	assert.Equal(t, "alice", all[0]["handle"])
}

func TestUpsertProfile(t *testing.T) {
	env := newTestEnv(t)
	alice := env.registerAndLogin(t, "Alice", "a@x.com")
	bob := env.registerAndLogin(t, "Bob", "b@x.com")

	status, body := env.doMap(t, http.MethodPost, "/api/profile", alice, map[string]string{
		"handle": "a", "website": "nope",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{
		"handle":  "Handle needs to between 2 and 40 characters",
		"status":  "Status field is required",
		"skills":  "Skills field is required",
		"website": "Not a valid URL",
	}, body)

	status, first := env.doMap(t, http.MethodPost, "/api/profile", alice, map[string]string{
		"handle": "alice", "status": "Dev", "skills": "go, rust", "company": "Acme", "bio": "hi",
	})
	require.Equal(t, http.StatusOK, status)

	status, second := env.doMap(t, http.MethodPost, "/api/profile", alice, map[string]string{
		"handle": "alice", "status": "Lead", "skills": "python", "bio": "",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, first["id"], second["id"], "upsert updates in place")
	assert.Equal(t, "Lead", second["status"])
	assert.Equal(t, []any{"python"}, second["skills"])
	assert.Equal(t, "Acme", second["company"])
	assert.Equal(t, "hi", second["bio"])

	status, body = env.doMap(t, http.MethodPost, "/api/profile", bob, map[string]string{
		"handle": "alice", "status": "Dev", "skills": "go",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, map[string]any{"handle": "That handle already exists"}, body)

	status, raw := env.do(t, http.MethodGet, "/api/profile/all", "", nil)
	require.Equal(t, http.StatusOK, status)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(raw, &all))
	assert.Len(t, all, 1)
}

func TestProfileEntries(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "Alice", "a@x.com")

	exp := map[string]any{"title": "Engineer", "company": "Acme", "from": "2018-01-01"}
	status, body := env.doMap(t, http.MethodPost, "/api/profile/experience", token, exp)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, map[string]any{"noprofile": "No Profile Found for this user"}, body)

	status, _ = env.do(t, http.MethodPost, "/api/profile", token, map[string]string{
		"handle": "alice", "status": "Dev", "skills": "go",
	})
	require.Equal(t, http.StatusOK, status)

	status, body = env.doMap(t, http.MethodPost, "/api/profile/experience", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Job title field is required", body["title"])

	status, _ = env.do(t, http.MethodPost, "/api/profile/experience", token, exp)
	require.Equal(t, http.StatusOK, status)
	status, profile := env.doMap(t, http.MethodPost, "/api/profile/experience", token, map[string]any{
		"title": "Lead", "company": "Beta", "from": "2020-01-01", "current": true,
	})
	require.Equal(t, http.StatusOK, status)
	entries := profile["experience"].([]any)
	require.Len(t, entries, 2)
	newest := entries[0].(map[string]any)
	assert.Equal(t, "Lead", newest["title"])

	status, profile = env.doMap(t, http.MethodDelete, "/api/profile/experience/"+newest["id"].(string), token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, profile["experience"], 1)
	assert.Equal(t, "Engineer", profile["experience"].([]any)[0].(map[string]any)["title"])

	status, profile = env.doMap(t, http.MethodPost, "/api/profile/education", token, map[string]any{
		"school": "MIT", "degree": "BSc", "fieldofstudy": "CS", "from": "2010-09-01",
	})
	require.Equal(t, http.StatusOK, status)
	edu := profile["education"].([]any)
	require.Len(t, edu, 1)
	eduID := edu[0].(map[string]any)["id"].(string)

	status, body = env.doMap(t, http.MethodDelete, "/api/profile/education/nope", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, map[string]any{"delete": "No education Record found with that ID"}, body)

	status, profile = env.doMap(t, http.MethodDelete, "/api/profile/education/"+eduID, token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, profile["education"])
}

func TestDeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "Alice", "a@x.com")

	status, _ := env.do(t, http.MethodPost, "/api/profile", token, map[string]string{
		"handle": "alice", "status": "Dev", "skills": "go",
	})
	require.Equal(t, http.StatusOK, status)

	status, body := env.doMap(t, http.MethodDelete, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, _ = env.do(t, http.MethodGet, "/api/profile/handle/alice", "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.doMap(t, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": "a@x.com", "password": "pw123456",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "User not found", body["email"])

	status, _ = env.do(t, http.MethodGet, "/api/users/current", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestDeleteAccount_WithoutRedis(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	srv, err := NewServerWithDeps(testConfig(), testutil.NewSQLiteDB(t), nil)
	require.NoError(t, err)
	env := &testEnv{srv: srv, app: srv.App()}
	token := env.registerAndLogin(t, "Alice", "a@x.com")

	status, _ := env.do(t, http.MethodPost, "/api/profile", token, map[string]string{
		"handle": "alice", "status": "Dev", "skills": "go",
	})
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(t, http.MethodDelete, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, status)

	// Nothing revoked the token; the account lookup still shuts it out.
	status, _ = env.do(t, http.MethodPost, "/api/posts", token, map[string]string{"text": "posting from beyond the grave"})
	assert.Equal(t, http.StatusUnauthorized, status)
	status, _ = env.do(t, http.MethodPost, "/api/profile", token, map[string]string{
		"handle": "alice2", "status": "Dev", "skills": "go",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw := env.do(t, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	var posts []map[string]any
	require.NoError(t, json.Unmarshal(raw, &posts))
	assert.Empty(t, posts)
}

func TestDeleteAccount_RevocationFailure(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "Alice", "a@x.com")

	env.mr.SetError("READONLY redis down")
	t.Cleanup(func() { env.mr.SetError("") })

	status, body := env.doMap(t, http.MethodDelete, "/api/profile", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	status, _ = env.do(t, http.MethodGet, "/api/users/current", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
