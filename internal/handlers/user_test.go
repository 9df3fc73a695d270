package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/policy"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/services"
)

func TestUserHandler_SearchUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	handler := NewUserHandler(services.NewUserService(repository.NewUserRepository(db)))

	caller := createTestUser(t, db, "caller")
	createTestUser(t, db, "Alice123")

	params := gin.Params{{Key: "search", Value: "alice"}, {Key: "onlyUsername", Value: "true"}}
	c, w := authContext(http.MethodGet, "/api/users/search/alice/true", nil, caller, params)
	handler.SearchUsers(c)

	require.Equal(t, http.StatusOK, w.Code)
	users := decodeJSON(t, w)["users"].([]interface{})
	require.Len(t, users, 1)
	found := users[0].(map[string]interface{})
	require.Equal(t, "Alice123", found["username"])
	require.NotContains(t, found, "email")

	params = gin.Params{{Key: "search", Value: "alice"}, {Key: "onlyUsername", Value: "maybe"}}
	c, w = authContext(http.MethodGet, "/api/users/search/alice/maybe", nil, caller, params)
	handler.SearchUsers(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_ProfileAndRename(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	handler := NewUserHandler(services.NewUserService(repository.NewUserRepository(db)))

	alice := createTestUser(t, db, "alice")
	createTestUser(t, db, "bob")

	c, w := authContext(http.MethodGet, "/api/users", nil, alice, nil)
	handler.GetProfile(c)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decodeJSON(t, w)["user"].(map[string]interface{})
	require.Equal(t, "alice", profile["username"])
	require.Len(t, profile["createdAt"], len("2006-01-02"))

	c, w = authContext(http.MethodPatch, "/api/users/update/username", map[string]string{"username": "bob"}, alice, nil)
	handler.UpdateUsername(c)
	require.Equal(t, http.StatusConflict, w.Code)

	c, w = authContext(http.MethodPatch, "/api/users/update/username", map[string]string{"username": "alicia"}, alice, nil)
	handler.UpdateUsername(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestMemberHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := openTestDB(t)
	projectRepo := repository.NewProjectRepository(db)
	userRepo := repository.NewUserRepository(db)
	handler := NewMemberHandler(services.NewMemberService(projectRepo, userRepo, policy.NewEvaluator(projectRepo)))

	owner := createTestUser(t, db, "owner")
	bob := createTestUser(t, db, "bob")
	createTestProject(t, db, "alpha", owner, true)

	c, w := authContext(http.MethodPost, "/api/members/add/alpha", map[string]string{"userId": bob.ID}, owner, projectParam("alpha"))
	handler.AddMember(c)
	require.Equal(t, http.StatusCreated, w.Code)

	c, w = authContext(http.MethodPost, "/api/members/add/alpha", map[string]string{"userId": bob.ID}, owner, projectParam("alpha"))
	handler.AddMember(c)
	require.Equal(t, http.StatusConflict, w.Code)

	c, w = authContext(http.MethodGet, "/api/members/alpha", nil, owner, projectParam("alpha"))
	handler.ListMembers(c)
	require.Equal(t, http.StatusOK, w.Code)
	members := decodeJSON(t, w)["members"].([]interface{})
	require.Len(t, members, 2)
	last := members[1].(map[string]interface{})
	require.Equal(t, true, last["isOwner"])

	c, w = authContext(http.MethodGet, "/api/members/alpha", nil, bob, projectParam("alpha"))
	handler.ListMembers(c)
	require.Equal(t, http.StatusForbidden, w.Code)

	params := gin.Params{{Key: "projectname", Value: "alpha"}, {Key: "userid", Value: bob.ID}}
	c, w = authContext(http.MethodDelete, "/api/members/remove/alpha/"+bob.ID, nil, owner, params)
	handler.RemoveMember(c)
	require.Equal(t, http.StatusOK, w.Code)
}
