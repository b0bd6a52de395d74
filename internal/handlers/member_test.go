package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/database"
	"github.com/sprintr-app/sprintr-api/internal/dto"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/repository"
)

// MemberHandlerTestSuite defines the test suite for MemberHandler
type MemberHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *MemberHandler
}

// SetupTest runs before each test
func (suite *MemberHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.handler = NewMemberHandler(repository.NewMemberRepository(suite.db))

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *MemberHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *MemberHandlerTestSuite) createTestUser(email, name string) *models.User {
	user := &models.User{
		Email:        email,
		FullName:     name,
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *MemberHandlerTestSuite) createTestWorkspace(name, ownerUserID string) *models.Workspace {
	workspace := &models.Workspace{
		Name:       name,
		UserID:     ownerUserID,
		InviteCode: name + "_CODE",
	}
	suite.db.Create(workspace)
	return workspace
}

func (suite *MemberHandlerTestSuite) createTestMember(workspaceID, userID string, role models.MemberRole) *models.Member {
	member := &models.Member{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	suite.db.Create(member)
	return member
}

func (suite *MemberHandlerTestSuite) memberContext(method, path string, body []byte, userID string, actor models.Member, targetMemberID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", userID)
	c.Set("member", actor)
	if targetMemberID != "" {
		c.Params = gin.Params{{Key: "memberId", Value: targetMemberID}}
	}

	return c, w
}

// TestListMembers verifies members come back with their identities
func (suite *MemberHandlerTestSuite) TestListMembers() {
	owner := suite.createTestUser("owner@example.com", "Owner One")
	other := suite.createTestUser("other@example.com", "Other Two")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	ownerMember := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	suite.createTestMember(workspace.ID, other.ID, models.RoleMember)

	c, w := suite.memberContext("GET", "/api/workspaces/"+workspace.ID+"/members", nil, owner.ID, *ownerMember, "")

	suite.handler.ListMembers(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var response struct {
		Members []dto.MemberDTO `json:"members"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Members, 2)

	byEmail := map[string]dto.MemberDTO{}
	for _, m := range response.Members {
		byEmail[m.Email] = m
	}
	assert.Equal(suite.T(), "Owner One", byEmail["owner@example.com"].Name)
	assert.Equal(suite.T(), models.RoleMember, byEmail["other@example.com"].Role)
}

// TestUpdateMemberRole_OwnerPromotes verifies the owner can promote
func (suite *MemberHandlerTestSuite) TestUpdateMemberRole_OwnerPromotes() {
	owner := suite.createTestUser("owner@example.com", "Owner")
	other := suite.createTestUser("other@example.com", "Other")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	ownerMember := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	otherMember := suite.createTestMember(workspace.ID, other.ID, models.RoleMember)

	body, err := json.Marshal(map[string]string{"role": "ADMIN"})
	suite.Require().NoError(err)

	c, w := suite.memberContext("PATCH", "/members/"+otherMember.ID, body, owner.ID, *ownerMember, otherMember.ID)

	suite.handler.UpdateMemberRole(c)

	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var reloaded models.Member
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", otherMember.ID).Error)
	assert.Equal(suite.T(), models.RoleAdmin, reloaded.Role)
}

// TestUpdateMemberRole_NotOwner verifies non-owners cannot change roles
func (suite *MemberHandlerTestSuite) TestUpdateMemberRole_NotOwner() {
	owner := suite.createTestUser("owner@example.com", "Owner")
	admin := suite.createTestUser("admin@example.com", "Admin")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	ownerMember := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	adminMember := suite.createTestMember(workspace.ID, admin.ID, models.RoleAdmin)

	body, err := json.Marshal(map[string]string{"role": "MEMBER"})
	suite.Require().NoError(err)

	c, w := suite.memberContext("PATCH", "/members/"+ownerMember.ID, body, admin.ID, *adminMember, ownerMember.ID)

	suite.handler.UpdateMemberRole(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestUpdateMemberRole_OnlyMember verifies the last member cannot be
// downgraded
func (suite *MemberHandlerTestSuite) TestUpdateMemberRole_OnlyMember() {
	owner := suite.createTestUser("owner@example.com", "Owner")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	ownerMember := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)

	body, err := json.Marshal(map[string]string{"role": "MEMBER"})
	suite.Require().NoError(err)

	c, w := suite.memberContext("PATCH", "/members/"+ownerMember.ID, body, owner.ID, *ownerMember, ownerMember.ID)

	suite.handler.UpdateMemberRole(c)

	suite.Require().Equal(http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Cannot downgrade the only member.")
}

// TestUpdateMemberRole_Owner verifies the owner's role is immutable
func (suite *MemberHandlerTestSuite) TestUpdateMemberRole_Owner() {
	owner := suite.createTestUser("owner@example.com", "Owner")
	other := suite.createTestUser("other@example.com", "Other")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	ownerMember := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	suite.createTestMember(workspace.ID, other.ID, models.RoleMember)

	body, err := json.Marshal(map[string]string{"role": "MEMBER"})
	suite.Require().NoError(err)

	c, w := suite.memberContext("PATCH", "/members/"+ownerMember.ID, body, owner.ID, *ownerMember, ownerMember.ID)

	suite.handler.UpdateMemberRole(c)

	suite.Require().Equal(http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Cannot change the owner role.")
}

// TestRemoveMember_OnlyMember verifies the last member cannot be removed
func (suite *MemberHandlerTestSuite) TestRemoveMember_OnlyMember() {
	owner := suite.createTestUser("owner@example.com", "Owner")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	ownerMember := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)

	c, w := suite.memberContext("DELETE", "/members/"+ownerMember.ID, nil, owner.ID, *ownerMember, ownerMember.ID)

	suite.handler.RemoveMember(c)

	suite.Require().Equal(http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Cannot delete the only member.")
}

// TestRemoveMember_Owner verifies the owner cannot be removed
func (suite *MemberHandlerTestSuite) TestRemoveMember_Owner() {
	owner := suite.createTestUser("owner@example.com", "Owner")
	admin := suite.createTestUser("admin@example.com", "Admin")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	ownerMember := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	adminMember := suite.createTestMember(workspace.ID, admin.ID, models.RoleAdmin)

	c, w := suite.memberContext("DELETE", "/members/"+ownerMember.ID, nil, admin.ID, *adminMember, ownerMember.ID)

	suite.handler.RemoveMember(c)

	suite.Require().Equal(http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Cannot remove the workspace owner.")
}

// TestRemoveMember_AdminRemovesMember verifies admins can remove regular
// members
func (suite *MemberHandlerTestSuite) TestRemoveMember_AdminRemovesMember() {
	owner := suite.createTestUser("owner@example.com", "Owner")
	admin := suite.createTestUser("admin@example.com", "Admin")
	target := suite.createTestUser("target@example.com", "Target")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	adminMember := suite.createTestMember(workspace.ID, admin.ID, models.RoleAdmin)
	targetMember := suite.createTestMember(workspace.ID, target.ID, models.RoleMember)

	c, w := suite.memberContext("DELETE", "/members/"+targetMember.ID, nil, admin.ID, *adminMember, targetMember.ID)

	suite.handler.RemoveMember(c)

	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var count int64
	suite.db.Model(&models.Member{}).Where("id = ?", targetMember.ID).Count(&count)
	assert.Equal(suite.T(), int64(0), count)
}

// TestRemoveMember_AdminCannotRemoveAdmin verifies only the owner may
// remove another admin
func (suite *MemberHandlerTestSuite) TestRemoveMember_AdminCannotRemoveAdmin() {
	owner := suite.createTestUser("owner@example.com", "Owner")
	admin := suite.createTestUser("admin@example.com", "Admin")
	peer := suite.createTestUser("peer@example.com", "Peer")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	adminMember := suite.createTestMember(workspace.ID, admin.ID, models.RoleAdmin)
	peerMember := suite.createTestMember(workspace.ID, peer.ID, models.RoleAdmin)

	c, w := suite.memberContext("DELETE", "/members/"+peerMember.ID, nil, admin.ID, *adminMember, peerMember.ID)

	suite.handler.RemoveMember(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestMemberHandlerTestSuite runs the test suite
func TestMemberHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(MemberHandlerTestSuite))
}
