package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/sprintr-app/sprintr-api/internal/database"
	"github.com/sprintr-app/sprintr-api/internal/dto"
	"github.com/sprintr-app/sprintr-api/internal/models"
)

// WorkspaceHandlerTestSuite defines the test suite for WorkspaceHandler
type WorkspaceHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *WorkspaceHandler
}

// SetupTest runs before each test
func (suite *WorkspaceHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
		&models.Project{},
		&models.Task{},
		&models.TaskComment{},
		&models.TaskHistory{},
		&models.Notification{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	// No object storage in tests
	suite.handler = NewWorkspaceHandler(nil)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *WorkspaceHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *WorkspaceHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *WorkspaceHandlerTestSuite) createTestWorkspace(name, ownerUserID string) *models.Workspace {
	workspace := &models.Workspace{
		Name:       name,
		UserID:     ownerUserID,
		InviteCode: name + "_CODE",
	}
	suite.db.Create(workspace)
	return workspace
}

func (suite *WorkspaceHandlerTestSuite) createTestMember(workspaceID, userID string, role models.MemberRole) *models.Member {
	member := &models.Member{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        role,
	}
	suite.db.Create(member)
	return member
}

func (suite *WorkspaceHandlerTestSuite) createAuthContext(method, path string, body []byte, userID string) (*gin.Context, *httptest.ResponseRecorder) {
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

	return c, w
}

// TestCreateWorkspace verifies the creator becomes an admin member
func (suite *WorkspaceHandlerTestSuite) TestCreateWorkspace() {
	user := suite.createTestUser("owner@example.com")

	form := url.Values{}
	form.Set("name", "My Workspace")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/workspaces", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set("user_id", user.ID)

	suite.handler.CreateWorkspace(c)

	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var response dto.WorkspaceDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "My Workspace", response.Name)
	assert.Equal(suite.T(), user.ID, response.UserID)
	assert.NotEmpty(suite.T(), response.InviteCode)

	var member models.Member
	suite.Require().NoError(suite.db.First(&member, "workspace_id = ?", response.ID).Error)
	assert.Equal(suite.T(), user.ID, member.UserID)
	assert.Equal(suite.T(), models.RoleAdmin, member.Role)
}

// TestJoinWorkspace verifies invite code matching
func (suite *WorkspaceHandlerTestSuite) TestJoinWorkspace() {
	owner := suite.createTestUser("owner@example.com")
	joiner := suite.createTestUser("joiner@example.com")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)

	body, err := json.Marshal(map[string]string{"inviteCode": workspace.InviteCode})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/workspaces/"+workspace.ID+"/join", body, joiner.ID)
	c.Params = gin.Params{{Key: "id", Value: workspace.ID}}

	suite.handler.JoinWorkspace(c)

	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var member models.Member
	suite.Require().NoError(suite.db.First(&member, "workspace_id = ? AND user_id = ?", workspace.ID, joiner.ID).Error)
	assert.Equal(suite.T(), models.RoleMember, member.Role)
}

// TestJoinWorkspace_InvalidCode verifies wrong codes are rejected
func (suite *WorkspaceHandlerTestSuite) TestJoinWorkspace_InvalidCode() {
	owner := suite.createTestUser("owner@example.com")
	joiner := suite.createTestUser("joiner@example.com")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)

	body, err := json.Marshal(map[string]string{"inviteCode": "WRONG_CODE"})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/workspaces/"+workspace.ID+"/join", body, joiner.ID)
	c.Params = gin.Params{{Key: "id", Value: workspace.ID}}

	suite.handler.JoinWorkspace(c)

	suite.Require().Equal(http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Invalid invite code.")
}

// TestJoinWorkspace_AlreadyMember verifies double joins are rejected
func (suite *WorkspaceHandlerTestSuite) TestJoinWorkspace_AlreadyMember() {
	owner := suite.createTestUser("owner@example.com")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)

	body, err := json.Marshal(map[string]string{"inviteCode": workspace.InviteCode})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/workspaces/"+workspace.ID+"/join", body, owner.ID)
	c.Params = gin.Params{{Key: "id", Value: workspace.ID}}

	suite.handler.JoinWorkspace(c)

	suite.Require().Equal(http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Already a member.")
}

// TestGetWorkspaceInfo verifies the join screen works without membership
func (suite *WorkspaceHandlerTestSuite) TestGetWorkspaceInfo() {
	owner := suite.createTestUser("owner@example.com")
	outsider := suite.createTestUser("outsider@example.com")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)

	c, w := suite.createAuthContext("GET", "/api/workspaces/"+workspace.ID+"/info", nil, outsider.ID)
	c.Params = gin.Params{{Key: "id", Value: workspace.ID}}

	suite.handler.GetWorkspaceInfo(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var info dto.WorkspaceInfoDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(suite.T(), "Test WS", info.Name)
	assert.Equal(suite.T(), int64(1), info.MemberCount)
}

// TestDeleteWorkspace_OwnerOnly verifies admins who are not the owner
// cannot delete the workspace
func (suite *WorkspaceHandlerTestSuite) TestDeleteWorkspace_OwnerOnly() {
	owner := suite.createTestUser("owner@example.com")
	admin := suite.createTestUser("admin@example.com")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	adminMember := suite.createTestMember(workspace.ID, admin.ID, models.RoleAdmin)

	c, w := suite.createAuthContext("DELETE", "/api/workspaces/"+workspace.ID, nil, admin.ID)
	c.Set("member", *adminMember)

	suite.handler.DeleteWorkspace(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)

	var count int64
	suite.db.Model(&models.Workspace{}).Where("id = ?", workspace.ID).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

// TestDeleteWorkspace_CascadesEverything verifies the owner delete removes
// tasks, comments, history, projects, members and notifications
func (suite *WorkspaceHandlerTestSuite) TestDeleteWorkspace_CascadesEverything() {
	owner := suite.createTestUser("owner@example.com")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	member := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)

	project := models.Project{WorkspaceID: workspace.ID, Name: "Alpha Board"}
	suite.db.Create(&project)
	task := models.Task{
		WorkspaceID: workspace.ID,
		ProjectID:   project.ID,
		AssigneeID:  member.ID,
		Name:        "AB-01",
		Summary:     "Task",
		Status:      models.TaskStatusTodo,
		WorkType:    models.WorkTypeTask,
		Position:    1000,
	}
	suite.db.Create(&task)
	suite.db.Create(&models.TaskComment{TaskID: task.ID, MemberID: member.ID, Body: "note"})
	suite.db.Create(&models.TaskHistory{TaskID: task.ID, MemberID: member.ID, Field: models.HistoryFieldCreated})
	suite.db.Create(&models.Notification{
		UserID:      owner.ID,
		WorkspaceID: workspace.ID,
		Type:        models.NotificationTaskCreated,
		Title:       "title",
	})

	c, w := suite.createAuthContext("DELETE", "/api/workspaces/"+workspace.ID, nil, owner.ID)
	c.Set("member", *member)

	suite.handler.DeleteWorkspace(c)

	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	for _, model := range []interface{}{
		&models.Workspace{}, &models.Member{}, &models.Project{},
		&models.Task{}, &models.TaskComment{}, &models.TaskHistory{}, &models.Notification{},
	} {
		var count int64
		suite.db.Model(model).Count(&count)
		assert.Equal(suite.T(), int64(0), count)
	}
}

// TestResetInviteCode verifies the old code stops working
func (suite *WorkspaceHandlerTestSuite) TestResetInviteCode() {
	owner := suite.createTestUser("owner@example.com")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	member := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)
	oldCode := workspace.InviteCode

	c, w := suite.createAuthContext("POST", "/api/workspaces/"+workspace.ID+"/reset-invite-code", nil, owner.ID)
	c.Set("member", *member)

	suite.handler.ResetInviteCode(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var reloaded models.Workspace
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", workspace.ID).Error)
	assert.NotEqual(suite.T(), oldCode, reloaded.InviteCode)
	assert.NotEmpty(suite.T(), reloaded.InviteCode)
}

// TestGetAnalytics verifies this month's counts
func (suite *WorkspaceHandlerTestSuite) TestGetAnalytics() {
	owner := suite.createTestUser("owner@example.com")
	workspace := suite.createTestWorkspace("Test WS", owner.ID)
	member := suite.createTestMember(workspace.ID, owner.ID, models.RoleAdmin)

	project := models.Project{WorkspaceID: workspace.ID, Name: "Alpha Board"}
	suite.db.Create(&project)

	for i, status := range []models.TaskStatus{models.TaskStatusTodo, models.TaskStatusDone} {
		suite.db.Create(&models.Task{
			WorkspaceID: workspace.ID,
			ProjectID:   project.ID,
			AssigneeID:  member.ID,
			Name:        "AB-0" + string(rune('1'+i)),
			Summary:     "Task",
			Status:      status,
			WorkType:    models.WorkTypeTask,
			Position:    1000,
		})
	}

	c, w := suite.createAuthContext("GET", "/api/workspaces/"+workspace.ID+"/analytics", nil, owner.ID)
	c.Set("member", *member)

	suite.handler.GetAnalytics(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var analytics dto.AnalyticsDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &analytics))
	assert.Equal(suite.T(), int64(2), analytics.TaskCount)
	assert.Equal(suite.T(), int64(2), analytics.AssignedTaskCount)
	assert.Equal(suite.T(), int64(1), analytics.CompletedTaskCount)
	assert.Equal(suite.T(), int64(1), analytics.IncompleteTaskCount)
	assert.Equal(suite.T(), int64(1), analytics.ProjectCount)
}

// TestWorkspaceHandlerTestSuite runs the test suite
func TestWorkspaceHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(WorkspaceHandlerTestSuite))
}
