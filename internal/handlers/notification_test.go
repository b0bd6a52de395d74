package handlers

import (
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

// NotificationHandlerTestSuite defines the test suite for
// NotificationHandler
type NotificationHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *NotificationHandler
}

// SetupTest runs before each test
func (suite *NotificationHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Notification{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	suite.handler = NewNotificationHandler(repository.NewNotificationRepository(suite.db))

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *NotificationHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *NotificationHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		FullName:     "Test User",
		PasswordHash: "hashedpassword",
	}
	suite.db.Create(user)
	return user
}

func (suite *NotificationHandlerTestSuite) createTestNotification(userID, workspaceID string, read bool) *models.Notification {
	notification := &models.Notification{
		UserID:      userID,
		WorkspaceID: workspaceID,
		Type:        models.NotificationTaskAssigned,
		Title:       "Someone assigned you AB-01",
	}
	suite.db.Create(notification)
	if read {
		suite.db.Model(notification).Update("read_at", gorm.Expr("CURRENT_TIMESTAMP"))
	}
	return notification
}

func (suite *NotificationHandlerTestSuite) authContext(method, path, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	c.Set("user_id", userID)
	return c, w
}

// TestListNotifications verifies the list is scoped to the caller and
// carries the unread total
func (suite *NotificationHandlerTestSuite) TestListNotifications() {
	user := suite.createTestUser("user@example.com")
	stranger := suite.createTestUser("stranger@example.com")
	workspaceID := "11111111-1111-1111-1111-111111111111"

	suite.createTestNotification(user.ID, workspaceID, false)
	suite.createTestNotification(user.ID, workspaceID, false)
	suite.createTestNotification(user.ID, workspaceID, true)
	suite.createTestNotification(stranger.ID, workspaceID, false)

	c, w := suite.authContext("GET", "/api/notifications", user.ID)

	suite.handler.ListNotifications(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.NotificationListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(suite.T(), response.Notifications, 3)
	assert.Equal(suite.T(), 2, response.UnreadCount)
}

// TestListNotifications_WorkspaceFilter verifies the workspaceId query
// narrows the list
func (suite *NotificationHandlerTestSuite) TestListNotifications_WorkspaceFilter() {
	user := suite.createTestUser("user@example.com")
	first := "11111111-1111-1111-1111-111111111111"
	second := "22222222-2222-2222-2222-222222222222"

	suite.createTestNotification(user.ID, first, false)
	suite.createTestNotification(user.ID, second, false)

	c, w := suite.authContext("GET", "/api/notifications?workspaceId="+first, user.ID)

	suite.handler.ListNotifications(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.NotificationListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Require().Len(response.Notifications, 1)
	assert.Equal(suite.T(), first, response.Notifications[0].WorkspaceID)
	assert.Equal(suite.T(), 1, response.UnreadCount)
}

// TestListNotifications_InvalidLimit verifies bad limits are rejected
func (suite *NotificationHandlerTestSuite) TestListNotifications_InvalidLimit() {
	user := suite.createTestUser("user@example.com")

	c, w := suite.authContext("GET", "/api/notifications?limit=zero", user.ID)

	suite.handler.ListNotifications(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestMarkRead verifies marking a notification sets its read timestamp
func (suite *NotificationHandlerTestSuite) TestMarkRead() {
	user := suite.createTestUser("user@example.com")
	workspaceID := "11111111-1111-1111-1111-111111111111"
	notification := suite.createTestNotification(user.ID, workspaceID, false)

	c, w := suite.authContext("PATCH", "/api/notifications/"+notification.ID+"/read", user.ID)
	c.Params = gin.Params{{Key: "id", Value: notification.ID}}

	suite.handler.MarkRead(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var response dto.NotificationDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotNil(suite.T(), response.ReadAt)

	var reloaded models.Notification
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", notification.ID).Error)
	assert.NotNil(suite.T(), reloaded.ReadAt)
}

// TestMarkRead_OtherUser verifies users cannot touch notifications that
// are not theirs
func (suite *NotificationHandlerTestSuite) TestMarkRead_OtherUser() {
	user := suite.createTestUser("user@example.com")
	stranger := suite.createTestUser("stranger@example.com")
	workspaceID := "11111111-1111-1111-1111-111111111111"
	notification := suite.createTestNotification(stranger.ID, workspaceID, false)

	c, w := suite.authContext("PATCH", "/api/notifications/"+notification.ID+"/read", user.ID)
	c.Params = gin.Params{{Key: "id", Value: notification.ID}}

	suite.handler.MarkRead(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	var reloaded models.Notification
	suite.Require().NoError(suite.db.First(&reloaded, "id = ?", notification.ID).Error)
	assert.Nil(suite.T(), reloaded.ReadAt)
}

// TestMarkAllRead verifies every unread notification gets stamped
func (suite *NotificationHandlerTestSuite) TestMarkAllRead() {
	user := suite.createTestUser("user@example.com")
	workspaceID := "11111111-1111-1111-1111-111111111111"

	suite.createTestNotification(user.ID, workspaceID, false)
	suite.createTestNotification(user.ID, workspaceID, false)

	c, w := suite.authContext("PATCH", "/api/notifications/read", user.ID)

	suite.handler.MarkAllRead(c)

	suite.Require().Equal(http.StatusOK, w.Code)

	var unread int64
	suite.db.Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", user.ID).
		Count(&unread)
	assert.Equal(suite.T(), int64(0), unread)
}

// TestNotificationHandlerTestSuite runs the test suite
func TestNotificationHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationHandlerTestSuite))
}
