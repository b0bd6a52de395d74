package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://app.example.com/workspaces/1/tasks",
		AbsoluteURL("https://app.example.com", "/workspaces/1/tasks"))
	assert.Equal(t, "https://app.example.com/tasks",
		AbsoluteURL("https://app.example.com/", "tasks"))
	assert.Equal(t, "https://elsewhere.example.com/x",
		AbsoluteURL("https://app.example.com", "https://elsewhere.example.com/x"))
	assert.Equal(t, "/workspaces/1/tasks",
		AbsoluteURL("", "/workspaces/1/tasks"))
	assert.Equal(t, "", AbsoluteURL("https://app.example.com", ""))
}

func TestBuildNotificationHTML(t *testing.T) {
	html, err := BuildNotificationHTML(NotificationData{
		Title:       "Jane assigned you AB-01",
		Body:        "Jane assigned you AB-01",
		TaskName:    "AB-01",
		TaskSummary: "Fix the login page",
		Status:      "IN PROGRESS",
		WorkType:    "Bug",
		Priority:    "High",
		Assignee:    "John Doe",
		Reporter:    "Jane Roe",
		Link:        "https://app.example.com/workspaces/1/tasks",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Jane assigned you AB-01")
	assert.Contains(t, html, "AB-01 - Fix the login page")
	assert.Contains(t, html, "IN PROGRESS")
	assert.Contains(t, html, "John Doe")
	assert.Contains(t, html, `href="https://app.example.com/workspaces/1/tasks"`)
}

func TestBuildNotificationHTML_EscapesContent(t *testing.T) {
	html, err := BuildNotificationHTML(NotificationData{
		Title:       "Comment on AB-02",
		Body:        "line one\nline two",
		Description: "<script>alert(1)</script>",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "line one<br />line two")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestBuildNotificationHTML_OmitsEmptySections(t *testing.T) {
	html, err := BuildNotificationHTML(NotificationData{
		Title: "Welcome",
		Body:  "hello",
	})
	require.NoError(t, err)

	assert.NotContains(t, html, "View issue")
	assert.NotContains(t, html, "Description")
}
