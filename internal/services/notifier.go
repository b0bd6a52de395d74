package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/sprintr-app/sprintr-api/internal/email"
	"github.com/sprintr-app/sprintr-api/internal/models"
	"github.com/sprintr-app/sprintr-api/internal/repository"
)

// Actor identifies the user performing the mutation that triggers
// notifications. Actors never notify themselves.
type Actor struct {
	UserID   string
	MemberID string
	Name     string
}

type recipient struct {
	userID    string
	email     string
	mentioned bool
}

// Notifier fans a task event out to in-app notification rows and emails.
// Every step is best-effort: failures are logged and never surface to the
// mutation that triggered them.
type Notifier struct {
	members       repository.MemberRepository
	notifications repository.NotificationRepository
	mailer        email.Mailer
	baseURL       string
}

// NewNotifier creates a new Notifier. mailer may be nil when email
// delivery is not configured.
func NewNotifier(members repository.MemberRepository, notifications repository.NotificationRepository, mailer email.Mailer, baseURL string) *Notifier {
	return &Notifier{
		members:       members,
		notifications: notifications,
		mailer:        mailer,
		baseURL:       baseURL,
	}
}

// TaskCreated notifies the assignee of a freshly created task.
func (n *Notifier) TaskCreated(ctx context.Context, actor Actor, task *models.Task) {
	assignee := n.memberUser(task.AssigneeID)
	if assignee == nil || assignee.userID == actor.UserID {
		return
	}

	title := fmt.Sprintf("%s created %s", actor.Name, task.Name)
	n.dispatch(ctx, actor, task, models.NotificationTaskCreated, title, task.Summary,
		[]recipient{{userID: assignee.userID, email: assignee.email}},
		assignee.name, actor.Name)
}

// TaskAssigned notifies the new assignee after an assignment change.
func (n *Notifier) TaskAssigned(ctx context.Context, actor Actor, task *models.Task) {
	assignee := n.memberUser(task.AssigneeID)
	if assignee == nil || assignee.userID == actor.UserID {
		return
	}

	reporterName := ""
	if reporter := n.memberUserPtr(task.ReporterID); reporter != nil {
		reporterName = reporter.name
	}

	title := fmt.Sprintf("%s assigned you %s", actor.Name, task.Name)
	n.dispatch(ctx, actor, task, models.NotificationTaskAssigned, title, task.Summary,
		[]recipient{{userID: assignee.userID, email: assignee.email}},
		assignee.name, reporterName)
}

// CommentAdded notifies the task's assignee and reporter of a new comment,
// and anyone @mentioned in its body. Mentioned recipients get a distinct
// notification type and title.
func (n *Notifier) CommentAdded(ctx context.Context, actor Actor, task *models.Task, commentBody string) {
	recipients := make(map[string]recipient)

	assignee := n.memberUser(task.AssigneeID)
	if assignee != nil && assignee.userID != actor.UserID {
		recipients[assignee.userID] = recipient{userID: assignee.userID, email: assignee.email}
	}

	reporter := n.memberUserPtr(task.ReporterID)
	if reporter != nil && reporter.userID != actor.UserID {
		recipients[reporter.userID] = recipient{userID: reporter.userID, email: reporter.email}
	}

	mentionEmails := ExtractMentionEmails(commentBody)
	if len(mentionEmails) > 0 {
		members, err := n.members.ListByWorkspace(task.WorkspaceID)
		if err != nil {
			logrus.WithError(err).WithField("task_id", task.ID).
				Warn("failed to resolve workspace members for mentions")
		}

		mentioned := make(map[string]struct{}, len(mentionEmails))
		for _, e := range mentionEmails {
			mentioned[e] = struct{}{}
		}

		for _, member := range members {
			memberEmail := strings.ToLower(member.User.Email)
			if memberEmail == "" {
				continue
			}
			if _, ok := mentioned[memberEmail]; !ok {
				continue
			}
			if member.UserID == actor.UserID {
				continue
			}
			recipients[member.UserID] = recipient{userID: member.UserID, email: memberEmail, mentioned: true}
		}
	}

	body := task.Summary
	if body == "" {
		body = "New comment added."
	}

	assigneeName := ""
	if assignee != nil {
		assigneeName = assignee.name
	}
	reporterName := ""
	if reporter != nil {
		reporterName = reporter.name
	}

	for _, rcpt := range recipients {
		notifType := models.NotificationCommentAdded
		title := fmt.Sprintf("%s commented on %s", actor.Name, task.Name)
		if rcpt.mentioned {
			notifType = models.NotificationMentioned
			title = fmt.Sprintf("%s mentioned you in %s", actor.Name, task.Name)
		}
		n.dispatch(ctx, actor, task, notifType, title, body,
			[]recipient{rcpt}, assigneeName, reporterName)
	}
}

// dispatch writes one notification row and sends one email per recipient.
func (n *Notifier) dispatch(ctx context.Context, actor Actor, task *models.Task, notifType models.NotificationType, title, body string, recipients []recipient, assigneeName, reporterName string) {
	link := fmt.Sprintf("/workspaces/%s/tasks", task.WorkspaceID)

	priority := ""
	if task.Priority != nil {
		priority = task.Priority.Label()
	}

	for _, rcpt := range recipients {
		actorID := actor.MemberID
		taskID := task.ID
		linkValue := link
		notification := &models.Notification{
			UserID:      rcpt.userID,
			WorkspaceID: task.WorkspaceID,
			ActorID:     &actorID,
			TaskID:      &taskID,
			Type:        notifType,
			Title:       title,
			Body:        body,
			Link:        &linkValue,
			Metadata: datatypes.JSONMap{
				"taskId":    task.ID,
				"projectId": task.ProjectID,
			},
		}

		if err := n.notifications.Create(notification); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"task_id": task.ID,
				"user_id": rcpt.userID,
				"type":    notifType,
			}).Error("failed to persist notification")
		}

		if n.mailer == nil || rcpt.email == "" {
			continue
		}

		html, err := email.BuildNotificationHTML(email.NotificationData{
			Title:       title,
			Body:        body,
			TaskName:    task.Name,
			TaskSummary: task.Summary,
			Status:      task.Status.Label(),
			WorkType:    task.WorkType.Label(),
			Priority:    priority,
			Assignee:    assigneeName,
			Reporter:    reporterName,
			Description: task.Description,
			Link:        email.AbsoluteURL(n.baseURL, link),
		})
		if err != nil {
			logrus.WithError(err).WithField("task_id", task.ID).
				Error("failed to render notification email")
			continue
		}

		if err := n.mailer.Send(ctx, rcpt.email, title, html); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"task_id": task.ID,
				"to":      rcpt.email,
			}).Error("failed to send notification email")
		}
	}
}

type memberUser struct {
	userID string
	name   string
	email  string
}

func (n *Notifier) memberUser(memberID string) *memberUser {
	if memberID == "" {
		return nil
	}
	member, err := n.members.FindByIDWithUser(memberID)
	if err != nil {
		logrus.WithError(err).WithField("member_id", memberID).
			Warn("failed to resolve member for notification")
		return nil
	}
	return &memberUser{
		userID: member.UserID,
		name:   member.User.DisplayName(),
		email:  member.User.Email,
	}
}

func (n *Notifier) memberUserPtr(memberID *string) *memberUser {
	if memberID == nil {
		return nil
	}
	return n.memberUser(*memberID)
}
