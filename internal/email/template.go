package email

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"
)

// NotificationData feeds the notification email template.
type NotificationData struct {
	Title       string
	Body        string
	TaskName    string
	TaskSummary string
	Status      string
	WorkType    string
	Priority    string
	Assignee    string
	Reporter    string
	Description string
	Link        string
}

type detailRow struct {
	Label string
	Value string
}

type templateData struct {
	Title       string
	Body        template.HTML
	IssueLine   string
	StatusLabel string
	Details     []detailRow
	Description template.HTML
	Link        string
}

var notificationTmpl = template.Must(template.New("notification").Parse(`<!doctype html>
<html>
  <head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1.0" />
    <title>{{.Title}}</title>
  </head>
  <body style="margin:0;padding:0;background-color:#f4f5f7;font-family:Arial, Helvetica, sans-serif;">
    <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="border-collapse:collapse;background-color:#f4f5f7;">
      <tr>
        <td align="center" style="padding:24px 12px;">
          <table role="presentation" width="600" cellpadding="0" cellspacing="0" style="border-collapse:collapse;background-color:#ffffff;border:1px solid #dfe1e6;border-radius:6px;overflow:hidden;">
            <tr>
              <td style="background:#0747a6;color:#ffffff;padding:16px 24px;font-size:16px;font-weight:600;">Sprintr</td>
            </tr>
            <tr>
              <td style="padding:24px 24px 12px 24px;">
                <div style="font-size:12px;color:#5e6c84;margin-bottom:8px;">Notification</div>
                <div style="font-size:18px;color:#172b4d;font-weight:600;margin-bottom:6px;">{{.Title}}</div>
                {{if .IssueLine}}<div style="font-size:14px;color:#42526e;">{{.IssueLine}}</div>{{end}}
                {{if .StatusLabel}}<div style="margin-top:12px;"><span style="display:inline-block;padding:4px 10px;border-radius:999px;background:#e6f0ff;color:#0747a6;font-size:12px;font-weight:600;">{{.StatusLabel}}</span></div>{{end}}
              </td>
            </tr>
            <tr>
              <td style="padding:0 24px 16px 24px;">
                <table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="border-collapse:collapse;">
                  {{range .Details}}<tr>
                    <td style="width:140px;padding:6px 0;color:#5e6c84;font-size:12px;vertical-align:top;">{{.Label}}</td>
                    <td style="padding:6px 0;color:#172b4d;font-size:14px;vertical-align:top;">{{if .Value}}{{.Value}}{{else}}-{{end}}</td>
                  </tr>
                  {{end}}
                </table>
              </td>
            </tr>
            <tr>
              <td style="padding:0 24px 24px 24px;">
                <div style="font-size:13px;color:#5e6c84;font-weight:600;margin-bottom:8px;">Update</div>
                <div style="font-size:14px;line-height:1.5;color:#172b4d;">{{.Body}}</div>
              </td>
            </tr>
            {{if .Description}}<tr>
              <td style="padding:0 24px 24px 24px;">
                <div style="font-size:13px;color:#5e6c84;font-weight:600;margin-bottom:8px;">Description</div>
                <div style="font-size:14px;line-height:1.5;color:#172b4d;">{{.Description}}</div>
              </td>
            </tr>{{end}}
            <tr>
              <td style="padding:0 24px 24px 24px;">
                {{if .Link}}<a href="{{.Link}}" style="display:inline-block;background:#0052cc;color:#ffffff;text-decoration:none;padding:10px 16px;border-radius:4px;font-size:14px;font-weight:600;">View issue</a>{{end}}
              </td>
            </tr>
            <tr>
              <td style="padding:16px 24px;background:#fafbfc;color:#7a869a;font-size:12px;">
                You are receiving this because you are watching this issue.
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>`))

var absoluteURLRe = regexp.MustCompile(`(?i)^https?://`)

// AbsoluteURL joins a path with the app base URL; absolute inputs and
// empty base URLs pass through unchanged.
func AbsoluteURL(baseURL, path string) string {
	if path == "" {
		return ""
	}
	if absoluteURLRe.MatchString(path) {
		return path
	}

	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// multiline escapes a value and turns newlines into <br />.
func multiline(value string) template.HTML {
	escaped := template.HTMLEscapeString(value)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br />"))
}

// BuildNotificationHTML renders the notification email body.
func BuildNotificationHTML(data NotificationData) (string, error) {
	issueLine := data.TaskSummary
	if data.TaskName != "" {
		issueLine = data.TaskName
		if data.TaskSummary != "" {
			issueLine = data.TaskName + " - " + data.TaskSummary
		}
	}

	var description template.HTML
	if data.Description != "" {
		description = multiline(data.Description)
	}

	tmplData := templateData{
		Title:       data.Title,
		Body:        multiline(data.Body),
		IssueLine:   issueLine,
		StatusLabel: data.Status,
		Details: []detailRow{
			{Label: "Status", Value: data.Status},
			{Label: "Work type", Value: data.WorkType},
			{Label: "Assignee", Value: data.Assignee},
			{Label: "Priority", Value: data.Priority},
			{Label: "Reporter", Value: data.Reporter},
		},
		Description: description,
		Link:        data.Link,
	}

	var buf bytes.Buffer
	if err := notificationTmpl.Execute(&buf, tmplData); err != nil {
		return "", fmt.Errorf("failed to render notification email: %w", err)
	}
	return buf.String(), nil
}
