package templates

import (
	"fmt"
	"html"
	"strings"
)

// ReminderEmailData holds data for the deadline reminder email template
type ReminderEmailData struct {
	CaseID       string
	Description  string
	RuleCitation string
	DueDate      string
	DaysBefore   int
	Jurisdiction string
	FilingCutoff string
	TimeZone     string
}

// ReminderSubject is the subject line for a deadline reminder
func ReminderSubject(d ReminderEmailData) string {
	if d.DaysBefore <= 0 {
		return fmt.Sprintf("Deadline due today: %s (%s)", d.Description, d.CaseID)
	}
	return fmt.Sprintf("Deadline in %d day%s: %s (%s)", d.DaysBefore, plural(d.DaysBefore), d.Description, d.CaseID)
}

// RenderReminderText generates the plain text body of a deadline reminder
func RenderReminderText(d ReminderEmailData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Case: %s\n", d.CaseID)
	fmt.Fprintf(&b, "Deadline: %s\n", d.Description)
	if d.RuleCitation != "" {
		fmt.Fprintf(&b, "Rule: %s\n", d.RuleCitation)
	}
	fmt.Fprintf(&b, "Due: %s by %s %s (%s)\n", d.DueDate, d.FilingCutoff, d.TimeZone, d.Jurisdiction)
	return b.String()
}

// RenderReminderEmail generates the HTML for a deadline reminder. Every
// field is HTML-escaped.
func RenderReminderEmail(d ReminderEmailData) string {
	subject := html.EscapeString(ReminderSubject(d))
	body := strings.ReplaceAll(html.EscapeString(RenderReminderText(d)), "\n", "<br>")

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: Georgia, 'Times New Roman', serif; margin: 0; padding: 0; background-color: #f4f1ea; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #1f2a44; padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .due { font-size: 18px; font-weight: 700; color: #9b1c1c; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p class="due">Due %s</p>
      %s
    </div>
    <div class="footer">
      <p>Acknowledge this reminder to stop further notices for this date.</p>
    </div>
  </div>
</body>
</html>`, subject, subject, html.EscapeString(d.DueDate), body)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
