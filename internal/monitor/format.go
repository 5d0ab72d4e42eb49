package monitor

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"tweetwatch/internal/model"
)

// UnknownAuthor is shown when the author lookup misses.
const UnknownAuthor = "未知用戶"

const displayTimeLayout = "2006-01-02 15:04:05"

//go:embed notification.tmpl
var notificationTpl string

var compiled = template.Must(template.New("notification").
	Funcs(template.FuncMap{"join": strings.Join}).
	Parse(notificationTpl))

type notificationData struct {
	Matched []string
	Name    string
	Handle  string
	Time    string
	Text    string
	Link    string
}

// Formatter renders notifications.
type Formatter struct {
	Location      *time.Location // defaults to UTC
	PermalinkBase string         // defaults to https://twitter.com
}

// Render builds the notification text. A non-empty matched list selects the
// keyword template. A nil author and an unparseable timestamp degrade to
// placeholders and the raw string.
func (f Formatter) Render(item model.Item, author *model.Author, matched []string) string {
	d := notificationData{
		Matched: matched,
		Name:    UnknownAuthor,
		Time:    f.formatTime(item.CreatedAt),
		Text:    item.Text,
	}
	if author != nil {
		if author.Name != "" {
			d.Name = author.Name
		}
		d.Handle = author.Username
	}
	d.Link = f.permalink(d.Handle, item.ID)

	name := "passthrough"
	if len(matched) > 0 {
		name = "keyword"
	}
	var buf bytes.Buffer
	if err := compiled.ExecuteTemplate(&buf, name, d); err != nil {
		return fmt.Sprintf("%s (@%s)\n%s\n%s\n%s", d.Name, d.Handle, d.Time, d.Text, d.Link)
	}
	return buf.String()
}

// WithSummary appends a summary line to a rendered notification.
func WithSummary(msg, summary string) string {
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return msg
	}
	return msg + "\n💡 摘要: " + summary
}

func (f Formatter) formatTime(raw string) string {
	t, err := time.Parse(WireTimeLayout, raw)
	if err != nil {
		// the API sometimes omits milliseconds
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return raw
		}
	}
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(displayTimeLayout)
}

func (f Formatter) permalink(handle, id string) string {
	base := strings.TrimRight(f.PermalinkBase, "/")
	if base == "" {
		base = "https://twitter.com"
	}
	return base + "/" + handle + "/status/" + id
}
