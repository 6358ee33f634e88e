// package formatter assembles matched concert rows into shows and renders
// them for the dashboard views and the email digest.
package formatter

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// GroupShows deduplicates matched concert rows into shows. Rows sharing a
// show id collapse into one entry: the first row contributes the bill,
// venue, date, time, and ticket link; every row contributes its matched
// artist. Bill entries are flagged by normalizing their display name
// against the accumulated matched set, so the result does not depend on
// row order within a show.
func GroupShows(rows []*models.Concert) []models.DigestShow {
	type pending struct {
		showID    string
		bill      []string
		venue     string
		date      string
		time      string
		ticketURL string
		matched   map[string]struct{}
	}

	var order []string
	byShow := make(map[string]*pending)

	for _, row := range rows {
		key := row.ShowID()
		if key == "" {
			key = row.ID()
		}

		entry, ok := byShow[key]
		if !ok {
			entry = &pending{
				showID:    key,
				bill:      row.Bill(),
				venue:     row.Venue(),
				date:      row.Date(),
				time:      row.Time(),
				ticketURL: row.TicketURL(),
				matched:   make(map[string]struct{}),
			}
			byShow[key] = entry
			order = append(order, key)
		}
		entry.matched[row.ArtistName()] = struct{}{}
	}

	shows := make([]models.DigestShow, 0, len(order))
	for _, key := range order {
		entry := byShow[key]

		bill := make([]models.BillItem, 0, len(entry.bill))
		for _, name := range entry.bill {
			_, matched := entry.matched[shared.NormalizeArtistName(name)]
			bill = append(bill, models.BillItem{Name: name, Matched: matched})
		}

		shows = append(shows, models.DigestShow{
			ShowID:    entry.showID,
			Bill:      bill,
			Venue:     entry.venue,
			Date:      entry.date,
			Time:      entry.time,
			TicketURL: entry.ticketURL,
		})
	}

	return shows
}

// DateGroup holds one calendar date's shows, in row order.
type DateGroup struct {
	Date  string
	Shows []models.DigestShow
}

// GroupByDate buckets shows by calendar date, preserving first-appearance
// order of the dates.
func GroupByDate(shows []models.DigestShow) []DateGroup {
	var order []string
	byDate := make(map[string][]models.DigestShow)

	for _, show := range shows {
		if _, ok := byDate[show.Date]; !ok {
			order = append(order, show.Date)
		}
		byDate[show.Date] = append(byDate[show.Date], show)
	}

	groups := make([]DateGroup, 0, len(order))
	for _, date := range order {
		groups = append(groups, DateGroup{Date: date, Shows: byDate[date]})
	}

	return groups
}

// GroupByMonth buckets shows by date for calendar rendering, keyed by the
// YYYY-MM-DD string.
func GroupByMonth(shows []models.DigestShow) map[string][]models.DigestShow {
	byDate := make(map[string][]models.DigestShow, len(shows))
	for _, show := range shows {
		byDate[show.Date] = append(byDate[show.Date], show)
	}
	return byDate
}

// FormatDate renders a YYYY-MM-DD date as a digest heading, e.g.
// "Thursday, May 1".
func FormatDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%s, %s %d", t.Weekday(), t.Month(), t.Day())
}

func formatBillHTML(bill []models.BillItem) string {
	parts := make([]string, 0, len(bill))
	for _, item := range bill {
		name := html.EscapeString(item.Name)
		if item.Matched {
			parts = append(parts, `<strong style="color:#2F4F3F;">`+name+`</strong>`)
		} else {
			parts = append(parts, `<span style="color:#888;">`+name+`</span>`)
		}
	}
	return strings.Join(parts, `<span style="color:#bbb;"> + </span>`)
}

func formatBillText(bill []models.BillItem) string {
	parts := make([]string, 0, len(bill))
	for _, item := range bill {
		parts = append(parts, item.Name)
	}
	return strings.Join(parts, " + ")
}

// RenderDigestHTML renders the email digest body.
func RenderDigestHTML(shows []models.DigestShow, unsubscribeURL string) string {
	var blocks bytes.Buffer

	for _, group := range GroupByDate(shows) {
		var cards bytes.Buffer
		for _, show := range group.Shows {
			timeStr := ""
			if show.Time != "" {
				timeStr = " &middot; " + html.EscapeString(show.Time)
			}
			ticketLink := ""
			if show.TicketURL != "" {
				ticketLink = fmt.Sprintf(`<a href="%s" style="display:inline-block;margin-top:10px;font-size:12px;color:#2F4F3F;text-decoration:none;border:1px solid #2F4F3F;border-radius:20px;padding:4px 12px;">Get tickets</a>`, html.EscapeString(show.TicketURL))
			}

			cards.WriteString(fmt.Sprintf(`
            <div style="background:#fff;border-radius:12px;padding:20px 24px;margin-bottom:10px;border:1px solid #e8e2d9;">
              <p style="margin:0;font-size:16px;font-family:Georgia,serif;color:#2A2A2A;line-height:1.4;">%s</p>
              <p style="margin:6px 0 0;font-size:13px;color:#888;font-family:system-ui,sans-serif;">%s%s</p>
              %s
            </div>`, formatBillHTML(show.Bill), html.EscapeString(show.Venue), timeStr, ticketLink))
		}

		blocks.WriteString(fmt.Sprintf(`
        <div style="margin-bottom:32px;">
          <p style="margin:0 0 12px;font-size:13px;font-weight:600;letter-spacing:0.06em;text-transform:uppercase;color:#999;font-family:system-ui,sans-serif;">%s</p>
          %s
        </div>`, html.EscapeString(FormatDate(group.Date)), cards.String()))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1.0" />
  <title>Your upcoming shows</title>
</head>
<body style="margin:0;padding:0;background:#F6F2EA;font-family:system-ui,-apple-system,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0" style="background:#F6F2EA;padding:40px 16px;">
    <tr>
      <td align="center">
        <table width="100%%" style="max-width:560px;">
          <tr>
            <td style="padding-bottom:32px;">
              <p style="margin:0;font-size:22px;font-family:Georgia,serif;font-weight:500;color:#2F4F3F;">Concert Calendar</p>
              <p style="margin:6px 0 0;font-size:14px;color:#888;">Your upcoming shows</p>
            </td>
          </tr>
          <tr>
            <td>%s</td>
          </tr>
          <tr>
            <td style="padding-top:32px;border-top:1px solid #e0d9ce;">
              <p style="margin:0;font-size:12px;color:#aaa;line-height:1.6;">
                You're getting this because you connected Spotify to Concert Calendar.
                <br />
                <a href="%s" style="color:#aaa;">Manage email preferences</a>
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, blocks.String(), html.EscapeString(unsubscribeURL))
}

// RenderDigestText renders the plain-text digest body.
func RenderDigestText(shows []models.DigestShow) string {
	var buf bytes.Buffer
	buf.WriteString("Your upcoming shows\n\n")

	for _, group := range GroupByDate(shows) {
		buf.WriteString(FormatDate(group.Date))
		buf.WriteString("\n")
		for _, show := range group.Shows {
			buf.WriteString(fmt.Sprintf("  %s @ %s", formatBillText(show.Bill), show.Venue))
			if show.Time != "" {
				buf.WriteString(" · " + show.Time)
			}
			buf.WriteString("\n")
			if show.TicketURL != "" {
				buf.WriteString("  Tickets: " + show.TicketURL + "\n")
			}
		}
		buf.WriteString("\n")
	}

	return buf.String()
}
