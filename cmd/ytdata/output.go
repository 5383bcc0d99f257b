package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/Sternrassler/ytdata-client/pkg/youtube"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// printer writes records either as JSON lines or as tab-aligned text.
type printer struct {
	asJSON bool
	enc    *jsoniter.Encoder
	tw     *tabwriter.Writer
}

func newPrinter(w io.Writer, asJSON bool) *printer {
	p := &printer{asJSON: asJSON}
	if asJSON {
		p.enc = json.NewEncoder(w)
	} else {
		p.tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	}
	return p
}

func (p *printer) row(v any, cols ...string) error {
	if p.asJSON {
		return p.enc.Encode(v)
	}
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(p.tw, "\t")
		}
		fmt.Fprint(p.tw, c)
	}
	_, err := fmt.Fprintln(p.tw)
	return err
}

func (p *printer) flush() error {
	if p.tw != nil {
		return p.tw.Flush()
	}
	return nil
}

func (p *printer) channel(c *youtube.Channel) error {
	subscribers := "hidden"
	videos := ""
	if s := c.Statistics; s != nil {
		if s.SubscriberCount != nil {
			subscribers = strconv.FormatInt(*s.SubscriberCount, 10)
		}
		videos = strconv.FormatInt(s.VideoCount, 10)
	}
	if err := p.row(c, c.ID, c.DisplayName, subscribers, videos, c.Link()); err != nil {
		return err
	}
	return p.flush()
}

func (p *printer) video(v *youtube.Video) error {
	return p.row(v, v.ID, formatTime(v.PublishedAt), v.Duration.String(), v.Title, v.Link(true))
}

func (p *printer) comment(c *youtube.Comment) error {
	return p.row(c, c.ID, formatTime(c.CreatedAt), c.AuthorDisplayName, strconv.Itoa(c.TotalReplyCount), c.Body)
}

func (p *printer) member(m *youtube.Membership) error {
	return p.row(m, m.ChannelID, m.ChannelName, m.Level.Name, formatTime(m.Since), strconv.Itoa(m.TotalMonths))
}

func (p *printer) level(l *youtube.MemberLevel) error {
	return p.row(l, l.ID, l.Name)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
