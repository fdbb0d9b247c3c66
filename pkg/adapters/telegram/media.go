package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

type mediaKind int

const (
	kindDocument mediaKind = iota
	kindPhoto
	kindVideo
)

func kindOf(a domain.Attachment) mediaKind {
	switch {
	case strings.HasPrefix(a.ContentType, "image/"):
		return kindPhoto
	case strings.HasPrefix(a.ContentType, "video/"):
		return kindVideo
	default:
		return kindDocument
	}
}

// SendMedia sends attachments with a caption.
//
// Media mode groups several attachments with the caption on the first item and
// picks photo, video or document per content type. Document mode groups documents
// with the caption on every item; a lone document is sent by URL.
func (c *Client) SendMedia(ctx context.Context, chatID int64, caption string, attachments []domain.Attachment, mode domain.MediaMode) error {
	if err := c.ready(ctx); err != nil {
		return err
	}
	if len(attachments) == 0 {
		return nil
	}

	if mode == domain.MediaModeDocument {
		if len(attachments) == 1 {
			doc := tgbotapi.NewDocument(chatID, tgbotapi.FileURL(attachments[0].URL))
			doc.Caption = caption
			doc.ParseMode = tgbotapi.ModeHTML
			return c.send(doc)
		}
		return c.sendGroup(ctx, chatID, caption, attachments, true)
	}

	if len(attachments) > 1 {
		return c.sendGroup(ctx, chatID, caption, attachments, false)
	}

	a := attachments[0]
	file, err := c.download(ctx, a)
	if err != nil {
		return err
	}
	switch kindOf(a) {
	case kindPhoto:
		p := tgbotapi.NewPhoto(chatID, file)
		p.Caption, p.ParseMode = caption, tgbotapi.ModeHTML
		return c.send(p)
	case kindVideo:
		v := tgbotapi.NewVideo(chatID, file)
		v.Caption, v.ParseMode = caption, tgbotapi.ModeHTML
		return c.send(v)
	default:
		d := tgbotapi.NewDocument(chatID, file)
		d.Caption, d.ParseMode = caption, tgbotapi.ModeHTML
		return c.send(d)
	}
}

func (c *Client) send(msg tgbotapi.Chattable) error {
	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send media: %w", err)
	}
	return nil
}

func (c *Client) sendGroup(ctx context.Context, chatID int64, caption string, attachments []domain.Attachment, documents bool) error {
	items := make([]interface{}, 0, len(attachments))
	for i, a := range attachments {
		file, err := c.download(ctx, a)
		if err != nil {
			return err
		}
		text := ""
		if documents || i == 0 {
			text = caption
		}

		kind := kindDocument
		if !documents {
			kind = kindOf(a)
		}
		switch kind {
		case kindPhoto:
			m := tgbotapi.NewInputMediaPhoto(file)
			m.Caption, m.ParseMode = text, tgbotapi.ModeHTML
			items = append(items, m)
		case kindVideo:
			m := tgbotapi.NewInputMediaVideo(file)
			m.Caption, m.ParseMode = text, tgbotapi.ModeHTML
			items = append(items, m)
		default:
			m := tgbotapi.NewInputMediaDocument(file)
			m.Caption, m.ParseMode = text, tgbotapi.ModeHTML
			items = append(items, m)
		}
	}

	if _, err := c.bot.SendMediaGroup(tgbotapi.NewMediaGroup(chatID, items)); err != nil {
		return fmt.Errorf("telegram: send media group: %w", err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, a domain.Attachment) (tgbotapi.FileBytes, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return tgbotapi.FileBytes{}, fmt.Errorf("telegram: download %q: %w", a.URL, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return tgbotapi.FileBytes{}, fmt.Errorf("telegram: download %q: %w", a.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tgbotapi.FileBytes{}, fmt.Errorf("telegram: download %q: status %d", a.URL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDownloadSize+1))
	if err != nil {
		return tgbotapi.FileBytes{}, fmt.Errorf("telegram: download %q: %w", a.URL, err)
	}
	if len(data) > MaxDownloadSize {
		return tgbotapi.FileBytes{}, fmt.Errorf("telegram: download %q: larger than %d bytes", a.URL, MaxDownloadSize)
	}

	name := a.Filename
	if name == "" {
		name = "attachment"
	}
	return tgbotapi.FileBytes{Name: name, Bytes: data}, nil
}
