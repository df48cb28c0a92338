package portfolio

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/khoahotran/portfolio-hub/pkg/videourl"
)

type Kind string

const (
	KindVideo  Kind = "video"
	KindDesign Kind = "design"
)

const MaxTitleLength = 200

var (
	ErrInvalidKind     = errors.New("kind must be 'video' or 'design'")
	ErrTitleRequired   = errors.New("title is required")
	ErrTitleTooLong    = fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	ErrInvalidVideoURL = errors.New("video link is not a recognised YouTube URL")
	ErrInvalidURL      = errors.New("url must be an absolute http(s) link")
)

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if err := k.Validate(); err != nil {
		return "", err
	}
	return k, nil
}

func (k Kind) Validate() error {
	switch k {
	case KindVideo, KindDesign:
		return nil
	}
	return ErrInvalidKind
}

// Item is one displayable entry. SourceURL is a video link for videos and an image link for designs.
type Item struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Kind               Kind      `json:"type"`
	SourceURL          string    `json:"source_url"`
	CustomThumbnailURL string    `json:"custom_thumbnail_url,omitempty"`
	SortOrder          int       `json:"sort_order"`
	CreatedAt          time.Time `json:"created_at"`
}

// ItemFields is what a caller supplies on creation; id and created_at come from the gateway.
type ItemFields struct {
	Title              string
	SourceURL          string
	CustomThumbnailURL string
	SortOrder          int
}

// ItemPatch is an id-addressed partial update. Kind and ID cannot change.
type ItemPatch struct {
	Title              *string
	SourceURL          *string
	CustomThumbnailURL *string
	SortOrder          *int
}

func (p ItemPatch) IsEmpty() bool {
	return p.Title == nil && p.SourceURL == nil && p.CustomThumbnailURL == nil && p.SortOrder == nil
}

// Apply returns a copy of the item with every non-nil patch field applied.
func (it Item) Apply(p ItemPatch) Item {
	if p.Title != nil {
		it.Title = strings.TrimSpace(*p.Title)
	}
	if p.SourceURL != nil {
		it.SourceURL = strings.TrimSpace(*p.SourceURL)
	}
	if p.CustomThumbnailURL != nil {
		it.CustomThumbnailURL = strings.TrimSpace(*p.CustomThumbnailURL)
	}
	if p.SortOrder != nil {
		it.SortOrder = *p.SortOrder
	}
	return it
}

func NewItem(kind Kind, f ItemFields) Item {
	return Item{
		Title:              strings.TrimSpace(f.Title),
		Kind:               kind,
		SourceURL:          strings.TrimSpace(f.SourceURL),
		CustomThumbnailURL: strings.TrimSpace(f.CustomThumbnailURL),
		SortOrder:          f.SortOrder,
	}
}

func (it Item) Fields() ItemFields {
	return ItemFields{
		Title:              it.Title,
		SourceURL:          it.SourceURL,
		CustomThumbnailURL: it.CustomThumbnailURL,
		SortOrder:          it.SortOrder,
	}
}

// Validate checks everything that can be rejected before a write is attempted.
// Empty links are allowed: an item may be created first and linked later.
func (it Item) Validate() error {
	if err := it.Kind.Validate(); err != nil {
		return err
	}
	if it.Title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(it.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if it.SourceURL != "" {
		if it.Kind == KindVideo {
			if _, ok := videourl.ExtractVideoID(it.SourceURL); !ok {
				return ErrInvalidVideoURL
			}
		} else if !isHTTPURL(it.SourceURL) {
			return fmt.Errorf("source_url: %w", ErrInvalidURL)
		}
	}
	if it.CustomThumbnailURL != "" && !isHTTPURL(it.CustomThumbnailURL) {
		return fmt.Errorf("custom_thumbnail_url: %w", ErrInvalidURL)
	}
	return nil
}

// VideoID is the canonical id for video items with a recognised link.
func (it Item) VideoID() (string, bool) {
	if it.Kind != KindVideo {
		return "", false
	}
	return videourl.ExtractVideoID(it.SourceURL)
}

// DisplayThumbnail picks what a card shows: the custom override, then the derived
// YouTube thumbnail for videos, then the image itself for designs.
func (it Item) DisplayThumbnail() string {
	if it.CustomThumbnailURL != "" {
		return it.CustomThumbnailURL
	}
	if it.Kind == KindVideo {
		thumb, _ := videourl.ThumbnailURL(it.SourceURL)
		return thumb
	}
	return it.SourceURL
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
