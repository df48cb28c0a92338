package portfolio

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type DisplayMode string

const (
	DisplayModeRipple DisplayMode = "ripple"
	DisplayModePulse  DisplayMode = "pulse"
)

var ErrInvalidDisplayMode = errors.New("display mode must be 'ripple' or 'pulse'")

func (m DisplayMode) Validate() error {
	switch m {
	case DisplayModeRipple, DisplayModePulse:
		return nil
	}
	return ErrInvalidDisplayMode
}

// ProfileSettings is the singleton describing the site owner. ID is empty until the
// record has been persisted at least once.
type ProfileSettings struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Title           string      `json:"title"`
	Bio             string      `json:"bio"`
	ProfileImageURL string      `json:"profile_image"`
	ContactHandle   string      `json:"discord_username"`
	ContactLink     string      `json:"discord_server_link"`
	DisplayMode     DisplayMode `json:"water_pulse_mode"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type ProfilePatch struct {
	Name            *string
	Title           *string
	Bio             *string
	ProfileImageURL *string
	ContactHandle   *string
	ContactLink     *string
	DisplayMode     *DisplayMode
}

// DefaultProfile is shown until an owner saves their own profile. It is never persisted implicitly.
func DefaultProfile() ProfileSettings {
	return ProfileSettings{
		Name:            "Your Name",
		Title:           "Video Editor & Graphic Designer",
		Bio:             "I'm an editor passionate about creating compelling visual stories through video editing and graphic design. With a keen eye for detail and creative vision, I bring ideas to life.",
		ProfileImageURL: "",
		ContactHandle:   "your_username",
		ContactLink:     "https://discord.gg/your-server",
		DisplayMode:     DisplayModeRipple,
	}
}

func (p ProfileSettings) Apply(patch ProfilePatch) ProfileSettings {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Name, patch.Name)
	set(&p.Title, patch.Title)
	set(&p.Bio, patch.Bio)
	set(&p.ProfileImageURL, patch.ProfileImageURL)
	set(&p.ContactHandle, patch.ContactHandle)
	set(&p.ContactLink, patch.ContactLink)
	if patch.DisplayMode != nil {
		p.DisplayMode = *patch.DisplayMode
	}
	return p
}

func (p ProfileSettings) Validate() error {
	if err := p.DisplayMode.Validate(); err != nil {
		return err
	}
	if p.ProfileImageURL != "" && !isHTTPURL(p.ProfileImageURL) {
		return fmt.Errorf("profile_image: %w", ErrInvalidURL)
	}
	if p.ContactLink != "" && !isHTTPURL(p.ContactLink) {
		return fmt.Errorf("discord_server_link: %w", ErrInvalidURL)
	}
	return nil
}
