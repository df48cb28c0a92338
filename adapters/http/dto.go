package http

import (
	"time"

	portfolioUC "github.com/khoahotran/portfolio-hub/internal/application/usecase/portfolio"
	"github.com/khoahotran/portfolio-hub/internal/domain/portfolio"
)

// Profile DTOs

type ProfileDTO struct {
	ID                string    `json:"id,omitempty"`
	Name              string    `json:"name"`
	Title             string    `json:"title"`
	Bio               string    `json:"bio"`
	ProfileImage      string    `json:"profile_image"`
	DiscordUsername   string    `json:"discord_username"`
	DiscordServerLink string    `json:"discord_server_link"`
	WaterPulseMode    string    `json:"water_pulse_mode"`
	UpdatedAt         time.Time `json:"updated_at,omitzero"`
}

type UpdateProfileRequest struct {
	Name              *string `json:"name"`
	Title             *string `json:"title"`
	Bio               *string `json:"bio"`
	ProfileImage      *string `json:"profile_image"`
	DiscordUsername   *string `json:"discord_username"`
	DiscordServerLink *string `json:"discord_server_link"`
	WaterPulseMode    *string `json:"water_pulse_mode" binding:"omitempty,oneof=ripple pulse"`
}

func (r *UpdateProfileRequest) ToPatch() portfolio.ProfilePatch {
	patch := portfolio.ProfilePatch{
		Name:            r.Name,
		Title:           r.Title,
		Bio:             r.Bio,
		ProfileImageURL: r.ProfileImage,
		ContactHandle:   r.DiscordUsername,
		ContactLink:     r.DiscordServerLink,
	}
	if r.WaterPulseMode != nil {
		mode := portfolio.DisplayMode(*r.WaterPulseMode)
		patch.DisplayMode = &mode
	}
	return patch
}

func ToProfileDTO(p portfolio.ProfileSettings) ProfileDTO {
	return ProfileDTO{
		ID:                p.ID,
		Name:              p.Name,
		Title:             p.Title,
		Bio:               p.Bio,
		ProfileImage:      p.ProfileImageURL,
		DiscordUsername:   p.ContactHandle,
		DiscordServerLink: p.ContactLink,
		WaterPulseMode:    string(p.DisplayMode),
		UpdatedAt:         p.UpdatedAt,
	}
}

// Item DTOs

type ItemDTO struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Type               string    `json:"type"`
	SourceURL          string    `json:"source_url"`
	CustomThumbnailURL string    `json:"custom_thumbnail_url,omitempty"`
	VideoID            string    `json:"video_id,omitempty"`
	ThumbnailURL       string    `json:"thumbnail_url,omitempty"`
	SortOrder          int       `json:"sort_order"`
	CreatedAt          time.Time `json:"created_at"`
}

type CreateItemRequest struct {
	Type               string `json:"type" binding:"required,oneof=video design"`
	Title              string `json:"title" binding:"required,max=200"`
	SourceURL          string `json:"source_url"`
	CustomThumbnailURL string `json:"custom_thumbnail_url"`
}

func (r *CreateItemRequest) ToFields() portfolio.ItemFields {
	return portfolio.ItemFields{
		Title:              r.Title,
		SourceURL:          r.SourceURL,
		CustomThumbnailURL: r.CustomThumbnailURL,
	}
}

type UpdateItemRequest struct {
	Title              *string `json:"title" binding:"omitempty,max=200"`
	SourceURL          *string `json:"source_url"`
	CustomThumbnailURL *string `json:"custom_thumbnail_url"`
	SortOrder          *int    `json:"sort_order" binding:"omitempty,min=0"`
}

func (r *UpdateItemRequest) ToPatch() portfolio.ItemPatch {
	return portfolio.ItemPatch{
		Title:              r.Title,
		SourceURL:          r.SourceURL,
		CustomThumbnailURL: r.CustomThumbnailURL,
		SortOrder:          r.SortOrder,
	}
}

func ToItemDTO(it portfolio.Item) ItemDTO {
	dto := ItemDTO{
		ID:                 it.ID,
		Title:              it.Title,
		Type:               string(it.Kind),
		SourceURL:          it.SourceURL,
		CustomThumbnailURL: it.CustomThumbnailURL,
		ThumbnailURL:       it.DisplayThumbnail(),
		SortOrder:          it.SortOrder,
		CreatedAt:          it.CreatedAt,
	}
	if id, ok := it.VideoID(); ok {
		dto.VideoID = id
	}
	return dto
}

func toItemDTOs(items []portfolio.Item) []ItemDTO {
	out := make([]ItemDTO, len(items))
	for i, it := range items {
		out[i] = ToItemDTO(it)
	}
	return out
}

// Portfolio DTO

type PortfolioDTO struct {
	Profile ProfileDTO `json:"profile"`
	Videos  []ItemDTO  `json:"videos"`
	Designs []ItemDTO  `json:"designs"`
	Loading bool       `json:"loading"`
}

func ToPortfolioDTO(s portfolioUC.Snapshot) PortfolioDTO {
	return PortfolioDTO{
		Profile: ToProfileDTO(s.Profile),
		Videos:  toItemDTOs(s.Videos),
		Designs: toItemDTOs(s.Designs),
		Loading: s.Loading,
	}
}

// Upload DTO

type UploadDTO struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}
