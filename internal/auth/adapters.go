package auth

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/washb22/gunghabnote/internal/utils"
)

const (
	defaultKakaoName = "카카오 사용자"
	defaultNaverName = "네이버 사용자"
)

type googleUser struct {
	ID      string `json:"id"`
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type kakaoProfile struct {
	Nickname        string `json:"nickname"`
	ProfileImageURL string `json:"profile_image_url"`
}

type kakaoUser struct {
	ID         string `json:"id"`
	Properties struct {
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"properties"`
	KakaoAccount struct {
		Email   string       `json:"email"`
		Profile kakaoProfile `json:"profile"`
	} `json:"kakao_account"`
}

type naverUser struct {
	Response struct {
		ID           string `json:"id"`
		Email        string `json:"email"`
		Name         string `json:"name"`
		Nickname     string `json:"nickname"`
		ProfileImage string `json:"profile_image"`
	} `json:"response"`
}

// Normalize maps a provider's userinfo payload onto Identity.
func Normalize(provider Provider, raw map[string]any) (Identity, error) {
	switch provider {
	case ProviderGoogle:
		var u googleUser
		if err := decode(raw, &u); err != nil {
			return Identity{}, err
		}
		return withID(Identity{
			Provider: provider,
			ID:       utils.FirstNonEmpty(u.ID, u.Sub),
			Email:    u.Email,
			Name:     u.Name,
			Picture:  u.Picture,
		})
	case ProviderKakao:
		var u kakaoUser
		if err := decode(raw, &u); err != nil {
			return Identity{}, err
		}
		email := u.KakaoAccount.Email
		if email == "" && u.ID != "" {
			email = fmt.Sprintf("kakao_%s@kakao.com", u.ID)
		}
		return withID(Identity{
			Provider: provider,
			ID:       u.ID,
			Email:    email,
			Name:     utils.FirstNonEmpty(u.Properties.Nickname, u.KakaoAccount.Profile.Nickname, defaultKakaoName),
			Picture:  utils.FirstNonEmpty(u.Properties.ProfileImage, u.KakaoAccount.Profile.ProfileImageURL),
		})
	case ProviderNaver:
		var u naverUser
		if err := decode(raw, &u); err != nil {
			return Identity{}, err
		}
		r := u.Response
		return withID(Identity{
			Provider: provider,
			ID:       r.ID,
			Email:    r.Email,
			Name:     utils.FirstNonEmpty(r.Name, r.Nickname, defaultNaverName),
			Picture:  r.ProfileImage,
		})
	default:
		return Identity{}, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
}

func decode(raw map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("create userinfo decoder: %w", err)
	}

	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode userinfo: %w", err)
	}

	return nil
}

func withID(id Identity) (Identity, error) {
	if id.ID == "" {
		return Identity{}, fmt.Errorf("%s: %w", id.Provider, ErrMissingID)
	}
	return id, nil
}
