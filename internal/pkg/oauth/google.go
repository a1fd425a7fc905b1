package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/tandemplan/tandem-backend/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/people/v1"
)

// Parser exchanges a Google auth code for the profile fields the sign-in flow
// needs. The People API is the source of truth for name, email, photo and
// phone number; only the entries Google marks primary are taken.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

type GoogleInfo struct {
	Name        string
	Email       string
	Picture     string
	PhoneNumber string
}

var scopes = []string{
	people.UserinfoEmailScope,
	people.UserinfoProfileScope,
	people.UserPhonenumbersReadScope,
}

// clientSecrets mirrors the Google client secret JSON, keyed by client type
// ("web", "installed").
type clientSecrets map[string]struct {
	ClientId     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectUris []string `json:"redirect_uris"`
}

func loadSecrets() (clientSecrets, error) {
	file, err := os.Open(config.ClientSecretPath())
	if err != nil {
		return nil, fmt.Errorf("can't open client secret: %w", err)
	}
	defer file.Close()

	cs := make(clientSecrets)
	if err := json.NewDecoder(file).Decode(&cs); err != nil {
		return nil, fmt.Errorf("can't parse secrets: %w", err)
	}

	return cs, nil
}

func (p *Parser) GetInfoGoogle(ctx context.Context, authCode string) (*GoogleInfo, error) {
	cs, err := loadSecrets()
	if err != nil {
		return nil, err
	}

	secret := cs[config.ClientType()]
	conf := oauth2.Config{
		ClientID:     secret.ClientId,
		ClientSecret: secret.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  config.RedirectURL(),
		Scopes:       scopes,
	}

	token, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("code exchange: %w", err)
	}

	peopleService, err := people.NewService(ctx,
		option.WithScopes(scopes...),
		option.WithTokenSource(conf.TokenSource(ctx, token)),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to People API: %w", err)
	}

	resp, err := peopleService.People.
		Get("people/me").
		PersonFields("names,emailAddresses,photos,phoneNumbers").
		Do()
	if err != nil {
		return nil, fmt.Errorf("request user info: %w", err)
	}
	if resp.HTTPStatusCode != http.StatusOK {
		return nil, fmt.Errorf("get user info: code %d", resp.HTTPStatusCode)
	}

	info := &GoogleInfo{}

	for _, n := range resp.Names {
		if n.Metadata.Primary {
			info.Name = n.DisplayName
			break
		}
	}
	for _, e := range resp.EmailAddresses {
		if e.Metadata.Primary {
			info.Email = e.Value
			break
		}
	}
	for _, ph := range resp.Photos {
		if ph.Metadata.Primary {
			info.Picture = ph.Url
			break
		}
	}
	for _, ph := range resp.PhoneNumbers {
		if ph.Metadata.Primary {
			info.PhoneNumber = ph.Value
			break
		}
	}

	return info, nil
}
