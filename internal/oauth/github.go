package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
	githubendpoint "golang.org/x/oauth2/github"
)

const githubName = "github"

// GitHub autentica usuarios con una OAuth app de GitHub.
type GitHub struct {
	config *oauth2.Config
	// apiBase reemplaza la URL de la API REST; nil usa api.github.com.
	apiBase *url.URL
}

func NewGitHub(clientID, clientSecret, redirectURL string) (*GitHub, error) {
	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}
	return &GitHub{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     githubendpoint.Endpoint,
			Scopes:       []string{"read:user", "user:email"},
		},
	}, nil
}

func (g *GitHub) Name() string  { return githubName }
func (g *GitHub) Label() string { return "GitHub" }

func (g *GitHub) AuthCodeURL(state, codeChallenge string) string {
	return g.config.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// Exchange canjea el código y arma la identidad con /user y /user/emails.
// Se prefiere el email primario verificado; si no hay, el email público del perfil.
func (g *GitHub) Exchange(ctx context.Context, code, codeVerifier string) (Identity, error) {
	token, err := g.config.Exchange(ctx, code, oauth2.VerifierOption(codeVerifier))
	if err != nil {
		return Identity{}, fmt.Errorf("github token exchange: %w", err)
	}

	client := github.NewClient(g.config.Client(ctx, token))
	if g.apiBase != nil {
		client.BaseURL = g.apiBase
	}

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		return Identity{}, fmt.Errorf("github /user: %w", err)
	}
	if user.GetID() == 0 {
		return Identity{}, errors.New("github user missing id")
	}

	email, verified := user.GetEmail(), false
	emails, _, err := client.Users.ListEmails(ctx, &github.ListOptions{PerPage: 100})
	if err == nil {
		for _, e := range emails {
			if e.GetPrimary() && e.GetVerified() {
				email, verified = e.GetEmail(), true
				break
			}
		}
	}
	if email == "" {
		return Identity{}, errors.New("github account has no usable email")
	}

	name := strings.TrimSpace(user.GetName())
	if name == "" {
		name = user.GetLogin()
	}

	return Identity{
		Provider:      githubName,
		Subject:       strconv.FormatInt(user.GetID(), 10),
		Email:         email,
		EmailVerified: verified,
		DisplayName:   name,
	}, nil
}
