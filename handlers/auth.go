package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/bazaarhq/bazaar-server/config"
	"github.com/bazaarhq/bazaar-server/models"
	"github.com/bazaarhq/bazaar-server/store"
	"github.com/bazaarhq/bazaar-server/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const stateTTL = 10 * time.Minute

// discordEndpoint is Discord's OAuth2 code-flow endpoint pair.
var discordEndpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/api/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// AuthHandler runs the Discord OAuth handshake and mints the bearer
// tokens the rest of the API trusts. The handshake state lives in its own
// session store; the issued JWT is the only identity the API keeps.
type AuthHandler struct {
	oauth    *oauth2.Config
	sessions *store.SessionRepository

	jwtSecret   string
	tokenTTL    time.Duration
	frontendURL string

	// apiBase is Discord's REST base; tests point it at a stub.
	apiBase string
}

func NewAuthHandler(cfg config.AuthConfig, sessions *store.SessionRepository) *AuthHandler {
	return &AuthHandler{
		oauth: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify"},
			Endpoint:     discordEndpoint,
		},
		sessions:    sessions,
		jwtSecret:   cfg.JWTSecret,
		tokenTTL:    cfg.TokenTTL,
		frontendURL: cfg.FrontendURL,
		apiBase:     "https://discord.com/api",
	}
}

// Login starts the handshake: store a one-shot state and send the user to
// Discord's consent screen.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to start login")
		return
	}
	if err := h.sessions.Put(state, stateTTL); err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to start login")
		return
	}

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback finishes the handshake: consume the state, exchange the code,
// look the user up on Discord and hand the frontend a signed token via
// the redirect query string.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")

	ok, err := h.sessions.Take(state)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to verify login state")
		return
	}
	if !ok {
		utils.RespondError(w, http.StatusUnauthorized, errors.New("unknown or expired oauth state"), "Login expired, please try again")
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, err, "Discord login failed")
		return
	}

	discordUser, err := h.fetchUser(r, token)
	if err != nil {
		utils.RespondError(w, http.StatusUnauthorized, err, "Failed to fetch Discord profile")
		return
	}

	apiToken, err := utils.GenerateJWT(models.AuthUser{
		ID:       discordUser.ID,
		Username: discordUser.Username,
		Avatar:   discordUser.Avatar,
	}, h.jwtSecret, h.tokenTTL)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err, "Failed to issue token")
		return
	}

	logrus.Infof("issued token for discord user %s", discordUser.ID)
	http.Redirect(w, r, h.frontendURL+"/?token="+url.QueryEscape(apiToken), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) fetchUser(r *http.Request, token *oauth2.Token) (*models.DiscordUser, error) {
	client := h.oauth.Client(r.Context(), token)
	resp, err := client.Get(h.apiBase + "/users/@me")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New("discord returned status " + resp.Status)
	}

	var discordUser models.DiscordUser
	if err := utils.ParseBody(resp.Body, &discordUser); err != nil {
		return nil, err
	}
	return &discordUser, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
