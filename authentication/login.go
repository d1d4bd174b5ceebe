package authentication

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"

	"optionanalyzer/config"
	"optionanalyzer/models"
)

const redirectURI = "http://localhost:8080/auth/callback"

// TokenHandler exchanges the Upstox authorization code for an access token
// and publishes it to redis under "access_token", where the screens pick it
// up without a restart. The static env token remains the primary path.
func TokenHandler(w http.ResponseWriter, r *http.Request) {
	apiURL := "https://api.upstox.com/v2/login/authorization/token"

	data := url.Values{}
	data.Set("code", r.URL.Query().Get("code"))
	data.Set("client_id", os.Getenv("API_KEY"))
	data.Set("client_secret", os.Getenv("API_SECRET"))
	data.Set("redirect_uri", redirectURI)
	data.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, apiURL, strings.NewReader(data.Encode()))
	if err != nil {
		fail(w, err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fail(w, err)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fail(w, err)
		return
	}

	var tokenResp models.TokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		fail(w, err)
		return
	}
	if tokenResp.AccessToken == "" {
		fail(w, errors.New("token exchange returned no access token"))
		return
	}

	redisClient, err := config.NewRedisClient(r.Context(), os.Getenv("REDIS_URL"))
	if err != nil {
		fail(w, err)
		return
	}
	if err := redisClient.SetVal("access_token", tokenResp.AccessToken); err != nil {
		fail(w, err)
		return
	}

	slog.Info("access token stored", "user_id", tokenResp.UserID)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "user_id": tokenResp.UserID})
}

// LogoutHandler revokes the current access token.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := os.Getenv("UPSTOX_ACCESS_TOKEN")
	if token == "" {
		if redisClient, err := config.NewRedisClient(r.Context(), os.Getenv("REDIS_URL")); err == nil {
			token, _ = redisClient.GetVal("access_token")
		}
	}
	if token == "" {
		fail(w, errors.New("no access token to revoke"))
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodDelete, "https://api.upstox.com/v2/logout", nil)
	if err != nil {
		fail(w, err)
		return
	}
	req.Header.Add("Authorization", "Bearer "+token)
	req.Header.Add("Accept", "application/json")

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		fail(w, err)
		return
	}
	defer res.Body.Close()

	slog.Info("access token revoked")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func fail(w http.ResponseWriter, err error) {
	slog.Error("authentication", "err", err)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
