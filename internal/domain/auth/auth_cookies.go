package auth

import (
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const (
	sessionName       = "gaiapath_session"
	sessionTokenKey   = "authToken"
	sessionUserIDKey  = "userId"
	loggedInCookie    = "isLoggedIn"
	sessionMaxAgeSecs = 7 * 24 * 60 * 60
)

// CookieManager stores the signed credential in an encrypted session cookie
// and mirrors a readable isLoggedIn flag for the UI.
type CookieManager struct {
	store  *sessions.CookieStore
	secure bool
}

// NewCookieManager creates a cookie manager. secure controls the Secure flag
// on every cookie and should be true outside local development.
func NewCookieManager(secret []byte, secure bool) *CookieManager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAgeSecs,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &CookieManager{store: store, secure: secure}
}

// SetSession writes the auth session and the isLoggedIn flag.
func (c *CookieManager) SetSession(w http.ResponseWriter, r *http.Request, token, userID string) error {
	session, _ := c.store.Get(r, sessionName)
	session.Values[sessionTokenKey] = token
	session.Values[sessionUserIDKey] = userID
	if err := session.Save(r, w); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     loggedInCookie,
		Value:    "true",
		Path:     "/",
		MaxAge:   sessionMaxAgeSecs,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// ClearSession expires the auth session and the isLoggedIn flag.
func (c *CookieManager) ClearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := c.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	for k := range session.Values {
		delete(session.Values, k)
	}
	if err := session.Save(r, w); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:    loggedInCookie,
		Value:   "",
		Path:    "/",
		MaxAge:  -1,
		Expires: time.Unix(0, 0),
	})
	return nil
}

// AuthToken reads the stored credential, or "" when the session is absent or
// unreadable.
func (c *CookieManager) AuthToken(r *http.Request) string {
	session, err := c.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[sessionTokenKey].(string)
	return token
}

// UserID reads the stored user id, or "".
func (c *CookieManager) UserID(r *http.Request) string {
	session, err := c.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	userID, _ := session.Values[sessionUserIDKey].(string)
	return userID
}
