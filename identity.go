package client

import (
	"sync"

	gojwt "github.com/golang-jwt/jwt/v5"
)

type User struct {
	Id       int
	Username string
}

// Identity is the logged-in-user service, created at application start and
// injected into every store. The backend issues the jwt; this side only reads
// the claims, it never verifies them.
type Identity struct {
	mutex sync.Mutex
	jwt   string
	user  *User
}

func NewIdentity(jwt string) *Identity {
	identity := &Identity{}
	if jwt != "" {
		identity.SetJwt(jwt)
	}
	return identity
}

func (self *Identity) SetJwt(jwt string) error {
	user, err := ParseUserJwtUnverified(jwt)
	if err != nil {
		return err
	}

	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.jwt = jwt
	self.user = user
	return nil
}

func (self *Identity) Clear() {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	self.jwt = ""
	self.user = nil
}

// User returns nil when logged out.
func (self *Identity) User() *User {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.user
}

// Jwt is the raw token attached as `auth` to requests that need it.
func (self *Identity) Jwt() string {
	self.mutex.Lock()
	defer self.mutex.Unlock()
	return self.jwt
}

func ParseUserJwtUnverified(jwt string) (*User, error) {
	parser := gojwt.NewParser()
	token, _, err := parser.ParseUnverified(jwt, gojwt.MapClaims{})
	if err != nil {
		return nil, err
	}

	claims := token.Claims.(gojwt.MapClaims)

	user := &User{}
	if id, ok := claims["id"]; ok {
		switch v := id.(type) {
		case float64:
			user.Id = int(v)
		}
	}
	if username, ok := claims["username"]; ok {
		switch v := username.(type) {
		case string:
			user.Username = v
		}
	}

	return user, nil
}
