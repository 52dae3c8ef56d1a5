package apisdk

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/hilthontt/devtea/api-sdk/internal/requestconfig"
	"github.com/hilthontt/devtea/api-sdk/option"
)

type UserService struct {
	Options []option.RequestOption
}

func NewUserService(opts ...option.RequestOption) *UserService {
	return &UserService{opts}
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	UserCode  string    `json:"userCode"`
	CreatedAt time.Time `json:"createdAt"`
}

type UserNewParams struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
}

type userResponse struct {
	User *User `json:"user"`
}

type userSearchResponse struct {
	Users []User `json:"users"`
}

// New issues an identity for a signed-in account. The server derives a
// unique username from the name.
func (u *UserService) New(ctx context.Context, params UserNewParams, opts ...option.RequestOption) (*User, error) {
	opts = slices.Concat(u.Options, opts)

	res := &userResponse{}
	if err := requestconfig.ExecuteNewRequest(ctx, http.MethodPost, "users", params, res, opts...); err != nil {
		return nil, err
	}
	return res.User, nil
}

func (u *UserService) Search(ctx context.Context, query string, opts ...option.RequestOption) ([]User, error) {
	opts = slices.Concat(u.Options, opts)

	path := "users?" + url.Values{"search": {query}}.Encode()
	res := &userSearchResponse{}
	if err := requestconfig.ExecuteNewRequest(ctx, http.MethodGet, path, nil, res, opts...); err != nil {
		return nil, err
	}
	return res.Users, nil
}

func (u *UserService) Delete(ctx context.Context, id string, opts ...option.RequestOption) error {
	opts = slices.Concat(u.Options, opts)
	if id == "" {
		return ErrMissingIDParameter
	}

	return requestconfig.ExecuteNewRequest(ctx, http.MethodDelete, "users/"+url.PathEscape(id), nil, nil, opts...)
}
